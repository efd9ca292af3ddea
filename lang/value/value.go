// Package value implements the runtime representation of values: the
// tagged Nil/Boolean/Number/Object union and the heap object kinds that hang
// off it (strings, functions, closures, classes, instances...). It is
// grounded on the teacher's types/value.go Value interface, generalized per
// the redesign note favoring a common object header plus a kind tag over a
// family of unrelated interfaces, since this language's object graph (and
// its garbage collector) needs a single intrusive list to walk.
package value

import (
	"fmt"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is the tagged union every expression evaluates to. It is a plain
// struct rather than an interface so that nil, booleans and numbers never
// allocate or box — only KindObject values carry a heap pointer.
type Value struct {
	kind Kind
	b    bool
	n    float64
	obj  Obj
}

// Nil is the singleton nil value.
var Nil = Value{kind: KindNil}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Object wraps a heap object.
func Object(o Obj) Value { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNil() bool  { return v.kind == KindNil }
func (v Value) IsBool() bool { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsBool returns the boolean payload; only valid when IsBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the float64 payload; only valid when IsNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsObject returns the heap object payload; only valid when IsObject.
func (v Value) AsObject() Obj { return v.obj }

// Is reports whether v is an object of the given kind.
func (v Value) Is(k ObjKind) bool { return v.kind == KindObject && v.obj.Kind() == k }

// Truthy implements the language's truthiness rule: nil and false are
// falsey, everything else (including 0 and "") is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Equal implements value equality: numbers and booleans compare by value,
// objects compare by identity except for interned strings, which compare
// equal whenever their pointers are equal (interning guarantees equal
// content implies equal pointer).
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindObject:
		return v.obj == other.obj
	}
	return false
}

// String renders v for error interpolation and debug tracing. See
// PrintString for the print statement's own rendering, which additionally
// quotes strings.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindObject:
		return v.obj.String()
	}
	return "<invalid value>"
}

// PrintString renders v the way a print statement emits it: identical to
// String except a string value's own quotes are part of its printed form,
// so that printing distinguishes `"1"` from the number `1`.
func (v Value) PrintString() string {
	if v.Is(OString) {
		return `"` + v.obj.(*String).Chars + `"`
	}
	return v.String()
}

// TypeName names v's type for runtime type-error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		return v.obj.Kind().String()
	}
	return "invalid"
}

// GoString supports "%#v"-style debug printing from the VM's trace logging.
func (v Value) GoString() string { return fmt.Sprintf("Value{%s: %s}", v.TypeName(), v.String()) }
