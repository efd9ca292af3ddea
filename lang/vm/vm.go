// Package vm executes compiled bytecode.Function prototypes against a
// shared heap.Heap. Its stack-of-frames-over-one-flat-array layout and its
// switch-dispatched fetch loop follow clox's design, expressed through the
// teacher's machine package: an explicit struct holding every piece of
// interpreter state (no package-level globals), Go error returns instead of
// longjmp, and logrus trace-level logging of the value stack before each
// instruction, gated by the same logger level the compiler already uses for
// its debug-level disassembly dump.
package vm

import (
	"fmt"
	"io"

	"github.com/mna/ember/lang/bytecode"
	"github.com/mna/ember/lang/compiler"
	"github.com/mna/ember/lang/heap"
	"github.com/mna/ember/lang/value"
	"github.com/sirupsen/logrus"
)

const (
	maxFrames = 64
	stackMax  = maxFrames * 256
)

// VM interprets one compiled program against a heap. A VM is single-use per
// Interpret call in the sense that a failed run leaves its stack and frames
// reset for the next one, mirroring clox's resettable global vm.
type VM struct {
	h   *heap.Heap
	log *logrus.Logger
	out io.Writer

	stack    []value.Value
	stackTop int

	frames     []frame
	frameCount int

	openUpvalues []openUpvalue
}

type openUpvalue struct {
	idx int
	uv  *value.Upvalue
}

// New creates a VM bound to h, writing the output of print statements to
// out. The VM registers itself as a heap.RootMarker so the collector can
// find every value reachable from the stack, the active call frames and any
// upvalue still open over a stack slot.
func New(h *heap.Heap, out io.Writer, log *logrus.Logger) *VM {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	vm := &VM{
		h:      h,
		log:    log,
		out:    out,
		stack:  make([]value.Value, stackMax),
		frames: make([]frame, maxFrames),
	}
	h.AddRoot(vm)
	return vm
}

// MarkRoots implements heap.RootMarker.
func (vm *VM) MarkRoots(h *heap.Heap) {
	for i := 0; i < vm.stackTop; i++ {
		h.MarkValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		h.Mark(vm.frames[i].closure)
	}
	for _, o := range vm.openUpvalues {
		h.Mark(o.uv)
	}
}

// Interpret compiles src and runs it to completion. A compile error is
// returned as a *multierror.Error (see lang/compiler); a failure during
// execution is returned as a *RuntimeError.
func (vm *VM) Interpret(src string) error {
	fn, err := compiler.Compile(src, vm.h, vm.log)
	if err != nil {
		return err
	}
	return vm.Run(fn)
}

// Run executes a single already-compiled top-level function, such as the
// one returned by compiler.Compile.
func (vm *VM) Run(fn *bytecode.Function) error {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = vm.openUpvalues[:0]

	closure := vm.h.NewClosure(fn, fn.UpvalueCount)
	vm.push(value.Object(closure))
	if err := vm.call(closure, 0); err != nil {
		return err
	}
	return vm.run()
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// run is the fetch-decode-dispatch loop, one case per bytecode.Op.
func (vm *VM) run() error {
	frame := &vm.frames[vm.frameCount-1]

	for {
		if vm.log.IsLevelEnabled(logrus.TraceLevel) {
			vm.log.Tracef("stack=%v", vm.stack[:vm.stackTop])
		}

		op := bytecode.Op(frame.readByte())
		switch op {
		case bytecode.OpConstant:
			vm.push(frame.readConstant())

		case bytecode.OpNil:
			vm.push(value.Nil)
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			idx := frame.readByte()
			vm.push(vm.stack[frame.base+int(idx)])
		case bytecode.OpSetLocal:
			idx := frame.readByte()
			vm.stack[frame.base+int(idx)] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := vm.readString(frame)
			v, ok := vm.h.Globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name)
			}
			vm.push(v)
		case bytecode.OpDefineGlobal:
			name := vm.readString(frame)
			vm.h.Globals.Put(name, vm.pop())
		case bytecode.OpSetGlobal:
			name := vm.readString(frame)
			if _, ok := vm.h.Globals.Get(name); !ok {
				return vm.runtimeError("Undefined variable '%s'.", name)
			}
			vm.h.Globals.Put(name, vm.peek(0))

		case bytecode.OpGetUpvalue:
			idx := frame.readByte()
			vm.push(*frame.closure.Upvalues[idx].Location)
		case bytecode.OpSetUpvalue:
			idx := frame.readByte()
			*frame.closure.Upvalues[idx].Location = vm.peek(0)

		case bytecode.OpGetProperty:
			if !vm.peek(0).Is(value.OInstance) {
				return vm.runtimeError("Only instances have properties.")
			}
			inst := vm.peek(0).AsObject().(*value.Instance)
			name := vm.readString(frame)
			if v, ok := inst.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if !vm.bindMethod(inst.Class, name) {
				return vm.runtimeError("Undefined property '%s'.", name)
			}

		case bytecode.OpSetProperty:
			if !vm.peek(1).Is(value.OInstance) {
				return vm.runtimeError("Only instances have fields.")
			}
			inst := vm.peek(1).AsObject().(*value.Instance)
			name := vm.readString(frame)
			inst.Fields.Put(name, vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)

		case bytecode.OpGetSuper:
			name := vm.readString(frame)
			super := vm.pop().AsObject().(*value.Class)
			if !vm.bindMethod(super, name) {
				return vm.runtimeError("Undefined property '%s'.", name)
			}

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(a.Equal(b)))
		case bytecode.OpGreater:
			if err := vm.numericCompare(func(a, b float64) bool { return a > b }); err != nil {
				return err
			}
		case bytecode.OpLess:
			if err := vm.numericCompare(func(a, b float64) bool { return a < b }); err != nil {
				return err
			}

		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case bytecode.OpSubtract:
			if err := vm.numericBinary(func(a, b float64) float64 { return a - b }); err != nil {
				return err
			}
		case bytecode.OpMultiply:
			if err := vm.numericBinary(func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case bytecode.OpDivide:
			if err := vm.numericBinary(func(a, b float64) float64 { return a / b }); err != nil {
				return err
			}

		case bytecode.OpNot:
			vm.push(value.Bool(!vm.pop().Truthy()))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.out, vm.pop().PrintString())

		case bytecode.OpJump:
			offset := frame.readUint16()
			frame.ip += int(offset)
		case bytecode.OpJumpIfFalse:
			offset := frame.readUint16()
			if !vm.peek(0).Truthy() {
				frame.ip += int(offset)
			}
		case bytecode.OpLoop:
			offset := frame.readUint16()
			frame.ip -= int(offset)

		case bytecode.OpCall:
			argCount := int(frame.readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpInvoke:
			name := vm.readString(frame)
			argCount := int(frame.readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpSuperInvoke:
			name := vm.readString(frame)
			argCount := int(frame.readByte())
			super := vm.pop().AsObject().(*value.Class)
			if err := vm.invokeFromClass(super, name, argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpClosure:
			proto := frame.readConstant().AsObject().(*bytecode.Function)
			closure := vm.h.NewClosure(proto, proto.UpvalueCount)
			// Push before capturing: captureUpvalue allocates and can trigger a
			// collection, and the closure must already be a root by then.
			vm.push(value.Object(closure))
			for i := 0; i < proto.UpvalueCount; i++ {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = frame.base
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpClass:
			name := vm.readString(frame)
			vm.push(value.Object(vm.h.NewClass(name)))

		case bytecode.OpInherit:
			if !vm.peek(1).Is(value.OClass) {
				return vm.runtimeError("Superclass must be a class.")
			}
			super := vm.peek(1).AsObject().(*value.Class)
			sub := vm.peek(0).AsObject().(*value.Class)
			super.Methods.Iter(func(name string, m *value.Closure) bool {
				sub.Methods.Put(name, m)
				return false
			})
			vm.pop() // the subclass; the superclass stays as the compiler's "super" local

		case bytecode.OpMethod:
			name := vm.readString(frame)
			method := vm.pop().AsObject().(*value.Closure)
			class := vm.peek(0).AsObject().(*value.Class)
			class.Methods.Put(name, method)

		default:
			return vm.runtimeError("Unknown opcode %d.", byte(op))
		}
	}
}

func (vm *VM) readString(f *frame) string {
	return f.readConstant().AsObject().(*value.String).Chars
}

func (vm *VM) numericBinary(fn func(a, b float64) float64) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(value.Number(fn(a, b)))
	return nil
}

func (vm *VM) numericCompare(fn func(a, b float64) bool) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(value.Bool(fn(a, b)))
	return nil
}

func (vm *VM) add() error {
	bv, av := vm.peek(0), vm.peek(1)
	switch {
	case av.IsNumber() && bv.IsNumber():
		b := vm.pop().AsNumber()
		a := vm.pop().AsNumber()
		vm.push(value.Number(a + b))
	case av.Is(value.OString) && bv.Is(value.OString):
		b := vm.pop().AsObject().(*value.String)
		a := vm.pop().AsObject().(*value.String)
		vm.push(value.Object(vm.h.NewString(a.Chars + b.Chars)))
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
	return nil
}

// bindMethod looks up name on class, resolving it against the instance
// sitting at the top of the stack, and replaces that instance with a bound
// method. It reports whether the method was found, mirroring clox's
// bool-returning bindMethod so callers can turn a miss into their own
// "Undefined property" message.
func (vm *VM) bindMethod(class *value.Class, name string) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		return false
	}
	bound := vm.h.NewBoundMethod(vm.peek(0), method)
	vm.pop()
	vm.push(value.Object(bound))
	return true
}

func (vm *VM) captureUpvalue(idx int) *value.Upvalue {
	for _, o := range vm.openUpvalues {
		if o.idx == idx {
			return o.uv
		}
	}
	uv := vm.h.NewUpvalue(&vm.stack[idx])
	vm.openUpvalues = append(vm.openUpvalues, openUpvalue{idx: idx, uv: uv})
	return uv
}

func (vm *VM) closeUpvalues(fromIdx int) {
	kept := vm.openUpvalues[:0]
	for _, o := range vm.openUpvalues {
		if o.idx >= fromIdx {
			o.uv.Close()
		} else {
			kept = append(kept, o)
		}
	}
	vm.openUpvalues = kept
}

// runtimeError builds a *RuntimeError carrying the call stack active at the
// point of failure, innermost frame first. It reads vm.frames directly
// rather than taking a *frame argument: the opcode loop's local frame
// variable is always literally &vm.frames[vm.frameCount-1], and a call
// still in the middle of being dispatched (arity mismatch, stack overflow)
// has not pushed its new frame yet, so the caller's frame is exactly the
// right place to report the line from either way. Once the trace is built it
// resets the stack, the frames and the open upvalues.
func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		line := fr.fn.Chunk.LineFor(fr.ip - 1)
		name := fr.fn.Name
		err.Trace = append(err.Trace, traceLine{Line: line, In: name})
	}
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = vm.openUpvalues[:0]
	return err
}
