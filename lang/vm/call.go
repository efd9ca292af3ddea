package vm

import (
	"github.com/mna/ember/lang/bytecode"
	"github.com/mna/ember/lang/value"
)

// callValue dispatches a call instruction's callee to the right handler:
// a closure pushes a new frame, a native calls straight into Go, a class
// allocates an instance and runs its initializer, and a bound method
// rebinds the receiver before falling back to the closure path.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	if !callee.IsObject() {
		return vm.runtimeError("Can only call functions and classes.")
	}
	switch obj := callee.AsObject().(type) {
	case *value.Closure:
		return vm.call(obj, argCount)
	case *value.Native:
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result, err := obj.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stackTop -= argCount + 1
		vm.push(result)
		return nil
	case *value.Class:
		inst := vm.h.NewInstance(obj)
		vm.stack[vm.stackTop-argCount-1] = value.Object(inst)
		if init, ok := obj.Methods.Get("init"); ok {
			return vm.call(init, argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
		}
		return nil
	case *value.BoundMethod:
		vm.stack[vm.stackTop-argCount-1] = obj.Receiver
		return vm.call(obj.Method, argCount)
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

// call pushes a new frame for closure, checking arity and the frame-stack
// depth first. The closure's prototype is always a *bytecode.Function in
// practice: it is the only concrete type in this module that satisfies
// value.FunctionProto, so the assertion can't fail for a closure that came
// out of this VM's own compiler.
func (vm *VM) call(closure *value.Closure, argCount int) error {
	fn := closure.Proto.(*bytecode.Function)
	if argCount != fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if vm.frameCount == maxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames[vm.frameCount] = frame{
		closure: closure,
		fn:      fn,
		ip:      0,
		base:    vm.stackTop - argCount - 1,
	}
	vm.frameCount++
	return nil
}

// invoke is the fast path for a method call written as receiver.name(args):
// it resolves name once against the receiver (a field shadowing a method,
// or the method itself) instead of emitting a separate OpGetProperty
// followed by OpCall the way a naive compiler would.
func (vm *VM) invoke(name string, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.Is(value.OInstance) {
		return vm.runtimeError("Only instances have methods.")
	}
	inst := receiver.AsObject().(*value.Instance)
	if field, ok := inst.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}
	return vm.invokeFromClass(inst.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *value.Class, name string, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name)
	}
	return vm.call(method, argCount)
}
