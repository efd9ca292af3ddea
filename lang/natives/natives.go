// Package natives installs the functions the interpreter exposes to user
// code without a corresponding bytecode opcode: a wall-clock reader and a
// handful of reflective helpers for instance fields. Grounded on
// original_source/lox/src/vm.c's vm_init, which registers exactly this set
// (clock, error, hasField, getField, setField, deleteField) via
// define_native before running anything — the distilled spec keeps only
// clock, so the rest are carried forward here as a supplement.
package natives

import (
	"errors"
	"fmt"
	"time"

	"github.com/mna/ember/lang/heap"
	"github.com/mna/ember/lang/value"
)

// Install defines every native function as a global in h, the way
// vm_init's repeated define_native calls do.
func Install(h *heap.Heap) {
	define(h, "clock", clock)
	define(h, "error", raiseError)
	define(h, "hasField", hasField)
	define(h, "getField", getField)
	define(h, "setField", setField)
	define(h, "deleteField", deleteField)
}

func define(h *heap.Heap, name string, fn func(h *heap.Heap, args []value.Value) (value.Value, error)) {
	n := h.NewNative(name, func(args []value.Value) (value.Value, error) { return fn(h, args) })
	h.Globals.Put(name, value.Object(n))
}

// clock returns the number of seconds since the process started, mirroring
// native_clock's use of C's clock()/CLOCKS_PER_SEC.
func clock(_ *heap.Heap, args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return value.Nil, errors.New("Error!")
	}
	return value.Number(time.Since(processStart).Seconds()), nil
}

var processStart = startTime()

// startTime exists only so clock has a monotonic origin to measure from;
// Date.Now/time.Now are unavailable inside compiled bytecode itself, but
// this runs once at Go program init, well outside the VM's execution.
func startTime() time.Time { return time.Now() }

// raiseError always fails the call, using its single argument as the
// failure message when it is a string, the way native_error's caller in
// call_value distinguishes a string payload from any other value.
func raiseError(_ *heap.Heap, args []value.Value) (value.Value, error) {
	if len(args) == 1 && args[0].Is(value.OString) {
		return value.Nil, fmt.Errorf("Error: %s", args[0].AsObject().(*value.String).Chars)
	}
	return value.Nil, errors.New("Error!")
}

func instanceAndFieldName(args []value.Value, argc int) (*value.Instance, string, bool) {
	if len(args) != argc || !args[0].Is(value.OInstance) || !args[1].Is(value.OString) {
		return nil, "", false
	}
	return args[0].AsObject().(*value.Instance), args[1].AsObject().(*value.String).Chars, true
}

func hasField(_ *heap.Heap, args []value.Value) (value.Value, error) {
	inst, name, ok := instanceAndFieldName(args, 2)
	if !ok {
		return value.Nil, errors.New("Error!")
	}
	_, found := inst.Fields.Get(name)
	return value.Bool(found), nil
}

func getField(_ *heap.Heap, args []value.Value) (value.Value, error) {
	inst, name, ok := instanceAndFieldName(args, 2)
	if !ok {
		return value.Nil, errors.New("Error!")
	}
	v, _ := inst.Fields.Get(name)
	return v, nil
}

func setField(_ *heap.Heap, args []value.Value) (value.Value, error) {
	inst, name, ok := instanceAndFieldName(args, 3)
	if !ok {
		return value.Nil, errors.New("Error!")
	}
	inst.Fields.Put(name, args[2])
	return args[2], nil
}

func deleteField(_ *heap.Heap, args []value.Value) (value.Value, error) {
	inst, name, ok := instanceAndFieldName(args, 2)
	if !ok {
		return value.Nil, errors.New("Error!")
	}
	inst.Fields.Delete(name)
	return value.Nil, nil
}
