package vm

import (
	"github.com/mna/ember/lang/bytecode"
	"github.com/mna/ember/lang/value"
)

// frame records one active call: the closure being executed, the program
// counter into its chunk, and the base index into the VM's shared value
// stack where its local variable slots begin (slot 0 is the closure itself
// for a function call, or the receiver for a method call). Grounded on the
// teacher's machine.Frame{callable, pc} pairing, widened with base
// since this VM shares one flat stack across frames instead of allocating a
// fresh locals array per call.
type frame struct {
	closure *value.Closure
	fn      *bytecode.Function // closure.Proto, pre-asserted for cheap access
	ip      int
	base    int
}

func (f *frame) readByte() byte {
	b := f.fn.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (f *frame) readUint16() uint16 {
	hi := f.readByte()
	lo := f.readByte()
	return uint16(hi)<<8 | uint16(lo)
}

func (f *frame) readConstant() value.Value {
	return f.fn.Chunk.Constants[f.readByte()]
}
