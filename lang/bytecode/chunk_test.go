package bytecode_test

import (
	"testing"

	"github.com/mna/ember/lang/bytecode"
	"github.com/mna/ember/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWriteAndLineFor(t *testing.T) {
	var c bytecode.Chunk
	c.WriteOp(bytecode.OpNil, 1)
	c.WriteOp(bytecode.OpTrue, 1)
	c.WriteOp(bytecode.OpPop, 2)

	assert.Equal(t, 1, c.LineFor(0))
	assert.Equal(t, 1, c.LineFor(1))
	assert.Equal(t, 2, c.LineFor(2))
}

func TestAddConstant(t *testing.T) {
	var c bytecode.Chunk
	idx := c.AddConstant(value.Number(42))
	assert.Equal(t, 0, idx)
	assert.True(t, c.Constants[idx].Equal(value.Number(42)))
}

func TestDisassembleSimpleChunk(t *testing.T) {
	var c bytecode.Chunk
	constIdx := c.AddConstant(value.Number(1.5))
	c.WriteOp(bytecode.OpConstant, 1)
	c.Write(byte(constIdx), 1)
	c.WriteOp(bytecode.OpReturn, 1)

	out := c.Disassemble("test")
	require.Contains(t, out, "== test ==")
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "OP_RETURN")
}

func TestDisassembleJump(t *testing.T) {
	var c bytecode.Chunk
	pos := c.WriteOp(bytecode.OpJumpIfFalse, 3)
	c.WriteUint16(0, 3)
	c.WriteOp(bytecode.OpPop, 3)
	_ = pos

	out := c.Disassemble("cond")
	assert.Contains(t, out, "OP_JUMP_IF_FALSE")
	assert.Contains(t, out, "->")
}
