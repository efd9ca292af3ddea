// Package bytecode defines the compiled instruction format shared by the
// compiler and the virtual machine: a flat byte stream, a constant pool and
// a compact line map, plus the disassembler used by debug logging and
// golden-file tests. It is grounded on the teacher's compiler/compiled.go
// Funcode and compiler/asm.go Dasm, adapted from the teacher's
// varint-addressed, section-based format to spec.md's fixed-width
// stack-machine encoding.
package bytecode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/ember/lang/value"
)

// maxConstants bounds the constant pool to what a single-byte OpConstant
// operand can index.
const maxConstants = 256

// A Chunk is one compiled function body: its bytecode, the constants it
// references and the source line of each instruction.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	lines     []lineRun
}

// lineRun records that, starting at byte offset Start, subsequent
// instructions originate from source line Line, until the next run begins.
// Appending one entry per line change (rather than one per byte, as naive
// line-per-instruction tables do) keeps the map small for long straight-line
// runs, at the cost of a binary search on lookup.
type lineRun struct {
	Start int
	Line  int
}

// Write appends a single byte to the chunk, recording that it originates
// from the given source line.
func (c *Chunk) Write(b byte, line int) {
	c.recordLine(line)
	c.Code = append(c.Code, b)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Op, line int) int {
	pos := len(c.Code)
	c.Write(byte(op), line)
	return pos
}

// WriteUint16 appends a big-endian two-byte operand, as used by jump
// offsets.
func (c *Chunk) WriteUint16(v uint16, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

func (c *Chunk) recordLine(line int) {
	if n := len(c.lines); n == 0 || c.lines[n-1].Line != line {
		c.lines = append(c.lines, lineRun{Start: len(c.Code), Line: line})
	}
}

// LineFor returns the source line the instruction at byte offset belongs
// to, or 0 if offset is out of range.
func (c *Chunk) LineFor(offset int) int {
	if offset < 0 || offset >= len(c.Code) {
		return 0
	}
	i := sort.Search(len(c.lines), func(i int) bool { return c.lines[i].Start > offset })
	if i == 0 {
		return 0
	}
	return c.lines[i-1].Line
}

// AddConstant appends v to the constant pool and returns its index. It
// panics if the pool would exceed maxConstants; the compiler is expected to
// turn that into a compile error before calling AddConstant so this limit is
// never actually hit by user programs that pass the one-pass compile check.
func (c *Chunk) AddConstant(v value.Value) int {
	if len(c.Constants) >= maxConstants {
		panic("bytecode: too many constants in one chunk")
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Len reports the number of bytes of code emitted so far.
func (c *Chunk) Len() int { return len(c.Code) }

// Disassemble renders the chunk as human-readable text, one line per
// instruction, in the teacher's "writef" tabular style. name labels the
// function the chunk belongs to.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.disassembleInstruction(&sb, offset)
	}
	return sb.String()
}

func (c *Chunk) disassembleInstruction(sb *strings.Builder, offset int) int {
	fmt.Fprintf(sb, "%04d %4d ", offset, c.LineFor(offset))

	op := Op(c.Code[offset])
	switch op {
	case OpClosure:
		constIdx := c.Code[offset+1]
		fmt.Fprintf(sb, "%-18s %4d %s\n", op, constIdx, c.Constants[constIdx])
		next := offset + 2
		if c.Constants[constIdx].Is(value.OFunction) {
			fn := c.Constants[constIdx].AsObject().(*Function)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal, index := c.Code[next], c.Code[next+1]
				local := "upvalue"
				if isLocal != 0 {
					local = "local"
				}
				fmt.Fprintf(sb, "%04d      |                     %s %d\n", next, local, index)
				next += 2
			}
		}
		return next
	case OpJump, OpJumpIfFalse:
		jump := uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2])
		fmt.Fprintf(sb, "%-18s %4d -> %d\n", op, offset, offset+3+int(jump))
		return offset + 3
	case OpLoop:
		jump := uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2])
		fmt.Fprintf(sb, "%-18s %4d -> %d\n", op, offset, offset+3-int(jump))
		return offset + 3
	case OpInvoke, OpSuperInvoke:
		constIdx, argc := c.Code[offset+1], c.Code[offset+2]
		fmt.Fprintf(sb, "%-18s (%d args) %4d %s\n", op, argc, constIdx, c.Constants[constIdx])
		return offset + 3
	}

	width := op.OperandWidth()
	switch width {
	case 0:
		fmt.Fprintf(sb, "%s\n", op)
	case 1:
		arg := c.Code[offset+1]
		if isConstantOp(op) {
			fmt.Fprintf(sb, "%-18s %4d %s\n", op, arg, c.constantRepr(int(arg)))
		} else {
			fmt.Fprintf(sb, "%-18s %4d\n", op, arg)
		}
	case 2:
		arg := uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2])
		fmt.Fprintf(sb, "%-18s %4d\n", op, arg)
	}
	return offset + 1 + width
}

func (c *Chunk) constantRepr(idx int) string {
	if idx < 0 || idx >= len(c.Constants) {
		return "?"
	}
	return c.Constants[idx].String()
}

func isConstantOp(op Op) bool {
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpGetProperty,
		OpSetProperty, OpGetSuper, OpClass, OpMethod:
		return true
	}
	return false
}
