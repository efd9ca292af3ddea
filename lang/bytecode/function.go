package bytecode

import (
	"fmt"

	"github.com/mna/ember/lang/value"
)

// Function is the compiled prototype produced for every fun declaration
// (and for the implicit top-level script function): its own chunk plus the
// metadata the VM needs to set up a call frame. It lives in this package
// rather than package value because a chunk's constant pool can itself hold
// functions, and value.Value must not import bytecode to avoid a cycle;
// Function instead satisfies value.FunctionProto structurally.
type Function struct {
	value.Header
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        Chunk
}

func NewFunction(name string) *Function {
	return &Function{Header: value.NewHeader(value.OFunction), Name: name}
}

func (f *Function) ProtoName() string         { return f.Name }
func (f *Function) ProtoArity() int           { return f.Arity }
func (f *Function) ProtoUpvalueCount() int    { return f.UpvalueCount }

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
