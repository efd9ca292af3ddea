package value_test

import (
	"testing"

	"github.com/mna/ember/lang/value"
	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	assert.False(t, value.Nil.Truthy())
	assert.False(t, value.Bool(false).Truthy())
	assert.True(t, value.Bool(true).Truthy())
	assert.True(t, value.Number(0).Truthy())
	assert.True(t, value.Object(value.NewString("")).Truthy())
}

func TestEqual(t *testing.T) {
	assert.True(t, value.Number(1).Equal(value.Number(1)))
	assert.False(t, value.Number(1).Equal(value.Number(2)))
	assert.False(t, value.Number(1).Equal(value.Bool(true)))
	assert.True(t, value.Nil.Equal(value.Nil))

	a := value.NewString("hi")
	b := value.NewString("hi")
	assert.False(t, value.Object(a).Equal(value.Object(b)), "distinct allocations compare unequal without interning")
	assert.True(t, value.Object(a).Equal(value.Object(a)))
}

func TestStringAndPrintString(t *testing.T) {
	s := value.Object(value.NewString("hi"))
	assert.Equal(t, "hi", s.String())
	assert.Equal(t, `"hi"`, s.PrintString())

	n := value.Number(1)
	assert.Equal(t, "1", n.String())
	assert.Equal(t, "1", n.PrintString())

	assert.Equal(t, "nil", value.Nil.String())
	assert.Equal(t, "true", value.Bool(true).String())
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "number", value.Number(1).TypeName())
	assert.Equal(t, "nil", value.Nil.TypeName())
	assert.Equal(t, "boolean", value.Bool(false).TypeName())
	assert.Equal(t, "string", value.Object(value.NewString("x")).TypeName())
}
