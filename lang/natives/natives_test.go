package natives_test

import (
	"testing"

	"github.com/mna/ember/lang/heap"
	"github.com/mna/ember/lang/natives"
	"github.com/mna/ember/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callGlobal(t *testing.T, h *heap.Heap, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	v, ok := h.Globals.Get(name)
	require.True(t, ok, "native %q not installed", name)
	n, ok := v.AsObject().(*value.Native)
	require.True(t, ok)
	return n.Fn(args)
}

func TestClockReturnsIncreasingNumbers(t *testing.T) {
	h := heap.New(heap.Options{})
	natives.Install(h)

	a, err := callGlobal(t, h, "clock")
	require.NoError(t, err)
	b, err := callGlobal(t, h, "clock")
	require.NoError(t, err)
	assert.True(t, a.IsNumber())
	assert.GreaterOrEqual(t, b.AsNumber(), a.AsNumber())
}

func TestFieldReflection(t *testing.T) {
	h := heap.New(heap.Options{})
	natives.Install(h)

	class := h.NewClass("Point")
	inst := h.NewInstance(class)
	name := h.NewString("x")

	has, err := callGlobal(t, h, "hasField", value.Object(inst), value.Object(name))
	require.NoError(t, err)
	assert.False(t, has.AsBool())

	_, err = callGlobal(t, h, "setField", value.Object(inst), value.Object(name), value.Number(3))
	require.NoError(t, err)

	has, err = callGlobal(t, h, "hasField", value.Object(inst), value.Object(name))
	require.NoError(t, err)
	assert.True(t, has.AsBool())

	got, err := callGlobal(t, h, "getField", value.Object(inst), value.Object(name))
	require.NoError(t, err)
	assert.Equal(t, float64(3), got.AsNumber())

	_, err = callGlobal(t, h, "deleteField", value.Object(inst), value.Object(name))
	require.NoError(t, err)
	has, err = callGlobal(t, h, "hasField", value.Object(inst), value.Object(name))
	require.NoError(t, err)
	assert.False(t, has.AsBool())
}

func TestErrorNative(t *testing.T) {
	h := heap.New(heap.Options{})
	natives.Install(h)

	_, err := callGlobal(t, h, "error", value.Object(h.NewString("boom")))
	assert.EqualError(t, err, "Error: boom")

	_, err = callGlobal(t, h, "error", value.Number(1))
	assert.EqualError(t, err, "Error!")
}

func TestFieldReflectionRejectsWrongTypes(t *testing.T) {
	h := heap.New(heap.Options{})
	natives.Install(h)

	_, err := callGlobal(t, h, "hasField", value.Number(1), value.Number(2))
	assert.Error(t, err)
}
