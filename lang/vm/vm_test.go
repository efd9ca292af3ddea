package vm_test

import (
	"bytes"
	"testing"

	"github.com/mna/ember/lang/heap"
	"github.com/mna/ember/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	h := heap.New(heap.Options{})
	m := vm.New(h, &out, nil)
	err := m.Interpret(src)
	require.NoError(t, err)
	return out.String()
}

func TestArithmeticAndPrecedence(t *testing.T) {
	out := run(t, `print 1 + 2 * 3;`)
	assert.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out := run(t, `print "foo" + "bar";`)
	assert.Equal(t, "\"foobar\"\n", out)
}

func TestGlobalsAndLocals(t *testing.T) {
	out := run(t, `
		var a = 10;
		{
			var b = 5;
			print a - b;
		}
		print a;
	`)
	assert.Equal(t, "5\n10\n", out)
}

func TestControlFlow(t *testing.T) {
	out := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;
		if (sum == 10) { print "yes"; } else { print "no"; }
	`)
	assert.Equal(t, "10\n\"yes\"\n", out)
}

func TestClosuresCaptureByReference(t *testing.T) {
	out := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				print count;
			}
			return increment;
		}
		var counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestClassesMethodsAndThis(t *testing.T) {
	out := run(t, `
		class Counter {
			init(start) {
				this.value = start;
			}
			increment() {
				this.value = this.value + 1;
				return this.value;
			}
		}
		var c = Counter(10);
		print c.increment();
		print c.increment();
	`)
	assert.Equal(t, "11\n12\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out := run(t, `
		class Animal {
			speak() {
				print "...";
			}
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "Woof";
			}
		}
		Dog().speak();
	`)
	assert.Equal(t, "\"...\"\n\"Woof\"\n", out)
}

func TestRuntimeErrorUndefinedVariable(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(heap.Options{})
	m := vm.New(h, &out, nil)
	err := m.Interpret(`print nope;`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Contains(t, rerr.Message, "Undefined variable 'nope'.")
}

func TestRuntimeErrorTypeMismatch(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(heap.Options{})
	m := vm.New(h, &out, nil)
	err := m.Interpret(`print 1 + "a";`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Contains(t, rerr.Message, "Operands must be two numbers or two strings.")
}

func TestRuntimeErrorWrongArity(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(heap.Options{})
	m := vm.New(h, &out, nil)
	err := m.Interpret(`
		fun f(a, b) { return a + b; }
		f(1);
	`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.Contains(t, rerr.Message, "Expected 2 arguments but got 1.")
}

func TestGCReclaimsUnreachableInstances(t *testing.T) {
	var out bytes.Buffer
	h := heap.New(heap.Options{Stress: true})
	m := vm.New(h, &out, nil)
	err := m.Interpret(`
		class Box {
			init(v) { this.v = v; }
		}
		for (var i = 0; i < 50; i = i + 1) {
			var b = Box(i);
		}
		print "done";
	`)
	require.NoError(t, err)
	assert.Equal(t, "\"done\"\n", out.String())
}
