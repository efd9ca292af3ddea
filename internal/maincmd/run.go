package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/ember/internal/config"
	"github.com/mna/ember/lang/heap"
	"github.com/mna/ember/lang/natives"
	"github.com/mna/ember/lang/vm"
	"github.com/mna/mainer"
	"github.com/sirupsen/logrus"
)

// newInterpreter wires a fresh heap, logger and VM together from
// internal/config's environment-driven settings and installs the native
// function library, the way vm_init wires clock/error/hasField/... before
// a C lox process runs anything.
func newInterpreter(stdio mainer.Stdio) (*vm.VM, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(stdio.Stderr)
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	h := heap.New(heap.Options{
		InitialThreshold: cfg.GCInitialThreshold,
		GrowthFactor:     cfg.GCGrowthFactor,
		Stress:           cfg.GCStress,
		Log:              log,
	})
	natives.Install(h)
	return vm.New(h, stdio.Stdout, log), nil
}

func (c *Cmd) runFile(_ context.Context, stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return exitIOError
	}

	interp, err := newInterpreter(stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return exitIOError
	}

	if err := interp.Interpret(string(src)); err != nil {
		return reportError(stdio, err)
	}
	return mainer.Success
}

// reportError prints a failed Interpret call's diagnostics to stderr and
// maps it to the exit code spec.md's CLI section assigns: 65 for a
// compile-time failure (a *multierror.Error of *compiler.CompileErrors),
// 70 for anything surfaced as a *vm.RuntimeError.
func reportError(stdio mainer.Stdio, err error) mainer.ExitCode {
	fmt.Fprintln(stdio.Stderr, err)
	if _, ok := err.(*vm.RuntimeError); ok {
		return exitRuntime
	}
	return exitCompile
}
