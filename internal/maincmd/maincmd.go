// Package maincmd implements the ember command line: argument parsing,
// usage/version output, and dispatch to either the REPL or a one-shot file
// run. Grounded on the teacher's internal/maincmd package — the same
// Cmd{SetArgs,SetFlags,Validate,Main} shape driven by mna/mainer's flag
// parser, signal-cancellable context and Stdio abstraction — generalized
// from the teacher's multi-subcommand dispatch (parse/resolve/tokenize,
// routed through reflection in buildCmds) to spec.md §6's simpler
// zero-or-one-path-argument CLI, which has no subcommand concept to route.
package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "ember"

var (
	shortUsage = fmt.Sprintf("usage: %s [<option>...] [<path>]\nRun '%[1]s --help' for details.\n", binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter for the %[1]s scripting language.

With no <path>, %[1]s starts an interactive REPL that reads one line at a
time and interprets it, until end of input.
With a <path>, %[1]s reads and interprets that file.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Exit codes follow the sysexits.h convention spec.md's CLI section
// specifies, beyond what mainer.Success/Failure/InvalidArgs itself names;
// mainer.ExitCode is a plain defined int type so these convert cleanly.
const (
	exitUsage   mainer.ExitCode = 64
	exitCompile mainer.ExitCode = 65
	exitRuntime mainer.ExitCode = 70
	exitIOError mainer.ExitCode = 74
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("%s: at most one file path may be given", binName)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "usage: %s\n%s", err, shortUsage)
		return exitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if len(c.args) == 1 {
		return c.runFile(ctx, stdio, c.args[0])
	}
	return c.repl(ctx, stdio)
}
