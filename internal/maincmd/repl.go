package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// repl reads one line at a time, interpreting each independently against a
// single long-lived VM so top-level variables and functions persist across
// lines the way clox's repl() does. A failing line prints its diagnostic
// and the loop continues; only end of input ends the session, with success.
func (c *Cmd) repl(ctx context.Context, stdio mainer.Stdio) mainer.ExitCode {
	interp, err := newInterpreter(stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return exitIOError
	}

	in := bufio.NewScanner(stdio.Stdin)
	for {
		select {
		case <-ctx.Done():
			return mainer.Success
		default:
		}

		fmt.Fprint(stdio.Stdout, "> ")
		if !in.Scan() {
			return mainer.Success
		}
		line := in.Text()
		if line == "" {
			continue
		}
		if err := interp.Interpret(line); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}
}
