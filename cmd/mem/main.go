// Command mem is a per-project memory for coding agents: notes, puzzles
// with blocking relationships, and feedback, stored as markdown files
// under .mem/ in the project root.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/mem/pkg/memory"
	"github.com/entrhq/mem/pkg/present"
)

const (
	exitOK        = 0
	exitError     = 1
	exitInvalidID = 2
	exitNotFound  = 3
	exitWrongType = 4
	exitHardLimit = 5
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stdinTTY := present.IsTerminal(os.Stdin)
	styled := present.IsTerminal(os.Stdout)
	os.Exit(run(ctx, os.Args[1:], os.Stdin, stdinTTY, os.Stdout, styled, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdinTTY bool, stdout io.Writer, styled bool, stderr io.Writer) int {
	a := &app{stdin: stdin, stdinTTY: stdinTTY, out: stdout, styled: styled}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, memory.ErrInvalidID):
		return exitInvalidID
	case errors.Is(err, memory.ErrNotFound):
		return exitNotFound
	case errors.Is(err, memory.ErrWrongType):
		return exitWrongType
	case errors.Is(err, memory.ErrHardLimitExceeded):
		return exitHardLimit
	default:
		return exitError
	}
}
