// Package cli is the todo command tree: the interactive list by default,
// plus one-shot commands for scripts and a reference server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/idilsaglam/todosync/internal/app"
	"github.com/idilsaglam/todosync/internal/guard"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1 // transport or system failure
	exitUsage = 2 // bad arguments or a rejected title
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// Streams are the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// codedError carries an exit code. Quiet errors were already reported.
type codedError struct {
	code  int
	err   error
	quiet bool
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func usageError(err error) error { return &codedError{code: exitUsage, err: err} }

// reported marks err as already shown to the user.
func reported(err error) error { return &codedError{code: ExitCode(err), err: err, quiet: true} }

// ExitCode maps an error from a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	var ve *guard.ValidationError
	if errors.As(err, &ve) {
		return exitUsage
	}
	if errors.Is(err, app.ErrDeclined) {
		return exitOK
	}
	return exitError
}

// Execute runs the command line args and returns the exit code.
func Execute(ctx context.Context, args []string, s Streams) int {
	root, ss := newRoot(s)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := ss.close(); err == nil {
		err = cerr
	}
	if err == nil {
		return exitOK
	}
	var ce *codedError
	if !errors.As(err, &ce) || !ce.quiet {
		fmt.Fprintln(s.Err, "✖ "+err.Error())
	}
	return ExitCode(err)
}
