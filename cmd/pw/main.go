package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
)

// version is replaced at build time with -ldflags "-X main.version=...".
var version = "dev"

// editing is set while an external editor owns the terminal; the editor
// handles Ctrl-C itself.
var editing atomic.Bool

// Exit codes
const (
	ExitOK     = 0
	ExitError  = 1
	ExitStrict = 2
)

func main() {
	// Ctrl-C while searching or prompting: leave the prompt line clean
	// and exit without a message.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		for range sigChan {
			if editing.Load() {
				continue
			}
			fmt.Fprintln(os.Stdout)
			os.Exit(ExitError)
		}
	}()

	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the root command and maps its error to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(stderr, "error: %v\n", err)

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return ExitError
}

// exitError represents a command exit with a specific code
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) ExitCode() int {
	return e.code
}

func (e *exitError) Unwrap() error {
	return e.err
}
