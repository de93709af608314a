package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return ExitCodeSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			if ee.err != nil {
				fmt.Fprintf(stderr, FmtErrorWithCause, ee.msg, ee.err)
			} else {
				fmt.Fprintf(stderr, FmtError, ee.msg)
			}
		}
		return ee.code
	}

	// cobra reports unknown commands and bad arguments without a code
	fmt.Fprintf(stderr, FmtError, err)
	return ExitCodeUsageError
}

// exitError carries the process exit code out of a command
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(msg string, err error) error {
	return &exitError{code: ExitCodeUsageError, msg: msg, err: err}
}

func inputError(msg string, err error) error {
	return &exitError{code: ExitCodeInputError, msg: msg, err: err}
}

func failure(msg string, err error) error {
	return &exitError{code: ExitCodeError, msg: msg, err: err}
}
