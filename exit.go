package main

import "errors"

const (
	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
	exitFetch  = 3
	exitOutput = 4
)

// exitError carries the process exit code for a failed run.
type exitError struct {
	code int
	err  error
}

func newExitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitConfig
}
