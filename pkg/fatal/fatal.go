// Package fatal provides errors that carry a process exit status.
package fatal

import (
	"errors"
	"fmt"
)

type fatalError struct {
	code int
	error
}

func (f fatalError) ExitStatus() int {
	return f.code
}

func (f fatalError) Unwrap() error {
	return f.error
}

// ExitStatuser is an interface for errors that carry an exit status code.
type ExitStatuser interface {
	ExitStatus() int
}

// New returns an error that makes stitch print the given args and exit
// with code.
func New(code int, args ...any) error {
	return fatalError{
		code:  code,
		error: errors.New(fmt.Sprint(args...)),
	}
}

// Newf returns an error that makes stitch print the formatted message and
// exit with code. A %w verb wraps as with fmt.Errorf.
func Newf(code int, format string, args ...any) error {
	return fatalError{
		code:  code,
		error: fmt.Errorf(format, args...),
	}
}

// ExitStatus queries the error for an exit status. It returns 0 for a nil
// error and 1 for an error that carries no status.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exit ExitStatuser
	if errors.As(err, &exit) {
		return exit.ExitStatus()
	}
	return 1
}
