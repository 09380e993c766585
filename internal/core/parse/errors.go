package parse

import (
	"errors"
	"fmt"
)

// ErrNoise marks a line too short to carry a result. Callers drop it silently.
var ErrNoise = errors.New("line too short")

// ParseError is returned when a line cannot be split into its fields.
type ParseError struct {
	Line   string
	Reason string
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// OpenError is returned when the file named by a result line cannot be read.
type OpenError struct {
	Path  string
	Cause error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Cause)
}

func (e *OpenError) Unwrap() error { return e.Cause }
