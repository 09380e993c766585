package runner

import (
	"fmt"
	"strings"
)

// LaunchError is returned when the external process could not be started.
type LaunchError struct {
	Cmd   string
	Cause error
}

func (e *LaunchError) Error() string {
	if e.Cause == nil {
		return "failed to start " + e.Cmd
	}
	return strings.TrimSpace(e.Cause.Error())
}

func (e *LaunchError) Unwrap() error { return e.Cause }

// ProcessError is returned when the process ran but exited with a nonzero status.
type ProcessError struct {
	Cmd      string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Cause != nil {
		return strings.TrimSpace(e.Cause.Error())
	}
	return fmt.Sprintf("exit status %d", e.ExitCode)
}

func (e *ProcessError) Unwrap() error { return e.Cause }
