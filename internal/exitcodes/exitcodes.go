// Package exitcodes defines standard exit codes for scripted runs so that
// wrappers and schedulers can distinguish failure classes.
package exitcodes

import (
	"errors"
	"os"
	"strings"
)

const (
	// Success - conversion completed without errors
	Success = 0

	// ConfigError - job file / settings parsing errors (non-recoverable, don't retry)
	ConfigError = 1

	// EnvironmentError - no usable driver, unreachable server, rejected login (recoverable)
	EnvironmentError = 2

	// InputError - unreadable or corrupt DBF file, unmapped field type (non-recoverable)
	InputError = 3

	// LoadError - batch insert failure or connectivity drop mid-run (recoverable)
	LoadError = 4

	// Cancelled - user cancelled via SIGINT/SIGTERM (recoverable)
	Cancelled = 5
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// FromError determines the appropriate exit code for an error.
// It examines error messages and types to classify the error.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// File system errors on the source side classify as input errors.
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return InputError
	}

	errStr := strings.ToLower(err.Error())

	if containsAny(errStr, []string{
		"cancel",
		"interrupt",
		"context canceled",
		"context deadline",
	}) {
		return Cancelled
	}

	if containsAny(errStr, []string{
		"yaml:",
		"json:",
		"unmarshal",
		"invalid configuration",
		"missing required",
		"parsing job",
	}) && !containsAny(errStr, []string{"connection", "connect", "dial"}) {
		return ConfigError
	}

	if containsAny(errStr, []string{
		"no compatible sql driver",
		"connection",
		"connect",
		"dial",
		"refused",
		"timeout",
		"unreachable",
		"no such host",
		"network",
		"ping",
		"login failed",
		"login error",
		"authentication",
	}) {
		return EnvironmentError
	}

	if containsAny(errStr, []string{
		"no such file",
		"file not found",
		"reading dbf",
		"opening dbf",
		"unsupported field type",
		"corrupt",
	}) {
		return InputError
	}

	if containsAny(errStr, []string{
		"bulk",
		"insert",
		"flush",
		"create table",
		"drop table",
	}) {
		return LoadError
	}

	// Unknown failures during a run default to load errors.
	return LoadError
}

// IsRecoverable returns true if the error is recoverable (safe to retry).
func IsRecoverable(code int) bool {
	switch code {
	case EnvironmentError, LoadError, Cancelled:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the exit code.
func Description(code int) string {
	switch code {
	case Success:
		return "success"
	case ConfigError:
		return "configuration error"
	case EnvironmentError:
		return "environment error (recoverable)"
	case InputError:
		return "input error"
	case LoadError:
		return "load error (recoverable)"
	case Cancelled:
		return "cancelled (recoverable)"
	default:
		return "unknown error"
	}
}

func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
