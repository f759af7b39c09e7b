// Package common defines the error taxonomy shared by the statement, table
// and relation packages. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Caller errors, never worth retrying.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")

	// Repository-level errors.
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrMultipleResults = errors.New("multiple results")

	// ErrExecution wraps failures reported by the database driver.
	ErrExecution = errors.New("execution failed")
)

// ValidationError lists the rules a record broke before it was written.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Violations, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
