package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain error taxonomy. Handlers map these to HTTP
// status codes; the import pipeline maps them to per-row or job-level
// outcomes.
var (
	ErrValidation    = errors.New("validation error")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrTerminalState = errors.New("job is in a terminal state")
)

// ValidationError wraps a per-field validation failure
func ValidationError(field, message string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, message)
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
