package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation names an id absent from the
// store. Callers treat it as a no-op failure, never a crash.
var ErrNotFound = errors.New("not found")

// ValidationError rejects malformed input before any state mutates.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}
