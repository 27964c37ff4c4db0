/*
errors.go - Centralized error types for the roster store

PURPOSE:
  Sentinel errors shared by every Store implementation plus helper
  predicates for the API layer. Implementations wrap these with context;
  callers test with errors.Is().
*/
package roster

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateExternalID is returned when adding a person whose
	// natural key already exists on the roster.
	ErrDuplicateExternalID = errors.New("duplicate external id")

	// ErrTypeNotFound is returned when a qualification references an
	// unknown type definition.
	ErrTypeNotFound = errors.New("qualification type not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NotFoundError carries the entity kind and id that was missed.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTypeNotFound)
}

// IsClientError reports whether err is due to invalid caller input rather
// than a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateExternalID) || IsNotFound(err)
}
