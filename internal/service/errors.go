package service

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the actor lacks capability over the
// record. Handlers must not leak whether the record exists.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a generated storage identifier collides
// with an existing one. Callers retry with a fresh identifier.
var ErrConflict = errors.New("storage identifier conflict")

// ValidationError rejects a submission before persistence and names the
// offending field so forms can mark it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
