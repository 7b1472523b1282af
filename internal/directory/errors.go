package directory

import (
	"errors"
	"fmt"

	"talent-pipeline/internal/membership"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateTenant    = errors.New("a tenant with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrConflictDetected   = errors.New("assignment would drop existing talent pool memberships")
	ErrReadOnlyTenant     = errors.New("the demo tenant is read-only")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError lists the subscribers a replace would strip of memberships.
// It matches ErrConflictDetected.
type ConflictError struct {
	Conflicts []membership.Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d subscriber(s) would lose existing talent pool memberships", len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error { return ErrConflictDetected }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
