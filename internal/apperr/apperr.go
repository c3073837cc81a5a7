// Package apperr defines the error kinds returned by the domain services.
// Each typed error unwraps to a sentinel so callers can branch with errors.Is
// and still read the context with errors.As.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for a ValidationError.
func Invalid(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports an operation that is not legal in the entity's current status.
type InvalidStateError struct {
	Entity  string
	ID      string
	Op      string
	Status  string
	Allowed []string
	Reason  string
}

func (e *InvalidStateError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "cannot %s %s %s", e.Op, e.Entity, e.ID)

	if e.Status != "" {
		fmt.Fprintf(&sb, " in status %q", e.Status)
	}

	if len(e.Allowed) > 0 {
		fmt.Fprintf(&sb, " (allowed: %s)", strings.Join(e.Allowed, ", "))
	}

	if e.Reason != "" {
		fmt.Fprintf(&sb, ": %s", e.Reason)
	}

	return sb.String()
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NotFoundError reports a referenced entity that does not exist or is not visible to the actor.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AuthorizationError reports an actor lacking the role or ownership for an action.
type AuthorizationError struct {
	Op     string
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("not allowed to %s", e.Op)
	}

	return fmt.Sprintf("not allowed to %s: %s", e.Op, e.Reason)
}

func (e *AuthorizationError) Unwrap() error { return ErrUnauthorized }

// Forbidden is shorthand for an AuthorizationError.
func Forbidden(op, reason string) *AuthorizationError {
	return &AuthorizationError{Op: op, Reason: reason}
}
