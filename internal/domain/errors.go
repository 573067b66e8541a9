package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. malformed phone, rating out of range).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would violate a uniqueness or state
// rule: a second booking for the same route and passenger, a duplicate
// phone or plate, or an illegal status transition.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the acting user lacks the role or ownership
// required for an operation. It is never folded into ErrValidation.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized is returned when credentials are missing or wrong.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// FieldError is a validation failure tied to a single input field.
// errors.Is(err, ErrValidation) reports true for any *FieldError.
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError builds a *FieldError for field with a formatted message.
func NewFieldError(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

// Is makes FieldError match the ErrValidation sentinel.
func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}
