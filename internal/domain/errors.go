package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a code has no resolvable record
	ErrNotFound = errors.New("short url not found")

	// ErrExpired is returned when a record exists but its expiry has passed.
	// It matches ErrNotFound under errors.Is.
	ErrExpired = fmt.Errorf("%w: link expired", ErrNotFound)

	// ErrAliasConflict is returned when a custom alias is already owned by a record
	ErrAliasConflict = errors.New("custom alias already taken")

	// ErrCodeConflict is returned when a concurrent create claimed the same generated code
	ErrCodeConflict = errors.New("short code already taken")

	// ErrGenerationExhausted is returned when every generated candidate collided
	ErrGenerationExhausted = errors.New("short code generation exhausted")

	// ErrStoreUnavailable wraps failures of the durable store
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// ValidationError reports a malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
