package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAuthRequired is returned when a mutation is attempted without an identified user.
	ErrAuthRequired = errors.New("authentication required")
	// ErrForbidden is returned when the caller lacks the capability for an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrStoreRead wraps failures reading from the backing store.
	ErrStoreRead = errors.New("store read failed")
	// ErrStoreWrite wraps failures writing to the backing store.
	ErrStoreWrite = errors.New("store write failed")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
