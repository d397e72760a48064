package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrValidation is the sentinel every model validation failure unwraps to.
var ErrValidation = errors.New("validation failed")

// ValidationError names the offending field and a user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
