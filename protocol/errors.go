package protocol

import (
	"errors"
	"fmt"
)

// ErrMissingField categorizes validation failures caused by an absent or
// empty required field. Match with errors.Is; use errors.As with
// *ValidationError for the offending event type and field name.
var ErrMissingField = errors.New("missing required field")

// ValidationError reports a required field that is absent or empty on an
// event.
type ValidationError struct {
	Event EventType
	Field string
}

func missingField(event EventType, field string) *ValidationError {
	return &ValidationError{Event: event, Field: field}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Event, ErrMissingField, e.Field)
}

// Unwrap exposes ErrMissingField for errors.Is.
func (e *ValidationError) Unwrap() error { return ErrMissingField }
