package encoding

import (
	"errors"
	"fmt"
)

// Sentinels categorizing decode failures. Match with errors.Is.
var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMissingField     = errors.New("missing required field")
	ErrMalformedJSON    = errors.New("malformed json")
)

// DecodeError reports a frame that could not be decoded into an event.
// The reader loop drops the frame and continues; a DecodeError never
// terminates the connection by itself.
type DecodeError struct {
	// EventType is the offending tag, when one was readable.
	EventType string
	// Field names the missing required field for ErrMissingField.
	Field string

	kind  error
	cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("decode %s: %v: %s", e.EventType, e.kind, e.Field)
	case e.EventType != "":
		return fmt.Sprintf("decode: %v: %q", e.kind, e.EventType)
	case e.cause != nil:
		return fmt.Sprintf("decode: %v: %v", e.kind, e.cause)
	}
	return fmt.Sprintf("decode: %v", e.kind)
}

// Unwrap exposes the category sentinel for errors.Is.
func (e *DecodeError) Unwrap() error { return e.kind }
