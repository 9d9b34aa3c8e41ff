package assembler

import (
	"errors"
	"fmt"

	"goa.design/agui/protocol"
)

// Sentinels categorizing protocol violations. Match with errors.Is.
var (
	ErrDuplicateSpan = errors.New("span already open")
	ErrUnknownSpan   = errors.New("no open span")
	ErrOutOfSequence = errors.New("event out of sequence")
	ErrPatchRejected = errors.New("state delta rejected")
)

// ProtocolError reports an event that violated the stream's sequencing
// rules or carried a patch the tracked tree rejected. The assembler's
// derived state is never corrupted by the triggering event; callers may
// keep feeding subsequent events.
type ProtocolError struct {
	// Event is the wire tag of the offending event.
	Event protocol.EventType
	// SpanID identifies the span involved, when the violation concerns
	// one.
	SpanID string

	kind  error
	cause error
}

func duplicateSpan(event protocol.EventType, id string) *ProtocolError {
	return &ProtocolError{Event: event, SpanID: id, kind: ErrDuplicateSpan}
}

func unknownSpan(event protocol.EventType, id string) *ProtocolError {
	return &ProtocolError{Event: event, SpanID: id, kind: ErrUnknownSpan}
}

func outOfSequence(event protocol.EventType) *ProtocolError {
	return &ProtocolError{Event: event, kind: ErrOutOfSequence}
}

func patchRejected(cause error) *ProtocolError {
	return &ProtocolError{Event: protocol.EventStateDelta, kind: ErrPatchRejected, cause: cause}
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	switch {
	case e.cause != nil:
		return fmt.Sprintf("%s: %v: %v", e.Event, e.kind, e.cause)
	case e.SpanID != "":
		return fmt.Sprintf("%s: %v: %q", e.Event, e.kind, e.SpanID)
	}
	return fmt.Sprintf("%s: %v", e.Event, e.kind)
}

// Unwrap exposes the category sentinel and, for rejected deltas, the
// underlying patch error so errors.Is and errors.As see both.
func (e *ProtocolError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}
