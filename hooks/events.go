package hooks

import (
	"goa.design/agui/protocol"
	"goa.design/agui/state"
)

// EventType discriminates notification kinds so subscribers can route
// without type assertions.
type EventType string

const (
	RunLifecycle      EventType = "run_lifecycle"
	StepChanged       EventType = "step_changed"
	MessageAssembled  EventType = "message_assembled"
	ThinkingAssembled EventType = "thinking_assembled"
	ToolCallAssembled EventType = "tool_call_assembled"
	StateChanged      EventType = "state_changed"
	Passthrough       EventType = "passthrough"
)

type (
	// Event is implemented by every notification published on the Bus.
	// Subscribers type-switch on the concrete types for the payloads.
	Event interface {
		// Type returns the notification kind.
		Type() EventType
		// ThreadID identifies the conversation thread of the run that
		// produced the notification.
		ThreadID() string
		// RunID identifies the run that produced the notification.
		RunID() string
		// OccurredAt is milliseconds since the Unix epoch at creation.
		OccurredAt() int64
	}

	baseEvent struct {
		typ      EventType
		threadID string
		runID    string
		at       int64
	}

	// RunLifecycleEvent fires when a run starts, finishes or errors.
	RunLifecycleEvent struct {
		baseEvent
		// Phase is "started", "finished" or "errored".
		Phase string
		// Message and Code carry the failure details when Phase is
		// "errored"; both are empty otherwise.
		Message string
		Code    string
	}

	// StepChangedEvent fires when a named step starts or finishes.
	StepChangedEvent struct {
		baseEvent
		StepName string
		Finished bool
	}

	// MessageAssembledEvent fires when a message span seals. Message
	// carries the concatenation of every streamed fragment. Truncated
	// is set when a terminal event forced the span closed before its
	// end marker arrived.
	MessageAssembledEvent struct {
		baseEvent
		Message   protocol.Message
		Truncated bool
	}

	// ThinkingAssembledEvent fires when a reasoning phase closes.
	ThinkingAssembledEvent struct {
		baseEvent
		Title     string
		Text      string
		Truncated bool
	}

	// ToolCallAssembledEvent fires when a tool-call span seals. The
	// call's argument text is the raw concatenation of streamed
	// fragments; it is not validated here.
	ToolCallAssembledEvent struct {
		baseEvent
		Call            protocol.ToolCall
		ParentMessageID string
		Truncated       bool
	}

	// StateChangedEvent fires after the tracked state tree changes,
	// whether by snapshot or by delta. State is a clone; subscribers
	// may retain it.
	StateChangedEvent struct {
		baseEvent
		State *state.Value
		// FromSnapshot is true when a snapshot replaced the tree
		// wholesale rather than a delta mutating it.
		FromSnapshot bool
	}

	// PassthroughEvent forwards a RAW or CUSTOM protocol event that the
	// assembler does not interpret.
	PassthroughEvent struct {
		baseEvent
		Source protocol.Event
	}
)

func newBase(typ EventType, threadID, runID string) baseEvent {
	return baseEvent{typ: typ, threadID: threadID, runID: runID, at: protocol.Now()}
}

// NewRunLifecycle builds a run lifecycle notification. Message and code
// are only meaningful when phase is "errored".
func NewRunLifecycle(threadID, runID, phase, message, code string) *RunLifecycleEvent {
	return &RunLifecycleEvent{baseEvent: newBase(RunLifecycle, threadID, runID), Phase: phase, Message: message, Code: code}
}

// NewStepChanged builds a step transition notification.
func NewStepChanged(threadID, runID, stepName string, finished bool) *StepChangedEvent {
	return &StepChangedEvent{baseEvent: newBase(StepChanged, threadID, runID), StepName: stepName, Finished: finished}
}

// NewMessageAssembled builds a sealed-message notification.
func NewMessageAssembled(threadID, runID string, msg protocol.Message, truncated bool) *MessageAssembledEvent {
	return &MessageAssembledEvent{baseEvent: newBase(MessageAssembled, threadID, runID), Message: msg, Truncated: truncated}
}

// NewThinkingAssembled builds a closed-reasoning notification.
func NewThinkingAssembled(threadID, runID, title, text string, truncated bool) *ThinkingAssembledEvent {
	return &ThinkingAssembledEvent{baseEvent: newBase(ThinkingAssembled, threadID, runID), Title: title, Text: text, Truncated: truncated}
}

// NewToolCallAssembled builds a sealed tool-call notification.
func NewToolCallAssembled(threadID, runID string, call protocol.ToolCall, parentMessageID string, truncated bool) *ToolCallAssembledEvent {
	return &ToolCallAssembledEvent{baseEvent: newBase(ToolCallAssembled, threadID, runID), Call: call, ParentMessageID: parentMessageID, Truncated: truncated}
}

// NewStateChanged builds a state change notification. The tree must
// already be a clone owned by the notification.
func NewStateChanged(threadID, runID string, tree *state.Value, fromSnapshot bool) *StateChangedEvent {
	return &StateChangedEvent{baseEvent: newBase(StateChanged, threadID, runID), State: tree, FromSnapshot: fromSnapshot}
}

// NewPassthrough forwards an uninterpreted protocol event.
func NewPassthrough(threadID, runID string, source protocol.Event) *PassthroughEvent {
	return &PassthroughEvent{baseEvent: newBase(Passthrough, threadID, runID), Source: source}
}

// Type returns the notification kind.
func (b baseEvent) Type() EventType { return b.typ }

// ThreadID returns the conversation thread identifier.
func (b baseEvent) ThreadID() string { return b.threadID }

// RunID returns the run identifier.
func (b baseEvent) RunID() string { return b.runID }

// OccurredAt returns the creation timestamp in Unix milliseconds.
func (b baseEvent) OccurredAt() int64 { return b.at }
