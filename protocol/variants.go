package protocol

import (
	"goa.design/agui/state"
)

type (
	// RunStartedEvent opens a run. Exactly one run is live per
	// connection; a second RunStartedEvent is only legal after the
	// previous run finished or errored.
	RunStartedEvent struct {
		Base
		ThreadID string `json:"threadId"`
		RunID    string `json:"runId"`
	}

	// RunFinishedEvent closes a run successfully.
	RunFinishedEvent struct {
		Base
		ThreadID string `json:"threadId"`
		RunID    string `json:"runId"`
	}

	// RunErrorEvent closes a run with a failure. Message is the
	// human-readable description; Code is a stable machine tag.
	RunErrorEvent struct {
		Base
		Message string `json:"message"`
		Code    string `json:"code"`
	}

	// StepStartedEvent marks the beginning of a named processing step.
	StepStartedEvent struct {
		Base
		StepName string `json:"stepName"`
	}

	// StepFinishedEvent marks the completion of a named processing step.
	StepFinishedEvent struct {
		Base
		StepName string `json:"stepName"`
	}

	// TextMessageStartEvent opens a streaming assistant (or other role)
	// message span identified by MessageID.
	TextMessageStartEvent struct {
		Base
		MessageID string `json:"messageId"`
		Role      Role   `json:"role"`
	}

	// TextMessageContentEvent appends a text fragment to an open message
	// span. Delta is never empty.
	TextMessageContentEvent struct {
		Base
		MessageID string `json:"messageId"`
		Delta     string `json:"delta"`
	}

	// TextMessageEndEvent seals a message span. Consumers receive the
	// concatenation of all deltas observed since the matching start.
	TextMessageEndEvent struct {
		Base
		MessageID string `json:"messageId"`
	}

	// ThinkingStartEvent opens a reasoning phase. At most one thinking
	// phase is open at a time.
	ThinkingStartEvent struct {
		Base
		Title string `json:"title,omitempty"`
	}

	// ThinkingEndEvent closes the reasoning phase.
	ThinkingEndEvent struct {
		Base
	}

	// ThinkingTextMessageStartEvent opens the single streamed thinking
	// text span inside a reasoning phase.
	ThinkingTextMessageStartEvent struct {
		Base
	}

	// ThinkingTextMessageContentEvent appends a fragment to the open
	// thinking span.
	ThinkingTextMessageContentEvent struct {
		Base
		Delta string `json:"delta"`
	}

	// ThinkingTextMessageEndEvent seals the thinking span.
	ThinkingTextMessageEndEvent struct {
		Base
	}

	// ToolCallStartEvent opens a streaming tool-call span. The optional
	// ParentMessageID links the call to the assistant message that
	// requested it.
	ToolCallStartEvent struct {
		Base
		ToolCallID      string `json:"toolCallId"`
		ToolCallName    string `json:"toolCallName"`
		ParentMessageID string `json:"parentMessageId,omitempty"`
	}

	// ToolCallArgsEvent appends a raw argument-text fragment to an open
	// tool-call span. Fragments are not guaranteed to be valid JSON on
	// their own; only the sealed concatenation is.
	ToolCallArgsEvent struct {
		Base
		ToolCallID string `json:"toolCallId"`
		Delta      string `json:"delta"`
	}

	// ToolCallEndEvent seals a tool-call span.
	ToolCallEndEvent struct {
		Base
		ToolCallID string `json:"toolCallId"`
	}

	// StateSnapshotEvent replaces the tracked state tree wholesale.
	StateSnapshotEvent struct {
		Base
		Snapshot *state.Value `json:"snapshot"`
	}

	// StateDeltaEvent mutates the tracked state tree with an ordered
	// patch batch. The batch applies atomically: a failing operation
	// leaves the tracked tree as it was.
	StateDeltaEvent struct {
		Base
		Delta state.Batch `json:"delta"`
	}

	// MessagesSnapshotEvent carries the full conversation history.
	MessagesSnapshotEvent struct {
		Base
		Messages []Message `json:"messages"`
	}

	// RawEvent passes through an event from an external system
	// unmodified. Source attributes the origin.
	RawEvent struct {
		Base
		Source string       `json:"source"`
		Event  *state.Value `json:"event"`
	}

	// CustomEvent carries an application-defined payload.
	CustomEvent struct {
		Base
		Name  string       `json:"name"`
		Value *state.Value `json:"value"`
	}
)

// Validate implements Event.
func (e *RunStartedEvent) Validate() error {
	if e.ThreadID == "" {
		return missingField(e.Type, "threadId")
	}
	if e.RunID == "" {
		return missingField(e.Type, "runId")
	}
	return nil
}

// Validate implements Event.
func (e *RunFinishedEvent) Validate() error {
	if e.ThreadID == "" {
		return missingField(e.Type, "threadId")
	}
	if e.RunID == "" {
		return missingField(e.Type, "runId")
	}
	return nil
}

// Validate implements Event.
func (e *RunErrorEvent) Validate() error {
	if e.Message == "" {
		return missingField(e.Type, "message")
	}
	if e.Code == "" {
		return missingField(e.Type, "code")
	}
	return nil
}

// Validate implements Event.
func (e *StepStartedEvent) Validate() error {
	if e.StepName == "" {
		return missingField(e.Type, "stepName")
	}
	return nil
}

// Validate implements Event.
func (e *StepFinishedEvent) Validate() error {
	if e.StepName == "" {
		return missingField(e.Type, "stepName")
	}
	return nil
}

// Validate implements Event.
func (e *TextMessageStartEvent) Validate() error {
	if e.MessageID == "" {
		return missingField(e.Type, "messageId")
	}
	if e.Role == "" {
		return missingField(e.Type, "role")
	}
	return nil
}

// Validate implements Event.
func (e *TextMessageContentEvent) Validate() error {
	if e.MessageID == "" {
		return missingField(e.Type, "messageId")
	}
	if e.Delta == "" {
		return missingField(e.Type, "delta")
	}
	return nil
}

// Validate implements Event.
func (e *TextMessageEndEvent) Validate() error {
	if e.MessageID == "" {
		return missingField(e.Type, "messageId")
	}
	return nil
}

// Validate implements Event.
func (e *ThinkingStartEvent) Validate() error { return nil }

// Validate implements Event.
func (e *ThinkingEndEvent) Validate() error { return nil }

// Validate implements Event.
func (e *ThinkingTextMessageStartEvent) Validate() error { return nil }

// Validate implements Event.
func (e *ThinkingTextMessageContentEvent) Validate() error {
	if e.Delta == "" {
		return missingField(e.Type, "delta")
	}
	return nil
}

// Validate implements Event.
func (e *ThinkingTextMessageEndEvent) Validate() error { return nil }

// Validate implements Event.
func (e *ToolCallStartEvent) Validate() error {
	if e.ToolCallID == "" {
		return missingField(e.Type, "toolCallId")
	}
	if e.ToolCallName == "" {
		return missingField(e.Type, "toolCallName")
	}
	return nil
}

// Validate implements Event.
func (e *ToolCallArgsEvent) Validate() error {
	if e.ToolCallID == "" {
		return missingField(e.Type, "toolCallId")
	}
	if e.Delta == "" {
		return missingField(e.Type, "delta")
	}
	return nil
}

// Validate implements Event.
func (e *ToolCallEndEvent) Validate() error {
	if e.ToolCallID == "" {
		return missingField(e.Type, "toolCallId")
	}
	return nil
}

// Validate implements Event.
func (e *StateSnapshotEvent) Validate() error {
	if e.Snapshot == nil {
		return missingField(e.Type, "snapshot")
	}
	return nil
}

// Validate implements Event.
func (e *StateDeltaEvent) Validate() error {
	if e.Delta == nil {
		return missingField(e.Type, "delta")
	}
	return nil
}

// Validate implements Event.
func (e *MessagesSnapshotEvent) Validate() error {
	if e.Messages == nil {
		return missingField(e.Type, "messages")
	}
	return nil
}

// Validate implements Event.
func (e *RawEvent) Validate() error {
	if e.Source == "" {
		return missingField(e.Type, "source")
	}
	if e.Event == nil {
		return missingField(e.Type, "event")
	}
	return nil
}

// Validate implements Event.
func (e *CustomEvent) Validate() error {
	if e.Name == "" {
		return missingField(e.Type, "name")
	}
	if e.Value == nil {
		return missingField(e.Type, "value")
	}
	return nil
}
