package protocol

import (
	"time"

	"goa.design/agui/state"
)

// Now returns the current time as a protocol timestamp (milliseconds
// since the Unix epoch).
func Now() int64 { return time.Now().UnixMilli() }

// NewRunStarted builds a RUN_STARTED event stamped with the current time.
func NewRunStarted(threadID, runID string) *RunStartedEvent {
	return &RunStartedEvent{Base: Base{Type: EventRunStarted, Timestamp: Now()}, ThreadID: threadID, RunID: runID}
}

// NewRunFinished builds a RUN_FINISHED event stamped with the current time.
func NewRunFinished(threadID, runID string) *RunFinishedEvent {
	return &RunFinishedEvent{Base: Base{Type: EventRunFinished, Timestamp: Now()}, ThreadID: threadID, RunID: runID}
}

// NewRunError builds a RUN_ERROR event stamped with the current time.
func NewRunError(message, code string) *RunErrorEvent {
	return &RunErrorEvent{Base: Base{Type: EventRunError, Timestamp: Now()}, Message: message, Code: code}
}

// NewStepStarted builds a STEP_STARTED event.
func NewStepStarted(name string) *StepStartedEvent {
	return &StepStartedEvent{Base: Base{Type: EventStepStarted, Timestamp: Now()}, StepName: name}
}

// NewStepFinished builds a STEP_FINISHED event.
func NewStepFinished(name string) *StepFinishedEvent {
	return &StepFinishedEvent{Base: Base{Type: EventStepFinished, Timestamp: Now()}, StepName: name}
}

// NewTextMessageStart opens a message span.
func NewTextMessageStart(messageID string, role Role) *TextMessageStartEvent {
	return &TextMessageStartEvent{Base: Base{Type: EventTextMessageStart, Timestamp: Now()}, MessageID: messageID, Role: role}
}

// NewTextMessageContent appends a fragment to a message span.
func NewTextMessageContent(messageID, delta string) *TextMessageContentEvent {
	return &TextMessageContentEvent{Base: Base{Type: EventTextMessageContent, Timestamp: Now()}, MessageID: messageID, Delta: delta}
}

// NewTextMessageEnd seals a message span.
func NewTextMessageEnd(messageID string) *TextMessageEndEvent {
	return &TextMessageEndEvent{Base: Base{Type: EventTextMessageEnd, Timestamp: Now()}, MessageID: messageID}
}

// NewToolCallStart opens a tool-call span.
func NewToolCallStart(toolCallID, toolCallName string) *ToolCallStartEvent {
	return &ToolCallStartEvent{Base: Base{Type: EventToolCallStart, Timestamp: Now()}, ToolCallID: toolCallID, ToolCallName: toolCallName}
}

// NewToolCallArgs appends an argument fragment to a tool-call span.
func NewToolCallArgs(toolCallID, delta string) *ToolCallArgsEvent {
	return &ToolCallArgsEvent{Base: Base{Type: EventToolCallArgs, Timestamp: Now()}, ToolCallID: toolCallID, Delta: delta}
}

// NewToolCallEnd seals a tool-call span.
func NewToolCallEnd(toolCallID string) *ToolCallEndEvent {
	return &ToolCallEndEvent{Base: Base{Type: EventToolCallEnd, Timestamp: Now()}, ToolCallID: toolCallID}
}

// NewThinkingStart opens the reasoning phase. An empty title is omitted
// from the wire form.
func NewThinkingStart(title string) *ThinkingStartEvent {
	return &ThinkingStartEvent{Base: Base{Type: EventThinkingStart, Timestamp: Now()}, Title: title}
}

// NewThinkingEnd closes the reasoning phase.
func NewThinkingEnd() *ThinkingEndEvent {
	return &ThinkingEndEvent{Base: Base{Type: EventThinkingEnd, Timestamp: Now()}}
}

// NewThinkingTextMessageStart opens the reasoning text span.
func NewThinkingTextMessageStart() *ThinkingTextMessageStartEvent {
	return &ThinkingTextMessageStartEvent{Base: Base{Type: EventThinkingTextMessageStart, Timestamp: Now()}}
}

// NewThinkingTextMessageContent appends a fragment of reasoning text.
func NewThinkingTextMessageContent(delta string) *ThinkingTextMessageContentEvent {
	return &ThinkingTextMessageContentEvent{Base: Base{Type: EventThinkingTextMessageContent, Timestamp: Now()}, Delta: delta}
}

// NewThinkingTextMessageEnd seals the reasoning text span.
func NewThinkingTextMessageEnd() *ThinkingTextMessageEndEvent {
	return &ThinkingTextMessageEndEvent{Base: Base{Type: EventThinkingTextMessageEnd, Timestamp: Now()}}
}

// NewStateSnapshot carries a full replacement of the shared state tree.
func NewStateSnapshot(snapshot *state.Value) *StateSnapshotEvent {
	return &StateSnapshotEvent{Base: Base{Type: EventStateSnapshot, Timestamp: Now()}, Snapshot: snapshot}
}

// NewStateDelta carries an atomic batch of patch operations.
func NewStateDelta(delta state.Batch) *StateDeltaEvent {
	return &StateDeltaEvent{Base: Base{Type: EventStateDelta, Timestamp: Now()}, Delta: delta}
}

// NewMessagesSnapshot replaces the conversation history wholesale.
func NewMessagesSnapshot(messages []Message) *MessagesSnapshotEvent {
	return &MessagesSnapshotEvent{Base: Base{Type: EventMessagesSnapshot, Timestamp: Now()}, Messages: messages}
}

// NewRaw wraps an upstream payload with its source attribution.
func NewRaw(source string, event *state.Value) *RawEvent {
	return &RawEvent{Base: Base{Type: EventRaw, Timestamp: Now()}, Source: source, Event: event}
}

// NewCustom carries an application-defined named value.
func NewCustom(name string, value *state.Value) *CustomEvent {
	return &CustomEvent{Base: Base{Type: EventCustom, Timestamp: Now()}, Name: name, Value: value}
}
