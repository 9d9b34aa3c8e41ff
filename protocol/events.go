// Package protocol defines the closed catalogue of events describing an
// agent run: run and step lifecycle, streaming message text, thinking
// traces, tool-call invocations and shared-state synchronization. Events
// flow from a producer to consumers over SSE or WebSocket transports
// (see the encoding and transport packages) and are folded into derived
// state by the assembler package.
//
// The wire form of every event is a flat JSON object whose "type" field
// carries the event kind as an UPPER_SNAKE tag; all other fields are
// camelCase and optional fields are omitted entirely, never null.
package protocol

// EventType is the wire tag discriminating event kinds.
type EventType string

const (
	EventRunStarted  EventType = "RUN_STARTED"
	EventRunFinished EventType = "RUN_FINISHED"
	EventRunError    EventType = "RUN_ERROR"

	EventStepStarted  EventType = "STEP_STARTED"
	EventStepFinished EventType = "STEP_FINISHED"

	EventTextMessageStart   EventType = "TEXT_MESSAGE_START"
	EventTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	EventTextMessageEnd     EventType = "TEXT_MESSAGE_END"

	EventThinkingStart EventType = "THINKING_START"
	EventThinkingEnd   EventType = "THINKING_END"

	EventThinkingTextMessageStart   EventType = "THINKING_TEXT_MESSAGE_START"
	EventThinkingTextMessageContent EventType = "THINKING_TEXT_MESSAGE_CONTENT"
	EventThinkingTextMessageEnd     EventType = "THINKING_TEXT_MESSAGE_END"

	EventToolCallStart EventType = "TOOL_CALL_START"
	EventToolCallArgs  EventType = "TOOL_CALL_ARGS"
	EventToolCallEnd   EventType = "TOOL_CALL_END"

	EventStateSnapshot    EventType = "STATE_SNAPSHOT"
	EventStateDelta       EventType = "STATE_DELTA"
	EventMessagesSnapshot EventType = "MESSAGES_SNAPSHOT"

	EventRaw    EventType = "RAW"
	EventCustom EventType = "CUSTOM"
)

// Types returns every defined event type. Used by the codec round-trip
// tests and by consumers that want to subscribe exhaustively.
func Types() []EventType {
	return []EventType{
		EventRunStarted, EventRunFinished, EventRunError,
		EventStepStarted, EventStepFinished,
		EventTextMessageStart, EventTextMessageContent, EventTextMessageEnd,
		EventThinkingStart, EventThinkingEnd,
		EventThinkingTextMessageStart, EventThinkingTextMessageContent, EventThinkingTextMessageEnd,
		EventToolCallStart, EventToolCallArgs, EventToolCallEnd,
		EventStateSnapshot, EventStateDelta, EventMessagesSnapshot,
		EventRaw, EventCustom,
	}
}

// Event is implemented by every event variant. Kind returns the wire
// tag; Validate reports a *ValidationError when a required field is
// missing or malformed.
type Event interface {
	Kind() EventType
	Validate() error
}

// Base carries the fields common to all events. Timestamp is
// milliseconds since the Unix epoch; zero means unset and is omitted
// from the wire form.
type Base struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

// Kind returns the event's wire tag.
func (b Base) Kind() EventType { return b.Type }
