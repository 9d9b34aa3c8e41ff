package encoding

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"goa.design/agui/protocol"
)

// Decode parses the JSON form of one event. The "type" tag is matched
// once to construct the corresponding variant; unknown tags and missing
// required fields are rejected explicitly rather than falling through.
func Decode(data []byte) (protocol.Event, error) {
	var head struct {
		Type protocol.EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &DecodeError{kind: ErrMalformedJSON, cause: err}
	}
	event := newEvent(head.Type)
	if event == nil {
		return nil, &DecodeError{kind: ErrUnknownEventType, EventType: string(head.Type)}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(event); err != nil {
		return nil, &DecodeError{kind: ErrMalformedJSON, cause: err}
	}
	if err := event.Validate(); err != nil {
		var ve *protocol.ValidationError
		if errors.As(err, &ve) {
			return nil, &DecodeError{kind: ErrMissingField, EventType: string(ve.Event), Field: ve.Field, cause: err}
		}
		return nil, &DecodeError{kind: ErrMissingField, EventType: string(head.Type), cause: err}
	}
	return event, nil
}

// DecodeSSE strips the SSE framing produced by EventEncoder.Encode and
// decodes the payload. Only "data:" lines are recognized; the protocol
// uses no other SSE directives.
func DecodeSSE(frame string) (protocol.Event, error) {
	payload := strings.TrimSuffix(frame, "\n\n")
	payload = strings.TrimPrefix(payload, "data:")
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, &DecodeError{kind: ErrMalformedJSON, cause: errors.New("empty SSE frame")}
	}
	return Decode([]byte(payload))
}

// newEvent returns a zero value of the variant matching t, or nil when
// t is not part of the catalogue.
func newEvent(t protocol.EventType) protocol.Event {
	switch t {
	case protocol.EventRunStarted:
		return &protocol.RunStartedEvent{}
	case protocol.EventRunFinished:
		return &protocol.RunFinishedEvent{}
	case protocol.EventRunError:
		return &protocol.RunErrorEvent{}
	case protocol.EventStepStarted:
		return &protocol.StepStartedEvent{}
	case protocol.EventStepFinished:
		return &protocol.StepFinishedEvent{}
	case protocol.EventTextMessageStart:
		return &protocol.TextMessageStartEvent{}
	case protocol.EventTextMessageContent:
		return &protocol.TextMessageContentEvent{}
	case protocol.EventTextMessageEnd:
		return &protocol.TextMessageEndEvent{}
	case protocol.EventThinkingStart:
		return &protocol.ThinkingStartEvent{}
	case protocol.EventThinkingEnd:
		return &protocol.ThinkingEndEvent{}
	case protocol.EventThinkingTextMessageStart:
		return &protocol.ThinkingTextMessageStartEvent{}
	case protocol.EventThinkingTextMessageContent:
		return &protocol.ThinkingTextMessageContentEvent{}
	case protocol.EventThinkingTextMessageEnd:
		return &protocol.ThinkingTextMessageEndEvent{}
	case protocol.EventToolCallStart:
		return &protocol.ToolCallStartEvent{}
	case protocol.EventToolCallArgs:
		return &protocol.ToolCallArgsEvent{}
	case protocol.EventToolCallEnd:
		return &protocol.ToolCallEndEvent{}
	case protocol.EventStateSnapshot:
		return &protocol.StateSnapshotEvent{}
	case protocol.EventStateDelta:
		return &protocol.StateDeltaEvent{}
	case protocol.EventMessagesSnapshot:
		return &protocol.MessagesSnapshotEvent{}
	case protocol.EventRaw:
		return &protocol.RawEvent{}
	case protocol.EventCustom:
		return &protocol.CustomEvent{}
	}
	return nil
}
