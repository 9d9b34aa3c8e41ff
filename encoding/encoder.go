// Package encoding serializes protocol events to their two textual
// framings — Server-Sent Events and bare-JSON WebSocket frames — and
// decodes the inverse. The codec is stateless and depends only on the
// event catalogue; transports own connection lifecycle and framing I/O.
package encoding

import (
	"encoding/json"
	"fmt"

	"goa.design/agui/protocol"
)

// Content types advertised by the two framings.
const (
	ContentTypeSSE  = "text/event-stream"
	ContentTypeJSON = "application/json"
)

// EventEncoder frames events for SSE streaming: each event becomes
// exactly "data: " + JSON + "\n\n", with no other directive lines.
type EventEncoder struct{}

// NewEventEncoder returns an SSE encoder.
func NewEventEncoder() *EventEncoder { return &EventEncoder{} }

// ContentType returns the SSE media type.
func (*EventEncoder) ContentType() string { return ContentTypeSSE }

// Encode serializes the event into one SSE message.
func (*EventEncoder) Encode(event protocol.Event) (string, error) {
	raw, err := marshalEvent(event)
	if err != nil {
		return "", err
	}
	return "data: " + string(raw) + "\n\n", nil
}

// WebSocketEventEncoder frames events for WebSocket connections: one
// event per text frame carrying bare JSON, or per binary frame carrying
// the UTF-8 bytes of the same JSON.
type WebSocketEventEncoder struct{}

// NewWebSocketEventEncoder returns a WebSocket encoder.
func NewWebSocketEventEncoder() *WebSocketEventEncoder { return &WebSocketEventEncoder{} }

// ContentType returns the media type of WebSocket text frames.
func (*WebSocketEventEncoder) ContentType() string { return ContentTypeJSON }

// Encode serializes the event for a text frame.
func (*WebSocketEventEncoder) Encode(event protocol.Event) (string, error) {
	raw, err := marshalEvent(event)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// EncodeBinary serializes the event for a binary frame.
func (e *WebSocketEventEncoder) EncodeBinary(event protocol.Event) ([]byte, error) {
	raw, err := marshalEvent(event)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func marshalEvent(event protocol.Event) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("encoding: nil event")
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(event)
}
