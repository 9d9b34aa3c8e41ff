// Package ws streams protocol events over WebSocket connections using
// gorilla/websocket. Each event travels as one bare-JSON text frame (or
// its UTF-8 bytes in a binary frame). Decode failures on the reading
// side drop the frame and continue.
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"goa.design/agui/encoding"
	"goa.design/agui/protocol"
	"goa.design/agui/telemetry"
)

type (
	// Source provides the event stream for one connection. The channel
	// must be closed when the run completes; the handler then performs
	// a normal close handshake.
	Source func(r *http.Request) (<-chan protocol.Event, error)

	// Handler upgrades HTTP requests and streams events from a Source
	// as text frames (or binary frames when configured).
	Handler struct {
		source   Source
		upgrader *websocket.Upgrader
		encoder  *encoding.WebSocketEventEncoder
		logger   telemetry.Logger
		metrics  telemetry.Metrics
		binary   bool
	}

	// HandlerOption configures a Handler.
	HandlerOption func(*Handler)
)

// WithUpgrader overrides the websocket upgrader, e.g. to set a custom
// origin check or buffer sizes.
func WithUpgrader(up *websocket.Upgrader) HandlerOption {
	return func(h *Handler) { h.upgrader = up }
}

// WithBinaryFrames makes the handler send binary frames instead of
// text frames.
func WithBinaryFrames() HandlerOption {
	return func(h *Handler) { h.binary = true }
}

// WithLogger sets the handler logger. Defaults to noop.
func WithLogger(logger telemetry.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithMetrics sets the handler metrics recorder. Defaults to noop.
func WithMetrics(metrics telemetry.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = metrics }
}

// NewHandler constructs a WebSocket streaming handler.
func NewHandler(source Source, opts ...HandlerOption) *Handler {
	h := &Handler{
		source:   source,
		upgrader: &websocket.Upgrader{},
		encoder:  encoding.NewWebSocketEventEncoder(),
		logger:   telemetry.NewNoopLogger(),
		metrics:  telemetry.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := h.source(r)
	if err != nil {
		h.logger.Error(r.Context(), "ws source failed", "err", err.Error())
		http.Error(w, "stream unavailable", http.StatusInternalServerError)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Debug(r.Context(), "ws upgrade failed", "err", err.Error())
		return
	}
	defer conn.Close()

	ctx := r.Context()
	messageType := websocket.TextMessage
	if h.binary {
		messageType = websocket.BinaryMessage
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				deadline := time.Now().Add(time.Second)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
				return
			}
			payload, err := h.encoder.EncodeBinary(event)
			if err != nil {
				h.logger.Warn(ctx, "dropping unencodable event", "type", string(event.Kind()), "err", err.Error())
				h.metrics.IncCounter("agui.ws.dropped", 1, "direction", "write")
				continue
			}
			if err := conn.WriteMessage(messageType, payload); err != nil {
				h.logger.Debug(ctx, "ws write failed", "err", err.Error())
				return
			}
			h.metrics.IncCounter("agui.ws.sent", 1, "type", string(event.Kind()))
		}
	}
}
