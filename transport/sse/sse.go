// Package sse streams protocol events over Server-Sent Events. The
// handler writes one "data:" message per event; the client scans the
// response body and decodes each message back into an event. Decode
// failures drop the frame and continue, they never kill the stream.
package sse

import (
	"net/http"

	"goa.design/agui/encoding"
	"goa.design/agui/protocol"
	"goa.design/agui/telemetry"
)

type (
	// Source provides the event stream for one request. The channel
	// must be closed when the run completes; the handler ends the
	// response at that point.
	Source func(r *http.Request) (<-chan protocol.Event, error)

	// Handler streams events from a Source to SSE clients.
	Handler struct {
		source  Source
		encoder *encoding.EventEncoder
		logger  telemetry.Logger
		metrics telemetry.Metrics
	}

	// HandlerOption configures a Handler.
	HandlerOption func(*Handler)
)

// WithLogger sets the handler logger. Defaults to noop.
func WithLogger(logger telemetry.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithMetrics sets the handler metrics recorder. Defaults to noop.
func WithMetrics(metrics telemetry.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = metrics }
}

// NewHandler constructs an SSE streaming handler.
func NewHandler(source Source, opts ...HandlerOption) *Handler {
	h := &Handler{
		source:  source,
		encoder: encoding.NewEventEncoder(),
		logger:  telemetry.NewNoopLogger(),
		metrics: telemetry.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	events, err := h.source(r)
	if err != nil {
		h.logger.Error(r.Context(), "sse source failed", "err", err.Error())
		http.Error(w, "stream unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", h.encoder.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug(ctx, "sse client disconnected")
			return
		case event, open := <-events:
			if !open {
				return
			}
			frame, err := h.encoder.Encode(event)
			if err != nil {
				h.logger.Warn(ctx, "dropping unencodable event", "type", string(event.Kind()), "err", err.Error())
				h.metrics.IncCounter("agui.sse.dropped", 1, "direction", "write")
				continue
			}
			if _, err := w.Write([]byte(frame)); err != nil {
				h.logger.Debug(ctx, "sse write failed", "err", err.Error())
				return
			}
			flusher.Flush()
			h.metrics.IncCounter("agui.sse.sent", 1, "type", string(event.Kind()))
		}
	}
}
