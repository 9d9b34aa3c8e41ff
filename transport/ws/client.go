package ws

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"goa.design/agui/encoding"
	"goa.design/agui/protocol"
	"goa.design/agui/telemetry"
)

type (
	// Client consumes a WebSocket event stream, decoding each text or
	// binary frame into a protocol event.
	Client struct {
		dialer  *websocket.Dialer
		header  http.Header
		logger  telemetry.Logger
		metrics telemetry.Metrics
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

// WithDialer overrides the websocket dialer.
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *Client) { c.dialer = d }
}

// WithTLSConfig sets the TLS configuration on the dialer, e.g. to trust
// a self-signed certificate.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) { c.dialer.TLSClientConfig = cfg }
}

// WithHeader sets extra handshake headers.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) { c.header = header }
}

// WithClientLogger sets the client logger. Defaults to noop.
func WithClientLogger(logger telemetry.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithClientMetrics sets the client metrics recorder. Defaults to noop.
func WithClientMetrics(metrics telemetry.Metrics) ClientOption {
	return func(c *Client) { c.metrics = metrics }
}

// NewClient constructs a WebSocket client.
func NewClient(opts ...ClientOption) *Client {
	d := *websocket.DefaultDialer
	c := &Client{
		dialer:  &d,
		logger:  telemetry.NewNoopLogger(),
		metrics: telemetry.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream dials the endpoint and emits decoded events on the returned
// channel until the server closes the connection or ctx ends. Frames
// that fail to decode are logged and dropped. The error channel
// receives at most one terminal error; a normal close handshake is not
// an error.
func (c *Client) Stream(ctx context.Context, url string) (<-chan protocol.Event, <-chan error, error) {
	conn, resp, err := c.dialer.DialContext(ctx, url, c.header)
	if err != nil {
		return nil, nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	events := make(chan protocol.Event, 32)
	errs := make(chan error, 1)

	// A watcher closes the connection when ctx ends so the blocked
	// ReadMessage returns.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(errs)
		defer close(done)
		defer conn.Close()
		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil || isNormalClose(err) {
					return
				}
				errs <- err
				return
			}
			if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
				continue
			}
			event, err := encoding.Decode(payload)
			if err != nil {
				c.logger.Warn(ctx, "dropping undecodable frame", "err", err.Error())
				c.metrics.IncCounter("agui.ws.dropped", 1, "direction", "read")
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, errs, nil
}

func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
	}
	return false
}
