package sse

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"

	"goa.design/agui/encoding"
	"goa.design/agui/protocol"
	"goa.design/agui/telemetry"
)

type (
	// Client consumes an SSE event stream and decodes each message into
	// a protocol event.
	Client struct {
		http    *http.Client
		url     string
		logger  telemetry.Logger
		metrics telemetry.Metrics
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

// WithHTTPClient sets the HTTP client used to open the stream. Defaults
// to http.DefaultClient; pass a client with a TLS config for self-signed
// endpoints.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithClientLogger sets the client logger. Defaults to noop.
func WithClientLogger(logger telemetry.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithClientMetrics sets the client metrics recorder. Defaults to noop.
func WithClientMetrics(metrics telemetry.Metrics) ClientOption {
	return func(c *Client) { c.metrics = metrics }
}

// NewClient constructs an SSE client for the given URL.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		http:    http.DefaultClient,
		url:     url,
		logger:  telemetry.NewNoopLogger(),
		metrics: telemetry.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream opens the SSE connection and emits decoded events on the
// returned channel until the server closes the stream or ctx ends. A
// frame that fails to decode is logged and dropped; the reader keeps
// scanning. The error channel receives at most one terminal error.
func (c *Client) Stream(ctx context.Context) (<-chan protocol.Event, <-chan error, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", encoding.ContentTypeSSE)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("sse stream status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(strings.ToLower(ct), encoding.ContentTypeSSE) {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("unexpected content type %q", ct)
	}

	events := make(chan protocol.Event, 32)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var data strings.Builder
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				// Blank line ends one SSE message.
				if data.Len() == 0 {
					continue
				}
				payload := data.String()
				data.Reset()
				event, err := encoding.Decode([]byte(payload))
				if err != nil {
					c.logger.Warn(ctx, "dropping undecodable frame", "err", err.Error())
					c.metrics.IncCounter("agui.sse.dropped", 1, "direction", "read")
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
				continue
			}
			if rest, ok := strings.CutPrefix(line, "data:"); ok {
				data.WriteString(strings.TrimPrefix(rest, " "))
			}
			// Other SSE directives (event:, id:, retry:) are not part
			// of this protocol and are ignored.
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()
	return events, errs, nil
}
