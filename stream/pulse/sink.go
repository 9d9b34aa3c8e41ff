// Package pulse publishes protocol events to goa.design/pulse streams
// so consumers in other processes can assemble the run. Services build
// a Redis client, pass it to the Pulse client and hand the resulting
// sink to the producer.
package pulse

import (
	"context"
	"errors"
	"fmt"

	clientspulse "goa.design/agui/stream/pulse/clients/pulse"

	"goa.design/agui/encoding"
	"goa.design/agui/protocol"
)

type (
	// Options configures the Pulse sink.
	Options struct {
		// Client is the Pulse client used to publish events. Required.
		Client clientspulse.Client
		// StreamID derives the target Pulse stream from an event.
		// Defaults to a fixed stream named by Stream.
		StreamID func(protocol.Event) (string, error)
		// Stream is the fixed stream name used by the default StreamID.
		// Defaults to "agui/events".
		Stream string
	}

	// Sink publishes protocol events into Pulse streams as bare JSON
	// payloads, the same encoding WebSocket text frames carry. Safe for
	// concurrent Send calls.
	Sink struct {
		client   clientspulse.Client
		streamID func(protocol.Event) (string, error)
	}
)

// NewSink constructs a Pulse-backed event sink.
func NewSink(opts Options) (*Sink, error) {
	if opts.Client == nil {
		return nil, errors.New("pulse client is required")
	}
	streamID := opts.StreamID
	if streamID == nil {
		name := opts.Stream
		if name == "" {
			name = "agui/events"
		}
		streamID = func(protocol.Event) (string, error) { return name, nil }
	}
	return &Sink{client: opts.Client, streamID: streamID}, nil
}

// Send encodes the event and publishes it to the derived Pulse stream.
func (s *Sink) Send(ctx context.Context, event protocol.Event) error {
	if event == nil {
		return errors.New("nil event")
	}
	streamID, err := s.streamID(event)
	if err != nil {
		return err
	}
	handle, err := s.client.Stream(streamID)
	if err != nil {
		return err
	}
	payload, err := encoding.NewWebSocketEventEncoder().EncodeBinary(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := handle.Add(ctx, string(event.Kind()), payload); err != nil {
		return err
	}
	return nil
}

// Close delegates to the underlying Pulse client.
func (s *Sink) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// RunStreamID derives per-run stream names from run lifecycle events.
// Events that do not carry a run ID land on the stream of the last
// started run only if the caller scopes one sink per run, so this
// helper is meant for producers that create a sink after RUN_STARTED.
func RunStreamID(runID string) func(protocol.Event) (string, error) {
	if runID == "" {
		return func(protocol.Event) (string, error) {
			return "", errors.New("run id is required")
		}
	}
	name := "run/" + runID
	return func(protocol.Event) (string, error) { return name, nil }
}
