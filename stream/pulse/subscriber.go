package pulse

import (
	"context"
	"errors"
	"fmt"

	streamopts "goa.design/pulse/streaming/options"

	clientspulse "goa.design/agui/stream/pulse/clients/pulse"

	"goa.design/agui/encoding"
	"goa.design/agui/protocol"
)

type (
	// SubscriberOptions configures a Pulse-backed subscriber.
	SubscriberOptions struct {
		// Client is the Pulse client used to consume events. Required.
		Client clientspulse.Client
		// SinkName identifies the Pulse consumer group. Defaults to
		// "agui_subscriber".
		SinkName string
		// Buffer is the event channel capacity. Defaults to 64.
		Buffer int
	}

	// Subscriber consumes Pulse streams and decodes the payloads back
	// into protocol events, ready to feed an assembler.
	Subscriber struct {
		client clientspulse.Client
		buffer int
		name   string
	}
)

// NewSubscriber constructs a Pulse-backed subscriber.
func NewSubscriber(opts SubscriberOptions) (*Subscriber, error) {
	if opts.Client == nil {
		return nil, errors.New("pulse client is required")
	}
	name := opts.SinkName
	if name == "" {
		name = "agui_subscriber"
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Subscriber{client: opts.Client, buffer: buffer, name: name}, nil
}

// Subscribe opens a consumer group on the given stream and returns
// channels for decoded events and errors. The returned cancel function
// stops consumption and closes both channels. A payload that fails to
// decode is reported on the error channel and skipped; consumption
// continues with the next entry.
func (s *Subscriber) Subscribe(
	ctx context.Context,
	streamID string,
	opts ...streamopts.Sink,
) (<-chan protocol.Event, <-chan error, context.CancelFunc, error) {
	str, err := s.client.Stream(streamID)
	if err != nil {
		return nil, nil, nil, err
	}
	sink, err := str.NewSink(ctx, s.name, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	events := make(chan protocol.Event, s.buffer)
	errs := make(chan error, 1)
	runCtx, cancel := context.WithCancel(ctx)
	go s.consume(runCtx, sink, events, errs)
	cancelFunc := func() {
		cancel()
		sink.Close(context.Background())
	}
	return events, errs, cancelFunc, nil
}

// consume reads entries from the Pulse sink, decodes them and emits
// protocol events, acking each entry after emission.
func (s *Subscriber) consume(ctx context.Context, sink clientspulse.Sink, out chan<- protocol.Event, errs chan<- error) {
	defer close(out)
	defer close(errs)
	ch := sink.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			event, err := encoding.Decode(entry.Payload)
			if err != nil {
				// Dropped frame: report without stopping the stream.
				select {
				case errs <- fmt.Errorf("pulse decode payload: %w", err):
				default:
				}
				if ackErr := sink.Ack(ctx, entry); ackErr != nil && ctx.Err() == nil {
					select {
					case errs <- fmt.Errorf("pulse ack: %w", ackErr):
					default:
					}
				}
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- event:
			}
			if err := sink.Ack(ctx, entry); err != nil && ctx.Err() == nil {
				select {
				case errs <- fmt.Errorf("pulse ack: %w", err):
				default:
				}
			}
		}
	}
}
