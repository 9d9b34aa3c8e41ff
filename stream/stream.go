// Package stream abstracts delivery of protocol events to consumers.
// Transports (SSE, WebSocket, Pulse) implement Sink; producers emit
// events through a Sink without knowing which wire carries them.
package stream

import (
	"context"
	"errors"
	"sync"

	"goa.design/agui/protocol"
)

// ErrClosed is returned by Send after the sink has been closed.
var ErrClosed = errors.New("sink closed")

type (
	// Sink delivers protocol events to an underlying transport.
	// Implementations must be safe for concurrent Send calls.
	Sink interface {
		// Send publishes one event. It returns an error when delivery
		// fails (connection closed, serialization error, transport
		// unavailable).
		Send(ctx context.Context, event protocol.Event) error

		// Close releases resources owned by the sink. Subsequent Send
		// calls fail with ErrClosed. Close is idempotent.
		Close(ctx context.Context) error
	}

	// ChannelSink buffers events on an in-process channel. Useful for
	// wiring a producer to an assembler in the same process and for
	// tests.
	ChannelSink struct {
		ch   chan protocol.Event
		mu   sync.RWMutex
		done bool
	}
)

// NewChannelSink constructs a sink buffering up to size events. A
// non-positive size defaults to 64.
func NewChannelSink(size int) *ChannelSink {
	if size <= 0 {
		size = 64
	}
	return &ChannelSink{ch: make(chan protocol.Event, size)}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan protocol.Event { return s.ch }

// Send implements Sink. It blocks when the buffer is full until the
// consumer drains an event or the context ends.
func (s *ChannelSink) Send(ctx context.Context, event protocol.Event) error {
	if event == nil {
		return errors.New("nil event")
	}
	// The read lock is held across the send so Close cannot close the
	// channel under an in-flight Send.
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.done {
		return ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.ch <- event:
		return nil
	}
}

// Close implements Sink. It waits for in-flight Send calls, then closes
// the event channel so range loops on Events terminate.
func (s *ChannelSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	close(s.ch)
	return nil
}
