// Package hooks fans out assembly notifications to registered
// subscribers. The assembler publishes a typed notification whenever a
// span seals, the state tree changes or the run lifecycle advances;
// consumers register subscribers to persist, render or forward them.
package hooks

import (
	"context"
	"errors"
	"sync"
)

type (
	// Bus publishes notifications to registered subscribers in a
	// fan-out pattern. The bus is thread-safe and supports concurrent
	// Publish, Register and subscription Close operations.
	//
	// Delivery is synchronous in the publisher's goroutine and stops at
	// the first subscriber error, so critical subscribers can halt a
	// run when they hit an unrecoverable failure.
	Bus interface {
		// Publish delivers the notification to every currently
		// registered subscriber in registration order, stopping at the
		// first error.
		Publish(ctx context.Context, event Event) error

		// Register adds a subscriber and returns a Subscription that
		// unregisters it when closed. Register fails on a nil
		// subscriber.
		Register(sub Subscriber) (Subscription, error)
	}

	// Subscriber reacts to published notifications. HandleEvent should
	// return an error only when processing fails in a way that should
	// halt delivery; non-critical failures should be logged and
	// swallowed so other subscribers still receive the notification.
	Subscriber interface {
		HandleEvent(ctx context.Context, event Event) error
	}

	// SubscriberFunc adapts a function to the Subscriber interface.
	SubscriberFunc func(ctx context.Context, event Event) error

	// Subscription is an active registration on a Bus. Close removes
	// the subscriber; it is idempotent and always returns nil.
	Subscription interface {
		Close() error
	}

	bus struct {
		mu sync.RWMutex
		// subs keeps registration order; closed subscriptions hold a
		// nil subscriber until compacted.
		subs []*subscription
	}

	subscription struct {
		bus  *bus
		sub  Subscriber
		once sync.Once
	}
)

// NewBus constructs an in-memory notification bus ready for use.
func NewBus() Bus {
	return &bus{}
}

// HandleEvent calls f.
func (f SubscriberFunc) HandleEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publish delivers the notification to a snapshot of the current
// subscribers, so registrations and closes racing with Publish do not
// affect the in-flight delivery.
func (b *bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.sub != nil {
			subs = append(subs, s.sub)
		}
	}
	b.mu.RUnlock()
	for _, sub := range subs {
		if err := sub.HandleEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a subscriber to the bus.
func (b *bus) Register(sub Subscriber) (Subscription, error) {
	if sub == nil {
		return nil, errors.New("subscriber is required")
	}
	s := &subscription{bus: b, sub: sub}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s, nil
}

// Close removes the subscriber from the bus. Safe to call more than
// once.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		for i, cur := range s.bus.subs {
			if cur == s {
				s.bus.subs = append(s.bus.subs[:i], s.bus.subs[i+1:]...)
				break
			}
		}
		s.sub = nil
		s.bus.mu.Unlock()
	})
	return nil
}
