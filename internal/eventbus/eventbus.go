// Package eventbus delivers engine events to the outside world.
package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lox/holdem-engine/internal/game"
)

// Envelope wraps an engine event with the table's delivery metadata.
// Sequence increases by one for every event a table emits.
type Envelope struct {
	TableID  string         `json:"table_id"`
	Sequence uint64         `json:"sequence"`
	At       time.Time      `json:"at"`
	Type     game.EventType `json:"type"`
	Event    game.Event     `json:"event"`
}

// Publisher sends envelopes somewhere. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Subscriber receives envelopes from a Bus.
type Subscriber interface {
	OnEvent(env Envelope)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Envelope)

func (f SubscriberFunc) OnEvent(env Envelope) { f(env) }

// Bus is an in-process fan-out. Subscribers are called synchronously in
// subscription order, so they must not block.
type Bus struct {
	mu          sync.RWMutex
	subscribers []*subscription
}

type subscription struct {
	sub Subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds sub and returns a function that removes it.
func (b *Bus) Subscribe(sub Subscriber) (unsubscribe func()) {
	s := &subscription{sub: sub}
	b.mu.Lock()
	b.subscribers = append(b.subscribers, s)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, existing := range b.subscribers {
			if existing == s {
				b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(_ context.Context, env Envelope) error {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()
	for _, s := range subs {
		s.sub.OnEvent(env)
	}
	return nil
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, env Envelope) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops everything.
type Discard struct{}

func (Discard) Publish(context.Context, Envelope) error { return nil }
