// Package events fans identity state changes out to in-process subscribers
// and, when Redis is configured, to the other server replicas.
package events

import (
	"context"
	"sync"
	"time"
)

// Kind is the identity transition an event reports.
type Kind string

const (
	SignedIn  Kind = "signed_in"
	SignedUp  Kind = "signed_up"
	SignedOut Kind = "signed_out"
)

// IdentityEvent is one sign-in state change. Remote is set on events that
// arrived through the relay from another replica.
type IdentityEvent struct {
	Kind        Kind      `json:"kind"`
	UID         string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	At          time.Time `json:"at"`
	Origin      string    `json:"origin,omitempty"`
	Remote      bool      `json:"-"`
}

// SignedInNow reports whether the event leaves the identity signed in.
func (e IdentityEvent) SignedInNow() bool {
	return e.Kind == SignedIn || e.Kind == SignedUp
}

// Publisher is what identity backends need from the broker.
type Publisher interface {
	Publish(ctx context.Context, ev IdentityEvent)
}

// Broker delivers events synchronously to every subscriber. Subscribers must
// not subscribe or unsubscribe from inside a callback.
type Broker struct {
	mu   sync.RWMutex
	subs map[uint64]func(context.Context, IdentityEvent)
	next uint64
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[uint64]func(context.Context, IdentityEvent))}
}

// Subscribe registers fn and returns a function that removes it. Once the
// returned function has returned, fn is never called again.
func (b *Broker) Subscribe(fn func(context.Context, IdentityEvent)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every subscriber in turn. The read lock is held for the whole
// delivery so an Unsubscribe waits for in-flight deliveries to finish.
func (b *Broker) Publish(ctx context.Context, ev IdentityEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(ctx, ev)
	}
}

func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
