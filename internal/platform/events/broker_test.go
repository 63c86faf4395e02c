package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestBroker_DeliversToAllSubscribers(t *testing.T) {
	b := NewBroker()

	var got1, got2 []IdentityEvent
	b.Subscribe(func(_ context.Context, ev IdentityEvent) { got1 = append(got1, ev) })
	b.Subscribe(func(_ context.Context, ev IdentityEvent) { got2 = append(got2, ev) })

	b.Publish(context.Background(), IdentityEvent{Kind: SignedIn, UID: "uid-1"})

	if len(got1) != 1 || len(got2) != 1 {
		t.Fatalf("expected one event per subscriber, got %d and %d", len(got1), len(got2))
	}
	if got1[0].UID != "uid-1" || got1[0].At.IsZero() {
		t.Errorf("unexpected event %+v", got1[0])
	}
}

func TestBroker_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()

	calls := 0
	unsubscribe := b.Subscribe(func(context.Context, IdentityEvent) { calls++ })

	b.Publish(context.Background(), IdentityEvent{Kind: SignedIn, UID: "uid-1"})
	unsubscribe()
	unsubscribe()
	b.Publish(context.Background(), IdentityEvent{Kind: SignedOut, UID: "uid-1"})

	if calls != 1 {
		t.Errorf("expected 1 delivery before unsubscribe, got %d", calls)
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
}

func TestBroker_UnsubscribeWaitsForInFlightDelivery(t *testing.T) {
	b := NewBroker()

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	delivered := 0

	unsubscribe := b.Subscribe(func(context.Context, IdentityEvent) {
		mu.Lock()
		delivered++
		first := delivered == 1
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
	})

	go b.Publish(context.Background(), IdentityEvent{Kind: SignedIn, UID: "uid-1"})
	<-entered

	done := make(chan struct{})
	go func() {
		unsubscribe()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("unsubscribe returned while a delivery was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done

	b.Publish(context.Background(), IdentityEvent{Kind: SignedOut, UID: "uid-1"})
	mu.Lock()
	defer mu.Unlock()
	if delivered != 1 {
		t.Errorf("expected no delivery after unsubscribe, got %d", delivered)
	}
}

func TestIdentityEvent_SignedInNow(t *testing.T) {
	tests := map[Kind]bool{SignedIn: true, SignedUp: true, SignedOut: false}
	for kind, want := range tests {
		if got := (IdentityEvent{Kind: kind}).SignedInNow(); got != want {
			t.Errorf("%s: expected %v, got %v", kind, want, got)
		}
	}
}
