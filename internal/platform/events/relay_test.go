package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestRelay_DeliverMarksRemote(t *testing.T) {
	b := NewBroker()
	r := NewRelay(nil, b, zerolog.Nop())

	var got []IdentityEvent
	b.Subscribe(func(_ context.Context, ev IdentityEvent) { got = append(got, ev) })

	payload, _ := json.Marshal(IdentityEvent{Kind: SignedOut, UID: "uid-1", Origin: "other-replica"})
	r.deliver(context.Background(), payload)

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if !got[0].Remote {
		t.Error("expected relayed event to be marked remote")
	}
	if got[0].Kind != SignedOut || got[0].UID != "uid-1" {
		t.Errorf("unexpected event %+v", got[0])
	}
}

func TestRelay_DeliverSkipsOwnOrigin(t *testing.T) {
	b := NewBroker()
	r := NewRelay(nil, b, zerolog.Nop())

	calls := 0
	b.Subscribe(func(context.Context, IdentityEvent) { calls++ })

	payload, _ := json.Marshal(IdentityEvent{Kind: SignedIn, UID: "uid-1", Origin: r.origin})
	r.deliver(context.Background(), payload)

	if calls != 0 {
		t.Errorf("expected own event to be dropped, got %d deliveries", calls)
	}
}

func TestRelay_DeliverIgnoresMalformed(t *testing.T) {
	b := NewBroker()
	r := NewRelay(nil, b, zerolog.Nop())

	calls := 0
	b.Subscribe(func(context.Context, IdentityEvent) { calls++ })
	r.deliver(context.Background(), []byte("{not json"))

	if calls != 0 {
		t.Errorf("expected malformed payload to be dropped, got %d deliveries", calls)
	}
}
