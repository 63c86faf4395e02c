//go:build integration

package events

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRelay_CrossReplica(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	defer ctr.Terminate(context.Background())

	endpoint, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	defer client.Close()

	brokerA, brokerB := NewBroker(), NewBroker()
	relayA := NewRelay(client, brokerA, zerolog.Nop())
	relayB := NewRelay(client, brokerB, zerolog.Nop())

	stopA := relayA.Forward()
	defer stopA()
	stopB := relayB.Forward()
	defer stopB()

	go relayA.Run(ctx)
	go relayB.Run(ctx)

	received := make(chan IdentityEvent, 1)
	brokerB.Subscribe(func(_ context.Context, ev IdentityEvent) {
		if ev.Remote {
			received <- ev
		}
	})

	// Give both subscriptions time to register with Redis.
	time.Sleep(200 * time.Millisecond)
	brokerA.Publish(ctx, IdentityEvent{Kind: SignedOut, UID: "uid-1"})

	select {
	case ev := <-received:
		if ev.UID != "uid-1" || ev.Kind != SignedOut {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event did not cross replicas")
	}
}
