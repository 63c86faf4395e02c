package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Channel is the Redis pub/sub channel identity events travel on.
const Channel = "identity_events"

const publishTimeout = 2 * time.Second

// Relay bridges a local Broker and the Redis channel so a sign-out on one
// replica reaches WebSocket clients connected to another.
type Relay struct {
	client redis.UniversalClient
	broker *Broker
	origin string
	logger zerolog.Logger
}

func NewRelay(client redis.UniversalClient, broker *Broker, logger zerolog.Logger) *Relay {
	return &Relay{
		client: client,
		broker: broker,
		origin: uuid.NewString(),
		logger: logger.With().Str("component", "identity_relay").Logger(),
	}
}

// Forward publishes local events to Redis until the returned function is
// called. Events that came from Redis are not sent back.
func (r *Relay) Forward() (stop func()) {
	return r.broker.Subscribe(func(ctx context.Context, ev IdentityEvent) {
		if ev.Remote {
			return
		}
		ev.Origin = r.origin

		payload, err := json.Marshal(ev)
		if err != nil {
			r.logger.Error().Err(err).Msg("marshal identity event")
			return
		}

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := r.client.Publish(pctx, Channel, payload).Err(); err != nil {
			r.logger.Error().Err(err).Str("uid", ev.UID).Msg("publish identity event")
		}
	})
}

// Run republishes events from other replicas into the local broker until ctx
// is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	r.logger.Info().Str("channel", Channel).Msg("identity relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(ctx, []byte(msg.Payload))
		}
	}
}

func (r *Relay) deliver(ctx context.Context, payload []byte) {
	var ev IdentityEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		r.logger.Warn().Err(err).Msg("discarding malformed identity event")
		return
	}
	if ev.Origin == r.origin {
		return
	}
	ev.Remote = true
	r.broker.Publish(ctx, ev)
}
