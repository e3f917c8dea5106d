package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel shared by every instance.
const DefaultChannel = "hms:events"

const publishTimeout = 2 * time.Second

type envelope struct {
	Source string      `json:"source"`
	Event  event.Event `json:"event"`
	SentAt time.Time   `json:"sent_at"`
}

// RedisRelay delivers events to local dashboards immediately and republishes
// them on Redis so dashboards connected to other instances see them too.
type RedisRelay struct {
	client  *redis.Client
	channel string
	nodeID  string
	local   event.Dispatcher
	ready   chan struct{}
}

func NewRedisRelay(client *redis.Client, channel string, local event.Dispatcher) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		nodeID:  uuid.NewString(),
		local:   local,
		ready:   make(chan struct{}),
	}
}

// Dispatch implements event.Dispatcher. Publish failures are logged, never returned.
func (r *RedisRelay) Dispatch(ctx context.Context, events ...event.Event) {
	r.local.Dispatch(ctx, events...)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, e := range events {
		payload, err := json.Marshal(envelope{Source: r.nodeID, Event: e, SentAt: time.Now().UTC()})
		if err != nil {
			slog.Warn("failed to encode event", "event", e.Name, "error", err)
			continue
		}
		if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
			slog.Warn("failed to publish event", "event", e.Name, "channel", r.channel, "error", err)
		}
	}
}

// Ready is closed once the subscription is confirmed.
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run relays events published by other instances into the local dispatcher
// until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	close(r.ready)
	slog.Info("event relay subscribed", "channel", r.channel, "node_id", r.nodeID)

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		r.handle(ctx, []byte(msg.Payload))
	}
}

func (r *RedisRelay) handle(ctx context.Context, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		slog.Warn("invalid event payload", "channel", r.channel, "error", err)
		return
	}
	if env.Source == r.nodeID {
		return
	}
	r.local.Dispatch(ctx, env.Event)
}
