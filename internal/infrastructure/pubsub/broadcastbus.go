package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/shared/biztime"
	"github.com/helpdesk-inc/helpdesk/internal/shared/goroutine"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

// DefaultBroadcastChannel is the Redis channel every instance publishes and listens on.
const DefaultBroadcastChannel = "helpdesk:broadcast"

// Envelope is the wire form of a publication relayed between instances.
type Envelope struct {
	Channel         string          `json:"channel"`
	Event           string          `json:"event"`
	Data            json.RawMessage `json:"data"`
	ExcludeSocketID string          `json:"exclude_socket_id,omitempty"`
	InstanceID      string          `json:"instance_id,omitempty"`
	Timestamp       int64           `json:"timestamp"`
}

// EnvelopeHandler receives envelopes read from the bus.
type EnvelopeHandler func(env Envelope)

// RedisBroadcastBus relays publications to every gateway instance over Redis Pub/Sub.
// Envelopes published by this instance are delivered back to it like any other, since the
// local gateway also holds subscribers.
type RedisBroadcastBus struct {
	client     *redis.Client
	channel    string
	logger     logger.Interface
	instanceID string
}

func NewRedisBroadcastBus(client *redis.Client, channel string, logger logger.Interface) *RedisBroadcastBus {
	if channel == "" {
		channel = DefaultBroadcastChannel
	}
	return &RedisBroadcastBus{
		client:     client,
		channel:    channel,
		logger:     logger,
		instanceID: uuid.NewString(),
	}
}

// Publish implements broadcast.Transport.
func (b *RedisBroadcastBus) Publish(ctx context.Context, pub broadcast.Publication) error {
	data, err := b.encode(pub)
	if err != nil {
		return err
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish broadcast envelope",
			"channel", pub.Channel,
			"event", pub.Event,
			"error", err,
		)
		return fmt.Errorf("failed to publish broadcast envelope: %w", err)
	}

	b.logger.Debugw("broadcast envelope published to Redis",
		"channel", pub.Channel,
		"event", pub.Event,
	)
	return nil
}

func (b *RedisBroadcastBus) encode(pub broadcast.Publication) ([]byte, error) {
	payload, err := json.Marshal(pub.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", pub.Event, err)
	}

	data, err := json.Marshal(Envelope{
		Channel:         pub.Channel,
		Event:           pub.Event,
		Data:            payload,
		ExcludeSocketID: pub.ExcludeSocketID,
		InstanceID:      b.instanceID,
		Timestamp:       biztime.NowUTC().UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal broadcast envelope: %w", err)
	}
	return data, nil
}

const (
	minReconnectBackoff = time.Second
	maxReconnectBackoff = 30 * time.Second
)

// Subscribe blocks until ctx is done, reconnecting with exponential backoff when the
// subscription drops. A subscription that was established resets the backoff.
func (b *RedisBroadcastBus) Subscribe(ctx context.Context, handler EnvelopeHandler) error {
	backoff := minReconnectBackoff

	for {
		connected, err := b.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = minReconnectBackoff
		}

		b.logger.Warnw("broadcast subscription disconnected, reconnecting",
			"channel", b.channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

func nextBackoff(current time.Duration) time.Duration {
	return min(current*2, maxReconnectBackoff)
}

// subscribe reads the channel until it drops. connected reports whether the
// subscription was confirmed before that.
func (b *RedisBroadcastBus) subscribe(ctx context.Context, handler EnvelopeHandler) (connected bool, err error) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("failed to subscribe to channel %s: %w", b.channel, err)
	}

	b.logger.Infow("subscribed to broadcast channel", "channel", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("broadcast subscriber stopped",
				"channel", b.channel,
				"reason", ctx.Err(),
			)
			return true, ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("broadcast channel closed", "channel", b.channel)
				return true, nil
			}
			b.dispatch(msg.Payload, handler)
		}
	}
}

// dispatch decodes one payload. Delivery order within a channel matters to clients, so the
// handler runs inline under panic protection.
func (b *RedisBroadcastBus) dispatch(payload string, handler EnvelopeHandler) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.logger.Warnw("failed to unmarshal broadcast envelope",
			"payload", payload,
			"error", err,
		)
		return
	}
	if env.Channel == "" || env.Event == "" {
		b.logger.Warnw("dropping broadcast envelope without channel or event", "payload", payload)
		return
	}

	goroutine.Run(b.logger, "broadcast-dispatch", func() {
		handler(env)
	})
}
