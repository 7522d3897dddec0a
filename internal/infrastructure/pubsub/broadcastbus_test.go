package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

func TestNewRedisBroadcastBus_DefaultChannel(t *testing.T) {
	bus := NewRedisBroadcastBus(nil, "", logger.NewNop())
	assert.Equal(t, DefaultBroadcastChannel, bus.channel)
	assert.NotEmpty(t, bus.instanceID)
}

func TestRedisBroadcastBus_EncodeDispatch(t *testing.T) {
	bus := NewRedisBroadcastBus(nil, "test:broadcast", logger.NewNop())

	data, err := bus.encode(broadcast.Publication{
		Channel:         "presence-ticket.7",
		Event:           broadcast.EventMessageDeleted,
		Payload:         broadcast.MessageDeletedPayload{MessageID: 3, TicketID: 7},
		ExcludeSocketID: "sock-1",
	})
	require.NoError(t, err)

	var got []Envelope
	bus.dispatch(string(data), func(env Envelope) { got = append(got, env) })
	require.Len(t, got, 1)

	env := got[0]
	assert.Equal(t, "presence-ticket.7", env.Channel)
	assert.Equal(t, broadcast.EventMessageDeleted, env.Event)
	assert.Equal(t, "sock-1", env.ExcludeSocketID)
	assert.Equal(t, bus.instanceID, env.InstanceID)
	assert.Positive(t, env.Timestamp)
	assert.JSONEq(t, `{"message_id":3,"ticket_id":7}`, string(env.Data))
}

func TestRedisBroadcastBus_DispatchDropsMalformed(t *testing.T) {
	bus := NewRedisBroadcastBus(nil, "", logger.NewNop())
	calls := 0
	handler := func(Envelope) { calls++ }

	bus.dispatch("not json", handler)
	bus.dispatch(`{"event":"message.sent"}`, handler)
	assert.Zero(t, calls)

	raw, err := json.Marshal(Envelope{Channel: "tickets", Event: "ticket.updated", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	bus.dispatch(string(raw), func(Envelope) { panic("handler bug") })
	bus.dispatch(string(raw), handler)
	assert.Equal(t, 1, calls)
}

func TestRedisBroadcastBus_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	bus := NewRedisBroadcastBus(client, "test:broadcast", logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Envelope, 1)
	done := make(chan error, 1)
	go func() {
		done <- bus.Subscribe(ctx, func(env Envelope) { received <- env })
	}()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:broadcast")["test:broadcast"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	err := bus.Publish(ctx, broadcast.Publication{
		Channel: broadcast.TicketsChannel,
		Event:   broadcast.EventTicketUpdated,
		Payload: map[string]int{"id": 9},
	})
	require.NoError(t, err)

	select {
	case env := <-received:
		assert.Equal(t, broadcast.TicketsChannel, env.Channel)
		assert.Equal(t, broadcast.EventTicketUpdated, env.Event)
		assert.JSONEq(t, `{"id":9}`, string(env.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("envelope not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(minReconnectBackoff))
	assert.Equal(t, maxReconnectBackoff, nextBackoff(20*time.Second))
	assert.Equal(t, maxReconnectBackoff, nextBackoff(maxReconnectBackoff))
}

func TestRedisBroadcastBus_SubscribeReportsConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	bus := NewRedisBroadcastBus(client, "test:broadcast", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		connected bool
		err       error
	}
	done := make(chan outcome, 1)
	go func() {
		connected, err := bus.subscribe(ctx, func(Envelope) {})
		done <- outcome{connected, err}
	}()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:broadcast")["test:broadcast"] == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	got := <-done
	assert.True(t, got.connected)
	assert.ErrorIs(t, got.err, context.Canceled)

	mr.Close()
	connected, err := bus.subscribe(context.Background(), func(Envelope) {})
	assert.False(t, connected)
	assert.Error(t, err)
}
