package eventpublisher

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaveledger/internal/domain"
)

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:          "evt-1",
		EventType:   domain.EventTypeRequestApproved,
		AggregateID: "req-1",
		Payload:     map[string]any{"status": "approved"},
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "evt-1", line["event_id"])
	assert.Equal(t, domain.EventTypeRequestApproved, line["event_type"])
	assert.Equal(t, map[string]any{"status": "approved"}, line["payload"])
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "leave-events")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client, "leave-events")
	require.NoError(t, pub.Publish(ctx, &domain.OutboxEvent{
		ID:            "evt-1",
		EventType:     domain.EventTypeLedgerTransactionAppended,
		AggregateType: domain.AggregateTypeBalance,
		AggregateID:   "emp-1/var-1/2025",
		Payload:       map[string]any{"amount": "2"},
	}))

	select {
	case msg := <-sub.Channel():
		var got message
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "evt-1", got.ID)
		assert.Equal(t, domain.AggregateTypeBalance, got.AggregateType)
		assert.Equal(t, "2", got.Payload["amount"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisherClosedClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Close())

	err := NewRedisPublisher(client, "leave-events").Publish(context.Background(), &domain.OutboxEvent{ID: "evt-9"})
	assert.ErrorContains(t, err, "publish event evt-9")
}
