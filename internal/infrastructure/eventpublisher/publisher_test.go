package eventpublisher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// fakeOutbox hands out events until they are marked published.
type fakeOutbox struct {
	events       []*domain.OutboxEvent
	marked       []string
	markErr      error
	fetchErr     error
	prunedBefore []time.Time
}

func (f *fakeOutbox) Create(context.Context, usecase.Transaction, *domain.OutboxEvent) error {
	return nil
}

func (f *fakeOutbox) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []*domain.OutboxEvent
	for _, e := range f.events {
		if len(out) == limit {
			break
		}
		if !slices.Contains(f.marked, e.ID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, id string, _ time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeOutbox) DeletePublished(_ context.Context, before time.Time) (int64, error) {
	f.prunedBefore = append(f.prunedBefore, before)
	return int64(len(f.marked)), nil
}

type fakeSink struct {
	sent  []string
	fails map[string]error
}

func (f *fakeSink) Publish(_ context.Context, event *domain.OutboxEvent) error {
	if err := f.fails[event.ID]; err != nil {
		return err
	}
	f.sent = append(f.sent, event.ID)
	return nil
}

func events(n int) []*domain.OutboxEvent {
	out := make([]*domain.OutboxEvent, n)
	for i := range out {
		out[i] = &domain.OutboxEvent{ID: fmt.Sprintf("evt-%d", i+1), EventType: domain.EventTypeRequestSubmitted}
	}
	return out
}

func newPublisher(outbox *fakeOutbox, sink *fakeSink, batch int) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: outbox,
		Publisher:  sink,
		Logger:     zerolog.Nop(),
		BatchSize:  batch,
		Interval:   time.Hour,
	})
}

func TestNewEventPublisherDefaults(t *testing.T) {
	ep := NewEventPublisher(Config{Logger: zerolog.Nop()})

	assert.Equal(t, defaultBatchSize, ep.batchSize)
	assert.Equal(t, defaultInterval, ep.interval)
}

func TestRelay(t *testing.T) {
	outbox := &fakeOutbox{events: events(3)}
	sink := &fakeSink{fails: map[string]error{"evt-2": errors.New("broker down")}}
	ep := newPublisher(outbox, sink, 10)

	sent, err := ep.relay(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"evt-1", "evt-3"}, sink.sent)
	assert.Equal(t, []string{"evt-1", "evt-3"}, outbox.marked)
}

func TestRelayDoesNotCountUnmarkedEvents(t *testing.T) {
	outbox := &fakeOutbox{events: events(2), markErr: errors.New("conn reset")}
	sink := &fakeSink{}
	ep := newPublisher(outbox, sink, 10)

	sent, err := ep.relay(context.Background())
	require.NoError(t, err)

	assert.Zero(t, sent)
	assert.Len(t, sink.sent, 2)
}

func TestRelayFetchError(t *testing.T) {
	ep := newPublisher(&fakeOutbox{fetchErr: errors.New("db down")}, &fakeSink{}, 10)

	_, err := ep.relay(context.Background())
	assert.ErrorContains(t, err, "fetch unpublished events")
}

func TestDrainClearsBacklog(t *testing.T) {
	outbox := &fakeOutbox{events: events(7)}
	sink := &fakeSink{}
	ep := newPublisher(outbox, sink, 3)

	require.NoError(t, ep.drain(context.Background()))

	assert.Len(t, sink.sent, 7)
	assert.Len(t, outbox.marked, 7)
}

func TestDrainStopsOnStuckBatch(t *testing.T) {
	outbox := &fakeOutbox{events: events(3)}
	sink := &fakeSink{fails: map[string]error{"evt-1": errors.New("rejected")}}
	ep := newPublisher(outbox, sink, 3)

	require.NoError(t, ep.drain(context.Background()))

	assert.Equal(t, []string{"evt-2", "evt-3"}, sink.sent)
}

func TestDrainPrunesPastRetention(t *testing.T) {
	outbox := &fakeOutbox{}
	ep := newPublisher(outbox, &fakeSink{}, 10)
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	ep.now = func() time.Time { return now }

	require.NoError(t, ep.drain(context.Background()))
	assert.Empty(t, outbox.prunedBefore, "zero retention keeps published events")

	ep.retention = 72 * time.Hour
	require.NoError(t, ep.drain(context.Background()))
	require.Len(t, outbox.prunedBefore, 1)
	assert.Equal(t, now.Add(-72*time.Hour), outbox.prunedBefore[0])
}

func TestStartRelaysThenStopsOnCancel(t *testing.T) {
	outbox := &fakeOutbox{events: events(2)}
	sink := &fakeSink{}
	ep := newPublisher(outbox, sink, 10)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ep.Start(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
	assert.Equal(t, []string{"evt-1", "evt-2"}, outbox.marked)
}
