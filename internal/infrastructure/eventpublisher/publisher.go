// Package eventpublisher relays outbox events to subscribers.
package eventpublisher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
	"github.com/iho/leaveledger/internal/usecase"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second
)

// Publisher delivers one event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int
	Interval   time.Duration
	// Retention is how long published events are kept. Zero keeps them.
	Retention time.Duration
}

// EventPublisher polls the outbox and hands unpublished events to a
// Publisher. Delivery is at least once: an event whose mark fails is sent
// again on the next poll, and subscribers dedupe by event_id.
type EventPublisher struct {
	outbox    usecase.OutboxRepository
	sink      Publisher
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	return &EventPublisher{
		outbox:    cfg.OutboxRepo,
		sink:      cfg.Publisher,
		logger:    cfg.Logger.With().Str("component", "event_publisher").Logger(),
		metrics:   cfg.Metrics,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start relays once immediately and then on every tick until ctx is done,
// returning ctx.Err().
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		if err := ep.drain(ctx); err != nil && ctx.Err() == nil {
			ep.logger.Error().Err(err).Msg("relay outbox")
		}

		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain relays full batches back to back so a backlog clears within one
// tick, then prunes.
func (ep *EventPublisher) drain(ctx context.Context) error {
	for ctx.Err() == nil {
		sent, err := ep.relay(ctx)
		if err != nil {
			return err
		}
		if sent < ep.batchSize {
			break
		}
	}
	return ep.prune(ctx)
}

// relay publishes one batch and reports how many events were delivered and
// marked. A failed event does not stop the rest of the batch.
func (ep *EventPublisher) relay(ctx context.Context) (int, error) {
	events, err := ep.outbox.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished events: %w", err)
	}

	sent := 0
	for _, event := range events {
		log := ep.logger.With().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Logger()

		if err := ep.sink.Publish(ctx, event); err != nil {
			ep.observe(event, "error")
			log.Error().Err(err).Msg("publish event")
			continue
		}
		ep.observe(event, "ok")

		if err := ep.outbox.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			log.Error().Err(err).Msg("mark event published")
			continue
		}
		sent++
	}

	if len(events) > 0 {
		ep.logger.Debug().Int("fetched", len(events)).Int("sent", sent).Msg("relayed batch")
	}
	return sent, nil
}

func (ep *EventPublisher) prune(ctx context.Context) error {
	if ep.retention <= 0 {
		return nil
	}

	pruned, err := ep.outbox.DeletePublished(ctx, ep.now().Add(-ep.retention))
	if err != nil {
		return fmt.Errorf("prune published events: %w", err)
	}
	if pruned > 0 {
		ep.logger.Debug().Int64("pruned", pruned).Msg("pruned published events")
	}
	return nil
}

func (ep *EventPublisher) observe(event *domain.OutboxEvent, status string) {
	if ep.metrics != nil {
		ep.metrics.EventsPublished.WithLabelValues(event.EventType, status).Inc()
	}
}
