package memory

import (
	"context"
	"maps"
	"time"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// write runs fn against committed data as its own serialized transaction.
func (s *Store) write(fn func(st *state)) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.committed)
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create queues event with tx.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	st, err := working(tx)
	if err != nil {
		return err
	}
	st.outbox = append(st.outbox, copyEvent(event))
	return nil
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	r.store.read(func(st *state) {
		for _, e := range st.outbox {
			if len(events) == limit {
				return
			}
			if !e.Published {
				events = append(events, copyEvent(e))
			}
		}
	})
	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.store.write(func(st *state) {
		for i, e := range st.outbox {
			if e.ID != id {
				continue
			}
			c := copyEvent(e)
			c.Published = true
			c.PublishedAt = &publishedAt
			// Replace the slice so snapshots held elsewhere stay untouched.
			outbox := make([]*domain.OutboxEvent, len(st.outbox))
			copy(outbox, st.outbox)
			outbox[i] = c
			st.outbox = outbox
			return
		}
	})
	return nil
}

// DeletePublished drops events published before the cutoff.
func (r *OutboxRepository) DeletePublished(_ context.Context, before time.Time) (int64, error) {
	var dropped int64
	r.store.write(func(st *state) {
		kept := make([]*domain.OutboxEvent, 0, len(st.outbox))
		for _, e := range st.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				dropped++
				continue
			}
			kept = append(kept, e)
		}
		st.outbox = kept
	})
	return dropped, nil
}

func copyEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	c := *e
	c.Payload = maps.Clone(e.Payload)
	return &c
}

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateTx records log with tx.
func (r *AuditRepository) CreateTx(_ context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	st, err := working(tx)
	if err != nil {
		return err
	}
	c := *log
	st.audit = append(st.audit, &c)
	return nil
}

// GetByResourceID returns the audit trail of a resource, oldest first.
func (r *AuditRepository) GetByResourceID(_ context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	r.store.read(func(st *state) {
		for _, l := range st.audit {
			if l.ResourceType == resourceType && l.ResourceID == resourceID {
				c := *l
				logs = append(logs, &c)
			}
		}
	})
	return logs, nil
}
