// Package memory is an in-process storage backend. Transactions are
// serialized: Begin takes an exclusive lock held until Commit or Rollback,
// and writes become visible to readers only on Commit.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

var errTxDone = errors.New("transaction already closed")

// state is the transactional data set. Values stored in maps are never
// mutated in place, so a shallow clone is an isolated snapshot.
type state struct {
	balances map[domain.BalanceKey]*domain.BalanceAccount
	txns     []*domain.LedgerTransaction
	requests map[string]*domain.Request
	outbox   []*domain.OutboxEvent
	audit    []*domain.AuditLog
}

func newState() *state {
	return &state{
		balances: make(map[domain.BalanceKey]*domain.BalanceAccount),
		requests: make(map[string]*domain.Request),
	}
}

func (s *state) clone() *state {
	return &state{
		balances: maps.Clone(s.balances),
		txns:     slices.Clone(s.txns),
		requests: maps.Clone(s.requests),
		outbox:   slices.Clone(s.outbox),
		audit:    slices.Clone(s.audit),
	}
}

// Store holds all data of the memory backend.
type Store struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	committed *state

	configMu  sync.RWMutex
	variants  map[string]*domain.LeaveVariant
	workflows map[string]*domain.WorkflowDefinition
	holidays  []domain.Holiday
	employees map[string]*domain.Employee
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		committed: newState(),
		variants:  make(map[string]*domain.LeaveVariant),
		workflows: make(map[string]*domain.WorkflowDefinition),
		employees: make(map[string]*domain.Employee),
	}
}

// Begin implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.txMu.Lock()

	s.mu.RLock()
	working := s.committed.clone()
	s.mu.RUnlock()

	return &Tx{store: s, working: working}, nil
}

// read runs fn against committed data.
func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.committed)
}

// Tx is a memory transaction.
type Tx struct {
	store   *Store
	working *state
	done    bool
}

// Commit publishes the transaction's writes.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	if err := ctx.Err(); err != nil {
		t.close()
		return err
	}

	t.store.mu.Lock()
	t.store.committed = t.working
	t.store.mu.Unlock()

	t.close()
	return nil
}

// Rollback discards the transaction's writes. It is a no-op after Commit.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.close()
	return nil
}

func (t *Tx) close() {
	t.done = true
	t.working = nil
	t.store.txMu.Unlock()
}

func working(tx usecase.Transaction) (*state, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, errors.New("memory: foreign transaction")
	}
	if t.done {
		return nil, errTxDone
	}
	return t.working, nil
}

func copyBalance(b *domain.BalanceAccount) *domain.BalanceAccount {
	c := *b
	return &c
}

func copyRequest(r *domain.Request) *domain.Request {
	c := *r
	c.ApprovalHistory = slices.Clone(r.ApprovalHistory)
	if r.ScheduledAutoApprovalAt != nil {
		at := *r.ScheduledAutoApprovalAt
		c.ScheduledAutoApprovalAt = &at
	}
	return &c
}

func copyTxn(t *domain.LedgerTransaction) *domain.LedgerTransaction {
	c := *t
	if t.RequestID != nil {
		id := *t.RequestID
		c.RequestID = &id
	}
	return &c
}
