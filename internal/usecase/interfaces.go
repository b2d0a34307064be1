package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/leaveledger/internal/domain"
)

// BalanceRepository defines data access for materialized balance accounts.
type BalanceRepository interface {
	// GetOrCreateForUpdate locks the account row for key, inserting an empty
	// account first when none exists.
	GetOrCreateForUpdate(ctx context.Context, tx Transaction, key domain.BalanceKey, now time.Time) (*domain.BalanceAccount, error)
	Update(ctx context.Context, tx Transaction, account *domain.BalanceAccount) error
	Get(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAccount, error)
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.BalanceAccount, error)
}

// LedgerTransactionRepository defines data access for the append-only ledger.
type LedgerTransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.LedgerTransaction) error
	// List returns transactions ordered by creation; nil filters match all.
	List(ctx context.Context, employeeID string, variantID *string, year *int) ([]*domain.LedgerTransaction, error)
	ListByRequest(ctx context.Context, tx Transaction, requestID string) ([]*domain.LedgerTransaction, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// BalanceSums pairs each balance account with the sum of its transactions.
	BalanceSums(ctx context.Context, limit, offset int) ([]BalanceSum, error)
}

// BalanceSum is a balance account and the aggregate of its ledger.
type BalanceSum struct {
	Account          *domain.BalanceAccount
	TransactionSum   domain.HalfDays
	TransactionCount int64
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	EmployeeID string
	OrgID      string
	Status     domain.RequestStatus
	Kind       domain.RequestKind
	Limit      int
	Offset     int
}

// RequestRepository defines data access for requests.
type RequestRepository interface {
	Create(ctx context.Context, tx Transaction, req *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Request, error)
	Update(ctx context.Context, tx Transaction, req *domain.Request) error
	List(ctx context.Context, filter RequestFilter) ([]*domain.Request, error)
	// ListDueForAutoApproval returns IDs of in-progress requests whose
	// scheduled auto approval is at or before now.
	ListDueForAutoApproval(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// VariantRepository looks up leave variant configuration.
type VariantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.LeaveVariant, error)
	GetByLeaveType(ctx context.Context, orgID, leaveTypeID string) (*domain.LeaveVariant, error)
}

// WorkflowRepository looks up workflow definitions.
type WorkflowRepository interface {
	GetByID(ctx context.Context, id string) (*domain.WorkflowDefinition, error)
	// Find returns the definition for the triple, falling back to one with an
	// empty org. domain.ErrWorkflowNotFound when none applies.
	Find(ctx context.Context, process, subProcess, orgID string) (*domain.WorkflowDefinition, error)
}

// HolidayRepository lists org holidays.
type HolidayRepository interface {
	ListBetween(ctx context.Context, orgID string, from, to time.Time) ([]domain.Holiday, error)
}

// EmployeeDirectory is the external source of employee records.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID string) (*domain.Employee, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request may be retried.
	Release(ctx context.Context, key string) error
}
