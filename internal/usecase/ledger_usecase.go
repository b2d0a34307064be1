package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
)

// LedgerUseCase appends to and reads from the leave ledger. Every append runs
// inside a database transaction that also updates the owning balance account.
type LedgerUseCase struct {
	txManager   TransactionManager
	balanceRepo BalanceRepository
	txnRepo     LedgerTransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	txnRepo LedgerTransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		balanceRepo: balanceRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     metrics,
		now:         utcNow,
	}
}

// WithClock replaces the time source.
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// AppendInput describes a ledger transaction to append.
type AppendInput struct {
	Key         domain.BalanceKey
	Type        domain.TransactionType
	Amount      domain.HalfDays
	Description string
	RequestID   string
}

func (in AppendInput) validate() error {
	if in.Key.EmployeeID == "" || in.Key.LeaveVariantID == "" || in.Key.Year <= 0 {
		return fmt.Errorf("%w: employee, variant and year are required", domain.ErrMissingField)
	}
	return in.Type.ValidateAmount(in.Amount)
}

// Lock locks the balance account for key within tx, creating it if absent.
func (uc *LedgerUseCase) Lock(ctx context.Context, tx Transaction, key domain.BalanceKey) (*domain.BalanceAccount, error) {
	return uc.balanceRepo.GetOrCreateForUpdate(ctx, tx, key, uc.now())
}

// Append locks the owning account and appends in within tx.
func (uc *LedgerUseCase) Append(ctx context.Context, tx Transaction, in AppendInput) (*domain.BalanceAccount, *domain.LedgerTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	account, err := uc.Lock(ctx, tx, in.Key)
	if err != nil {
		return nil, nil, err
	}

	txn, err := uc.AppendLocked(ctx, tx, account, in)
	if err != nil {
		return nil, nil, err
	}

	return account, txn, nil
}

// AppendLocked appends in to an account already locked by Lock in the same tx.
// account is updated in place.
func (uc *LedgerUseCase) AppendLocked(ctx context.Context, tx Transaction, account *domain.BalanceAccount, in AppendInput) (*domain.LedgerTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if account.Key() != in.Key {
		return nil, fmt.Errorf("append to %s with account %s locked", in.Key, account.Key())
	}

	start := time.Now()
	now := uc.now()

	if err := account.Apply(in.Type, in.Amount); err != nil {
		return nil, err
	}
	account.UpdatedAt = now

	txn := &domain.LedgerTransaction{
		ID:             uc.idGen.Generate(),
		EmployeeID:     in.Key.EmployeeID,
		LeaveVariantID: in.Key.LeaveVariantID,
		Year:           in.Key.Year,
		Type:           in.Type,
		Amount:         in.Amount,
		BalanceAfter:   account.CurrentBalance,
		Description:    in.Description,
		CreatedAt:      now,
	}
	if in.RequestID != "" {
		requestID := in.RequestID
		txn.RequestID = &requestID
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.balanceRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   in.Key.String(),
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeLedgerTransactionAppended,
		Payload: domain.MarshalState(domain.TransactionAppendedEvent{
			TransactionID:  txn.ID,
			EmployeeID:     txn.EmployeeID,
			LeaveVariantID: txn.LeaveVariantID,
			Year:           txn.Year,
			Type:           string(txn.Type),
			Amount:         txn.Amount.Days().String(),
			BalanceAfter:   txn.BalanceAfter.Days().String(),
			RequestID:      in.RequestID,
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LedgerTransactions.WithLabelValues(string(in.Type)).Inc()
		uc.metrics.LedgerAppendDuration.Observe(time.Since(start).Seconds())
	}

	return txn, nil
}

// AppendTransaction appends in within its own database transaction.
func (uc *LedgerUseCase) AppendTransaction(ctx context.Context, in AppendInput) (*domain.BalanceAccount, *domain.LedgerTransaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, txn, err := uc.Append(txCtx, tx, in)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, err
	}

	return account, txn, nil
}

// TransactionsFor returns an employee's transactions in append order.
// variantID and year are optional filters.
func (uc *LedgerUseCase) TransactionsFor(ctx context.Context, employeeID string, variantID *string, year *int) ([]*domain.LedgerTransaction, error) {
	return uc.txnRepo.List(ctx, employeeID, variantID, year)
}

// TransactionsForRequest returns the transactions linked to a request within tx.
func (uc *LedgerUseCase) TransactionsForRequest(ctx context.Context, tx Transaction, requestID string) ([]*domain.LedgerTransaction, error) {
	return uc.txnRepo.ListByRequest(ctx, tx, requestID)
}

// BalanceFor returns the balance account for key, domain.ErrBalanceNotFound if
// no transaction has touched it yet.
func (uc *LedgerUseCase) BalanceFor(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAccount, error) {
	return uc.balanceRepo.Get(ctx, key)
}

// BalancesFor lists an employee's accounts for year.
func (uc *LedgerUseCase) BalancesFor(ctx context.Context, employeeID string, year int) ([]*domain.BalanceAccount, error) {
	return uc.balanceRepo.ListByEmployee(ctx, employeeID, year)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
