package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
)

// BalanceUseCase performs balance-checked ledger operations on one account.
// Each call locks the account row in tx, so the balance read and the append
// are atomic with respect to other writers of the same account.
type BalanceUseCase struct {
	ledger  *LedgerUseCase
	metrics *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(ledger *LedgerUseCase, metrics *metrics.Metrics) *BalanceUseCase {
	return &BalanceUseCase{ledger: ledger, metrics: metrics}
}

// CheckAvailable returns domain.ErrInsufficientBalance when amount exceeds the
// current balance. Nothing is written.
func (uc *BalanceUseCase) CheckAvailable(ctx context.Context, tx Transaction, key domain.BalanceKey, amount domain.HalfDays) (*domain.BalanceAccount, error) {
	account, err := uc.ledger.Lock(ctx, tx, key)
	if err != nil {
		return nil, err
	}

	if err := uc.check(account, amount); err != nil {
		return nil, err
	}

	return account, nil
}

// Reserve appends a pending_deduction of amount for requestID.
func (uc *BalanceUseCase) Reserve(ctx context.Context, tx Transaction, key domain.BalanceKey, requestID string, amount domain.HalfDays, description string) (*domain.BalanceAccount, error) {
	return uc.debit(ctx, tx, key, domain.TransactionTypePendingDeduction, requestID, amount, description)
}

// Deduct appends a confirmed deduction of amount for requestID.
func (uc *BalanceUseCase) Deduct(ctx context.Context, tx Transaction, key domain.BalanceKey, requestID string, amount domain.HalfDays, description string) (*domain.BalanceAccount, error) {
	return uc.debit(ctx, tx, key, domain.TransactionTypeDeduction, requestID, amount, description)
}

// Restore appends a credit of amount for requestID.
func (uc *BalanceUseCase) Restore(ctx context.Context, tx Transaction, key domain.BalanceKey, requestID string, amount domain.HalfDays, description string) (*domain.BalanceAccount, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, _, err := uc.ledger.Append(ctx, tx, AppendInput{
		Key:         key,
		Type:        domain.TransactionTypeCredit,
		Amount:      amount,
		Description: description,
		RequestID:   requestID,
	})

	return account, err
}

// Revoke takes back amount granted for requestID with a negative grant.
func (uc *BalanceUseCase) Revoke(ctx context.Context, tx Transaction, key domain.BalanceKey, requestID string, amount domain.HalfDays, description string) (*domain.BalanceAccount, error) {
	return uc.debit(ctx, tx, key, domain.TransactionTypeGrant, requestID, amount, description)
}

// Finalize confirms the reservation held for requestID. The reservation
// already counts as used balance, so nothing is appended.
func (uc *BalanceUseCase) Finalize(ctx context.Context, tx Transaction, key domain.BalanceKey, requestID string) (*domain.BalanceAccount, error) {
	account, err := uc.ledger.Lock(ctx, tx, key)
	if err != nil {
		return nil, err
	}

	txs, err := uc.ledger.TransactionsForRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	if domain.NetDeducted(txs, key.LeaveVariantID) <= 0 {
		return nil, fmt.Errorf("%w: no reservation held for request %s", domain.ErrInvalidTransition, requestID)
	}

	return account, nil
}

func (uc *BalanceUseCase) debit(ctx context.Context, tx Transaction, key domain.BalanceKey, txType domain.TransactionType, requestID string, amount domain.HalfDays, description string) (*domain.BalanceAccount, error) {
	account, err := uc.ledger.Lock(ctx, tx, key)
	if err != nil {
		return nil, err
	}

	if err := uc.check(account, amount); err != nil {
		return nil, err
	}

	_, err = uc.ledger.AppendLocked(ctx, tx, account, AppendInput{
		Key:         key,
		Type:        txType,
		Amount:      amount.Neg(),
		Description: description,
		RequestID:   requestID,
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (uc *BalanceUseCase) check(account *domain.BalanceAccount, amount domain.HalfDays) error {
	err := account.CanReserve(amount)
	if errors.Is(err, domain.ErrInsufficientBalance) && uc.metrics != nil {
		uc.metrics.InsufficientBalance.Inc()
	}
	return err
}
