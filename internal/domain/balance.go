package domain

import (
	"fmt"
	"time"
)

// BalanceKey identifies a balance account and its ledger.
type BalanceKey struct {
	EmployeeID     string
	LeaveVariantID string
	Year           int
}

func (k BalanceKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.EmployeeID, k.LeaveVariantID, k.Year)
}

// BalanceAccount is the materialized summary of one ledger.
// CurrentBalance = TotalEntitlement + CarryForward - UsedBalance, and equals the
// sum of the ledger's transaction amounts.
type BalanceAccount struct {
	EmployeeID       string
	LeaveVariantID   string
	Year             int
	TotalEntitlement HalfDays
	CarryForward     HalfDays
	UsedBalance      HalfDays
	CurrentBalance   HalfDays
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBalanceAccount returns an empty account for key.
func NewBalanceAccount(key BalanceKey, now time.Time) *BalanceAccount {
	return &BalanceAccount{
		EmployeeID:     key.EmployeeID,
		LeaveVariantID: key.LeaveVariantID,
		Year:           key.Year,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Key returns the account's identity.
func (b *BalanceAccount) Key() BalanceKey {
	return BalanceKey{EmployeeID: b.EmployeeID, LeaveVariantID: b.LeaveVariantID, Year: b.Year}
}

// CanReserve reports whether amount is covered by the current balance.
func (b *BalanceAccount) CanReserve(amount HalfDays) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if b.CurrentBalance < amount {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientBalance, amount, b.CurrentBalance)
	}
	return nil
}

// Apply moves the materialized fields by a signed ledger amount.
func (b *BalanceAccount) Apply(txType TransactionType, amount HalfDays) error {
	if err := txType.ValidateAmount(amount); err != nil {
		return err
	}

	switch txType {
	case TransactionTypeGrant:
		b.TotalEntitlement += amount
	case TransactionTypeCarryForward:
		b.CarryForward += amount
	case TransactionTypeDeduction, TransactionTypePendingDeduction, TransactionTypeCredit:
		b.UsedBalance -= amount
	}

	b.CurrentBalance += amount
	b.Version++

	return nil
}

// CheckInvariant verifies the materialized fields agree with each other.
func (b *BalanceAccount) CheckInvariant() error {
	expected := b.TotalEntitlement + b.CarryForward - b.UsedBalance
	if b.CurrentBalance != expected {
		return fmt.Errorf("%w: %s current %d, entitlement+carry-used %d",
			ErrLedgerInconsistency, b.Key(), b.CurrentBalance, expected)
	}
	return nil
}
