package domain

import (
	"fmt"
	"time"
)

// TransactionType classifies a ledger transaction.
type TransactionType string

const (
	TransactionTypeGrant            TransactionType = "grant"
	TransactionTypeDeduction        TransactionType = "deduction"
	TransactionTypeCredit           TransactionType = "credit"
	TransactionTypePendingDeduction TransactionType = "pending_deduction"
	TransactionTypeCarryForward     TransactionType = "carry_forward"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeGrant, TransactionTypeDeduction, TransactionTypeCredit,
		TransactionTypePendingDeduction, TransactionTypeCarryForward:
		return true
	}
	return false
}

// ValidateAmount checks the sign of amount for the type.
// Grants may be negative (entitlement corrections) but never zero.
func (t TransactionType) ValidateAmount(amount HalfDays) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t)
	}

	switch t {
	case TransactionTypeDeduction, TransactionTypePendingDeduction:
		if amount >= 0 {
			return fmt.Errorf("%w: %s amount must be negative", ErrInvalidAmount, t)
		}
	case TransactionTypeCredit, TransactionTypeCarryForward:
		if amount <= 0 {
			return fmt.Errorf("%w: %s amount must be positive", ErrInvalidAmount, t)
		}
	case TransactionTypeGrant:
		if amount == 0 {
			return fmt.Errorf("%w: grant amount must not be zero", ErrInvalidAmount)
		}
	}

	return nil
}

// IsDebit reports whether the type consumes balance.
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeDeduction || t == TransactionTypePendingDeduction
}

// LedgerTransaction is an immutable ledger record.
type LedgerTransaction struct {
	ID             string
	EmployeeID     string
	LeaveVariantID string
	Year           int
	Type           TransactionType
	Amount         HalfDays
	BalanceAfter   HalfDays
	Description    string
	RequestID      *string
	CreatedAt      time.Time
}

// Key returns the ledger the transaction belongs to.
func (t *LedgerTransaction) Key() BalanceKey {
	return BalanceKey{EmployeeID: t.EmployeeID, LeaveVariantID: t.LeaveVariantID, Year: t.Year}
}

// SumAmounts returns the running total of txs.
func SumAmounts(txs []*LedgerTransaction) HalfDays {
	var total HalfDays
	for _, tx := range txs {
		total += tx.Amount
	}
	return total
}

// NetDeducted returns how much of the variant's balance is still consumed by
// the request: debits minus the credits already restoring them.
func NetDeducted(txs []*LedgerTransaction, variantID string) HalfDays {
	var net HalfDays
	for _, tx := range txs {
		if tx.LeaveVariantID != variantID {
			continue
		}
		if tx.Type.IsDebit() || tx.Type == TransactionTypeCredit {
			net -= tx.Amount
		}
	}
	return net
}

// HasType reports whether any transaction of type t exists for the variant.
func HasType(txs []*LedgerTransaction, variantID string, t TransactionType) bool {
	for _, tx := range txs {
		if tx.LeaveVariantID == variantID && tx.Type == t {
			return true
		}
	}
	return false
}

// SumOfType sums the amounts of transactions of type t for the variant.
func SumOfType(txs []*LedgerTransaction, variantID string, t TransactionType) HalfDays {
	var total HalfDays
	for _, tx := range txs {
		if tx.LeaveVariantID == variantID && tx.Type == t {
			total += tx.Amount
		}
	}
	return total
}
