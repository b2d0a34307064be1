package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	store *Store
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(store *Store) *BalanceRepository {
	return &BalanceRepository{store: store}
}

// GetOrCreateForUpdate returns the account for key, creating it if absent.
// The transaction already holds the store lock.
func (r *BalanceRepository) GetOrCreateForUpdate(_ context.Context, tx usecase.Transaction, key domain.BalanceKey, now time.Time) (*domain.BalanceAccount, error) {
	st, err := working(tx)
	if err != nil {
		return nil, err
	}

	account, ok := st.balances[key]
	if !ok {
		account = domain.NewBalanceAccount(key, now)
		st.balances[key] = account
	}

	return copyBalance(account), nil
}

// Update stores account.
func (r *BalanceRepository) Update(_ context.Context, tx usecase.Transaction, account *domain.BalanceAccount) error {
	st, err := working(tx)
	if err != nil {
		return err
	}

	if _, ok := st.balances[account.Key()]; !ok {
		return domain.ErrBalanceNotFound
	}
	st.balances[account.Key()] = copyBalance(account)

	return nil
}

// Get returns the committed account for key.
func (r *BalanceRepository) Get(_ context.Context, key domain.BalanceKey) (*domain.BalanceAccount, error) {
	var account *domain.BalanceAccount
	r.store.read(func(st *state) {
		if a, ok := st.balances[key]; ok {
			account = copyBalance(a)
		}
	})
	if account == nil {
		return nil, domain.ErrBalanceNotFound
	}
	return account, nil
}

// ListByEmployee lists an employee's accounts for year ordered by variant.
func (r *BalanceRepository) ListByEmployee(_ context.Context, employeeID string, year int) ([]*domain.BalanceAccount, error) {
	var accounts []*domain.BalanceAccount
	r.store.read(func(st *state) {
		for key, a := range st.balances {
			if key.EmployeeID == employeeID && key.Year == year {
				accounts = append(accounts, copyBalance(a))
			}
		}
	})

	slices.SortFunc(accounts, func(a, b *domain.BalanceAccount) int {
		return cmp.Compare(a.LeaveVariantID, b.LeaveVariantID)
	})

	return accounts, nil
}

// LedgerTransactionRepository implements usecase.LedgerTransactionRepository.
type LedgerTransactionRepository struct {
	store *Store
}

// NewLedgerTransactionRepository creates a new LedgerTransactionRepository.
func NewLedgerTransactionRepository(store *Store) *LedgerTransactionRepository {
	return &LedgerTransactionRepository{store: store}
}

// Create appends txn.
func (r *LedgerTransactionRepository) Create(_ context.Context, tx usecase.Transaction, txn *domain.LedgerTransaction) error {
	st, err := working(tx)
	if err != nil {
		return err
	}
	st.txns = append(st.txns, copyTxn(txn))
	return nil
}

// List returns committed transactions in append order.
func (r *LedgerTransactionRepository) List(_ context.Context, employeeID string, variantID *string, year *int) ([]*domain.LedgerTransaction, error) {
	var txns []*domain.LedgerTransaction
	r.store.read(func(st *state) {
		for _, t := range st.txns {
			if t.EmployeeID != employeeID {
				continue
			}
			if variantID != nil && t.LeaveVariantID != *variantID {
				continue
			}
			if year != nil && t.Year != *year {
				continue
			}
			txns = append(txns, copyTxn(t))
		}
	})
	return txns, nil
}

// ListByRequest returns the transactions linked to requestID, including those
// written earlier in tx.
func (r *LedgerTransactionRepository) ListByRequest(_ context.Context, tx usecase.Transaction, requestID string) ([]*domain.LedgerTransaction, error) {
	st, err := working(tx)
	if err != nil {
		return nil, err
	}

	var txns []*domain.LedgerTransaction
	for _, t := range st.txns {
		if t.RequestID != nil && *t.RequestID == requestID {
			txns = append(txns, copyTxn(t))
		}
	}
	return txns, nil
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// BalanceSums pages through accounts ordered by key.
func (r *LedgerRepository) BalanceSums(_ context.Context, limit, offset int) ([]usecase.BalanceSum, error) {
	var sums []usecase.BalanceSum

	r.store.read(func(st *state) {
		keys := make([]domain.BalanceKey, 0, len(st.balances))
		for key := range st.balances {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, compareKeys)

		if offset >= len(keys) {
			return
		}
		keys = keys[offset:min(offset+limit, len(keys))]

		index := make(map[domain.BalanceKey]int, len(keys))
		for i, key := range keys {
			index[key] = i
			sums = append(sums, usecase.BalanceSum{Account: copyBalance(st.balances[key])})
		}

		for _, t := range st.txns {
			if i, ok := index[t.Key()]; ok {
				sums[i].TransactionSum += t.Amount
				sums[i].TransactionCount++
			}
		}
	})

	return sums, nil
}

func compareKeys(a, b domain.BalanceKey) int {
	return cmp.Or(
		cmp.Compare(a.EmployeeID, b.EmployeeID),
		cmp.Compare(a.LeaveVariantID, b.LeaveVariantID),
		cmp.Compare(a.Year, b.Year),
	)
}
