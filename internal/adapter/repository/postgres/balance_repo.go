package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/postgres/generated"
	"github.com/iho/leaveledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	queries *generated.Queries
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(db generated.DBTX) *BalanceRepository {
	return &BalanceRepository{queries: generated.New(db)}
}

// GetOrCreateForUpdate inserts an empty account if none exists, then locks
// the row FOR UPDATE until tx ends.
func (r *BalanceRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, key domain.BalanceKey, now time.Time) (*domain.BalanceAccount, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	err = queries.InsertBalanceAccountIfMissing(ctx, generated.InsertBalanceAccountIfMissingParams{
		EmployeeID:     key.EmployeeID,
		LeaveVariantID: key.LeaveVariantID,
		Year:           int32(key.Year),
		CreatedAt:      timeToPgTimestamptz(now),
	})
	if err != nil {
		return nil, err
	}

	row, err := queries.GetBalanceAccountForUpdate(ctx, generated.GetBalanceAccountForUpdateParams{
		EmployeeID:     key.EmployeeID,
		LeaveVariantID: key.LeaveVariantID,
		Year:           int32(key.Year),
	})
	if err != nil {
		return nil, err
	}

	return rowToBalance(row), nil
}

// Update writes the materialized fields of account.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.BalanceAccount) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateBalanceAccount(ctx, generated.UpdateBalanceAccountParams{
		EmployeeID:       account.EmployeeID,
		LeaveVariantID:   account.LeaveVariantID,
		Year:             int32(account.Year),
		TotalEntitlement: halfDaysToNumeric(account.TotalEntitlement),
		CarryForward:     halfDaysToNumeric(account.CarryForward),
		UsedBalance:      halfDaysToNumeric(account.UsedBalance),
		CurrentBalance:   halfDaysToNumeric(account.CurrentBalance),
		Version:          account.Version,
		UpdatedAt:        timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrBalanceNotFound
	}

	return nil
}

// Get retrieves an account without locking.
func (r *BalanceRepository) Get(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAccount, error) {
	row, err := r.queries.GetBalanceAccount(ctx, generated.GetBalanceAccountParams{
		EmployeeID:     key.EmployeeID,
		LeaveVariantID: key.LeaveVariantID,
		Year:           int32(key.Year),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	return rowToBalance(row), nil
}

// ListByEmployee lists an employee's accounts for year.
func (r *BalanceRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.BalanceAccount, error) {
	rows, err := r.queries.ListBalanceAccountsByEmployee(ctx, generated.ListBalanceAccountsByEmployeeParams{
		EmployeeID: employeeID,
		Year:       int32(year),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.BalanceAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToBalance(row))
	}

	return accounts, nil
}

func rowToBalance(row generated.BalanceAccount) *domain.BalanceAccount {
	return &domain.BalanceAccount{
		EmployeeID:       row.EmployeeID,
		LeaveVariantID:   row.LeaveVariantID,
		Year:             int(row.Year),
		TotalEntitlement: numericToHalfDays(row.TotalEntitlement),
		CarryForward:     numericToHalfDays(row.CarryForward),
		UsedBalance:      numericToHalfDays(row.UsedBalance),
		CurrentBalance:   numericToHalfDays(row.CurrentBalance),
		Version:          row.Version,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}
