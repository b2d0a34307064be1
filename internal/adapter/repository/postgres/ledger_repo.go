package postgres

import (
	"context"

	"github.com/iho/leaveledger/internal/infrastructure/postgres/generated"
	"github.com/iho/leaveledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// BalanceSums pages through accounts ordered by key, each with the sum and
// count of its transactions.
func (r *LedgerRepository) BalanceSums(ctx context.Context, limit, offset int) ([]usecase.BalanceSum, error) {
	rows, err := r.queries.ListBalanceSums(ctx, generated.ListBalanceSumsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	sums := make([]usecase.BalanceSum, 0, len(rows))
	for _, row := range rows {
		sums = append(sums, usecase.BalanceSum{
			Account: rowToBalance(generated.BalanceAccount{
				EmployeeID:       row.EmployeeID,
				LeaveVariantID:   row.LeaveVariantID,
				Year:             row.Year,
				TotalEntitlement: row.TotalEntitlement,
				CarryForward:     row.CarryForward,
				UsedBalance:      row.UsedBalance,
				CurrentBalance:   row.CurrentBalance,
				Version:          row.Version,
				CreatedAt:        row.CreatedAt,
				UpdatedAt:        row.UpdatedAt,
			}),
			TransactionSum:   numericToHalfDays(row.TransactionSum),
			TransactionCount: row.TransactionCount,
		})
	}

	return sums, nil
}
