package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/postgres/generated"
	"github.com/iho/leaveledger/internal/usecase"
)

// LedgerTransactionRepository implements usecase.LedgerTransactionRepository.
type LedgerTransactionRepository struct {
	queries *generated.Queries
}

// NewLedgerTransactionRepository creates a new LedgerTransactionRepository.
func NewLedgerTransactionRepository(db generated.DBTX) *LedgerTransactionRepository {
	return &LedgerTransactionRepository{queries: generated.New(db)}
}

// Create appends a transaction within tx.
func (r *LedgerTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.LedgerTransaction) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateLedgerTransaction(ctx, generated.CreateLedgerTransactionParams{
		ID:             txn.ID,
		EmployeeID:     txn.EmployeeID,
		LeaveVariantID: txn.LeaveVariantID,
		Year:           int32(txn.Year),
		Type:           string(txn.Type),
		Amount:         halfDaysToNumeric(txn.Amount),
		BalanceAfter:   halfDaysToNumeric(txn.BalanceAfter),
		Description:    txn.Description,
		RequestID:      textFromPtr(txn.RequestID),
		CreatedAt:      timeToPgTimestamptz(txn.CreatedAt),
	})
}

// List returns an employee's transactions in append order.
func (r *LedgerTransactionRepository) List(ctx context.Context, employeeID string, variantID *string, year *int) ([]*domain.LedgerTransaction, error) {
	params := generated.ListLedgerTransactionsParams{
		EmployeeID:     employeeID,
		LeaveVariantID: textFromPtr(variantID),
	}
	if year != nil {
		params.Year = pgtype.Int4{Int32: int32(*year), Valid: true}
	}

	rows, err := r.queries.ListLedgerTransactions(ctx, params)
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListByRequest returns the transactions linked to a request, seen by tx.
func (r *LedgerTransactionRepository) ListByRequest(ctx context.Context, tx usecase.Transaction, requestID string) ([]*domain.LedgerTransaction, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListLedgerTransactionsByRequest(ctx, pgtype.Text{String: requestID, Valid: true})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

func rowsToTransactions(rows []generated.LedgerTransaction) []*domain.LedgerTransaction {
	txns := make([]*domain.LedgerTransaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, &domain.LedgerTransaction{
			ID:             row.ID,
			EmployeeID:     row.EmployeeID,
			LeaveVariantID: row.LeaveVariantID,
			Year:           int(row.Year),
			Type:           domain.TransactionType(row.Type),
			Amount:         numericToHalfDays(row.Amount),
			BalanceAfter:   numericToHalfDays(row.BalanceAfter),
			Description:    row.Description,
			RequestID:      textPtr(row.RequestID),
			CreatedAt:      row.CreatedAt.Time,
		})
	}
	return txns
}
