package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerTransaction = `-- name: CreateLedgerTransaction :exec
INSERT INTO ledger_transactions (id, employee_id, leave_variant_id, year, type, amount, balance_after, description, request_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateLedgerTransactionParams struct {
	ID             string             `json:"id"`
	EmployeeID     string             `json:"employee_id"`
	LeaveVariantID string             `json:"leave_variant_id"`
	Year           int32              `json:"year"`
	Type           string             `json:"type"`
	Amount         pgtype.Numeric     `json:"amount"`
	BalanceAfter   pgtype.Numeric     `json:"balance_after"`
	Description    string             `json:"description"`
	RequestID      pgtype.Text        `json:"request_id"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateLedgerTransaction(ctx context.Context, arg CreateLedgerTransactionParams) error {
	_, err := q.db.Exec(ctx, createLedgerTransaction,
		arg.ID,
		arg.EmployeeID,
		arg.LeaveVariantID,
		arg.Year,
		arg.Type,
		arg.Amount,
		arg.BalanceAfter,
		arg.Description,
		arg.RequestID,
		arg.CreatedAt,
	)
	return err
}

const listLedgerTransactions = `-- name: ListLedgerTransactions :many
SELECT id, seq, employee_id, leave_variant_id, year, type, amount, balance_after, description, request_id, created_at FROM ledger_transactions
WHERE employee_id = $1
  AND ($2::text IS NULL OR leave_variant_id = $2::text)
  AND ($3::integer IS NULL OR year = $3::integer)
ORDER BY seq
`

type ListLedgerTransactionsParams struct {
	EmployeeID     string      `json:"employee_id"`
	LeaveVariantID pgtype.Text `json:"leave_variant_id"`
	Year           pgtype.Int4 `json:"year"`
}

func (q *Queries) ListLedgerTransactions(ctx context.Context, arg ListLedgerTransactionsParams) ([]LedgerTransaction, error) {
	rows, err := q.db.Query(ctx, listLedgerTransactions, arg.EmployeeID, arg.LeaveVariantID, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerTransaction
	for rows.Next() {
		var i LedgerTransaction
		if err := rows.Scan(
			&i.ID,
			&i.Seq,
			&i.EmployeeID,
			&i.LeaveVariantID,
			&i.Year,
			&i.Type,
			&i.Amount,
			&i.BalanceAfter,
			&i.Description,
			&i.RequestID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listLedgerTransactionsByRequest = `-- name: ListLedgerTransactionsByRequest :many
SELECT id, seq, employee_id, leave_variant_id, year, type, amount, balance_after, description, request_id, created_at FROM ledger_transactions
WHERE request_id = $1
ORDER BY seq
`

func (q *Queries) ListLedgerTransactionsByRequest(ctx context.Context, requestID pgtype.Text) ([]LedgerTransaction, error) {
	rows, err := q.db.Query(ctx, listLedgerTransactionsByRequest, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerTransaction
	for rows.Next() {
		var i LedgerTransaction
		if err := rows.Scan(
			&i.ID,
			&i.Seq,
			&i.EmployeeID,
			&i.LeaveVariantID,
			&i.Year,
			&i.Type,
			&i.Amount,
			&i.BalanceAfter,
			&i.Description,
			&i.RequestID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
