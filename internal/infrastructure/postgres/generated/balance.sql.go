package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getBalanceAccount = `-- name: GetBalanceAccount :one
SELECT employee_id, leave_variant_id, year, total_entitlement, carry_forward, used_balance, current_balance, version, created_at, updated_at FROM balance_accounts
WHERE employee_id = $1 AND leave_variant_id = $2 AND year = $3
`

type GetBalanceAccountParams struct {
	EmployeeID     string `json:"employee_id"`
	LeaveVariantID string `json:"leave_variant_id"`
	Year           int32  `json:"year"`
}

func (q *Queries) GetBalanceAccount(ctx context.Context, arg GetBalanceAccountParams) (BalanceAccount, error) {
	row := q.db.QueryRow(ctx, getBalanceAccount, arg.EmployeeID, arg.LeaveVariantID, arg.Year)
	var i BalanceAccount
	err := row.Scan(
		&i.EmployeeID,
		&i.LeaveVariantID,
		&i.Year,
		&i.TotalEntitlement,
		&i.CarryForward,
		&i.UsedBalance,
		&i.CurrentBalance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getBalanceAccountForUpdate = `-- name: GetBalanceAccountForUpdate :one
SELECT employee_id, leave_variant_id, year, total_entitlement, carry_forward, used_balance, current_balance, version, created_at, updated_at FROM balance_accounts
WHERE employee_id = $1 AND leave_variant_id = $2 AND year = $3
FOR UPDATE
`

type GetBalanceAccountForUpdateParams struct {
	EmployeeID     string `json:"employee_id"`
	LeaveVariantID string `json:"leave_variant_id"`
	Year           int32  `json:"year"`
}

func (q *Queries) GetBalanceAccountForUpdate(ctx context.Context, arg GetBalanceAccountForUpdateParams) (BalanceAccount, error) {
	row := q.db.QueryRow(ctx, getBalanceAccountForUpdate, arg.EmployeeID, arg.LeaveVariantID, arg.Year)
	var i BalanceAccount
	err := row.Scan(
		&i.EmployeeID,
		&i.LeaveVariantID,
		&i.Year,
		&i.TotalEntitlement,
		&i.CarryForward,
		&i.UsedBalance,
		&i.CurrentBalance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertBalanceAccountIfMissing = `-- name: InsertBalanceAccountIfMissing :exec
INSERT INTO balance_accounts (employee_id, leave_variant_id, year, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (employee_id, leave_variant_id, year) DO NOTHING
`

type InsertBalanceAccountIfMissingParams struct {
	EmployeeID     string             `json:"employee_id"`
	LeaveVariantID string             `json:"leave_variant_id"`
	Year           int32              `json:"year"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) InsertBalanceAccountIfMissing(ctx context.Context, arg InsertBalanceAccountIfMissingParams) error {
	_, err := q.db.Exec(ctx, insertBalanceAccountIfMissing,
		arg.EmployeeID,
		arg.LeaveVariantID,
		arg.Year,
		arg.CreatedAt,
	)
	return err
}

const listBalanceAccountsByEmployee = `-- name: ListBalanceAccountsByEmployee :many
SELECT employee_id, leave_variant_id, year, total_entitlement, carry_forward, used_balance, current_balance, version, created_at, updated_at FROM balance_accounts
WHERE employee_id = $1 AND year = $2
ORDER BY leave_variant_id
`

type ListBalanceAccountsByEmployeeParams struct {
	EmployeeID string `json:"employee_id"`
	Year       int32  `json:"year"`
}

func (q *Queries) ListBalanceAccountsByEmployee(ctx context.Context, arg ListBalanceAccountsByEmployeeParams) ([]BalanceAccount, error) {
	rows, err := q.db.Query(ctx, listBalanceAccountsByEmployee, arg.EmployeeID, arg.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BalanceAccount
	for rows.Next() {
		var i BalanceAccount
		if err := rows.Scan(
			&i.EmployeeID,
			&i.LeaveVariantID,
			&i.Year,
			&i.TotalEntitlement,
			&i.CarryForward,
			&i.UsedBalance,
			&i.CurrentBalance,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listBalanceSums = `-- name: ListBalanceSums :many
SELECT b.employee_id, b.leave_variant_id, b.year, b.total_entitlement, b.carry_forward, b.used_balance, b.current_balance, b.version, b.created_at, b.updated_at,
       COALESCE(SUM(t.amount), 0)::numeric AS transaction_sum,
       COUNT(t.id) AS transaction_count
FROM balance_accounts b
LEFT JOIN ledger_transactions t
  ON t.employee_id = b.employee_id AND t.leave_variant_id = b.leave_variant_id AND t.year = b.year
GROUP BY b.employee_id, b.leave_variant_id, b.year
ORDER BY b.employee_id, b.leave_variant_id, b.year
LIMIT $1 OFFSET $2
`

type ListBalanceSumsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type ListBalanceSumsRow struct {
	EmployeeID       string             `json:"employee_id"`
	LeaveVariantID   string             `json:"leave_variant_id"`
	Year             int32              `json:"year"`
	TotalEntitlement pgtype.Numeric     `json:"total_entitlement"`
	CarryForward     pgtype.Numeric     `json:"carry_forward"`
	UsedBalance      pgtype.Numeric     `json:"used_balance"`
	CurrentBalance   pgtype.Numeric     `json:"current_balance"`
	Version          int64              `json:"version"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
	TransactionSum   pgtype.Numeric     `json:"transaction_sum"`
	TransactionCount int64              `json:"transaction_count"`
}

func (q *Queries) ListBalanceSums(ctx context.Context, arg ListBalanceSumsParams) ([]ListBalanceSumsRow, error) {
	rows, err := q.db.Query(ctx, listBalanceSums, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListBalanceSumsRow
	for rows.Next() {
		var i ListBalanceSumsRow
		if err := rows.Scan(
			&i.EmployeeID,
			&i.LeaveVariantID,
			&i.Year,
			&i.TotalEntitlement,
			&i.CarryForward,
			&i.UsedBalance,
			&i.CurrentBalance,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.TransactionSum,
			&i.TransactionCount,
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

const updateBalanceAccount = `-- name: UpdateBalanceAccount :execrows
UPDATE balance_accounts
SET total_entitlement = $4, carry_forward = $5, used_balance = $6, current_balance = $7, version = $8, updated_at = $9
WHERE employee_id = $1 AND leave_variant_id = $2 AND year = $3
`

type UpdateBalanceAccountParams struct {
	EmployeeID       string             `json:"employee_id"`
	LeaveVariantID   string             `json:"leave_variant_id"`
	Year             int32              `json:"year"`
	TotalEntitlement pgtype.Numeric     `json:"total_entitlement"`
	CarryForward     pgtype.Numeric     `json:"carry_forward"`
	UsedBalance      pgtype.Numeric     `json:"used_balance"`
	CurrentBalance   pgtype.Numeric     `json:"current_balance"`
	Version          int64              `json:"version"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateBalanceAccount(ctx context.Context, arg UpdateBalanceAccountParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateBalanceAccount,
		arg.EmployeeID,
		arg.LeaveVariantID,
		arg.Year,
		arg.TotalEntitlement,
		arg.CarryForward,
		arg.UsedBalance,
		arg.CurrentBalance,
		arg.Version,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
