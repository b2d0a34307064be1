package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const findWorkflowDefinition = `-- name: FindWorkflowDefinition :one
SELECT id, name, process, sub_process, org_id, steps, created_at, updated_at FROM workflow_definitions
WHERE process = $1 AND sub_process = $2 AND org_id IN ($3, '')
ORDER BY org_id = $3 DESC
LIMIT 1
`

type FindWorkflowDefinitionParams struct {
	Process    string `json:"process"`
	SubProcess string `json:"sub_process"`
	OrgID      string `json:"org_id"`
}

func (q *Queries) FindWorkflowDefinition(ctx context.Context, arg FindWorkflowDefinitionParams) (WorkflowDefinition, error) {
	row := q.db.QueryRow(ctx, findWorkflowDefinition, arg.Process, arg.SubProcess, arg.OrgID)
	var i WorkflowDefinition
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Process,
		&i.SubProcess,
		&i.OrgID,
		&i.Steps,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getEmployee = `-- name: GetEmployee :one
SELECT id, org_id, join_date, manager_id, created_at, updated_at FROM employees WHERE id = $1
`

func (q *Queries) GetEmployee(ctx context.Context, id string) (Employee, error) {
	row := q.db.QueryRow(ctx, getEmployee, id)
	var i Employee
	err := row.Scan(
		&i.ID,
		&i.OrgID,
		&i.JoinDate,
		&i.ManagerID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLeaveVariant = `-- name: GetLeaveVariant :one
SELECT id, org_id, leave_type_id, name, annual_entitlement, accrual_policy, accrual_frequency, deduct_before_workflow, max_carry_forward, created_at, updated_at FROM leave_variants WHERE id = $1
`

func (q *Queries) GetLeaveVariant(ctx context.Context, id string) (LeaveVariant, error) {
	row := q.db.QueryRow(ctx, getLeaveVariant, id)
	return scanLeaveVariant(row)
}

const getLeaveVariantByLeaveType = `-- name: GetLeaveVariantByLeaveType :one
SELECT id, org_id, leave_type_id, name, annual_entitlement, accrual_policy, accrual_frequency, deduct_before_workflow, max_carry_forward, created_at, updated_at FROM leave_variants
WHERE org_id = $1 AND leave_type_id = $2
`

type GetLeaveVariantByLeaveTypeParams struct {
	OrgID       string `json:"org_id"`
	LeaveTypeID string `json:"leave_type_id"`
}

func (q *Queries) GetLeaveVariantByLeaveType(ctx context.Context, arg GetLeaveVariantByLeaveTypeParams) (LeaveVariant, error) {
	row := q.db.QueryRow(ctx, getLeaveVariantByLeaveType, arg.OrgID, arg.LeaveTypeID)
	return scanLeaveVariant(row)
}

const getWorkflowDefinition = `-- name: GetWorkflowDefinition :one
SELECT id, name, process, sub_process, org_id, steps, created_at, updated_at FROM workflow_definitions WHERE id = $1
`

func (q *Queries) GetWorkflowDefinition(ctx context.Context, id string) (WorkflowDefinition, error) {
	row := q.db.QueryRow(ctx, getWorkflowDefinition, id)
	var i WorkflowDefinition
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Process,
		&i.SubProcess,
		&i.OrgID,
		&i.Steps,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listHolidaysBetween = `-- name: ListHolidaysBetween :many
SELECT id, org_id, date, name FROM holidays
WHERE org_id IN ($1, '') AND date BETWEEN $2 AND $3
ORDER BY date
`

type ListHolidaysBetweenParams struct {
	OrgID string      `json:"org_id"`
	From  pgtype.Date `json:"from"`
	To    pgtype.Date `json:"to"`
}

func (q *Queries) ListHolidaysBetween(ctx context.Context, arg ListHolidaysBetweenParams) ([]Holiday, error) {
	rows, err := q.db.Query(ctx, listHolidaysBetween, arg.OrgID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Holiday
	for rows.Next() {
		var i Holiday
		if err := rows.Scan(
			&i.ID,
			&i.OrgID,
			&i.Date,
			&i.Name,
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

const upsertEmployee = `-- name: UpsertEmployee :exec
INSERT INTO employees (id, org_id, join_date, manager_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (id) DO UPDATE
SET org_id = EXCLUDED.org_id, join_date = EXCLUDED.join_date, manager_id = EXCLUDED.manager_id, updated_at = EXCLUDED.updated_at
`

type UpsertEmployeeParams struct {
	ID        string             `json:"id"`
	OrgID     string             `json:"org_id"`
	JoinDate  pgtype.Date        `json:"join_date"`
	ManagerID string             `json:"manager_id"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertEmployee(ctx context.Context, arg UpsertEmployeeParams) error {
	_, err := q.db.Exec(ctx, upsertEmployee,
		arg.ID,
		arg.OrgID,
		arg.JoinDate,
		arg.ManagerID,
		arg.UpdatedAt,
	)
	return err
}

const upsertHoliday = `-- name: UpsertHoliday :exec
INSERT INTO holidays (id, org_id, date, name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET org_id = EXCLUDED.org_id, date = EXCLUDED.date, name = EXCLUDED.name
`

type UpsertHolidayParams struct {
	ID    string      `json:"id"`
	OrgID string      `json:"org_id"`
	Date  pgtype.Date `json:"date"`
	Name  string      `json:"name"`
}

func (q *Queries) UpsertHoliday(ctx context.Context, arg UpsertHolidayParams) error {
	_, err := q.db.Exec(ctx, upsertHoliday,
		arg.ID,
		arg.OrgID,
		arg.Date,
		arg.Name,
	)
	return err
}

const upsertLeaveVariant = `-- name: UpsertLeaveVariant :exec
INSERT INTO leave_variants (id, org_id, leave_type_id, name, annual_entitlement, accrual_policy, accrual_frequency, deduct_before_workflow, max_carry_forward, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (id) DO UPDATE
SET org_id = EXCLUDED.org_id, leave_type_id = EXCLUDED.leave_type_id, name = EXCLUDED.name,
    annual_entitlement = EXCLUDED.annual_entitlement, accrual_policy = EXCLUDED.accrual_policy,
    accrual_frequency = EXCLUDED.accrual_frequency, deduct_before_workflow = EXCLUDED.deduct_before_workflow,
    max_carry_forward = EXCLUDED.max_carry_forward, updated_at = EXCLUDED.updated_at
`

type UpsertLeaveVariantParams struct {
	ID                   string             `json:"id"`
	OrgID                string             `json:"org_id"`
	LeaveTypeID          string             `json:"leave_type_id"`
	Name                 string             `json:"name"`
	AnnualEntitlement    pgtype.Numeric     `json:"annual_entitlement"`
	AccrualPolicy        string             `json:"accrual_policy"`
	AccrualFrequency     string             `json:"accrual_frequency"`
	DeductBeforeWorkflow bool               `json:"deduct_before_workflow"`
	MaxCarryForward      pgtype.Numeric     `json:"max_carry_forward"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertLeaveVariant(ctx context.Context, arg UpsertLeaveVariantParams) error {
	_, err := q.db.Exec(ctx, upsertLeaveVariant,
		arg.ID,
		arg.OrgID,
		arg.LeaveTypeID,
		arg.Name,
		arg.AnnualEntitlement,
		arg.AccrualPolicy,
		arg.AccrualFrequency,
		arg.DeductBeforeWorkflow,
		arg.MaxCarryForward,
		arg.UpdatedAt,
	)
	return err
}

const upsertWorkflowDefinition = `-- name: UpsertWorkflowDefinition :exec
INSERT INTO workflow_definitions (id, name, process, sub_process, org_id, steps, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, process = EXCLUDED.process, sub_process = EXCLUDED.sub_process,
    org_id = EXCLUDED.org_id, steps = EXCLUDED.steps, updated_at = EXCLUDED.updated_at
`

type UpsertWorkflowDefinitionParams struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Process    string             `json:"process"`
	SubProcess string             `json:"sub_process"`
	OrgID      string             `json:"org_id"`
	Steps      []byte             `json:"steps"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertWorkflowDefinition(ctx context.Context, arg UpsertWorkflowDefinitionParams) error {
	_, err := q.db.Exec(ctx, upsertWorkflowDefinition,
		arg.ID,
		arg.Name,
		arg.Process,
		arg.SubProcess,
		arg.OrgID,
		arg.Steps,
		arg.UpdatedAt,
	)
	return err
}

func scanLeaveVariant(row rowScanner) (LeaveVariant, error) {
	var i LeaveVariant
	err := row.Scan(
		&i.ID,
		&i.OrgID,
		&i.LeaveTypeID,
		&i.Name,
		&i.AnnualEntitlement,
		&i.AccrualPolicy,
		&i.AccrualFrequency,
		&i.DeductBeforeWorkflow,
		&i.MaxCarryForward,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
