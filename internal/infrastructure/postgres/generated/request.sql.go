package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const leaveRequestColumns = `id, kind, sub_process, employee_id, org_id, leave_type_id, leave_variant_id, target_variant_id, start_date, end_date, half_day_start, half_day_end, working_days, reason, status, workflow_id, current_step, workflow_status, scheduled_auto_approval_at, approval_history, version, created_at, updated_at`

const createLeaveRequest = `-- name: CreateLeaveRequest :exec
INSERT INTO leave_requests (id, kind, sub_process, employee_id, org_id, leave_type_id, leave_variant_id, target_variant_id, start_date, end_date, half_day_start, half_day_end, working_days, reason, status, workflow_id, current_step, workflow_status, scheduled_auto_approval_at, approval_history, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
`

type CreateLeaveRequestParams struct {
	ID                      string             `json:"id"`
	Kind                    string             `json:"kind"`
	SubProcess              string             `json:"sub_process"`
	EmployeeID              string             `json:"employee_id"`
	OrgID                   string             `json:"org_id"`
	LeaveTypeID             string             `json:"leave_type_id"`
	LeaveVariantID          string             `json:"leave_variant_id"`
	TargetVariantID         string             `json:"target_variant_id"`
	StartDate               pgtype.Date        `json:"start_date"`
	EndDate                 pgtype.Date        `json:"end_date"`
	HalfDayStart            bool               `json:"half_day_start"`
	HalfDayEnd              bool               `json:"half_day_end"`
	WorkingDays             pgtype.Numeric     `json:"working_days"`
	Reason                  string             `json:"reason"`
	Status                  string             `json:"status"`
	WorkflowID              string             `json:"workflow_id"`
	CurrentStep             int32              `json:"current_step"`
	WorkflowStatus          string             `json:"workflow_status"`
	ScheduledAutoApprovalAt pgtype.Timestamptz `json:"scheduled_auto_approval_at"`
	ApprovalHistory         []byte             `json:"approval_history"`
	Version                 int64              `json:"version"`
	CreatedAt               pgtype.Timestamptz `json:"created_at"`
	UpdatedAt               pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateLeaveRequest(ctx context.Context, arg CreateLeaveRequestParams) error {
	_, err := q.db.Exec(ctx, createLeaveRequest,
		arg.ID,
		arg.Kind,
		arg.SubProcess,
		arg.EmployeeID,
		arg.OrgID,
		arg.LeaveTypeID,
		arg.LeaveVariantID,
		arg.TargetVariantID,
		arg.StartDate,
		arg.EndDate,
		arg.HalfDayStart,
		arg.HalfDayEnd,
		arg.WorkingDays,
		arg.Reason,
		arg.Status,
		arg.WorkflowID,
		arg.CurrentStep,
		arg.WorkflowStatus,
		arg.ScheduledAutoApprovalAt,
		arg.ApprovalHistory,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getLeaveRequest = `-- name: GetLeaveRequest :one
SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1
`

func (q *Queries) GetLeaveRequest(ctx context.Context, id string) (LeaveRequest, error) {
	row := q.db.QueryRow(ctx, getLeaveRequest, id)
	return scanLeaveRequest(row)
}

const getLeaveRequestForUpdate = `-- name: GetLeaveRequestForUpdate :one
SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetLeaveRequestForUpdate(ctx context.Context, id string) (LeaveRequest, error) {
	row := q.db.QueryRow(ctx, getLeaveRequestForUpdate, id)
	return scanLeaveRequest(row)
}

const listDueAutoApprovals = `-- name: ListDueAutoApprovals :many
SELECT id FROM leave_requests
WHERE workflow_status = 'in_progress'
  AND scheduled_auto_approval_at IS NOT NULL
  AND scheduled_auto_approval_at <= $1
ORDER BY scheduled_auto_approval_at, id
LIMIT $2
`

type ListDueAutoApprovalsParams struct {
	Now   pgtype.Timestamptz `json:"now"`
	Limit int32              `json:"limit"`
}

func (q *Queries) ListDueAutoApprovals(ctx context.Context, arg ListDueAutoApprovalsParams) ([]string, error) {
	rows, err := q.db.Query(ctx, listDueAutoApprovals, arg.Now, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listLeaveRequests = `-- name: ListLeaveRequests :many
SELECT ` + leaveRequestColumns + ` FROM leave_requests
WHERE ($1::text = '' OR employee_id = $1)
  AND ($2::text = '' OR org_id = $2)
  AND ($3::text = '' OR status = $3)
  AND ($4::text = '' OR kind = $4)
ORDER BY created_at DESC, id
LIMIT $5 OFFSET $6
`

type ListLeaveRequestsParams struct {
	EmployeeID string `json:"employee_id"`
	OrgID      string `json:"org_id"`
	Status     string `json:"status"`
	Kind       string `json:"kind"`
	Limit      int32  `json:"limit"`
	Offset     int32  `json:"offset"`
}

func (q *Queries) ListLeaveRequests(ctx context.Context, arg ListLeaveRequestsParams) ([]LeaveRequest, error) {
	rows, err := q.db.Query(ctx, listLeaveRequests,
		arg.EmployeeID,
		arg.OrgID,
		arg.Status,
		arg.Kind,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LeaveRequest
	for rows.Next() {
		i, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateLeaveRequest = `-- name: UpdateLeaveRequest :execrows
UPDATE leave_requests
SET status = $2, workflow_id = $3, current_step = $4, workflow_status = $5,
    scheduled_auto_approval_at = $6, approval_history = $7, version = $8, updated_at = $9
WHERE id = $1
`

type UpdateLeaveRequestParams struct {
	ID                      string             `json:"id"`
	Status                  string             `json:"status"`
	WorkflowID              string             `json:"workflow_id"`
	CurrentStep             int32              `json:"current_step"`
	WorkflowStatus          string             `json:"workflow_status"`
	ScheduledAutoApprovalAt pgtype.Timestamptz `json:"scheduled_auto_approval_at"`
	ApprovalHistory         []byte             `json:"approval_history"`
	Version                 int64              `json:"version"`
	UpdatedAt               pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLeaveRequest(ctx context.Context, arg UpdateLeaveRequestParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLeaveRequest,
		arg.ID,
		arg.Status,
		arg.WorkflowID,
		arg.CurrentStep,
		arg.WorkflowStatus,
		arg.ScheduledAutoApprovalAt,
		arg.ApprovalHistory,
		arg.Version,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeaveRequest(row rowScanner) (LeaveRequest, error) {
	var i LeaveRequest
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.SubProcess,
		&i.EmployeeID,
		&i.OrgID,
		&i.LeaveTypeID,
		&i.LeaveVariantID,
		&i.TargetVariantID,
		&i.StartDate,
		&i.EndDate,
		&i.HalfDayStart,
		&i.HalfDayEnd,
		&i.WorkingDays,
		&i.Reason,
		&i.Status,
		&i.WorkflowID,
		&i.CurrentStep,
		&i.WorkflowStatus,
		&i.ScheduledAutoApprovalAt,
		&i.ApprovalHistory,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
