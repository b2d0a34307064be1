package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/postgres/generated"
	"github.com/iho/leaveledger/internal/usecase"
)

// RequestRepository implements usecase.RequestRepository.
type RequestRepository struct {
	queries *generated.Queries
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(db generated.DBTX) *RequestRepository {
	return &RequestRepository{queries: generated.New(db)}
}

// Create inserts req with version 1.
func (r *RequestRepository) Create(ctx context.Context, tx usecase.Transaction, req *domain.Request) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	history, err := json.Marshal(req.ApprovalHistory)
	if err != nil {
		return fmt.Errorf("marshal approval history: %w", err)
	}

	err = queries.CreateLeaveRequest(ctx, generated.CreateLeaveRequestParams{
		ID:                      req.ID,
		Kind:                    string(req.Kind),
		SubProcess:              req.SubProcess,
		EmployeeID:              req.EmployeeID,
		OrgID:                   req.OrgID,
		LeaveTypeID:             req.LeaveTypeID,
		LeaveVariantID:          req.LeaveVariantID,
		TargetVariantID:         req.TargetVariantID,
		StartDate:               dateToPg(req.StartDate),
		EndDate:                 dateToPg(req.EndDate),
		HalfDayStart:            req.HalfDayStart,
		HalfDayEnd:              req.HalfDayEnd,
		WorkingDays:             halfDaysToNumeric(req.WorkingDays),
		Reason:                  req.Reason,
		Status:                  string(req.Status),
		WorkflowID:              req.WorkflowID,
		CurrentStep:             int32(req.CurrentStep),
		WorkflowStatus:          string(req.WorkflowStatus),
		ScheduledAutoApprovalAt: optionalTimestamptz(req.ScheduledAutoApprovalAt),
		ApprovalHistory:         history,
		Version:                 1,
		CreatedAt:               timeToPgTimestamptz(req.CreatedAt),
		UpdatedAt:               timeToPgTimestamptz(req.UpdatedAt),
	})
	if err != nil {
		return err
	}

	req.Version = 1
	return nil
}

// GetByID retrieves a request.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	row, err := r.queries.GetLeaveRequest(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}

		return nil, err
	}

	return rowToRequest(row)
}

// GetByIDForUpdate retrieves a request with a FOR UPDATE lock.
func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Request, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetLeaveRequestForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}

		return nil, err
	}

	return rowToRequest(row)
}

// Update writes the workflow fields of req and bumps its version.
func (r *RequestRepository) Update(ctx context.Context, tx usecase.Transaction, req *domain.Request) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	history, err := json.Marshal(req.ApprovalHistory)
	if err != nil {
		return fmt.Errorf("marshal approval history: %w", err)
	}

	n, err := queries.UpdateLeaveRequest(ctx, generated.UpdateLeaveRequestParams{
		ID:                      req.ID,
		Status:                  string(req.Status),
		WorkflowID:              req.WorkflowID,
		CurrentStep:             int32(req.CurrentStep),
		WorkflowStatus:          string(req.WorkflowStatus),
		ScheduledAutoApprovalAt: optionalTimestamptz(req.ScheduledAutoApprovalAt),
		ApprovalHistory:         history,
		Version:                 req.Version + 1,
		UpdatedAt:               timeToPgTimestamptz(req.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRequestNotFound
	}

	req.Version++
	return nil
}

// List returns matching requests, newest first.
func (r *RequestRepository) List(ctx context.Context, filter usecase.RequestFilter) ([]*domain.Request, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = math.MaxInt32
	}

	rows, err := r.queries.ListLeaveRequests(ctx, generated.ListLeaveRequestsParams{
		EmployeeID: filter.EmployeeID,
		OrgID:      filter.OrgID,
		Status:     string(filter.Status),
		Kind:       string(filter.Kind),
		Limit:      int32(limit),
		Offset:     int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	reqs := make([]*domain.Request, 0, len(rows))
	for _, row := range rows {
		req, err := rowToRequest(row)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

// ListDueForAutoApproval returns due request IDs, earliest schedule first.
func (r *RequestRepository) ListDueForAutoApproval(ctx context.Context, now time.Time, limit int) ([]string, error) {
	return r.queries.ListDueAutoApprovals(ctx, generated.ListDueAutoApprovalsParams{
		Now:   timeToPgTimestamptz(now),
		Limit: int32(limit),
	})
}

func rowToRequest(row generated.LeaveRequest) (*domain.Request, error) {
	var history []domain.ApprovalEntry
	if len(row.ApprovalHistory) > 0 {
		if err := json.Unmarshal(row.ApprovalHistory, &history); err != nil {
			return nil, fmt.Errorf("request %s: decode approval history: %w", row.ID, err)
		}
	}

	return &domain.Request{
		ID:                      row.ID,
		Kind:                    domain.RequestKind(row.Kind),
		SubProcess:              row.SubProcess,
		EmployeeID:              row.EmployeeID,
		OrgID:                   row.OrgID,
		LeaveTypeID:             row.LeaveTypeID,
		LeaveVariantID:          row.LeaveVariantID,
		TargetVariantID:         row.TargetVariantID,
		StartDate:               pgToDate(row.StartDate),
		EndDate:                 pgToDate(row.EndDate),
		HalfDayStart:            row.HalfDayStart,
		HalfDayEnd:              row.HalfDayEnd,
		WorkingDays:             numericToHalfDays(row.WorkingDays),
		Reason:                  row.Reason,
		Status:                  domain.RequestStatus(row.Status),
		WorkflowID:              row.WorkflowID,
		CurrentStep:             int(row.CurrentStep),
		WorkflowStatus:          domain.WorkflowStatus(row.WorkflowStatus),
		ScheduledAutoApprovalAt: timestamptzPtr(row.ScheduledAutoApprovalAt),
		ApprovalHistory:         history,
		Version:                 row.Version,
		CreatedAt:               row.CreatedAt.Time,
		UpdatedAt:               row.UpdatedAt.Time,
	}, nil
}
