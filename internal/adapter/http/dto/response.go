package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ConflictResponse is returned when a transition does not apply to the
// request's current state. Request carries that state.
type ConflictResponse struct {
	Error   string           `json:"error"`
	Message string           `json:"message,omitempty"`
	Request *RequestResponse `json:"request"`
}

// ApprovalEntryResponse is one approval history record.
type ApprovalEntryResponse struct {
	StepNumber int       `json:"step_number"`
	Action     string    `json:"action"`
	UserID     string    `json:"user_id"`
	Timestamp  time.Time `json:"timestamp"`
	Comment    string    `json:"comment,omitempty"`
}

// RequestResponse represents a request in API responses.
type RequestResponse struct {
	ID                      string                  `json:"id"`
	Kind                    string                  `json:"kind"`
	SubProcess              string                  `json:"sub_process"`
	EmployeeID              string                  `json:"employee_id"`
	OrgID                   string                  `json:"org_id"`
	LeaveTypeID             string                  `json:"leave_type_id"`
	LeaveVariantID          string                  `json:"leave_variant_id"`
	TargetVariantID         string                  `json:"target_variant_id,omitempty"`
	StartDate               string                  `json:"start_date,omitempty"`
	EndDate                 string                  `json:"end_date,omitempty"`
	HalfDayStart            bool                    `json:"half_day_start"`
	HalfDayEnd              bool                    `json:"half_day_end"`
	WorkingDays             decimal.Decimal         `json:"working_days"`
	Reason                  string                  `json:"reason,omitempty"`
	Status                  string                  `json:"status"`
	WorkflowID              string                  `json:"workflow_id,omitempty"`
	WorkflowStatus          string                  `json:"workflow_status"`
	CurrentStep             int                     `json:"current_step"`
	ScheduledAutoApprovalAt *time.Time              `json:"scheduled_auto_approval_at,omitempty"`
	ApprovalHistory         []ApprovalEntryResponse `json:"approval_history"`
	Version                 int64                   `json:"version"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
}

// RequestFromDomain converts a domain request to a response.
func RequestFromDomain(r *domain.Request) *RequestResponse {
	history := make([]ApprovalEntryResponse, len(r.ApprovalHistory))
	for i, e := range r.ApprovalHistory {
		history[i] = ApprovalEntryResponse{
			StepNumber: e.StepNumber,
			Action:     string(e.Action),
			UserID:     e.UserID,
			Timestamp:  e.Timestamp,
			Comment:    e.Comment,
		}
	}

	return &RequestResponse{
		ID:                      r.ID,
		Kind:                    string(r.Kind),
		SubProcess:              r.SubProcess,
		EmployeeID:              r.EmployeeID,
		OrgID:                   r.OrgID,
		LeaveTypeID:             r.LeaveTypeID,
		LeaveVariantID:          r.LeaveVariantID,
		TargetVariantID:         r.TargetVariantID,
		StartDate:               formatDate(r.StartDate),
		EndDate:                 formatDate(r.EndDate),
		HalfDayStart:            r.HalfDayStart,
		HalfDayEnd:              r.HalfDayEnd,
		WorkingDays:             r.WorkingDays.Days(),
		Reason:                  r.Reason,
		Status:                  string(r.Status),
		WorkflowID:              r.WorkflowID,
		WorkflowStatus:          string(r.WorkflowStatus),
		CurrentStep:             r.CurrentStep,
		ScheduledAutoApprovalAt: r.ScheduledAutoApprovalAt,
		ApprovalHistory:         history,
		Version:                 r.Version,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

// RequestsFromDomain converts domain requests to responses.
func RequestsFromDomain(requests []*domain.Request) []*RequestResponse {
	result := make([]*RequestResponse, len(requests))
	for i, r := range requests {
		result[i] = RequestFromDomain(r)
	}
	return result
}

// BalanceResponse represents a balance account in API responses.
type BalanceResponse struct {
	EmployeeID       string          `json:"employee_id"`
	LeaveVariantID   string          `json:"leave_variant_id"`
	Year             int             `json:"year"`
	TotalEntitlement decimal.Decimal `json:"total_entitlement"`
	CarryForward     decimal.Decimal `json:"carry_forward"`
	UsedBalance      decimal.Decimal `json:"used_balance"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	Version          int64           `json:"version"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BalanceFromDomain converts a domain balance account to a response.
func BalanceFromDomain(b *domain.BalanceAccount) *BalanceResponse {
	return &BalanceResponse{
		EmployeeID:       b.EmployeeID,
		LeaveVariantID:   b.LeaveVariantID,
		Year:             b.Year,
		TotalEntitlement: b.TotalEntitlement.Days(),
		CarryForward:     b.CarryForward.Days(),
		UsedBalance:      b.UsedBalance.Days(),
		CurrentBalance:   b.CurrentBalance.Days(),
		Version:          b.Version,
		UpdatedAt:        b.UpdatedAt,
	}
}

// BalancesFromDomain converts domain balance accounts to responses.
func BalancesFromDomain(accounts []*domain.BalanceAccount) []*BalanceResponse {
	result := make([]*BalanceResponse, len(accounts))
	for i, a := range accounts {
		result[i] = BalanceFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	LeaveVariantID string          `json:"leave_variant_id"`
	Year           int             `json:"year"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	Description    string          `json:"description"`
	RequestID      *string         `json:"request_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.LedgerTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:             t.ID,
		EmployeeID:     t.EmployeeID,
		LeaveVariantID: t.LeaveVariantID,
		Year:           t.Year,
		Type:           string(t.Type),
		Amount:         t.Amount.Days(),
		BalanceAfter:   t.BalanceAfter.Days(),
		Description:    t.Description,
		RequestID:      t.RequestID,
		CreatedAt:      t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.LedgerTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// AuditLogResponse represents an audit trail entry.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Action      string         `json:"action"`
	FromStatus  string         `json:"from_status,omitempty"`
	ToStatus    string         `json:"to_status,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	BeforeState map[string]any `json:"before_state,omitempty"`
	AfterState  map[string]any `json:"after_state,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:          l.ID,
			UserID:      l.UserID,
			Action:      l.Action,
			FromStatus:  l.FromStatus,
			ToStatus:    l.ToStatus,
			Comment:     l.Comment,
			RequestID:   l.RequestID,
			BeforeState: l.BeforeState,
			AfterState:  l.AfterState,
			CreatedAt:   l.CreatedAt,
		}
	}
	return result
}

// ReconciliationResultResponse is one account that disagrees with its ledger.
type ReconciliationResultResponse struct {
	EmployeeID        string          `json:"employee_id"`
	LeaveVariantID    string          `json:"leave_variant_id"`
	Year              int             `json:"year"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	TransactionCount  int64           `json:"transaction_count"`
	Reason            string          `json:"reason"`
}

// ReconciliationReportResponse is the result of a full reconciliation.
type ReconciliationReportResponse struct {
	TotalAccounts      int                             `json:"total_accounts"`
	ReconciledAccounts int                             `json:"reconciled_accounts"`
	LedgerConsistent   bool                            `json:"ledger_consistent"`
	Discrepancies      []*ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt          time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResultResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = &ReconciliationResultResponse{
			EmployeeID:        d.Key.EmployeeID,
			LeaveVariantID:    d.Key.LeaveVariantID,
			Year:              d.Key.Year,
			RecordedBalance:   d.RecordedBalance.Days(),
			CalculatedBalance: d.CalculatedBalance.Days(),
			Difference:        d.Difference.Days(),
			TransactionCount:  d.TransactionCount,
			Reason:            d.Reason,
		}
	}

	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		LedgerConsistent:   r.LedgerConsistent,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// SweepResponse reports an auto-approval sweep.
type SweepResponse struct {
	Advanced int `json:"advanced"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
