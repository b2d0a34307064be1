package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is one change recorded next to the write it describes. Request
// entries carry the status transition; balance entries carry the account
// snapshot before and after.
type AuditLog struct {
	ID           string
	OrgID        string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	FromStatus   string
	ToStatus     string
	Comment      string
	RequestID    string // correlation id of the HTTP call
	BeforeState  JSON
	AfterState   JSON
	CreatedAt    time.Time
}

// Transitioned reports whether the entry moved a request between statuses.
func (l *AuditLog) Transitioned() bool {
	return l.FromStatus != l.ToStatus
}

type JSON map[string]any

type AuditAction string

const (
	AuditActionRequestSubmit   AuditAction = "request.submit"
	AuditActionRequestApprove  AuditAction = "request.approve"
	AuditActionRequestReject   AuditAction = "request.reject"
	AuditActionRequestWithdraw AuditAction = "request.withdraw"
	AuditActionRequestCancel   AuditAction = "request.cancel"
	AuditActionRequestAdvance  AuditAction = "request.advance"

	AuditActionCarryForward AuditAction = "balance.carry_forward"
	AuditActionAccrualTopUp AuditAction = "balance.accrual_top_up"
)

// MarshalState flattens v into a JSON object. Values that do not encode to
// an object come back as {"error": ...}.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter narrows an audit query. Zero fields match everything.
type AuditFilter struct {
	OrgID        string
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}
