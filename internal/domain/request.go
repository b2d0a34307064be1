package domain

import (
	"time"
)

// RequestKind is the kind of balance-affecting request.
type RequestKind string

const (
	RequestKindLeave   RequestKind = "leave"
	RequestKindPTO     RequestKind = "pto"
	RequestKindCompOff RequestKind = "comp_off"
)

// IsValid reports whether k is a known kind.
func (k RequestKind) IsValid() bool {
	switch k {
	case RequestKindLeave, RequestKindPTO, RequestKindCompOff:
		return true
	}
	return false
}

// Process returns the workflow process for the kind.
func (k RequestKind) Process() string {
	switch k {
	case RequestKindPTO:
		return ProcessPTO
	case RequestKindCompOff:
		return ProcessCompOff
	default:
		return ProcessLeave
	}
}

// RequestStatus is the user-visible status of a request.
type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "pending"
	RequestStatusApproved          RequestStatus = "approved"
	RequestStatusRejected          RequestStatus = "rejected"
	RequestStatusWithdrawalPending RequestStatus = "withdrawal_pending"
	RequestStatusWithdrawn         RequestStatus = "withdrawn"
	RequestStatusCancelled         RequestStatus = "cancelled"
)

// WorkflowStatus is the status of the request's current workflow.
type WorkflowStatus string

const (
	WorkflowStatusBypassed   WorkflowStatus = "bypassed"
	WorkflowStatusInProgress WorkflowStatus = "in_progress"
	WorkflowStatusCompleted  WorkflowStatus = "completed"
	WorkflowStatusRejected   WorkflowStatus = "rejected"
)

// ApprovalAction is the action recorded in an approval history entry.
type ApprovalAction string

const (
	ActionSubmitted           ApprovalAction = "submitted"
	ActionApproved            ApprovalAction = "approved"
	ActionAutoApproved        ApprovalAction = "auto_approved"
	ActionRejected            ApprovalAction = "rejected"
	ActionWithdrawalRequested ApprovalAction = "withdrawal_requested"
	ActionCancelled           ApprovalAction = "cancelled"
)

// ApprovalEntry is one record of the approval history. Phase-opening entries
// (submitted, withdrawal_requested) carry the workflow they start.
type ApprovalEntry struct {
	StepNumber int            `json:"stepNumber"`
	Action     ApprovalAction `json:"action"`
	UserID     string         `json:"userId"`
	Timestamp  time.Time      `json:"timestamp"`
	Comment    string         `json:"comment,omitempty"`
	WorkflowID string         `json:"workflowId,omitempty"`
	TotalSteps int            `json:"totalSteps,omitempty"`
}

// Request is a leave, PTO or comp-off request.
type Request struct {
	ID              string
	Kind            RequestKind
	SubProcess      string
	EmployeeID      string
	OrgID           string
	LeaveTypeID     string
	LeaveVariantID  string
	TargetVariantID string
	StartDate       time.Time
	EndDate         time.Time
	HalfDayStart    bool
	HalfDayEnd      bool
	WorkingDays     HalfDays
	Reason          string

	Status                  RequestStatus
	WorkflowID              string
	CurrentStep             int
	WorkflowStatus          WorkflowStatus
	ScheduledAutoApprovalAt *time.Time
	ApprovalHistory         []ApprovalEntry

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Year returns the ledger year the request is charged to.
func (r *Request) Year() int {
	return r.StartDate.Year()
}

// BalanceKey returns the ledger the request draws from.
func (r *Request) BalanceKey() BalanceKey {
	return BalanceKey{EmployeeID: r.EmployeeID, LeaveVariantID: r.LeaveVariantID, Year: r.Year()}
}

// State folds the approval history.
func (r *Request) State() (WorkflowState, error) {
	return Replay(r.ApprovalHistory)
}

// Record applies entry to the request's state and appends it to the history.
func (r *Request) Record(entry ApprovalEntry) error {
	state, err := r.State()
	if err != nil {
		return err
	}

	next, err := state.Apply(entry)
	if err != nil {
		return err
	}

	r.ApprovalHistory = append(r.ApprovalHistory, entry)
	r.Status = next.Status
	r.WorkflowStatus = next.WorkflowStatus
	r.CurrentStep = next.CurrentStep
	r.WorkflowID = next.WorkflowID
	r.UpdatedAt = entry.Timestamp

	return nil
}
