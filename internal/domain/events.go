package domain

import "time"

// Event types
const (
	EventTypeLedgerTransactionAppended = "ledger.transaction_appended"
	EventTypeRequestSubmitted          = "request.submitted"
	EventTypeRequestApproved           = "request.approved"
	EventTypeRequestStepApproved       = "request.step_approved"
	EventTypeRequestRejected           = "request.rejected"
	EventTypeRequestWithdrawalPending  = "request.withdrawal_pending"
	EventTypeRequestWithdrawn          = "request.withdrawn"
	EventTypeRequestCancelled          = "request.cancelled"
)

// Aggregate types
const (
	AggregateTypeBalance = "balance"
	AggregateTypeRequest = "request"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionAppendedEvent payload
type TransactionAppendedEvent struct {
	TransactionID  string `json:"transaction_id"`
	EmployeeID     string `json:"employee_id"`
	LeaveVariantID string `json:"leave_variant_id"`
	Year           int    `json:"year"`
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	BalanceAfter   string `json:"balance_after"`
	RequestID      string `json:"request_id,omitempty"`
}

// RequestTransitionEvent payload
type RequestTransitionEvent struct {
	RequestID      string `json:"request_id"`
	EmployeeID     string `json:"employee_id"`
	Kind           string `json:"kind"`
	Status         string `json:"status"`
	WorkflowStatus string `json:"workflow_status"`
	CurrentStep    int    `json:"current_step"`
	ActorID        string `json:"actor_id"`
}

// RequestEventType maps a request's status to the event emitted for it.
func RequestEventType(r *Request) string {
	switch r.Status {
	case RequestStatusApproved:
		return EventTypeRequestApproved
	case RequestStatusRejected:
		return EventTypeRequestRejected
	case RequestStatusWithdrawalPending:
		return EventTypeRequestWithdrawalPending
	case RequestStatusWithdrawn:
		return EventTypeRequestWithdrawn
	case RequestStatusCancelled:
		return EventTypeRequestCancelled
	}
	if r.CurrentStep > 1 {
		return EventTypeRequestStepApproved
	}
	return EventTypeRequestSubmitted
}
