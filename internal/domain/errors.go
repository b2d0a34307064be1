package domain

import "errors"

var (
	// Balance errors
	ErrInsufficientBalance    = errors.New("insufficient leave balance")
	ErrBalanceNotFound        = errors.New("balance account not found")
	ErrInvalidAmount          = errors.New("invalid leave amount")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrLedgerInconsistency    = errors.New("ledger inconsistency")

	// Configuration errors
	ErrMissingConfiguration = errors.New("missing configuration")
	ErrVariantNotFound      = errors.New("leave variant not found")
	ErrWorkflowNotFound     = errors.New("workflow definition not found")

	// Request errors
	ErrRequestNotFound       = errors.New("request not found")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrInvalidRequestKind    = errors.New("invalid request kind")
	ErrReasonRequired        = errors.New("reason is required")
	ErrNotAuthorizedApprover = errors.New("actor is not an approver for this step")
	ErrActionNotPermitted    = errors.New("actor may not perform this action")

	// Directory errors
	ErrEmployeeNotFound             = errors.New("employee not found")
	ErrEmployeeDirectoryUnavailable = errors.New("employee directory unavailable")
)
