package usecase

import "time"

// DefaultTransactionTimeout bounds one unit of work: the ledger append, the
// request save and the outbox and audit rows written with them.
const DefaultTransactionTimeout = 10 * time.Second

// IdempotencyKeyTTL is how long a replayed submission or transition returns
// the first response.
const IdempotencyKeyTTL = 24 * time.Hour

const (
	// AutoApprovalBatchSize bounds the requests advanced by one sweep.
	AutoApprovalBatchSize = 100

	reconciliationPageSize = 500
)
