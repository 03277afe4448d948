package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// reconcilePageSize is how many accounts ReconcileAll loads per page.
	reconcilePageSize = 500
)

// Operation names reported to MetricsRecorder.
const (
	OpCreateEntry = "create_entry"
	OpUpdateEntry = "update_entry"
	OpDeleteEntry = "delete_entry"
)
