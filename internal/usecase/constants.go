package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a whole scope: pool acquire, lock wait,
	// reads, writes and commit.
	DefaultTransactionTimeout = 10 * time.Second

	// StatementSize is the number of records returned with a statement.
	StatementSize = 10

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Outcome labels reported to MetricsRecorder.
const (
	OutcomeOK                = "ok"
	OutcomeValidation        = "validation"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeTimeout           = "timeout"
	OutcomeError             = "error"
)
