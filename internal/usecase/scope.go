package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/domain"
)

// storeError tags a store failure with its category. Deadline and lock
// timeouts are reported as ErrTimeout whatever step they hit.
func storeError(kind, err error) error {
	if errors.Is(err, domain.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// commitError reports a failed commit as ErrCommit even when the cause was
// a deadline: the commit may have landed, so it must never read as a timeout.
func commitError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrCommit, err)
}

// rollback discards the scope. It runs on a context detached from the
// request deadline so an expired request still releases its lock.
func rollback(ctx context.Context, logger zerolog.Logger, tx Transaction) {
	err := tx.Rollback(context.WithoutCancel(ctx))
	if err == nil || errors.Is(err, ErrTxClosed) {
		return
	}

	logger.Warn().Err(err).Msg("rollback failed")
}

// Outcome classifies an error into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrAccountNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return OutcomeInsufficientFunds
	case errors.Is(err, domain.ErrTimeout):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
