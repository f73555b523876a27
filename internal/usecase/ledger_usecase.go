package usecase

import (
	"context"
	"errors"

	"github.com/iho/creditledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when an account balance does not match its records.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match recorded transactions")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies that, for every account, the stored balance
// equals the opening balance plus credits minus debits, and that no balance
// is below its credit limit.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	totals, err := uc.ledgerRepo.AccountTotals(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.ConsistencyReport{Checked: len(totals)}
	for _, t := range totals {
		if t.Drift() != 0 || !t.WithinLimit() {
			report.Inconsistent = append(report.Inconsistent, t)
		}
	}

	if !report.Consistent() {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
