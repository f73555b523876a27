package postgres

import (
	"context"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// AccountTotals returns, per account, the stored balance together with the
// sums of its credit and debit records.
func (r *LedgerRepository) AccountTotals(ctx context.Context) ([]domain.AccountTotals, error) {
	rows, err := r.queries.ListAccountTotals(ctx)
	if err != nil {
		return nil, err
	}

	totals := make([]domain.AccountTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.AccountTotals{
			AccountID:      row.ID,
			CreditLimit:    row.CreditLimit,
			OpeningBalance: row.OpeningBalance,
			Balance:        row.Balance,
			Credits:        row.Credits,
			Debits:         row.Debits,
		})
	}

	return totals, nil
}
