package memory

import (
	"context"
	"sort"

	"github.com/iho/creditledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// AccountTotals returns the committed totals of every account, ordered by ID.
func (r *LedgerRepository) AccountTotals(ctx context.Context) ([]domain.AccountTotals, error) {
	r.store.mu.RLock()
	states := make([]*accountState, 0, len(r.store.accounts))
	for _, st := range r.store.accounts {
		states = append(states, st)
	}
	r.store.mu.RUnlock()

	totals := make([]domain.AccountTotals, 0, len(states))
	for _, st := range states {
		st.mu.RLock()
		totals = append(totals, domain.AccountTotals{
			AccountID:      st.account.ID,
			CreditLimit:    st.account.CreditLimit,
			OpeningBalance: st.account.OpeningBalance,
			Balance:        st.account.Balance,
			Credits:        st.credits,
			Debits:         st.debits,
		})
		st.mu.RUnlock()
	}

	sort.Slice(totals, func(i, j int) bool { return totals[i].AccountID < totals[j].AccountID })
	return totals, nil
}
