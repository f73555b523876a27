package memory

import (
	"context"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create stages a record for a locked account.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.holds(record.AccountID); err != nil {
		return err
	}

	cp := *record
	t.records = append(t.records, &cp)
	return nil
}

// ListRecentByAccount returns the newest records of a locked account,
// including those staged on tx.
func (r *TransactionRepository) ListRecentByAccount(ctx context.Context, tx usecase.Transaction, accountID int64, limit int) ([]*domain.TransactionRecord, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.holds(accountID); err != nil {
		return nil, err
	}

	result := make([]*domain.TransactionRecord, 0, limit)
	for i := len(t.records) - 1; i >= 0 && len(result) < limit; i-- {
		if t.records[i].AccountID == accountID {
			cp := *t.records[i]
			result = append(result, &cp)
		}
	}

	st := t.held[accountID]
	st.mu.RLock()
	defer st.mu.RUnlock()

	for i := len(st.records) - 1; i >= 0 && len(result) < limit; i-- {
		cp := *st.records[i]
		result = append(result, &cp)
	}

	return result, nil
}
