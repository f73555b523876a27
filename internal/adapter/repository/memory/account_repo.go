package memory

import (
	"context"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// GetByID returns the last committed state of an account.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	st, err := r.store.state(id)
	if err != nil {
		return nil, err
	}

	a := st.snapshot()
	return &a, nil
}

// GetByIDForUpdate locks the account for the lifetime of tx.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	st, err := r.store.state(id)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, st, id); err != nil {
		return nil, err
	}

	a := st.snapshot()

	t.mu.Lock()
	if balance, ok := t.balances[id]; ok {
		a.Balance = balance
	}
	t.mu.Unlock()

	return &a, nil
}

// UpdateBalance stages a new balance for a locked account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id int64, balance int64) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.holds(id); err != nil {
		return err
	}
	t.balances[id] = balance
	return nil
}
