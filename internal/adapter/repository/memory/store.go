// Package memory implements the ledger store in process memory.
//
// Each account owns a one-slot lock channel. A scope that calls
// GetByIDForUpdate takes the slot and keeps it until Commit or Rollback,
// which gives the same per-account exclusion as SELECT ... FOR UPDATE.
// Writes are staged on the scope and only applied on Commit.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/creditledger/internal/domain"
)

// Store holds accounts, their records and the outbox.
type Store struct {
	mu       sync.RWMutex
	accounts map[int64]*accountState

	outboxMu sync.Mutex
	outbox   []*domain.OutboxEvent
}

type accountState struct {
	lock chan struct{}

	mu      sync.RWMutex
	account domain.Account
	records []*domain.TransactionRecord
	credits int64
	debits  int64
}

// NewStore creates a Store seeded with the given accounts.
func NewStore(seed ...domain.Account) *Store {
	s := &Store{accounts: make(map[int64]*accountState, len(seed))}
	for _, a := range seed {
		s.Put(a)
	}
	return s
}

// DefaultSeed returns the reference accounts, all with zero balance.
func DefaultSeed() []domain.Account {
	return []domain.Account{
		{ID: 1, CreditLimit: 100000},
		{ID: 2, CreditLimit: 80000},
		{ID: 3, CreditLimit: 1000000},
		{ID: 4, CreditLimit: 10000000},
		{ID: 5, CreditLimit: 500000},
	}
}

// Put inserts or replaces an account. The balance is taken as the opening balance.
func (s *Store) Put(a domain.Account) {
	a.OpeningBalance = a.Balance

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = &accountState{
		lock:    make(chan struct{}, 1),
		account: a,
	}
}

// Ping reports whether the store can serve requests. The memory store is
// always ready while ctx is live.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) state(id int64) (*accountState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return st, nil
}

// acquire waits for the account slot or gives up when ctx is done.
func (st *accountState) acquire(ctx context.Context) error {
	select {
	case st.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrTimeout, ctx.Err())
	}
}

func (st *accountState) release() {
	<-st.lock
}

func (st *accountState) snapshot() domain.Account {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.account
}
