package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

var (
	errNotLocked = errors.New("account is not locked by this transaction")
	errForeignTx = errors.New("transaction does not belong to the memory store")
)

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new scope.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:    m.store,
		held:     make(map[int64]*accountState),
		balances: make(map[int64]int64),
	}, nil
}

// Tx is a scope over the memory store.
type Tx struct {
	store *Store

	mu       sync.Mutex
	closed   bool
	held     map[int64]*accountState
	balances map[int64]int64
	records  []*domain.TransactionRecord
	events   []*domain.OutboxEvent
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, errForeignTx
	}
	return t, nil
}

// Commit applies the staged writes and releases every held account.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return usecase.ErrTxClosed
	}
	t.closed = true

	// balance, records and totals of an account change under one lock so
	// AccountTotals never sees a half-applied commit
	for id, st := range t.held {
		st.mu.Lock()
		if balance, ok := t.balances[id]; ok {
			st.account.Balance = balance
		}
		for _, r := range t.records {
			if r.AccountID != id {
				continue
			}
			st.records = append(st.records, r)
			if r.Kind == domain.KindCredit {
				st.credits += r.Amount
			} else {
				st.debits += r.Amount
			}
		}
		st.mu.Unlock()
	}

	if len(t.events) > 0 {
		t.store.outboxMu.Lock()
		t.store.outbox = append(t.store.outbox, t.events...)
		t.store.outboxMu.Unlock()
	}

	t.releaseAll()
	return nil
}

// Rollback drops the staged writes and releases every held account.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return usecase.ErrTxClosed
	}
	t.closed = true

	t.releaseAll()
	return nil
}

func (t *Tx) releaseAll() {
	for id, st := range t.held {
		st.release()
		delete(t.held, id)
	}
	t.balances = nil
	t.records = nil
	t.events = nil
}

func (t *Tx) lock(ctx context.Context, st *accountState, id int64) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return usecase.ErrTxClosed
	}
	if _, ok := t.held[id]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := st.acquire(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		st.release()
		return usecase.ErrTxClosed
	}
	t.held[id] = st
	return nil
}

func (t *Tx) holds(id int64) error {
	if t.closed {
		return usecase.ErrTxClosed
	}
	if _, ok := t.held[id]; !ok {
		return errNotLocked
	}
	return nil
}
