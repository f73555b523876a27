package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// ErrTxClosed is returned by Commit or Rollback on a scope that already ended.
var ErrTxClosed = errors.New("transaction already closed")

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// GetByIDForUpdate loads the account and holds its exclusive lock until tx ends.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id int64, balance int64) error
}

// TransactionRepository defines data access for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.TransactionRecord) error
	// ListRecentByAccount returns at most limit records, newest first.
	ListRecentByAccount(ctx context.Context, tx Transaction, accountID int64, limit int) ([]*domain.TransactionRecord, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	AccountTotals(ctx context.Context) ([]domain.AccountTotals, error)
}

// Transaction represents an atomic scope against the store.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// MetricsRecorder receives the outcome of every core operation.
type MetricsRecorder interface {
	ObserveTransaction(kind, outcome string, duration time.Duration)
	ObserveStatement(outcome string, duration time.Duration)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request can be retried.
	Release(ctx context.Context, key string) error
}
