package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/adapter/repository/postgres"
	"github.com/iho/creditledger/internal/domain"
	infrapg "github.com/iho/creditledger/internal/infrastructure/postgres"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
	"github.com/iho/creditledger/internal/usecase"
)

// TestDB provides a migrated database and the repositories built on it.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and applies the migrations. The test
// is skipped in -short mode or when DATABASE_URL is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := infrapg.RunMigrations(dbURL, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPoolWithConfig(ctx, infrapg.PoolConfig{
		DatabaseURL:    dbURL,
		MaxConns:       20,
		MinConns:       1,
		ConnectTimeout: 10 * time.Second,
		Logger:         zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes every account, record and outbox event.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE transactions, outbox_events;
		DELETE FROM accounts;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount inserts an account with a zero balance.
func (db *TestDB) CreateTestAccount(ctx context.Context, id, creditLimit int64) domain.Account {
	db.t.Helper()
	return db.CreateTestAccountWithBalance(ctx, id, creditLimit, 0)
}

// CreateTestAccountWithBalance inserts an account whose opening and current
// balance are balance.
func (db *TestDB) CreateTestAccountWithBalance(ctx context.Context, id, creditLimit, balance int64) domain.Account {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO accounts (id, credit_limit, opening_balance, balance) VALUES ($1, $2, $3, $3)`,
		id, creditLimit, balance)
	if err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return domain.Account{ID: id, CreditLimit: creditLimit, OpeningBalance: balance, Balance: balance}
}

// Ledger bundles the use cases wired to the test database.
type Ledger struct {
	Transactions *usecase.TransactionUseCase
	Statements   *usecase.StatementUseCase
	Consistency  *usecase.LedgerUseCase
	Accounts     *postgres.AccountRepository
	Outbox       *postgres.OutboxRepository
}

// NewLedger wires the postgres repositories into the use cases.
func (db *TestDB) NewLedger(lockTimeout, scopeTimeout time.Duration) *Ledger {
	txManager := postgres.NewTxManager(db.Pool, lockTimeout)
	accounts := postgres.NewAccountRepository(db.Pool)
	records := postgres.NewTransactionRepository(db.Pool)
	outbox := postgres.NewOutboxRepository(db.Pool)

	return &Ledger{
		Transactions: usecase.NewTransactionUseCase(txManager, accounts, records, outbox, postgres.NewULIDGenerator(),
			usecase.WithTimeout(scopeTimeout)),
		Statements:  usecase.NewStatementUseCase(txManager, accounts, records, usecase.WithTimeout(scopeTimeout)),
		Consistency: usecase.NewLedgerUseCase(postgres.NewLedgerRepository(db.Pool)),
		Accounts:    accounts,
		Outbox:      outbox,
	}
}
