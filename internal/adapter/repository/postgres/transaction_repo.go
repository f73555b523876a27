package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/infrastructure/postgres/generated"
	"github.com/iho/creditledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{
		queries: generated.New(db),
	}
}

// Create appends a record to the ledger.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	return mapError(r.queries.WithTx(pgxTx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:          record.ID,
		AccountID:   record.AccountID,
		Amount:      record.Amount,
		Kind:        string(record.Kind),
		Description: record.Description,
		PerformedAt: timeToPgTimestamptz(record.PerformedAt),
	}))
}

// ListRecentByAccount returns the newest records of an account. Records
// sharing a timestamp are ordered by insertion.
func (r *TransactionRepository) ListRecentByAccount(ctx context.Context, tx usecase.Transaction, accountID int64, limit int) ([]*domain.TransactionRecord, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	rows, err := r.queries.WithTx(pgxTx).ListRecentTransactionsByAccount(ctx, generated.ListRecentTransactionsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
	})
	if err != nil {
		return nil, mapError(err)
	}

	records := make([]*domain.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}

	return records, nil
}

func rowToRecord(row generated.Transaction) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		ID:          row.ID,
		AccountID:   row.AccountID,
		Amount:      row.Amount,
		Kind:        domain.TransactionKind(row.Kind),
		Description: row.Description,
		PerformedAt: domain.Timestamp(row.PerformedAt.Time),
	}
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
