package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

// StatementUseCase reads an account balance together with its latest records.
type StatementUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	recordRepo  TransactionRepository
	opts        options
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	recordRepo TransactionRepository,
	opts ...Option,
) *StatementUseCase {
	return &StatementUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		opts:        applyOptions(opts),
	}
}

// Read takes the same exclusive account lock a writer does, so the balance
// and the record list always describe the same point in the account history.
func (uc *StatementUseCase) Read(ctx context.Context, accountID int64) (stmt *domain.Statement, err error) {
	start := time.Now()
	defer func() {
		uc.opts.metrics.ObserveStatement(Outcome(err), time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, uc.opts.timeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, storeError(domain.ErrTransactionStart, err)
	}

	committed := false
	defer func() {
		if !committed {
			rollback(ctx, uc.opts.logger, tx)
		}
	}()

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, storeError(domain.ErrPersistence, err)
	}

	records, err := uc.recordRepo.ListRecentByAccount(ctx, tx, account.ID, StatementSize)
	if err != nil {
		return nil, storeError(domain.ErrPersistence, err)
	}

	asOf := domain.Timestamp(uc.opts.now())

	if err = tx.Commit(ctx); err != nil {
		return nil, commitError(err)
	}
	committed = true

	if records == nil {
		records = []*domain.TransactionRecord{}
	}

	return &domain.Statement{
		Balance:      account.Balance,
		CreditLimit:  account.CreditLimit,
		AsOf:         asOf,
		Transactions: records,
	}, nil
}
