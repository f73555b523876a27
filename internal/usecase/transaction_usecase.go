package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

// TransactionUseCase applies credits and debits to a single account.
type TransactionUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	recordRepo  TransactionRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	opts        options
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	recordRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...Option,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		recordRepo:  recordRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		opts:        applyOptions(opts),
	}
}

// Apply validates req, then locks the account, checks the credit limit,
// writes the new balance and the ledger record, and commits. Every exit
// that does not commit rolls the scope back.
func (uc *TransactionUseCase) Apply(ctx context.Context, accountID int64, req domain.TransactionRequest) (result *domain.TransactionResult, err error) {
	start := time.Now()
	defer func() {
		uc.opts.metrics.ObserveTransaction(kindLabel(req.Kind), Outcome(err), time.Since(start))
	}()

	// 0. Validate before touching the store
	valid, err := domain.ValidateTransactionRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.timeout)
	defer cancel()

	// 1. Begin transaction
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

	// 2. Lock the account
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		return nil, storeError(domain.ErrPersistence, err)
	}

	// 3. Compute and enforce the credit limit
	newBalance, err := account.Apply(valid.Kind, valid.Amount)
	if err != nil {
		return nil, err
	}

	// 4. Persist balance, record and outbox event
	err = uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance)
	if err != nil {
		return nil, storeError(domain.ErrPersistence, err)
	}

	record := &domain.TransactionRecord{
		ID:          uc.idGen.Generate(),
		AccountID:   account.ID,
		Amount:      valid.Amount,
		Kind:        valid.Kind,
		Description: valid.Description,
		PerformedAt: domain.Timestamp(uc.opts.now()),
	}

	err = uc.recordRepo.Create(ctx, tx, record)
	if err != nil {
		return nil, storeError(domain.ErrPersistence, err)
	}

	err = uc.outboxRepo.Create(ctx, tx, uc.recordedEvent(record, newBalance, account.CreditLimit))
	if err != nil {
		return nil, storeError(domain.ErrPersistence, err)
	}

	// 5. Commit transaction
	if err = tx.Commit(ctx); err != nil {
		return nil, commitError(err)
	}
	committed = true

	return &domain.TransactionResult{
		Balance:     newBalance,
		CreditLimit: account.CreditLimit,
	}, nil
}

func (uc *TransactionUseCase) recordedEvent(record *domain.TransactionRecord, balance, creditLimit int64) *domain.OutboxEvent {
	payload := domain.TransactionRecordedEvent{
		TransactionID: record.ID,
		AccountID:     record.AccountID,
		Kind:          string(record.Kind),
		Amount:        record.Amount,
		Description:   record.Description,
		Balance:       balance,
		CreditLimit:   creditLimit,
		PerformedAt:   record.PerformedAt.Format(time.RFC3339Nano),
	}

	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   strconv.FormatInt(record.AccountID, 10),
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeTransactionRecorded,
		Payload:       payload.ToPayload(),
		CreatedAt:     record.PerformedAt,
	}
}

func kindLabel(kind domain.TransactionKind) string {
	if kind.Valid() {
		return string(kind)
	}
	return "invalid"
}
