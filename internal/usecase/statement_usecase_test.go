package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
	"github.com/iho/creditledger/internal/usecase/mocks"
)

func newStatementUseCase(t *testing.T) (*usecase.StatementUseCase, transactionMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := transactionMocks{
		txManager: mocks.NewMockTransactionManager(ctrl),
		tx:        mocks.NewMockTransaction(ctrl),
		accounts:  mocks.NewMockAccountRepository(ctrl),
		records:   mocks.NewMockTransactionRepository(ctrl),
		metrics:   mocks.NewMockMetricsRecorder(ctrl),
	}

	uc := usecase.NewStatementUseCase(
		m.txManager, m.accounts, m.records,
		usecase.WithMetrics(m.metrics),
		usecase.WithClock(func() time.Time { return fixedNow }),
	)
	return uc, m
}

func TestStatementUseCase_Read(t *testing.T) {
	uc, m := newStatementUseCase(t)

	records := []*domain.TransactionRecord{
		{ID: "b", AccountID: 1, Amount: 10, Kind: domain.KindDebit, Description: "segundo"},
		{ID: "a", AccountID: 1, Amount: 20, Kind: domain.KindCredit, Description: "primeiro"},
	}

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, int64(1)).
		Return(&domain.Account{ID: 1, CreditLimit: 100000, Balance: 10}, nil)
	m.records.EXPECT().ListRecentByAccount(gomock.Any(), m.tx, int64(1), usecase.StatementSize).Return(records, nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.metrics.EXPECT().ObserveStatement(usecase.OutcomeOK, gomock.Any())

	stmt, err := uc.Read(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stmt.Balance)
	assert.Equal(t, int64(100000), stmt.CreditLimit)
	assert.Equal(t, domain.Timestamp(fixedNow), stmt.AsOf)
	assert.Equal(t, records, stmt.Transactions)
}

func TestStatementUseCase_Read_EmptyHistory(t *testing.T) {
	uc, m := newStatementUseCase(t)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, int64(5)).
		Return(&domain.Account{ID: 5, CreditLimit: 500000}, nil)
	m.records.EXPECT().ListRecentByAccount(gomock.Any(), m.tx, int64(5), usecase.StatementSize).Return(nil, nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.metrics.EXPECT().ObserveStatement(usecase.OutcomeOK, gomock.Any())

	stmt, err := uc.Read(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, stmt.Transactions)
	assert.Empty(t, stmt.Transactions)
}

func TestStatementUseCase_Read_Failures(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name    string
		setup   func(m transactionMocks)
		want    error
		outcome string
	}{
		{
			name: "begin fails",
			setup: func(m transactionMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(nil, dbErr)
			},
			want:    domain.ErrTransactionStart,
			outcome: usecase.OutcomeError,
		},
		{
			name: "account not found",
			setup: func(m transactionMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, int64(9)).Return(nil, domain.ErrAccountNotFound)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			want:    domain.ErrAccountNotFound,
			outcome: usecase.OutcomeNotFound,
		},
		{
			name: "lock timeout",
			setup: func(m transactionMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, int64(9)).
					Return(nil, errors.Join(domain.ErrTimeout, dbErr))
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			want:    domain.ErrTimeout,
			outcome: usecase.OutcomeTimeout,
		},
		{
			name: "list fails",
			setup: func(m transactionMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, int64(9)).Return(&domain.Account{ID: 9}, nil)
				m.records.EXPECT().ListRecentByAccount(gomock.Any(), m.tx, int64(9), usecase.StatementSize).Return(nil, dbErr)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			want:    domain.ErrPersistence,
			outcome: usecase.OutcomeError,
		},
		{
			name: "commit fails",
			setup: func(m transactionMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, int64(9)).Return(&domain.Account{ID: 9}, nil)
				m.records.EXPECT().ListRecentByAccount(gomock.Any(), m.tx, int64(9), usecase.StatementSize).Return(nil, nil)
				m.tx.EXPECT().Commit(gomock.Any()).Return(dbErr)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			want:    domain.ErrCommit,
			outcome: usecase.OutcomeError,
		},
		{
			name: "commit exceeds deadline",
			setup: func(m transactionMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, int64(9)).Return(&domain.Account{ID: 9}, nil)
				m.records.EXPECT().ListRecentByAccount(gomock.Any(), m.tx, int64(9), usecase.StatementSize).Return(nil, nil)
				m.tx.EXPECT().Commit(gomock.Any()).Return(context.DeadlineExceeded)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			want:    domain.ErrCommit,
			outcome: usecase.OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, m := newStatementUseCase(t)
			tt.setup(m)
			m.metrics.EXPECT().ObserveStatement(tt.outcome, gomock.Any())

			stmt, err := uc.Read(context.Background(), 9)
			assert.Nil(t, stmt)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
