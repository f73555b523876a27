package usecase_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/adapter/repository/memory"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

type sequenceIDs struct{ n atomic.Int64 }

func (s *sequenceIDs) Generate() string {
	return fmt.Sprintf("id-%06d", s.n.Add(1))
}

type ledgerHarness struct {
	store      *memory.Store
	apply      *usecase.TransactionUseCase
	statements *usecase.StatementUseCase
	ledger     *usecase.LedgerUseCase
}

func newLedgerHarness(seed ...domain.Account) *ledgerHarness {
	store := memory.NewStore(seed...)
	txm := memory.NewTxManager(store)
	accounts := memory.NewAccountRepository(store)
	records := memory.NewTransactionRepository(store)

	// a strictly increasing clock keeps performed_at distinct
	var tick atomic.Int64
	clock := func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(tick.Add(1)) * time.Microsecond)
	}

	return &ledgerHarness{
		store: store,
		apply: usecase.NewTransactionUseCase(txm, accounts, records, memory.NewOutboxRepository(store), &sequenceIDs{},
			usecase.WithClock(clock)),
		statements: usecase.NewStatementUseCase(txm, accounts, records, usecase.WithClock(clock)),
		ledger:     usecase.NewLedgerUseCase(memory.NewLedgerRepository(store)),
	}
}

func debit(amount int64, desc string) domain.TransactionRequest {
	return domain.TransactionRequest{Amount: amount, Kind: domain.KindDebit, Description: desc}
}

func credit(amount int64, desc string) domain.TransactionRequest {
	return domain.TransactionRequest{Amount: amount, Kind: domain.KindCredit, Description: desc}
}

func TestLedger_InvariantHoldsUnderConcurrentLoad(t *testing.T) {
	h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 1000})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := debit(int64(i%7+1)*10, "d")
			if i%3 == 0 {
				req = credit(int64(i%5+1)*10, "c")
			}
			result, err := h.apply.Apply(ctx, 1, req)
			if err == nil {
				assert.GreaterOrEqual(t, result.Balance, -result.CreditLimit)
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			}

			stmt, err := h.statements.Read(ctx, 1)
			if assert.NoError(t, err) {
				assert.GreaterOrEqual(t, stmt.Balance, -stmt.CreditLimit)
			}
		}(i)
	}
	wg.Wait()

	report, err := h.ledger.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestLedger_ConcurrentDebitsExactlyOneWins(t *testing.T) {
	for run := 0; run < 50; run++ {
		h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 1000})
		ctx := context.Background()

		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = h.apply.Apply(ctx, 1, debit(700, "compra"))
			}(i)
		}
		close(start)
		wg.Wait()

		succeeded, rejected := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, domain.ErrInsufficientFunds):
				rejected++
			}
		}
		require.Equal(t, 1, succeeded)
		require.Equal(t, 1, rejected)

		stmt, err := h.statements.Read(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(-700), stmt.Balance)
		assert.Len(t, stmt.Transactions, 1)
	}
}

func TestLedger_StatementReflectsCommittedMutation(t *testing.T) {
	h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 1000})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = h.apply.Apply(ctx, 1, credit(3, "c"))
		}()
		go func() {
			defer wg.Done()
			stmt, err := h.statements.Read(ctx, 1)
			if !assert.NoError(t, err) {
				return
			}
			// every credit adds 3 and one record; the window caps at 10
			n := int(stmt.Balance / 3)
			want := n
			if want > usecase.StatementSize {
				want = usecase.StatementSize
			}
			assert.Len(t, stmt.Transactions, want)
		}()
	}
	wg.Wait()

	result, err := h.apply.Apply(ctx, 1, debit(1, "ultimo"))
	require.NoError(t, err)

	stmt, err := h.statements.Read(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, result.Balance, stmt.Balance)
	assert.Equal(t, "ultimo", stmt.Transactions[0].Description)
}

func TestLedger_RejectedRequestsLeaveNoTrace(t *testing.T) {
	h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 100})
	ctx := context.Background()

	rejected := []domain.TransactionRequest{
		{Amount: 0, Kind: domain.KindCredit, Description: "x"},
		{Amount: -1, Kind: domain.KindCredit, Description: "x"},
		{Amount: 1, Kind: "x", Description: "x"},
		{Amount: 1, Kind: domain.KindCredit, Description: ""},
		{Amount: 1, Kind: domain.KindCredit, Description: "12345678901"},
		debit(101, "alem"),
	}
	for _, req := range rejected {
		_, err := h.apply.Apply(ctx, 1, req)
		require.Error(t, err)
	}

	_, err := h.apply.Apply(ctx, 1, credit(1, "1234567890"))
	require.NoError(t, err)

	stmt, err := h.statements.Read(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stmt.Balance)
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "1234567890", stmt.Transactions[0].Description)

	_, err = h.apply.Apply(ctx, 2, credit(1, "x"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = h.statements.Read(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLedger_StatementKeepsTenNewest(t *testing.T) {
	h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 1000})
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		_, err := h.apply.Apply(ctx, 1, credit(int64(i), fmt.Sprintf("t%02d", i)))
		require.NoError(t, err)
	}

	stmt, err := h.statements.Read(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 10)

	for i, r := range stmt.Transactions {
		assert.Equal(t, fmt.Sprintf("t%02d", 15-i), r.Description)
		if i > 0 {
			assert.True(t, r.PerformedAt.Before(stmt.Transactions[i-1].PerformedAt))
		}
	}
}

func TestLedger_OverflowingAmountsAreRejected(t *testing.T) {
	h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 1000})
	ctx := context.Background()

	_, err := h.apply.Apply(ctx, 1, debit(2, "d"))
	require.NoError(t, err)

	_, err = h.apply.Apply(ctx, 1, debit(math.MaxInt64, "wrap"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = h.apply.Apply(ctx, 1, credit(3, "c"))
	require.NoError(t, err)

	_, err = h.apply.Apply(ctx, 1, credit(math.MaxInt64, "wrap"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	stmt, err := h.statements.Read(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stmt.Balance)
	assert.Len(t, stmt.Transactions, 2)

	report, err := h.ledger.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestLedger_EndToEndScenario(t *testing.T) {
	h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 1000})
	ctx := context.Background()

	result, err := h.apply.Apply(ctx, 1, debit(500, "compra"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionResult{Balance: -500, CreditLimit: 1000}, *result)

	_, err = h.apply.Apply(ctx, 1, debit(600, "teste"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	result, err = h.apply.Apply(ctx, 1, credit(100, "pagamento"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionResult{Balance: -400, CreditLimit: 1000}, *result)

	stmt, err := h.statements.Read(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(-400), stmt.Balance)
	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "pagamento", stmt.Transactions[0].Description)
	assert.Equal(t, domain.KindCredit, stmt.Transactions[0].Kind)
	assert.Equal(t, "compra", stmt.Transactions[1].Description)
	assert.Equal(t, int64(500), stmt.Transactions[1].Amount)
}

func TestLedger_IndependentAccountsProceedWhileOneIsLocked(t *testing.T) {
	h := newLedgerHarness(domain.Account{ID: 1, CreditLimit: 10}, domain.Account{ID: 2, CreditLimit: 10})
	ctx := context.Background()

	// hold account 1 directly through the store
	txm := memory.NewTxManager(h.store)
	holder, err := txm.Begin(ctx)
	require.NoError(t, err)
	_, err = memory.NewAccountRepository(h.store).GetByIDForUpdate(ctx, holder, 1)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	_, err = h.apply.Apply(short, 2, credit(1, "livre"))
	require.NoError(t, err)

	_, err = h.apply.Apply(short, 1, credit(1, "preso"))
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, usecase.OutcomeTimeout, usecase.Outcome(err))

	require.NoError(t, holder.Rollback(ctx))

	_, err = h.apply.Apply(ctx, 1, credit(1, "solto"))
	assert.NoError(t, err)
}
