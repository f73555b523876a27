package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
)

type transactionServiceStub struct {
	applyFn func(ctx context.Context, accountID int64, req domain.TransactionRequest) (*domain.TransactionResult, error)
	calls   int
}

func (s *transactionServiceStub) Apply(ctx context.Context, accountID int64, req domain.TransactionRequest) (*domain.TransactionResult, error) {
	s.calls++
	return s.applyFn(ctx, accountID, req)
}

type statementServiceStub struct {
	readFn func(ctx context.Context, accountID int64) (*domain.Statement, error)
}

func (s *statementServiceStub) Read(ctx context.Context, accountID int64) (*domain.Statement, error) {
	return s.readFn(ctx, accountID)
}

func postTransaction(h *AccountHandler, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/accounts/"+id+"/transactions", strings.NewReader(body))
	req = withURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	h.Transact(rec, req)
	return rec
}

func TestAccountHandler_Transact_Success(t *testing.T) {
	var gotID int64
	var gotReq domain.TransactionRequest
	svc := &transactionServiceStub{
		applyFn: func(_ context.Context, accountID int64, req domain.TransactionRequest) (*domain.TransactionResult, error) {
			gotID, gotReq = accountID, req
			return &domain.TransactionResult{Balance: -500, CreditLimit: 1000}, nil
		},
	}
	h := NewAccountHandler(svc, nil)

	rec := postTransaction(h, "1", `{"amount": 500, "kind": "d", "description": "mercado"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), gotID)
	assert.Equal(t, domain.TransactionRequest{Amount: 500, Kind: domain.KindDebit, Description: "mercado"}, gotReq)

	var resp dto.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.TransactionResponse{CreditLimit: 1000, Balance: -500}, resp)
}

func TestAccountHandler_Transact_RejectsBeforeService(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"non-integer id", "abc", `{"amount": 1, "kind": "c", "description": "x"}`, http.StatusBadRequest},
		{"empty body", "1", ``, http.StatusBadRequest},
		{"malformed json", "1", `{"amount":`, http.StatusBadRequest},
		{"fractional amount", "1", `{"amount": 1.5, "kind": "c", "description": "x"}`, http.StatusUnprocessableEntity},
		{"string amount", "1", `{"amount": "10", "kind": "c", "description": "x"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &transactionServiceStub{}
			rec := postTransaction(NewAccountHandler(svc, nil), tt.id, tt.body)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Zero(t, svc.calls)
		})
	}
}

func TestAccountHandler_Transact_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.ErrInvalidDescription, http.StatusUnprocessableEntity},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"timeout", fmt.Errorf("%w: lock wait", domain.ErrTimeout), http.StatusServiceUnavailable},
		{"commit", fmt.Errorf("%w: %w", domain.ErrCommit, errors.New("eof")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &transactionServiceStub{
				applyFn: func(context.Context, int64, domain.TransactionRequest) (*domain.TransactionResult, error) {
					return nil, tt.err
				},
			}
			rec := postTransaction(NewAccountHandler(svc, nil), "1", `{"amount": 600, "kind": "d", "description": "x"}`)

			assert.Equal(t, tt.status, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "transaction failed", resp.Error)
		})
	}
}

func TestAccountHandler_Statement_Success(t *testing.T) {
	at := time.Date(2024, 1, 17, 2, 34, 38, 543030000, time.UTC)
	svc := &statementServiceStub{
		readFn: func(_ context.Context, accountID int64) (*domain.Statement, error) {
			require.Equal(t, int64(3), accountID)
			return &domain.Statement{
				Balance:     -400,
				CreditLimit: 1000,
				AsOf:        at,
				Transactions: []*domain.TransactionRecord{
					{Amount: 100, Kind: domain.KindCredit, Description: "c", PerformedAt: at},
					{Amount: 500, Kind: domain.KindDebit, Description: "d", PerformedAt: at.Add(-time.Second)},
				},
			}, nil
		},
	}
	h := NewAccountHandler(nil, svc)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/3/statement", nil), "id", "3")
	rec := httptest.NewRecorder()
	h.Statement(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StatementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(-400), resp.Balance.Total)
	assert.Equal(t, int64(1000), resp.Balance.Limit)
	require.Len(t, resp.RecentTransactions, 2)
	assert.Equal(t, "c", resp.RecentTransactions[0].Kind)
	assert.Equal(t, "d", resp.RecentTransactions[1].Kind)
	assert.Contains(t, rec.Body.String(), `"performedAt":"2024-01-17T02:34:38.543030Z"`)
}

func TestAccountHandler_Statement_Errors(t *testing.T) {
	svc := &statementServiceStub{
		readFn: func(context.Context, int64) (*domain.Statement, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	h := NewAccountHandler(nil, svc)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/6/statement", nil), "id", "6")
	rec := httptest.NewRecorder()
	h.Statement(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/x/statement", nil), "id", "x")
	rec = httptest.NewRecorder()
	h.Statement(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
