package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTransactCmd(t *testing.T) {
	var got dto.TransactionRequest
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/1/transactions", r.URL.Path)
		key = r.Header.Get(middleware.IdempotencyKeyHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"creditLimit":100000,"balance":-500}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "transact", "1",
		"--amount", "500", "--kind", "d", "--description", "mercado", "--idempotency-key", "k1")
	require.NoError(t, err)

	assert.Equal(t, dto.TransactionRequest{Amount: 500, Kind: "d", Description: "mercado"}, got)
	assert.Equal(t, "k1", key)
	assert.Contains(t, out, "Balance: -500")
	assert.Contains(t, out, "Limit: 100000")
}

func TestTransactCmd_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"transaction failed"}`))
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "transact", "1", "--amount", "1", "--kind", "d", "--description", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestTransactCmd_InvalidID(t *testing.T) {
	_, err := execute(t, "transact", "abc", "--amount", "1", "--kind", "c", "--description", "x")
	assert.ErrorContains(t, err, "account id must be an integer")
}

func TestStatementCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/2/statement", r.URL.Path)
		_, _ = w.Write([]byte(`{"balance":{"total":-400,"limit":1000,"asOf":"2024-01-17T02:34:41.217753Z"},` +
			`"recentTransactions":[{"amount":100,"kind":"c","description":"pix","performedAt":"2024-01-17T02:34:38.543030Z"}]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "statement", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Balance: -400 (limit 1000) as of 2024-01-17T02:34:41.217753Z")
	assert.Contains(t, out, "2024-01-17T02:34:38.543030Z  c")
	assert.Contains(t, out, "pix")
}

func TestLedgerConsistencyCmd(t *testing.T) {
	consistent := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ledger/consistency", r.URL.Path)
		if consistent {
			_, _ = w.Write([]byte(`{"status":"consistent","consistent":true,"checked":5,"inconsistent":[]}`))
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":"inconsistent","consistent":false,"checked":5,` +
			`"inconsistent":[{"accountId":3,"creditLimit":10,"balance":7,"drift":7}]}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
	require.NoError(t, err)
	assert.Contains(t, out, "PASSED (5 accounts)")

	consistent = false
	out, err = execute(t, "--url", srv.URL, "ledger", "consistency")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED (1 of 5 accounts)")
	assert.Contains(t, out, "account 3: balance 7, limit 10, drift 7")
}

func TestMigrateCmd_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "up", "--database-url", "")
	assert.ErrorContains(t, err, "DATABASE_URL is required")
}
