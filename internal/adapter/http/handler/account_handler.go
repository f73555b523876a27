package handler

import (
	"context"
	"net/http"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
)

// TransactionService applies credits and debits to an account.
type TransactionService interface {
	Apply(ctx context.Context, accountID int64, req domain.TransactionRequest) (*domain.TransactionResult, error)
}

// StatementService reads an account statement.
type StatementService interface {
	Read(ctx context.Context, accountID int64) (*domain.Statement, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	transactions TransactionService
	statements   StatementService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(transactions TransactionService, statements StatementService) *AccountHandler {
	return &AccountHandler{
		transactions: transactions,
		statements:   statements,
	}
}

// Transact applies a credit or debit to the account in the route.
func (h *AccountHandler) Transact(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeDomainError(w, "invalid account id", err)
		return
	}

	req, err := dto.DecodeTransactionRequest(r.Body)
	if err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	result, err := h.transactions.Apply(r.Context(), accountID, req.ToDomain())
	if err != nil {
		writeDomainError(w, "transaction failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionResultFromDomain(result))
}

// Statement returns the balance and the most recent transactions.
func (h *AccountHandler) Statement(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeDomainError(w, "invalid account id", err)
		return
	}

	stmt, err := h.statements.Read(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, "failed to read statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(stmt))
}
