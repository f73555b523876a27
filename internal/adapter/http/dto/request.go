package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iho/creditledger/internal/domain"
)

var (
	// ErrMalformedBody is returned for an empty body or invalid JSON.
	ErrMalformedBody = errors.New("malformed request body")
	// ErrFieldType is returned when a field holds a value of the wrong type.
	ErrFieldType = fmt.Errorf("%w: field has the wrong type", domain.ErrValidation)
)

// TransactionRequest represents a credit or debit request.
type TransactionRequest struct {
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// DecodeTransactionRequest reads a single JSON object from r.
func DecodeTransactionRequest(r io.Reader) (TransactionRequest, error) {
	var req TransactionRequest

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return TransactionRequest{}, fmt.Errorf("%w: %s", ErrFieldType, typeErr.Field)
		}
		return TransactionRequest{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}

	return req, nil
}

// ToDomain converts to the domain request.
func (r TransactionRequest) ToDomain() domain.TransactionRequest {
	return domain.TransactionRequest{
		Amount:      r.Amount,
		Kind:        domain.TransactionKind(r.Kind),
		Description: r.Description,
	}
}
