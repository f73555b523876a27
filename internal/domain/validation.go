package domain

import "unicode/utf8"

// Validation constants
const (
	MinDescriptionLength = 1
	MaxDescriptionLength = 10
)

// ValidateTransactionRequest checks amount, kind and description, in that
// order, and returns the first failure.
func ValidateTransactionRequest(req TransactionRequest) (TransactionRequest, error) {
	if req.Amount <= 0 {
		return TransactionRequest{}, ErrInvalidAmount
	}

	if !req.Kind.Valid() {
		return TransactionRequest{}, ErrInvalidKind
	}

	n := utf8.RuneCountInString(req.Description)
	if n < MinDescriptionLength || n > MaxDescriptionLength {
		return TransactionRequest{}, ErrInvalidDescription
	}

	return req, nil
}
