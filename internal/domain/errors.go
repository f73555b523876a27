package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be a positive integer", ErrValidation)
	ErrInvalidKind        = fmt.Errorf("%w: kind must be \"c\" or \"d\"", ErrValidation)
	ErrInvalidDescription = fmt.Errorf("%w: description must have 1 to %d characters", ErrValidation, MaxDescriptionLength)
	ErrBalanceOverflow    = fmt.Errorf("%w: amount would overflow the balance", ErrValidation)

	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds: credit limit exceeded")

	// Store errors
	ErrTransactionStart = errors.New("failed to start transaction")
	ErrPersistence      = errors.New("failed to persist transaction")
	ErrCommit           = errors.New("failed to commit transaction")
	ErrTimeout          = errors.New("timed out waiting for account")
)
