package domain

import "math"

// Account represents a ledger account with an overdraft ceiling.
type Account struct {
	ID             int64
	CreditLimit    int64
	OpeningBalance int64
	Balance        int64
}

// ValidateDebit checks if account can be debited by amount without
// crossing its credit limit.
func (a *Account) ValidateDebit(amount int64) error {
	// a balance that would wrap below MinInt64 is past any limit
	if a.Balance < math.MinInt64+amount {
		return ErrInsufficientFunds
	}
	if a.ApplyDebit(amount) < -a.CreditLimit {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount int64) int64 {
	return a.Balance - amount
}

// ValidateCredit rejects credits that would overflow the balance.
func (a *Account) ValidateCredit(amount int64) error {
	if a.Balance > math.MaxInt64-amount {
		return ErrBalanceOverflow
	}
	return nil
}

// ApplyCredit returns new balance after credit. Credits are bounded only by
// the int64 range.
func (a *Account) ApplyCredit(amount int64) int64 {
	return a.Balance + amount
}

// Apply computes the prospective balance for a transaction of the given kind.
// Debits that would break the credit limit return ErrInsufficientFunds and
// credits past the int64 range return ErrBalanceOverflow. amount must be positive.
func (a *Account) Apply(kind TransactionKind, amount int64) (int64, error) {
	switch kind {
	case KindDebit:
		if err := a.ValidateDebit(amount); err != nil {
			return a.Balance, err
		}
		return a.ApplyDebit(amount), nil
	case KindCredit:
		if err := a.ValidateCredit(amount); err != nil {
			return a.Balance, err
		}
		return a.ApplyCredit(amount), nil
	default:
		return a.Balance, ErrInvalidKind
	}
}

// WithinLimit reports whether the balance respects the credit limit.
func (a *Account) WithinLimit() bool {
	return a.Balance >= -a.CreditLimit
}
