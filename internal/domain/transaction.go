package domain

import "time"

// TransactionKind is the direction of a balance mutation.
type TransactionKind string

const (
	KindCredit TransactionKind = "c"
	KindDebit  TransactionKind = "d"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

// TransactionRecord is an immutable ledger line for one account.
type TransactionRecord struct {
	PerformedAt time.Time
	ID          string
	Description string
	Kind        TransactionKind
	AccountID   int64
	Amount      int64
}

// TransactionRequest is an incoming mutation before it touches any state.
type TransactionRequest struct {
	Description string
	Kind        TransactionKind
	Amount      int64
}

// TransactionResult is the account state after a committed mutation.
type TransactionResult struct {
	Balance     int64
	CreditLimit int64
}

// Statement is the balance together with the most recent records,
// taken under the same account lock.
type Statement struct {
	AsOf         time.Time
	Transactions []*TransactionRecord
	Balance      int64
	CreditLimit  int64
}

// Timestamp returns t in UTC truncated to the precision the ledger stores.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
