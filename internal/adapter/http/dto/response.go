package dto

import (
	"encoding/json"
	"time"

	"github.com/iho/creditledger/internal/domain"
)

// TimestampLayout renders UTC timestamps with microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp is a time.Time serialized with TimestampLayout.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(TimestampLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TransactionResponse is the account state after a committed transaction.
type TransactionResponse struct {
	CreditLimit int64 `json:"creditLimit"`
	Balance     int64 `json:"balance"`
}

// TransactionResultFromDomain converts a domain result to response.
func TransactionResultFromDomain(r *domain.TransactionResult) *TransactionResponse {
	return &TransactionResponse{
		CreditLimit: r.CreditLimit,
		Balance:     r.Balance,
	}
}

// StatementResponse represents an account statement.
type StatementResponse struct {
	Balance            BalanceResponse           `json:"balance"`
	RecentTransactions []TransactionLineResponse `json:"recentTransactions"`
}

// BalanceResponse is the balance section of a statement.
type BalanceResponse struct {
	Total int64     `json:"total"`
	Limit int64     `json:"limit"`
	AsOf  Timestamp `json:"asOf"`
}

// TransactionLineResponse is one ledger record in a statement.
type TransactionLineResponse struct {
	Amount      int64     `json:"amount"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	PerformedAt Timestamp `json:"performedAt"`
}

// StatementFromDomain converts a domain statement to response.
// RecentTransactions is never nil.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	lines := make([]TransactionLineResponse, len(s.Transactions))
	for i, r := range s.Transactions {
		lines[i] = TransactionLineResponse{
			Amount:      r.Amount,
			Kind:        string(r.Kind),
			Description: r.Description,
			PerformedAt: Timestamp(r.PerformedAt),
		}
	}

	return &StatementResponse{
		Balance: BalanceResponse{
			Total: s.Balance,
			Limit: s.CreditLimit,
			AsOf:  Timestamp(s.AsOf),
		},
		RecentTransactions: lines,
	}
}

// ConsistencyResponse is the outcome of a ledger consistency check.
type ConsistencyResponse struct {
	Status       string                  `json:"status"`
	Consistent   bool                    `json:"consistent"`
	Checked      int                     `json:"checked"`
	Inconsistent []AccountTotalsResponse `json:"inconsistent"`
}

// AccountTotalsResponse describes an account flagged by the consistency check.
type AccountTotalsResponse struct {
	AccountID      int64 `json:"accountId"`
	CreditLimit    int64 `json:"creditLimit"`
	OpeningBalance int64 `json:"openingBalance"`
	Balance        int64 `json:"balance"`
	Credits        int64 `json:"credits"`
	Debits         int64 `json:"debits"`
	Drift          int64 `json:"drift"`
}

// ConsistencyFromDomain converts a consistency report to response.
func ConsistencyFromDomain(r *domain.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:       "consistent",
		Consistent:   r.Consistent(),
		Checked:      r.Checked,
		Inconsistent: make([]AccountTotalsResponse, 0, len(r.Inconsistent)),
	}
	if !resp.Consistent {
		resp.Status = "inconsistent"
	}

	for _, t := range r.Inconsistent {
		resp.Inconsistent = append(resp.Inconsistent, AccountTotalsResponse{
			AccountID:      t.AccountID,
			CreditLimit:    t.CreditLimit,
			OpeningBalance: t.OpeningBalance,
			Balance:        t.Balance,
			Credits:        t.Credits,
			Debits:         t.Debits,
			Drift:          t.Drift(),
		})
	}

	return resp
}
