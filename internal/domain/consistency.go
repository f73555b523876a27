package domain

// AccountTotals aggregates an account's state with the sum of its records.
type AccountTotals struct {
	AccountID      int64
	CreditLimit    int64
	OpeningBalance int64
	Balance        int64
	Credits        int64
	Debits         int64
}

// Drift is the difference between the stored balance and the balance the
// records imply. Zero for a consistent account.
func (t AccountTotals) Drift() int64 {
	return t.Balance - (t.OpeningBalance + t.Credits - t.Debits)
}

// WithinLimit reports whether the stored balance respects the credit limit.
func (t AccountTotals) WithinLimit() bool {
	return t.Balance >= -t.CreditLimit
}

// ConsistencyReport lists the accounts whose balance does not match their
// records or breaks the credit limit.
type ConsistencyReport struct {
	Inconsistent []AccountTotals
	Checked      int
}

// Consistent reports whether no account was flagged.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Inconsistent) == 0
}
