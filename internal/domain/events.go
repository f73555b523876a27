package domain

import "time"

// Event types
const (
	EventTypeTransactionRecorded = "transaction.recorded"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionRecordedEvent payload
type TransactionRecordedEvent struct {
	TransactionID string `json:"transaction_id"`
	AccountID     int64  `json:"account_id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	Balance       int64  `json:"balance"`
	CreditLimit   int64  `json:"credit_limit"`
	PerformedAt   string `json:"performed_at"`
}

// ToPayload flattens the event into an outbox payload.
func (e TransactionRecordedEvent) ToPayload() map[string]any {
	return map[string]any{
		"transaction_id": e.TransactionID,
		"account_id":     e.AccountID,
		"kind":           e.Kind,
		"amount":         e.Amount,
		"description":    e.Description,
		"balance":        e.Balance,
		"credit_limit":   e.CreditLimit,
		"performed_at":   e.PerformedAt,
	}
}
