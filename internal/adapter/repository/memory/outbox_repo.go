package memory

import (
	"context"
	"slices"
	"time"

	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an event; it becomes visible on Commit.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return usecase.ErrTxClosed
	}

	cp := *event
	t.events = append(t.events, &cp)
	return nil
}

// GetUnpublished returns up to limit unpublished events, oldest first.
// Published events are dropped, so the queue holds only pending ones.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.outboxMu.Lock()
	defer r.store.outboxMu.Unlock()

	n := min(limit, len(r.store.outbox))
	events := make([]*domain.OutboxEvent, 0, n)
	for _, e := range r.store.outbox[:n] {
		cp := *e
		events = append(events, &cp)
	}
	return events, nil
}

// MarkPublished removes a delivered event from the queue. Events are
// delivered oldest first, so the match is normally at the head.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.outboxMu.Lock()
	defer r.store.outboxMu.Unlock()

	i := slices.IndexFunc(r.store.outbox, func(e *domain.OutboxEvent) bool { return e.ID == id })
	if i >= 0 {
		r.store.outbox = slices.Delete(r.store.outbox, i, i+1)
	}
	return nil
}
