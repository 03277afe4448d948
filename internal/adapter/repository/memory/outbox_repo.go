package memory

import (
	"context"
	"sort"
	"time"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an outbox event.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	ev := *event
	return mtx.stage(func() {
		mtx.outbox = append(mtx.outbox, &ev)
	})
}

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	events := r.collect(func(ev *domain.OutboxEvent) bool { return !ev.Published })
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ev, ok := r.store.outbox[id]
	if !ok {
		return domain.NewNotFoundError("outbox event", id)
	}
	at := publishedAt
	ev.Published = true
	ev.PublishedAt = &at
	return nil
}

// GetByAggregate lists events for one aggregate, oldest first.
func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	events := r.collect(func(ev *domain.OutboxEvent) bool {
		return ev.AggregateType == aggregateType && ev.AggregateID == aggregateID
	})
	if offset >= len(events) {
		return []*domain.OutboxEvent{}, nil
	}
	events = events[offset:]
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

// DeletePublished removes events published before the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, ev := range r.store.outbox {
		if ev.Published && ev.PublishedAt != nil && ev.PublishedAt.Before(before) {
			delete(r.store.outbox, id)
		}
	}
	return nil
}

func (r *OutboxRepository) collect(keep func(*domain.OutboxEvent) bool) []*domain.OutboxEvent {
	r.store.mu.RLock()
	var out []*domain.OutboxEvent
	for _, ev := range r.store.outbox {
		if keep(ev) {
			c := *ev
			out = append(out, &c)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
