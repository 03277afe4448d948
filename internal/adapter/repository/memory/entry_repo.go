package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create stages a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := mtx.lock(ctx, entryLockKey(entry.ID)); err != nil {
		return err
	}
	return mtx.stage(func() {
		delete(mtx.deleted, entry.ID)
		mtx.entries[entry.ID] = entry.Clone()
	})
}

// GetByID returns a committed entry.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.entries[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceEntry, id)
	}
	return e.Clone(), nil
}

// GetByIDForUpdate locks the entry for the rest of tx and returns it as tx sees it.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := mtx.lock(ctx, entryLockKey(id)); err != nil {
		return nil, err
	}

	mtx.mu.Lock()
	_, gone := mtx.deleted[id]
	staged, ok := mtx.entries[id]
	mtx.mu.Unlock()

	if gone {
		return nil, domain.NewNotFoundError(domain.ResourceEntry, id)
	}
	if ok {
		return staged.Clone(), nil
	}
	return r.GetByID(ctx, id)
}

// Update stages new field values for an entry locked by tx.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if _, err := r.GetByIDForUpdate(ctx, tx, entry.ID); err != nil {
		return err
	}
	mtx, _ := asTx(tx)
	return mtx.stage(func() {
		mtx.entries[entry.ID] = entry.Clone()
	})
}

// Delete stages removal of an entry.
func (r *EntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if _, err := r.GetByIDForUpdate(ctx, tx, id); err != nil {
		return err
	}
	mtx, _ := asTx(tx)
	return mtx.stage(func() {
		delete(mtx.entries, id)
		mtx.deleted[id] = struct{}{}
	})
}

// List returns committed entries matching filter in ledger order.
func (r *EntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	r.store.mu.RLock()
	var matched []*domain.Entry
	for _, e := range r.store.entries {
		if matchesFilter(e, filter) {
			matched = append(matched, e.Clone())
		}
	}
	r.store.mu.RUnlock()

	domain.SortEntries(matched)

	if filter.Offset >= len(matched) {
		return []*domain.Entry{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// SumBefore returns the signed total of committed entries dated before the given time.
func (r *EntryRepository) SumBefore(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	total := decimal.Zero
	for _, e := range r.store.entries {
		if e.AccountID != accountID || !e.Date.Before(before) {
			continue
		}
		signed, err := e.Signed()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(signed)
	}
	return total, nil
}

func matchesFilter(e *domain.Entry, f domain.EntryFilter) bool {
	if e.AccountID != f.AccountID {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !e.Date.Before(*f.To) {
		return false
	}
	if f.Type != nil && e.Type != *f.Type {
		return false
	}
	if f.RelatedCarID != nil && (e.RelatedCarID == nil || *e.RelatedCarID != *f.RelatedCarID) {
		return false
	}
	return true
}
