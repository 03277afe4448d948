package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres/generated"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create creates a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	_, err = queries.CreateEntry(ctx, generated.CreateEntryParams{
		ID:           entry.ID,
		AccountID:    entry.AccountID,
		Amount:       decimalToNumeric(entry.Amount),
		Type:         entry.Type.String(),
		Description:  textFromPtr(entry.Description),
		RelatedCarID: textFromPtr(entry.RelatedCarID),
		EntryDate:    timeToPgTimestamptz(entry.Date),
		CreatedAt:    timeToPgTimestamptz(entry.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(entry.UpdatedAt),
	})

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ResourceEntry, id)
	}

	return rowToEntry(row)
}

// GetByIDForUpdate retrieves an entry with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetEntryByIDForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ResourceEntry, id)
	}

	return rowToEntry(row)
}

// Update overwrites the mutable fields of an entry.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateEntry(ctx, generated.UpdateEntryParams{
		ID:           entry.ID,
		Amount:       decimalToNumeric(entry.Amount),
		Type:         entry.Type.String(),
		Description:  textFromPtr(entry.Description),
		RelatedCarID: textFromPtr(entry.RelatedCarID),
		EntryDate:    timeToPgTimestamptz(entry.Date),
		UpdatedAt:    timeToPgTimestamptz(entry.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(domain.ResourceEntry, entry.ID)
	}

	return nil
}

// Delete removes an entry.
func (r *EntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	n, err := queries.DeleteEntry(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(domain.ResourceEntry, id)
	}

	return nil
}

// List returns an account's entries in ledger order.
func (r *EntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.Entry, error) {
	params := generated.ListEntriesParams{
		AccountID:    filter.AccountID,
		FromDate:     optionalTimestamptz(filter.From),
		ToDate:       optionalTimestamptz(filter.To),
		RelatedCarID: textFromPtr(filter.RelatedCarID),
		Limit:        int32(filter.Limit),
		Offset:       int32(filter.Offset),
	}
	if filter.Type != nil {
		params.Type = pgtype.Text{String: filter.Type.String(), Valid: true}
	}

	rows, err := r.queries.ListEntries(ctx, params)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := rowToEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// SumBefore returns the signed total of entries dated before the given time.
func (r *EntryRepository) SumBefore(ctx context.Context, accountID string, before time.Time) (decimal.Decimal, error) {
	total, err := r.queries.SumEntriesBefore(ctx, generated.SumEntriesBeforeParams{
		AccountID: accountID,
		EntryDate: timeToPgTimestamptz(before),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func rowToEntry(row generated.Entry) (*domain.Entry, error) {
	typ, err := domain.ParseEntryType(row.Type)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", row.ID, err)
	}

	return &domain.Entry{
		ID:           row.ID,
		AccountID:    row.AccountID,
		Amount:       numericToDecimal(row.Amount),
		Type:         typ,
		Description:  ptrFromText(row.Description),
		RelatedCarID: ptrFromText(row.RelatedCarID),
		Date:         row.EntryDate.Time,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}, nil
}
