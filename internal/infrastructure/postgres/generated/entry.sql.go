package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createEntry = `-- name: CreateEntry :one
INSERT INTO entries (id, account_id, amount, type, description, related_car_id, entry_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, account_id, amount, type, description, related_car_id, entry_date, created_at, updated_at
`

type CreateEntryParams struct {
	ID           string             `json:"id"`
	AccountID    string             `json:"account_id"`
	Amount       pgtype.Numeric     `json:"amount"`
	Type         string             `json:"type"`
	Description  pgtype.Text        `json:"description"`
	RelatedCarID pgtype.Text        `json:"related_car_id"`
	EntryDate    pgtype.Timestamptz `json:"entry_date"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) (Entry, error) {
	row := q.db.QueryRow(ctx, createEntry,
		arg.ID,
		arg.AccountID,
		arg.Amount,
		arg.Type,
		arg.Description,
		arg.RelatedCarID,
		arg.EntryDate,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Entry
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Amount,
		&i.Type,
		&i.Description,
		&i.RelatedCarID,
		&i.EntryDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteEntry = `-- name: DeleteEntry :execrows
DELETE FROM entries WHERE id = $1
`

func (q *Queries) DeleteEntry(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getEntryByID = `-- name: GetEntryByID :one
SELECT id, account_id, amount, type, description, related_car_id, entry_date, created_at, updated_at FROM entries WHERE id = $1
`

func (q *Queries) GetEntryByID(ctx context.Context, id string) (Entry, error) {
	row := q.db.QueryRow(ctx, getEntryByID, id)
	var i Entry
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Amount,
		&i.Type,
		&i.Description,
		&i.RelatedCarID,
		&i.EntryDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getEntryByIDForUpdate = `-- name: GetEntryByIDForUpdate :one
SELECT id, account_id, amount, type, description, related_car_id, entry_date, created_at, updated_at FROM entries WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetEntryByIDForUpdate(ctx context.Context, id string) (Entry, error) {
	row := q.db.QueryRow(ctx, getEntryByIDForUpdate, id)
	var i Entry
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Amount,
		&i.Type,
		&i.Description,
		&i.RelatedCarID,
		&i.EntryDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listEntries = `-- name: ListEntries :many
SELECT id, account_id, amount, type, description, related_car_id, entry_date, created_at, updated_at FROM entries
WHERE account_id = $1
  AND ($2::timestamptz IS NULL OR entry_date >= $2)
  AND ($3::timestamptz IS NULL OR entry_date < $3)
  AND ($4::text IS NULL OR type = $4)
  AND ($5::text IS NULL OR related_car_id = $5)
ORDER BY entry_date, created_at, id
LIMIT $6 OFFSET $7
`

type ListEntriesParams struct {
	AccountID    string             `json:"account_id"`
	FromDate     pgtype.Timestamptz `json:"from_date"`
	ToDate       pgtype.Timestamptz `json:"to_date"`
	Type         pgtype.Text        `json:"type"`
	RelatedCarID pgtype.Text        `json:"related_car_id"`
	Limit        int32              `json:"limit"`
	Offset       int32              `json:"offset"`
}

func (q *Queries) ListEntries(ctx context.Context, arg ListEntriesParams) ([]Entry, error) {
	rows, err := q.db.Query(ctx, listEntries,
		arg.AccountID,
		arg.FromDate,
		arg.ToDate,
		arg.Type,
		arg.RelatedCarID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Entry{}
	for rows.Next() {
		var i Entry
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Amount,
			&i.Type,
			&i.Description,
			&i.RelatedCarID,
			&i.EntryDate,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumEntriesBefore = `-- name: SumEntriesBefore :one
SELECT COALESCE(SUM(CASE WHEN type = 'CREDIT' THEN amount ELSE -amount END), 0)::NUMERIC AS total
FROM entries
WHERE account_id = $1 AND entry_date < $2
`

type SumEntriesBeforeParams struct {
	AccountID string             `json:"account_id"`
	EntryDate pgtype.Timestamptz `json:"entry_date"`
}

func (q *Queries) SumEntriesBefore(ctx context.Context, arg SumEntriesBeforeParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumEntriesBefore, arg.AccountID, arg.EntryDate)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const updateEntry = `-- name: UpdateEntry :execrows
UPDATE entries
SET amount = $2, type = $3, description = $4, related_car_id = $5, entry_date = $6, updated_at = $7
WHERE id = $1
`

type UpdateEntryParams struct {
	ID           string             `json:"id"`
	Amount       pgtype.Numeric     `json:"amount"`
	Type         string             `json:"type"`
	Description  pgtype.Text        `json:"description"`
	RelatedCarID pgtype.Text        `json:"related_car_id"`
	EntryDate    pgtype.Timestamptz `json:"entry_date"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateEntry(ctx context.Context, arg UpdateEntryParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateEntry,
		arg.ID,
		arg.Amount,
		arg.Type,
		arg.Description,
		arg.RelatedCarID,
		arg.EntryDate,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
