package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createBalance = `-- name: CreateBalance :exec
INSERT INTO balances (account_id, amount, version, updated_at)
VALUES ($1, $2, $3, $4)
`

type CreateBalanceParams struct {
	AccountID string             `json:"account_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Version   int64              `json:"version"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateBalance(ctx context.Context, arg CreateBalanceParams) error {
	_, err := q.db.Exec(ctx, createBalance,
		arg.AccountID,
		arg.Amount,
		arg.Version,
		arg.UpdatedAt,
	)
	return err
}

const ensureBalance = `-- name: EnsureBalance :exec
INSERT INTO balances (account_id, amount, version, updated_at)
VALUES ($1, 0, 0, $2)
ON CONFLICT (account_id) DO NOTHING
`

type EnsureBalanceParams struct {
	AccountID string             `json:"account_id"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) EnsureBalance(ctx context.Context, arg EnsureBalanceParams) error {
	_, err := q.db.Exec(ctx, ensureBalance, arg.AccountID, arg.UpdatedAt)
	return err
}

const getBalance = `-- name: GetBalance :one
SELECT account_id, amount, version, updated_at FROM balances WHERE account_id = $1
`

func (q *Queries) GetBalance(ctx context.Context, accountID string) (Balance, error) {
	row := q.db.QueryRow(ctx, getBalance, accountID)
	var i Balance
	err := row.Scan(
		&i.AccountID,
		&i.Amount,
		&i.Version,
		&i.UpdatedAt,
	)
	return i, err
}

const getBalanceForUpdate = `-- name: GetBalanceForUpdate :one
SELECT account_id, amount, version, updated_at FROM balances WHERE account_id = $1 FOR UPDATE
`

func (q *Queries) GetBalanceForUpdate(ctx context.Context, accountID string) (Balance, error) {
	row := q.db.QueryRow(ctx, getBalanceForUpdate, accountID)
	var i Balance
	err := row.Scan(
		&i.AccountID,
		&i.Amount,
		&i.Version,
		&i.UpdatedAt,
	)
	return i, err
}

const updateBalance = `-- name: UpdateBalance :one
UPDATE balances
SET amount = $2, version = $3, updated_at = $4
WHERE account_id = $1 AND version = $5
RETURNING account_id, amount, version, updated_at
`

type UpdateBalanceParams struct {
	AccountID       string             `json:"account_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Version         int64              `json:"version"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
	ExpectedVersion int64              `json:"expected_version"`
}

func (q *Queries) UpdateBalance(ctx context.Context, arg UpdateBalanceParams) (Balance, error) {
	row := q.db.QueryRow(ctx, updateBalance,
		arg.AccountID,
		arg.Amount,
		arg.Version,
		arg.UpdatedAt,
		arg.ExpectedVersion,
	)
	var i Balance
	err := row.Scan(
		&i.AccountID,
		&i.Amount,
		&i.Version,
		&i.UpdatedAt,
	)
	return i, err
}
