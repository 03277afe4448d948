package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const checkLedgerConsistency = `-- name: CheckLedgerConsistency :one
SELECT
    (SELECT COALESCE(SUM(amount), 0) FROM balances)::NUMERIC AS total_balance,
    (SELECT COALESCE(SUM(CASE WHEN type = 'CREDIT' THEN amount ELSE -amount END), 0) FROM entries)::NUMERIC AS total_signed
`

type CheckLedgerConsistencyRow struct {
	TotalBalance pgtype.Numeric `json:"total_balance"`
	TotalSigned  pgtype.Numeric `json:"total_signed"`
}

func (q *Queries) CheckLedgerConsistency(ctx context.Context) (CheckLedgerConsistencyRow, error) {
	row := q.db.QueryRow(ctx, checkLedgerConsistency)
	var i CheckLedgerConsistencyRow
	err := row.Scan(&i.TotalBalance, &i.TotalSigned)
	return i, err
}

const reconcileAccount = `-- name: ReconcileAccount :one
SELECT
    COALESCE((SELECT amount FROM balances WHERE account_id = $1), 0)::NUMERIC AS stored,
    (SELECT COALESCE(SUM(CASE WHEN type = 'CREDIT' THEN amount ELSE -amount END), 0) FROM entries WHERE account_id = $1)::NUMERIC AS recomputed
`

type ReconcileAccountRow struct {
	Stored     pgtype.Numeric `json:"stored"`
	Recomputed pgtype.Numeric `json:"recomputed"`
}

func (q *Queries) ReconcileAccount(ctx context.Context, accountID string) (ReconcileAccountRow, error) {
	row := q.db.QueryRow(ctx, reconcileAccount, accountID)
	var i ReconcileAccountRow
	err := row.Scan(&i.Stored, &i.Recomputed)
	return i, err
}
