package generated

import (
	"context"
)

const getCarByID = `-- name: GetCarByID :one
SELECT id, account_id, name, created_at FROM cars WHERE id = $1
`

func (q *Queries) GetCarByID(ctx context.Context, id string) (Car, error) {
	row := q.db.QueryRow(ctx, getCarByID, id)
	var i Car
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Name,
		&i.CreatedAt,
	)
	return i, err
}
