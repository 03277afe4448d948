package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Balance struct {
	AccountID string             `json:"account_id"`
	Amount    pgtype.Numeric     `json:"amount"`
	Version   int64              `json:"version"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Car struct {
	ID        string             `json:"id"`
	AccountID string             `json:"account_id"`
	Name      string             `json:"name"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Entry struct {
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

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}
