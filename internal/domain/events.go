package domain

import "time"

// Event types
const (
	EventTypeEntryCreated   = "entry.created"
	EventTypeEntryUpdated   = "entry.updated"
	EventTypeEntryDeleted   = "entry.deleted"
	EventTypeAccountCreated = "account.created"
)

// Aggregate types
const (
	AggregateTypeEntry   = "entry"
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

// EntryChangedEvent is the payload for entry.created, entry.updated and entry.deleted.
type EntryChangedEvent struct {
	EntryID      string  `json:"entry_id"`
	AccountID    string  `json:"account_id"`
	Type         string  `json:"type"`
	Amount       string  `json:"amount"`
	Date         string  `json:"date"`
	RelatedCarID *string `json:"related_car_id,omitempty"`
	Delta        string  `json:"delta"`
	Balance      string  `json:"balance"`
	EventAt      string  `json:"event_at"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

// ToPayload converts the event into the generic outbox payload.
func (e EntryChangedEvent) ToPayload() map[string]any {
	payload := map[string]any{
		"entry_id":   e.EntryID,
		"account_id": e.AccountID,
		"type":       e.Type,
		"amount":     e.Amount,
		"date":       e.Date,
		"delta":      e.Delta,
		"balance":    e.Balance,
		"event_at":   e.EventAt,
	}
	if e.RelatedCarID != nil {
		payload["related_car_id"] = *e.RelatedCarID
	}
	return payload
}
