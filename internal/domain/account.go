package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account owns entries, cars and exactly one balance.
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Car is an optional tag on an entry. It never affects balance math.
type Car struct {
	ID        string
	AccountID string
	Name      string
	CreatedAt time.Time
}

// Balance is the persisted running total for one account.
type Balance struct {
	AccountID string
	Amount    decimal.Decimal
	Version   int64
	UpdatedAt time.Time
}

// ZeroBalance returns an unpersisted zero balance for accountID.
func ZeroBalance(accountID string) *Balance {
	return &Balance{AccountID: accountID, Amount: decimal.Zero}
}

// Apply returns the balance after adding signedDelta.
func (b *Balance) Apply(signedDelta decimal.Decimal) decimal.Decimal {
	return b.Amount.Add(signedDelta)
}
