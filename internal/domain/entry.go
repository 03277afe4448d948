package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry. Only the two declared values are valid.
type EntryType uint8

const (
	EntryTypeCredit EntryType = iota + 1
	EntryTypeDebit
)

// ParseEntryType parses "CREDIT" or "DEBIT" (case-insensitive).
func ParseEntryType(s string) (EntryType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREDIT":
		return EntryTypeCredit, nil
	case "DEBIT":
		return EntryTypeDebit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidEntryType, s)
	}
}

// IsValid reports whether t is CREDIT or DEBIT.
func (t EntryType) IsValid() bool {
	return t == EntryTypeCredit || t == EntryTypeDebit
}

func (t EntryType) String() string {
	switch t {
	case EntryTypeCredit:
		return "CREDIT"
	case EntryTypeDebit:
		return "DEBIT"
	default:
		return fmt.Sprintf("EntryType(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t EntryType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEntryType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EntryType) UnmarshalText(b []byte) error {
	parsed, err := ParseEntryType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Signed returns the contribution of amount to a balance for this entry type.
func (t EntryType) Signed(amount decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case EntryTypeCredit:
		return amount, nil
	case EntryTypeDebit:
		return amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidEntryType, uint8(t))
	}
}

// Entry is a single CREDIT or DEBIT record against an account.
// Amount is always positive; the sign is carried by Type.
type Entry struct {
	ID           string
	AccountID    string
	Amount       decimal.Decimal
	Type         EntryType
	Description  *string
	RelatedCarID *string
	Date         time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Signed returns the entry's signed contribution to the account balance.
func (e *Entry) Signed() (decimal.Decimal, error) {
	return e.Type.Signed(e.Amount)
}

// Validate checks the entry invariants that do not need storage lookups.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.AccountID) == "" {
		return NewValidationError("account_id", ErrAccountNotFound)
	}
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if !e.Type.IsValid() {
		return NewValidationError("type", ErrInvalidEntryType)
	}
	if e.Date.IsZero() {
		return NewValidationError("date", ErrInvalidDate)
	}
	if e.Description != nil {
		if err := ValidateDescription(*e.Description); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Description != nil {
		d := *e.Description
		c.Description = &d
	}
	if e.RelatedCarID != nil {
		id := *e.RelatedCarID
		c.RelatedCarID = &id
	}
	return &c
}

// EntryLess orders entries by Date, then CreatedAt, then ID.
// Storage list queries use the same ORDER BY.
func EntryLess(a, b *Entry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortEntries sorts entries in place in ledger order.
func SortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return EntryLess(entries[i], entries[j])
	})
}

// EntryFilter narrows an account's entry listing.
// From is inclusive and To is exclusive, both compared against Date.
type EntryFilter struct {
	AccountID    string
	From         *time.Time
	To           *time.Time
	Type         *EntryType
	RelatedCarID *string
	Limit        int
	Offset       int
}
