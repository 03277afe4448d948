package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxDescriptionLength = 1024
	MaxEntryAmount       = "1000000000000" // 1 trillion
	MaxPageSize          = 1000
	DefaultPageSize      = 50
)

var maxEntryAmount = decimal.RequireFromString(MaxEntryAmount)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < MinAccountNameLength {
		return NewValidationError("name", fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName))
	}

	if utf8.RuneCountInString(name) > MaxAccountNameLength {
		return NewValidationError("name", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength))
	}

	return nil
}

// ValidateAmount validates an entry amount. Amounts are unsigned; direction comes from the entry type.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("amount", ErrInvalidAmount)
	}

	if amount.GreaterThan(maxEntryAmount) {
		return NewValidationError("amount", fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxEntryAmount))
	}

	return nil
}

// ValidateDescription validates free-text entry descriptions
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return NewValidationError("description", fmt.Errorf("%w: limit is %d characters", ErrDescriptionTooLong, MaxDescriptionLength))
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
