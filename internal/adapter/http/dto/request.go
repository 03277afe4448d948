package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// DateLayout is the calendar-date form accepted alongside RFC 3339.
const DateLayout = "2006-01-02"

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{Name: r.Name}
}

// CreateEntryRequest represents a request to record an entry against an account.
type CreateEntryRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"positive_decimal"`
	Type         string          `json:"type" validate:"required,entry_type"`
	Date         string          `json:"date" validate:"required"`
	Description  *string         `json:"description,omitempty" validate:"omitempty,max=1024"`
	RelatedCarID *string         `json:"related_car_id,omitempty" validate:"omitempty,max=64"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput(accountID string) (usecase.CreateEntryInput, error) {
	entryType, err := domain.ParseEntryType(r.Type)
	if err != nil {
		return usecase.CreateEntryInput{}, domain.NewValidationError("type", err)
	}

	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.CreateEntryInput{}, domain.NewValidationError("date", err)
	}

	return usecase.CreateEntryInput{
		AccountID:    accountID,
		Amount:       r.Amount,
		Type:         entryType,
		Date:         date,
		Description:  r.Description,
		RelatedCarID: r.RelatedCarID,
	}, nil
}

// UpdateEntryRequest is a partial update. Absent fields are left unchanged.
type UpdateEntryRequest struct {
	Amount           *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,positive_decimal"`
	Type             *string          `json:"type,omitempty" validate:"omitempty,entry_type"`
	Date             *string          `json:"date,omitempty"`
	Description      *string          `json:"description,omitempty" validate:"omitempty,max=1024"`
	RelatedCarID     *string          `json:"related_car_id,omitempty" validate:"omitempty,max=64"`
	ClearDescription bool             `json:"clear_description,omitempty"`
	ClearRelatedCar  bool             `json:"clear_related_car,omitempty"`
}

// ToPatch converts to a use case patch.
func (r *UpdateEntryRequest) ToPatch() (usecase.EntryPatch, error) {
	patch := usecase.EntryPatch{
		Amount:           r.Amount,
		Description:      r.Description,
		RelatedCarID:     r.RelatedCarID,
		ClearDescription: r.ClearDescription,
		ClearRelatedCar:  r.ClearRelatedCar,
	}

	if r.Type != nil {
		entryType, err := domain.ParseEntryType(*r.Type)
		if err != nil {
			return usecase.EntryPatch{}, domain.NewValidationError("type", err)
		}
		patch.Type = &entryType
	}

	if r.Date != nil {
		date, err := ParseDate(*r.Date)
		if err != nil {
			return usecase.EntryPatch{}, domain.NewValidationError("date", err)
		}
		patch.Date = &date
	}

	return patch, nil
}

// ParseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates (midnight UTC).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q is neither RFC 3339 nor %s", domain.ErrInvalidDate, s, DateLayout)
}
