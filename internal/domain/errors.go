package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error categories. Every typed error below unwraps to exactly one of these.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrBalanceDrift        = errors.New("balance drift detected")
	ErrStorage             = errors.New("storage failure")
)

var (
	// Entry errors
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidEntryType   = errors.New("entry type must be CREDIT or DEBIT")
	ErrInvalidDate        = errors.New("date is required")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
	ErrEmptyPatch         = errors.New("patch does not change any field")
	ErrEntryNotFound      = errors.New("entry not found")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountName = errors.New("invalid account name")

	// Car errors
	ErrCarNotFound        = errors.New("car not found")
	ErrCarAccountMismatch = errors.New("car belongs to a different account")

	// Balance errors
	ErrBalanceVersionMismatch = errors.New("balance version changed")
)

// ValidationError reports malformed input. Nothing has been written when it is returned.
type ValidationError struct {
	Field string
	Err   error
}

// NewValidationError wraps err as a validation failure on field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %v", e.Err)
	}
	return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

// NotFoundError reports a missing entry, account or car.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() []error {
	errs := []error{ErrNotFound}
	switch e.Resource {
	case ResourceEntry:
		errs = append(errs, ErrEntryNotFound)
	case ResourceAccount:
		errs = append(errs, ErrAccountNotFound)
	case ResourceCar:
		errs = append(errs, ErrCarNotFound)
	}
	return errs
}

// Resource names used in NotFoundError.
const (
	ResourceEntry   = "entry"
	ResourceAccount = "account"
	ResourceCar     = "car"
)

// ConcurrencyConflictError means the balance update could not be serialized
// against a concurrent writer. The whole unit of work was rolled back and the
// caller may retry.
type ConcurrencyConflictError struct {
	AccountID string
	Err       error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.AccountID == "" {
		return fmt.Sprintf("concurrent update conflict: %v", e.Err)
	}
	return fmt.Sprintf("concurrent update conflict on account %s: %v", e.AccountID, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConcurrencyConflict}
	}
	return []error{ErrConcurrencyConflict, e.Err}
}

// BalanceDriftError reports a stored balance that differs from the entry history.
type BalanceDriftError struct {
	AccountID  string
	Stored     decimal.Decimal
	Recomputed decimal.Decimal
	Drift      decimal.Decimal
}

func (e *BalanceDriftError) Error() string {
	return fmt.Sprintf("balance drift on account %s: stored=%s recomputed=%s drift=%s",
		e.AccountID, e.Stored, e.Recomputed, e.Drift)
}

func (e *BalanceDriftError) Unwrap() error { return ErrBalanceDrift }

// StorageError wraps an unclassified failure from the storage layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// IsTyped reports whether err already belongs to one of the error categories.
func IsTyped(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrBalanceDrift) ||
		errors.Is(err, ErrStorage)
}

// WrapStorage returns err unchanged if it is already typed, otherwise wraps it in a StorageError.
// The cause stays reachable with errors.Is, so context.Canceled can still be detected.
func WrapStorage(op string, err error) error {
	if err == nil || IsTyped(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
