package usecase

import (
	"context"

	"github.com/shopspring/decimal"
)

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) EntryMutated(string)                  {}
func (NopRecorder) ConcurrencyConflict(string)           {}
func (NopRecorder) BalanceDrift(string, decimal.Decimal) {}
func (NopRecorder) Reconciled(string)                    {}

// NopLocker runs fn directly. The balance row lock still serializes writers.
type NopLocker struct{}

func (NopLocker) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

// OnceRetrier runs the operation exactly once.
type OnceRetrier struct{}

func (OnceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
