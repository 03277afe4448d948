package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

// LedgerUseCase builds running-balance views of an account's entries.
type LedgerUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, entryRepo EntryRepository) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// GetLedgerInput selects the window to project.
// Without StartingBalance the window opens at the signed total of everything
// dated before From, or at zero when From is nil.
type GetLedgerInput struct {
	AccountID       string
	From            *time.Time
	To              *time.Time
	StartingBalance *decimal.Decimal
}

// Ledger is a projected window of an account's history.
type Ledger struct {
	AccountID       string
	StartingBalance decimal.Decimal
	EndingBalance   decimal.Decimal
	Entries         []domain.ProjectedEntry
}

// GetLedger returns the balance after each entry in the requested window.
func (uc *LedgerUseCase) GetLedger(ctx context.Context, input GetLedgerInput) (*Ledger, error) {
	exists, err := uc.accountRepo.Exists(ctx, input.AccountID)
	if err != nil {
		return nil, domain.WrapStorage("check account", err)
	}
	if !exists {
		return nil, domain.NewNotFoundError(domain.ResourceAccount, input.AccountID)
	}

	if input.From != nil && input.To != nil && !input.From.Before(*input.To) {
		return nil, domain.NewValidationError("to", domain.ErrInvalidDate)
	}

	starting := decimal.Zero
	switch {
	case input.StartingBalance != nil:
		starting = *input.StartingBalance
	case input.From != nil:
		starting, err = uc.entryRepo.SumBefore(ctx, input.AccountID, *input.From)
		if err != nil {
			return nil, domain.WrapStorage("sum entries", err)
		}
	}

	entries, err := uc.listWindow(ctx, input)
	if err != nil {
		return nil, domain.WrapStorage("list entries", err)
	}

	projected, err := domain.Project(entries, starting)
	if err != nil {
		return nil, err
	}

	ending := starting
	if n := len(projected); n > 0 {
		ending = projected[n-1].BalanceAfter
	}

	return &Ledger{
		AccountID:       input.AccountID,
		StartingBalance: starting,
		EndingBalance:   ending,
		Entries:         projected,
	}, nil
}

func (uc *LedgerUseCase) listWindow(ctx context.Context, input GetLedgerInput) ([]*domain.Entry, error) {
	var all []*domain.Entry
	for offset := 0; ; offset += domain.MaxPageSize {
		page, err := uc.entryRepo.List(ctx, domain.EntryFilter{
			AccountID: input.AccountID,
			From:      input.From,
			To:        input.To,
			Limit:     domain.MaxPageSize,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < domain.MaxPageSize {
			return all, nil
		}
	}
}
