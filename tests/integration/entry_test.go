package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestEntryLifecycle(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.db.TruncateAll(ctx)

	account, err := e.accounts.CreateAccount(ctx, usecase.CreateAccountInput{Name: "fleet"})
	require.NoError(t, err)

	credit, err := e.entries.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("100.25"),
		Type:      domain.EntryTypeCredit,
		Date:      day(5),
	})
	require.NoError(t, err)
	assert.True(t, credit.Balance.Amount.Equal(decimal.RequireFromString("100.25")))
	assert.Equal(t, int64(1), credit.Balance.Version)

	debit, err := e.entries.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: account.ID,
		Amount:    decimal.RequireFromString("30"),
		Type:      domain.EntryTypeDebit,
		Date:      day(3),
	})
	require.NoError(t, err)
	assert.True(t, debit.Balance.Amount.Equal(decimal.RequireFromString("70.25")))

	ledger, err := e.ledger.GetLedger(ctx, usecase.GetLedgerInput{AccountID: account.ID})
	require.NoError(t, err)
	require.Len(t, ledger.Entries, 2)
	assert.Equal(t, debit.Entry.ID, ledger.Entries[0].Entry.ID, "ledger is ordered by date")
	assert.True(t, ledger.Entries[0].BalanceAfter.Equal(decimal.RequireFromString("-30")))
	assert.True(t, ledger.EndingBalance.Equal(decimal.RequireFromString("70.25")))

	from := day(4)
	window, err := e.ledger.GetLedger(ctx, usecase.GetLedgerInput{AccountID: account.ID, From: &from})
	require.NoError(t, err)
	assert.True(t, window.StartingBalance.Equal(decimal.RequireFromString("-30")))
	require.Len(t, window.Entries, 1)

	debitType := domain.EntryTypeDebit
	updated, err := e.entries.UpdateEntry(ctx, credit.Entry.ID, usecase.EntryPatch{Type: &debitType})
	require.NoError(t, err)
	assert.True(t, updated.Balance.Amount.Equal(decimal.RequireFromString("-130.25")))

	balance, err := e.entries.DeleteEntry(ctx, debit.Entry.ID)
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(decimal.RequireFromString("-100.25")))

	_, err = e.entries.GetEntry(ctx, debit.Entry.ID)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)

	result, err := e.reconciler.Reconcile(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, result.IsReconciled())
	require.NoError(t, e.reconciler.CheckLedgerConsistency(ctx))
}

func TestEntryCarTag(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.db.TruncateAll(ctx)

	owner := e.db.CreateTestAccount(ctx, "owner")
	other := e.db.CreateTestAccount(ctx, "other")
	car := e.db.CreateTestCar(ctx, owner.ID, "van")

	_, err := e.entries.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID:    owner.ID,
		Amount:       decimal.NewFromInt(15),
		Type:         domain.EntryTypeDebit,
		Date:         day(1),
		RelatedCarID: &car.ID,
	})
	require.NoError(t, err)

	_, err = e.entries.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID:    other.ID,
		Amount:       decimal.NewFromInt(15),
		Type:         domain.EntryTypeDebit,
		Date:         day(1),
		RelatedCarID: &car.ID,
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	entries, err := e.entries.ListEntries(ctx, usecase.ListEntriesInput{AccountID: owner.ID, RelatedCarID: &car.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateEntryUnknownAccount(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.entries.CreateEntry(ctx, usecase.CreateEntryInput{
		AccountID: "missing",
		Amount:    decimal.NewFromInt(1),
		Type:      domain.EntryTypeCredit,
		Date:      day(1),
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
