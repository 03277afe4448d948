package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase/mocks"
)

func TestReconciliationUseCase_DetectsDrift(t *testing.T) {
	e := newEngine(t)
	acc := e.mustAccount(t, "Fleet")
	e.mustCreate(t, acc.ID, 100, domain.EntryTypeCredit, date(2024, 1, 1))

	e.store.OverwriteBalance(acc.ID, dec(90))

	res, err := e.reconciliation.Reconcile(context.Background(), acc.ID)
	require.Error(t, err)
	require.NotNil(t, res, "drift must still return the result")

	var drift *domain.BalanceDriftError
	require.ErrorAs(t, err, &drift)
	assert.True(t, drift.Drift.Equal(dec(-10)))
	assert.True(t, res.StoredBalance.Equal(dec(90)))
	assert.True(t, res.RecomputedBalance.Equal(dec(100)))
	assert.False(t, res.IsReconciled())

	assert.True(t, e.recorder.drifts[acc.ID].Equal(dec(-10)))
	assert.Equal(t, 1, e.recorder.outcomes[usecase.OutcomeDrift])

	// Never auto-corrected.
	assert.True(t, e.balance(t, acc.ID).Equal(dec(90)))
}

func TestReconciliationUseCase_ReconcileAll(t *testing.T) {
	e := newEngine(t)
	good := e.mustAccount(t, "Good")
	bad := e.mustAccount(t, "Bad")
	e.mustCreate(t, good.ID, 10, domain.EntryTypeCredit, date(2024, 1, 1))
	e.mustCreate(t, bad.ID, 10, domain.EntryTypeDebit, date(2024, 1, 1))
	e.store.OverwriteBalance(bad.ID, dec(0))

	report, err := e.reconciliation.ReconcileAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalAccounts)
	assert.Equal(t, 1, report.ReconciledAccounts)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, bad.ID, report.Discrepancies[0].AccountID)
	assert.False(t, report.LedgerConsistent)
}

func TestReconciliationUseCase_UnknownAccount(t *testing.T) {
	e := newEngine(t)
	_, err := e.reconciliation.Reconcile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestReconciliationUseCase_CheckLedgerConsistency(t *testing.T) {
	tests := []struct {
		name        string
		balances    decimal.Decimal
		entries     decimal.Decimal
		repoErr     error
		expectError error
	}{
		{name: "consistent", balances: dec(70), entries: dec(70)},
		{name: "inconsistent", balances: dec(71), entries: dec(70), expectError: usecase.ErrInconsistentLedger},
		{name: "storage failure", repoErr: errors.New("timeout"), expectError: domain.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
			ledgerRepo.EXPECT().CheckConsistency(gomock.Any()).Return(tt.balances, tt.entries, tt.repoErr)

			uc := usecase.NewReconciliationUseCase(mocks.NewMockAccountRepository(ctrl), ledgerRepo, nil, zerolog.Nop())
			err := uc.CheckLedgerConsistency(context.Background())

			if tt.expectError == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectError)
		})
	}
}
