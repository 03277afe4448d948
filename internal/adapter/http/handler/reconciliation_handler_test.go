package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/adapter/http/dto"
	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

type reconciliationServiceStub struct {
	reconcileFn   func(ctx context.Context, id string) (*usecase.ReconciliationResult, error)
	allFn         func(ctx context.Context) (*usecase.ReconciliationReport, error)
	consistencyFn func(ctx context.Context) error
}

func (s *reconciliationServiceStub) Reconcile(ctx context.Context, id string) (*usecase.ReconciliationResult, error) {
	return s.reconcileFn(ctx, id)
}

func (s *reconciliationServiceStub) ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.allFn(ctx)
}

func (s *reconciliationServiceStub) CheckLedgerConsistency(ctx context.Context) error {
	return s.consistencyFn(ctx)
}

type ledgerServiceStub struct {
	fn func(ctx context.Context, input usecase.GetLedgerInput) (*usecase.Ledger, error)
}

func (s *ledgerServiceStub) GetLedger(ctx context.Context, input usecase.GetLedgerInput) (*usecase.Ledger, error) {
	return s.fn(ctx, input)
}

func TestReconciliationHandler_Account(t *testing.T) {
	drifted := &usecase.ReconciliationResult{
		AccountID:         "acc-1",
		StoredBalance:     decimal.NewFromInt(90),
		RecomputedBalance: decimal.NewFromInt(100),
		Drift:             decimal.NewFromInt(-10),
	}

	tests := []struct {
		name   string
		result *usecase.ReconciliationResult
		err    error
		status int
		drift  string
	}{
		{"reconciled", &usecase.ReconciliationResult{AccountID: "acc-1"}, nil, http.StatusOK, "0"},
		{"drift", drifted, &domain.BalanceDriftError{AccountID: "acc-1", Drift: drifted.Drift}, http.StatusConflict, "-10"},
		{"unknown account", nil, domain.NewNotFoundError(domain.ResourceAccount, "acc-1"), http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewReconciliationHandler(&reconciliationServiceStub{
				reconcileFn: func(ctx context.Context, id string) (*usecase.ReconciliationResult, error) {
					return tt.result, tt.err
				},
			})

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/reconciliation", nil), "id", "acc-1")
			rec := httptest.NewRecorder()

			handler.Account(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.drift == "" {
				return
			}
			var resp dto.ReconciliationResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Drift != tt.drift {
				t.Fatalf("expected drift %s, got %s", tt.drift, resp.Drift)
			}
		})
	}
}

func TestReconciliationHandler_AllReportsDiscrepancies(t *testing.T) {
	handler := NewReconciliationHandler(&reconciliationServiceStub{
		allFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{
				TotalAccounts: 2,
				Discrepancies: []*usecase.ReconciliationResult{{AccountID: "acc-2", Drift: decimal.NewFromInt(5)}},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.All(rec, httptest.NewRequest(http.MethodGet, "/ledger/reconciliation", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestReconciliationHandler_CheckConsistency(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"consistent", nil, http.StatusOK},
		{"inconsistent", fmt.Errorf("%w: off by 1", usecase.ErrInconsistentLedger), http.StatusConflict},
		{"storage", domain.WrapStorage("sum", context.Canceled), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewReconciliationHandler(&reconciliationServiceStub{
				consistencyFn: func(ctx context.Context) error { return tt.err },
			})

			rec := httptest.NewRecorder()
			handler.CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestLedgerHandler_Get(t *testing.T) {
	var captured usecase.GetLedgerInput
	handler := NewLedgerHandler(&ledgerServiceStub{
		fn: func(ctx context.Context, input usecase.GetLedgerInput) (*usecase.Ledger, error) {
			captured = input
			e := &domain.Entry{ID: "e1", Amount: decimal.NewFromInt(5), Type: domain.EntryTypeCredit}
			return &usecase.Ledger{
				AccountID:       input.AccountID,
				StartingBalance: *input.StartingBalance,
				EndingBalance:   input.StartingBalance.Add(e.Amount),
				Entries:         []domain.ProjectedEntry{{Entry: e, BalanceAfter: input.StartingBalance.Add(e.Amount)}},
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/ledger?from=2024-02-01&starting_balance=70", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.From == nil || captured.To != nil || captured.AccountID != "acc-1" {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.LedgerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StartingBalance != "70" || resp.EndingBalance != "75" || resp.Entries[0].BalanceAfter != "75" {
		t.Fatalf("unexpected ledger %+v", resp)
	}
}

func TestLedgerHandler_Get_BadStartingBalance(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/ledger?starting_balance=abc", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return fmt.Errorf("connection refused") })

	rec := httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"postgres": ok, "redis": nil}).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"postgres": ok, "redis": down}).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
