package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moazalc/autostacks-app-sub000/internal/adapter/http/dto"
	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Reconcile(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
	CheckLedgerConsistency(ctx context.Context) error
}

// ReconciliationHandler exposes drift detection. It never corrects balances.
type ReconciliationHandler struct {
	reconcileUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconcileUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconcileUC: reconcileUC}
}

// Account reconciles one account. Drift is answered with 409 and the full result.
func (h *ReconciliationHandler) Account(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconcileUC.Reconcile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrBalanceDrift) && result != nil {
			writeJSON(w, http.StatusConflict, dto.ReconciliationFromUseCase(result))
			return
		}
		writeDomainError(w, r, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// All reconciles every account and reports discrepancies.
func (h *ReconciliationHandler) All(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcileUC.ReconcileAll(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to reconcile ledger", err)
		return
	}

	status := http.StatusOK
	if len(report.Discrepancies) > 0 || !report.LedgerConsistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ReconciliationReportFromUseCase(report))
}

// CheckConsistency checks if the ledger is consistent.
func (h *ReconciliationHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	err := h.reconcileUC.CheckLedgerConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"status":     "inconsistent",
				"consistent": false,
				"message":    err.Error(),
			})
			return
		}
		writeDomainError(w, r, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "consistent",
		"consistent": true,
	})
}
