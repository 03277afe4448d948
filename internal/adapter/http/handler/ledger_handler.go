package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/adapter/http/dto"
	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	GetLedger(ctx context.Context, input usecase.GetLedgerInput) (*usecase.Ledger, error)
}

// LedgerHandler serves the balance-after-each-entry view.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Get returns the account's projected ledger.
// Query: from, to (to is exclusive), starting_balance.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	input := usecase.GetLedgerInput{AccountID: chi.URLParam(r, "id")}

	var err error
	if input.From, input.To, err = parseWindow(r); err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}

	if v := r.URL.Query().Get("starting_balance"); v != "" {
		start, err := decimal.NewFromString(v)
		if err != nil {
			writeDomainError(w, r, "invalid query", domain.NewValidationError("starting_balance", err))
			return
		}
		input.StartingBalance = &start
	}

	ledger, err := h.ledgerUC.GetLedger(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to build ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromUseCase(ledger))
}

func parseWindow(r *http.Request) (from, to *time.Time, err error) {
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := dto.ParseDate(v)
		if err != nil {
			return nil, nil, domain.NewValidationError("from", err)
		}
		from = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := dto.ParseDate(v)
		if err != nil {
			return nil, nil, domain.NewValidationError("to", err)
		}
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, domain.NewValidationError("to", errors.New("must be after from"))
	}
	return from, to, nil
}
