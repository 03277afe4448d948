package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/moazalc/autostacks-app-sub000/internal/adapter/http/dto"
	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error)
	UpdateEntry(ctx context.Context, id string, patch usecase.EntryPatch) (*usecase.EntryResult, error)
	DeleteEntry(ctx context.Context, id string) (*domain.Balance, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// Create records an entry against the account in the path.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.CreateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "invalid request body", err)
		return
	}

	input, err := req.ToUseCaseInput(accountID)
	if err != nil {
		writeDomainError(w, r, "invalid request body", err)
		return
	}

	result, err := h.entryUC.CreateEntry(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryResultFromUseCase(result))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryUC.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Update applies a partial update to an entry.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "invalid request body", err)
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		writeDomainError(w, r, "invalid request body", err)
		return
	}

	result, err := h.entryUC.UpdateEntry(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeDomainError(w, r, "failed to update entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryResultFromUseCase(result))
}

// Delete removes an entry and returns the account balance afterwards.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	balance, err := h.entryUC.DeleteEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to delete entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// ListByAccount lists entries for an account.
// Query: from, to (dates; to is exclusive), type, car, limit, offset.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	input := usecase.ListEntriesInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	var err error
	if input.From, input.To, err = parseWindow(r); err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}

	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		t, err := domain.ParseEntryType(v)
		if err != nil {
			writeDomainError(w, r, "invalid query", domain.NewValidationError("type", err))
			return
		}
		input.Type = &t
	}
	if v := q.Get("car"); v != "" {
		input.RelatedCarID = &v
	}

	entries, err := h.entryUC.ListEntries(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
