package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/adapter/http/dto"
	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

type entryServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error)
	updateFn func(ctx context.Context, id string, patch usecase.EntryPatch) (*usecase.EntryResult, error)
	deleteFn func(ctx context.Context, id string) (*domain.Balance, error)
	getFn    func(ctx context.Context, id string) (*domain.Entry, error)
	listFn   func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
}

func (s *entryServiceStub) CreateEntry(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error) {
	return s.createFn(ctx, input)
}

func (s *entryServiceStub) UpdateEntry(ctx context.Context, id string, patch usecase.EntryPatch) (*usecase.EntryResult, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *entryServiceStub) DeleteEntry(ctx context.Context, id string) (*domain.Balance, error) {
	return s.deleteFn(ctx, id)
}

func (s *entryServiceStub) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return s.getFn(ctx, id)
}

func (s *entryServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
	return s.listFn(ctx, input)
}

func TestEntryHandler_Create(t *testing.T) {
	var captured usecase.CreateEntryInput
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error) {
			captured = input
			entry := &domain.Entry{ID: "e1", AccountID: input.AccountID, Amount: input.Amount, Type: input.Type, Date: input.Date}
			return &usecase.EntryResult{
				Entry:   entry,
				Balance: &domain.Balance{AccountID: input.AccountID, Amount: input.Amount, Version: 1},
			}, nil
		},
	})

	body := `{"amount":"100","type":"CREDIT","date":"2024-01-01","description":"deposit"}`
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/entries", bytes.NewBufferString(body)), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || captured.Type != domain.EntryTypeCredit || !captured.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected input %+v", captured)
	}
	if !captured.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", captured.Date)
	}

	var resp dto.EntryMutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Entry.ID != "e1" || resp.Balance.Amount != "100" || resp.Balance.Version != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestEntryHandler_Create_ValidationFailures(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	bodies := map[string]string{
		"zero amount":     `{"amount":"0","type":"CREDIT","date":"2024-01-01"}`,
		"negative amount": `{"amount":"-5","type":"DEBIT","date":"2024-01-01"}`,
		"unknown type":    `{"amount":"5","type":"REFUND","date":"2024-01-01"}`,
		"bad date":        `{"amount":"5","type":"DEBIT","date":"yesterday"}`,
		"missing date":    `{"amount":"5","type":"DEBIT"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/entries", bytes.NewBufferString(body)), "id", "acc-1")
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestEntryHandler_Create_MapsUseCaseErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown account", domain.NewValidationError("account_id", domain.ErrAccountNotFound), http.StatusBadRequest},
		{"conflict", &domain.ConcurrencyConflictError{AccountID: "acc-1"}, http.StatusConflict},
		{"storage", domain.WrapStorage("insert", context.DeadlineExceeded), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewEntryHandler(&entryServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateEntryInput) (*usecase.EntryResult, error) {
					return nil, tt.err
				},
			})

			body := `{"amount":"5","type":"DEBIT","date":"2024-01-01"}`
			req := withURLParam(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/entries", bytes.NewBufferString(body)), "id", "acc-1")
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestEntryHandler_Update(t *testing.T) {
	var captured usecase.EntryPatch
	handler := NewEntryHandler(&entryServiceStub{
		updateFn: func(ctx context.Context, id string, patch usecase.EntryPatch) (*usecase.EntryResult, error) {
			captured = patch
			return &usecase.EntryResult{
				Entry:   &domain.Entry{ID: id, Amount: *patch.Amount, Type: *patch.Type},
				Balance: &domain.Balance{AccountID: "acc-1", Amount: decimal.NewFromInt(-40)},
			}, nil
		},
	})

	body := `{"amount":"40","type":"DEBIT"}`
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/entries/e1", bytes.NewBufferString(body)), "id", "e1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Type == nil || *captured.Type != domain.EntryTypeDebit || captured.Date != nil {
		t.Fatalf("unexpected patch %+v", captured)
	}
}

func TestEntryHandler_Delete_NotFound(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{
		deleteFn: func(ctx context.Context, id string) (*domain.Balance, error) {
			return nil, domain.NewNotFoundError(domain.ResourceEntry, id)
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/entries/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestEntryHandler_ListByAccount_Filters(t *testing.T) {
	var captured usecase.ListEntriesInput
	handler := NewEntryHandler(&entryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
			captured = input
			return []*domain.Entry{}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/entries?from=2024-01-01&to=2024-02-01&type=debit&car=car-9&limit=10", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.ListByAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.From == nil || !captured.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", captured.From)
	}
	if captured.To == nil || captured.Type == nil || *captured.Type != domain.EntryTypeDebit {
		t.Fatalf("unexpected filter %+v", captured)
	}
	if captured.RelatedCarID == nil || *captured.RelatedCarID != "car-9" || captured.Limit != 10 {
		t.Fatalf("unexpected filter %+v", captured)
	}
}

func TestEntryHandler_ListByAccount_RejectsInvertedWindow(t *testing.T) {
	handler := NewEntryHandler(&entryServiceStub{})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/entries?from=2024-02-01&to=2024-01-01", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.ListByAccount(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
