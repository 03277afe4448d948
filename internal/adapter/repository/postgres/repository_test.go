package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

var (
	balanceColumns = []string{"account_id", "amount", "version", "updated_at"}
	entryColumns   = []string{"id", "account_id", "amount", "type", "description", "related_car_id", "entry_date", "created_at", "updated_at"}
)

func num(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

func ts(t time.Time) pgtype.Timestamptz {
	return timeToPgTimestamptz(t)
}

func TestNumericConversionKeepsScale(t *testing.T) {
	for _, s := range []string{"0", "100", "-30", "12.3456", "0.01", "999999999999.99"} {
		got := numericToDecimal(decimalToNumeric(decimal.RequireFromString(s)))
		if !got.Equal(decimal.RequireFromString(s)) {
			t.Errorf("round trip of %s gave %s", s, got)
		}
	}

	if !numericToDecimal(pgtype.Numeric{}).IsZero() {
		t.Errorf("NULL numeric should read as zero")
	}
}

func TestBalanceRepositoryGetForUpdateEnsuresRow(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO balances").
		WithArgs("acc-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mockPool.ExpectQuery("FROM balances WHERE account_id = \\$1 FOR UPDATE").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows(balanceColumns).AddRow("acc-1", num("70"), int64(2), ts(time.Now())))

	tx := beginMockTx(t, mockPool)
	balance, err := NewBalanceRepository(mockPool).GetForUpdate(context.Background(), tx, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Amount.Equal(decimal.NewFromInt(70)) || balance.Version != 2 {
		t.Fatalf("unexpected balance %+v", balance)
	}

	assertExpectations(t, mockPool)
}

func TestBalanceRepositoryUpdate(t *testing.T) {
	now := time.Now().UTC()

	t.Run("writes when version matches", func(t *testing.T) {
		mockPool := newMockPool(t)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("UPDATE balances").
			WithArgs("acc-1", pgxmock.AnyArg(), int64(4), pgxmock.AnyArg(), int64(3)).
			WillReturnRows(pgxmock.NewRows(balanceColumns).AddRow("acc-1", num("30"), int64(4), ts(now)))

		tx := beginMockTx(t, mockPool)
		got, err := NewBalanceRepository(mockPool).Update(context.Background(), tx, &domain.Balance{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(30),
			Version:   4,
			UpdatedAt: now,
		}, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Version != 4 || !got.Amount.Equal(decimal.NewFromInt(30)) {
			t.Fatalf("unexpected balance %+v", got)
		}
		assertExpectations(t, mockPool)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		mockPool := newMockPool(t)
		mockPool.ExpectBegin()
		mockPool.ExpectQuery("UPDATE balances").
			WithArgs("acc-1", pgxmock.AnyArg(), int64(4), pgxmock.AnyArg(), int64(3)).
			WillReturnRows(pgxmock.NewRows(balanceColumns))

		tx := beginMockTx(t, mockPool)
		_, err := NewBalanceRepository(mockPool).Update(context.Background(), tx, &domain.Balance{
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(30),
			Version:   4,
			UpdatedAt: now,
		}, 3)

		var conflict *domain.ConcurrencyConflictError
		if !errors.As(err, &conflict) || conflict.AccountID != "acc-1" {
			t.Fatalf("expected ConcurrencyConflictError, got %v", err)
		}
		if !errors.Is(err, domain.ErrBalanceVersionMismatch) {
			t.Fatalf("expected version mismatch cause, got %v", err)
		}
		assertExpectations(t, mockPool)
	})
}

func TestBalanceRepositoryGetMissingRow(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM balances WHERE account_id").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows(balanceColumns))

	_, err := NewBalanceRepository(mockPool).Get(context.Background(), "acc-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositoryGetByID(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("maps row", func(t *testing.T) {
		mockPool := newMockPool(t)
		mockPool.ExpectQuery("FROM entries WHERE id").
			WithArgs("e1").
			WillReturnRows(pgxmock.NewRows(entryColumns).AddRow(
				"e1", "acc-1", num("30"), "DEBIT",
				pgtype.Text{String: "fuel", Valid: true}, pgtype.Text{},
				ts(date), ts(date), ts(date),
			))

		entry, err := NewEntryRepository(mockPool).GetByID(context.Background(), "e1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.Type != domain.EntryTypeDebit || !entry.Amount.Equal(decimal.NewFromInt(30)) {
			t.Fatalf("unexpected entry %+v", entry)
		}
		if entry.Description == nil || *entry.Description != "fuel" {
			t.Fatalf("expected description fuel, got %v", entry.Description)
		}
		if entry.RelatedCarID != nil {
			t.Fatalf("expected no car, got %v", *entry.RelatedCarID)
		}
		if !entry.Date.Equal(date) {
			t.Fatalf("expected date %v, got %v", date, entry.Date)
		}
		assertExpectations(t, mockPool)
	})

	t.Run("missing row", func(t *testing.T) {
		mockPool := newMockPool(t)
		mockPool.ExpectQuery("FROM entries WHERE id").
			WithArgs("e1").
			WillReturnRows(pgxmock.NewRows(entryColumns))

		_, err := NewEntryRepository(mockPool).GetByID(context.Background(), "e1")
		if !errors.Is(err, domain.ErrEntryNotFound) {
			t.Fatalf("expected ErrEntryNotFound, got %v", err)
		}
		assertExpectations(t, mockPool)
	})

	t.Run("unknown stored type", func(t *testing.T) {
		mockPool := newMockPool(t)
		mockPool.ExpectQuery("FROM entries WHERE id").
			WithArgs("e1").
			WillReturnRows(pgxmock.NewRows(entryColumns).AddRow(
				"e1", "acc-1", num("30"), "REFUND",
				pgtype.Text{}, pgtype.Text{},
				ts(date), ts(date), ts(date),
			))

		_, err := NewEntryRepository(mockPool).GetByID(context.Background(), "e1")
		if !errors.Is(err, domain.ErrInvalidEntryType) {
			t.Fatalf("expected ErrInvalidEntryType, got %v", err)
		}
	})
}

func TestEntryRepositoryListPassesFilters(t *testing.T) {
	mockPool := newMockPool(t)
	credit := domain.EntryTypeCredit
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("ORDER BY entry_date, created_at, id").
		WithArgs(
			"acc-1",
			ts(from),
			pgtype.Timestamptz{},
			pgtype.Text{String: "CREDIT", Valid: true},
			pgtype.Text{},
			int32(50),
			int32(0),
		).
		WillReturnRows(pgxmock.NewRows(entryColumns).AddRow(
			"e1", "acc-1", num("100"), "CREDIT",
			pgtype.Text{}, pgtype.Text{},
			ts(from), ts(from), ts(from),
		))

	entries, err := NewEntryRepository(mockPool).List(context.Background(), domain.EntryFilter{
		AccountID: "acc-1",
		From:      &from,
		Type:      &credit,
		Limit:     50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	assertExpectations(t, mockPool)
}

func TestEntryRepositoryDeleteMissing(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("DELETE FROM entries").
		WithArgs("e1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	tx := beginMockTx(t, mockPool)
	err := NewEntryRepository(mockPool).Delete(context.Background(), tx, "e1")
	if !errors.Is(err, domain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	assertExpectations(t, mockPool)
}

func TestLedgerRepositoryReconcileAccount(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("AS recomputed").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows([]string{"stored", "recomputed"}).AddRow(num("90"), num("100")))

	stored, recomputed, err := NewLedgerRepository(mockPool).ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.Equal(decimal.NewFromInt(90)) || !recomputed.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected stored=%s recomputed=%s", stored, recomputed)
	}
	assertExpectations(t, mockPool)
}

func TestLedgerRepositoryCheckConsistency(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("AS total_signed").
		WillReturnRows(pgxmock.NewRows([]string{"total_balance", "total_signed"}).AddRow(num("70"), num("70")))

	balances, signed, err := NewLedgerRepository(mockPool).CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balances.Equal(signed) {
		t.Fatalf("expected equal totals, got %s and %s", balances, signed)
	}
	assertExpectations(t, mockPool)
}

func TestAccountRepositoryExists(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("SELECT EXISTS").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewAccountRepository(mockPool).Exists(context.Background(), "acc-1")
	if err != nil || !ok {
		t.Fatalf("expected account to exist, got %v %v", ok, err)
	}
	assertExpectations(t, mockPool)
}

func TestCarRepositoryGetByIDMissing(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectQuery("FROM cars WHERE id").
		WithArgs("car-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "account_id", "name", "created_at"}))

	_, err := NewCarRepository(mockPool).GetByID(context.Background(), "car-1")
	if !errors.Is(err, domain.ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound, got %v", err)
	}
	assertExpectations(t, mockPool)
}
