package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase/mocks"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	e := newEngine(t)

	acc, err := e.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: "  North Fleet  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.Name != "North Fleet" {
		t.Errorf("expected trimmed name, got %q", acc.Name)
	}

	balance, err := e.accounts.GetBalance(context.Background(), acc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Amount.IsZero() || balance.Version != 0 {
		t.Errorf("expected zero balance at version 0, got %+v", balance)
	}

	events, err := e.outbox.GetByAggregate(context.Background(), domain.AggregateTypeAccount, acc.ID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].EventType != domain.EventTypeAccountCreated {
		t.Errorf("expected one account.created event, got %+v", events)
	}
}

func TestAccountUseCase_CreateAccount_InvalidName(t *testing.T) {
	e := newEngine(t)

	_, err := e.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: "   "})
	if !errors.Is(err, domain.ErrInvalidAccountName) {
		t.Fatalf("expected ErrInvalidAccountName, got %v", err)
	}
}

func TestAccountUseCase_GetAndList(t *testing.T) {
	e := newEngine(t)
	a := e.mustAccount(t, "A")
	e.mustAccount(t, "B")

	got, err := e.accounts.GetAccount(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "A" {
		t.Errorf("expected A, got %s", got.Name)
	}

	if _, err := e.accounts.GetAccount(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}

	accounts, err := e.accounts.ListAccounts(context.Background(), usecase.ListAccountsInput{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected 1 account, got %d", len(accounts))
	}

	if _, err := e.accounts.GetBalance(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAccountUseCase_GetBalance_MissingRowReadsZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	balanceRepo := mocks.NewMockBalanceRepository(ctrl)
	accountRepo.EXPECT().Exists(gomock.Any(), "acc-1").Return(true, nil)
	balanceRepo.EXPECT().Get(gomock.Any(), "acc-1").Return(nil, domain.NewNotFoundError(domain.ResourceAccount, "acc-1"))

	uc := usecase.NewAccountUseCase(nil, accountRepo, balanceRepo, nil, nil)
	balance, err := uc.GetBalance(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balance.Amount.IsZero() {
		t.Errorf("expected zero, got %s", balance.Amount)
	}
}

func TestAccountUseCase_CreateAccount_RollsBackOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txm := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	accountRepo := mocks.NewMockAccountRepository(ctrl)
	balanceRepo := mocks.NewMockBalanceRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	idGen.EXPECT().Generate().Return("acc-1")
	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	accountRepo.EXPECT().CreateTx(gomock.Any(), tx, gomock.Any()).Return(nil)
	balanceRepo.EXPECT().CreateTx(gomock.Any(), tx, gomock.Any()).Return(errors.New("unique violation"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewAccountUseCase(txm, accountRepo, balanceRepo, nil, idGen)
	_, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: "Fleet"})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
