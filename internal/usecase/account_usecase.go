package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	balanceRepo BalanceRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	balanceRepo BalanceRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name string
}

// CreateAccount creates an account and its zero balance in one transaction.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateAccountName(name); err != nil {
		return nil, err
	}

	now := utcNow()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	balance := domain.ZeroBalance(account.ID)
	balance.UpdatedAt = now

	err := runInTx(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
		if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
			return err
		}
		if err := uc.balanceRepo.CreateTx(ctx, tx, balance); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountCreated,
			Payload: map[string]any{
				"account_id": account.ID,
				"name":       account.Name,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, domain.WrapStorage("create account", err)
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStorage("get account", err)
	}
	return account, nil
}

// GetBalance returns the stored balance of an account. Accounts that predate
// balance rows read as zero until their first entry.
func (uc *AccountUseCase) GetBalance(ctx context.Context, accountID string) (*domain.Balance, error) {
	exists, err := uc.accountRepo.Exists(ctx, accountID)
	if err != nil {
		return nil, domain.WrapStorage("check account", err)
	}
	if !exists {
		return nil, domain.NewNotFoundError(domain.ResourceAccount, accountID)
	}

	balance, err := uc.balanceRepo.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ZeroBalance(accountID), nil
	}
	if err != nil {
		return nil, domain.WrapStorage("get balance", err)
	}
	return balance, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	accounts, err := uc.accountRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.WrapStorage("list accounts", err)
	}
	return accounts, nil
}
