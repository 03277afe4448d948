package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

// EntryUseCase creates, updates, deletes and lists ledger entries.
// Every mutation writes the entry, the balance and an outbox event in one transaction.
type EntryUseCase struct {
	txManager   TransactionManager
	entryRepo   EntryRepository
	accountRepo AccountRepository
	carRepo     CarRepository
	outboxRepo  OutboxRepository
	maintainer  *BalanceMaintainer
	idGen       IDGenerator

	retrier  Retrier
	locker   AccountLocker
	recorder MetricsRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

// EntryOption configures optional EntryUseCase collaborators.
type EntryOption func(*EntryUseCase)

// WithRetrier retries the whole unit of work on transient conflicts.
func WithRetrier(r Retrier) EntryOption {
	return func(uc *EntryUseCase) { uc.retrier = r }
}

// WithAccountLocker takes a per-account lock around each unit of work.
func WithAccountLocker(l AccountLocker) EntryOption {
	return func(uc *EntryUseCase) { uc.locker = l }
}

// WithMetrics reports mutations and conflicts.
func WithMetrics(r MetricsRecorder) EntryOption {
	return func(uc *EntryUseCase) { uc.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) EntryOption {
	return func(uc *EntryUseCase) { uc.logger = l }
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	accountRepo AccountRepository,
	carRepo CarRepository,
	outboxRepo OutboxRepository,
	maintainer *BalanceMaintainer,
	idGen IDGenerator,
	opts ...EntryOption,
) *EntryUseCase {
	uc := &EntryUseCase{
		txManager:   txManager,
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		carRepo:     carRepo,
		outboxRepo:  outboxRepo,
		maintainer:  maintainer,
		idGen:       idGen,
		retrier:     OnceRetrier{},
		locker:      NopLocker{},
		recorder:    NopRecorder{},
		logger:      zerolog.Nop(),
		now:         utcNow,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// EntryResult is an entry together with its account's balance after the write.
type EntryResult struct {
	Entry   *domain.Entry
	Balance *domain.Balance
}

// CreateEntryInput represents input for creating an entry.
type CreateEntryInput struct {
	AccountID    string
	Amount       decimal.Decimal
	Type         domain.EntryType
	Date         time.Time
	Description  *string
	RelatedCarID *string
}

// CreateEntry validates and stores a new entry and adds its signed amount to the balance.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) (*EntryResult, error) {
	now := uc.now()
	entry := &domain.Entry{
		AccountID:    strings.TrimSpace(input.AccountID),
		Amount:       input.Amount,
		Type:         input.Type,
		Description:  input.Description,
		RelatedCarID: input.RelatedCarID,
		Date:         input.Date,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.checkAccount(ctx, entry.AccountID); err != nil {
		return nil, err
	}

	if err := uc.checkCar(ctx, entry.AccountID, entry.RelatedCarID); err != nil {
		return nil, err
	}

	delta, err := entry.Signed()
	if err != nil {
		return nil, domain.NewValidationError("type", err)
	}

	// The ID is fixed before the retry loop so every attempt writes the same row.
	entry.ID = uc.idGen.Generate()

	var result *EntryResult
	err = uc.unitOfWork(ctx, OpCreateEntry, entry.AccountID, func(ctx context.Context, tx Transaction) error {
		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		balance, err := uc.maintainer.Apply(ctx, tx, entry.AccountID, delta)
		if err != nil {
			return err
		}

		if err := uc.recordEvent(ctx, tx, domain.EventTypeEntryCreated, entry, delta, balance); err != nil {
			return err
		}

		result = &EntryResult{Entry: entry, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("entry_id", entry.ID).
		Str("account_id", entry.AccountID).
		Str("type", entry.Type.String()).
		Str("amount", entry.Amount.String()).
		Str("balance", result.Balance.Amount.String()).
		Msg("entry created")

	return result, nil
}

// EntryPatch lists the fields to change on an entry. Nil fields are left alone.
type EntryPatch struct {
	Amount           *decimal.Decimal
	Type             *domain.EntryType
	Date             *time.Time
	Description      *string
	RelatedCarID     *string
	ClearDescription bool
	ClearRelatedCar  bool
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Amount == nil && p.Type == nil && p.Date == nil &&
		p.Description == nil && p.RelatedCarID == nil &&
		!p.ClearDescription && !p.ClearRelatedCar
}

// UpdateEntry applies patch to an entry. When amount or type change, the
// balance moves by the difference between the new and old signed amounts.
func (uc *EntryUseCase) UpdateEntry(ctx context.Context, id string, patch EntryPatch) (*EntryResult, error) {
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("", domain.ErrEmptyPatch)
	}

	// Account ownership never changes, so the unlocked read is enough to pick the lock key.
	existing, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStorage("get entry", err)
	}

	if patch.RelatedCarID != nil {
		if err := uc.checkCar(ctx, existing.AccountID, patch.RelatedCarID); err != nil {
			return nil, err
		}
	}

	var result *EntryResult
	err = uc.unitOfWork(ctx, OpUpdateEntry, existing.AccountID, func(ctx context.Context, tx Transaction) error {
		current, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		oldSigned, err := current.Signed()
		if err != nil {
			return err
		}

		updated := current.Clone()
		applyPatch(updated, patch)
		updated.UpdatedAt = uc.now()

		if err := updated.Validate(); err != nil {
			return err
		}

		newSigned, err := updated.Signed()
		if err != nil {
			return err
		}

		if err := uc.entryRepo.Update(ctx, tx, updated); err != nil {
			return err
		}

		delta := newSigned.Sub(oldSigned)
		balance, err := uc.maintainer.Apply(ctx, tx, updated.AccountID, delta)
		if err != nil {
			return err
		}

		if err := uc.recordEvent(ctx, tx, domain.EventTypeEntryUpdated, updated, delta, balance); err != nil {
			return err
		}

		result = &EntryResult{Entry: updated, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("entry_id", id).
		Str("account_id", result.Entry.AccountID).
		Str("balance", result.Balance.Amount.String()).
		Msg("entry updated")

	return result, nil
}

// DeleteEntry removes an entry and subtracts its signed amount from the balance.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, id string) (*domain.Balance, error) {
	existing, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStorage("get entry", err)
	}

	var balance *domain.Balance
	err = uc.unitOfWork(ctx, OpDeleteEntry, existing.AccountID, func(ctx context.Context, tx Transaction) error {
		current, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		signed, err := current.Signed()
		if err != nil {
			return err
		}

		if err := uc.entryRepo.Delete(ctx, tx, id); err != nil {
			return err
		}

		delta := signed.Neg()
		balance, err = uc.maintainer.Apply(ctx, tx, current.AccountID, delta)
		if err != nil {
			return err
		}

		return uc.recordEvent(ctx, tx, domain.EventTypeEntryDeleted, current, delta, balance)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("entry_id", id).
		Str("account_id", existing.AccountID).
		Str("balance", balance.Amount.String()).
		Msg("entry deleted")

	return balance, nil
}

// GetEntry retrieves an entry by ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.WrapStorage("get entry", err)
	}
	return entry, nil
}

// ListEntriesInput represents input for listing an account's entries.
type ListEntriesInput struct {
	AccountID    string
	From         *time.Time
	To           *time.Time
	Type         *domain.EntryType
	RelatedCarID *string
	Limit        int
	Offset       int
}

// ListEntries lists an account's entries in ledger order.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	if err := uc.requireAccount(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	entries, err := uc.entryRepo.List(ctx, domain.EntryFilter{
		AccountID:    input.AccountID,
		From:         input.From,
		To:           input.To,
		Type:         input.Type,
		RelatedCarID: input.RelatedCarID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, domain.WrapStorage("list entries", err)
	}
	return entries, nil
}

// unitOfWork runs fn in a fresh transaction under the account lock, retrying
// transient conflicts. Errors leave the use case typed.
func (uc *EntryUseCase) unitOfWork(ctx context.Context, op, accountID string, fn func(context.Context, Transaction) error) error {
	err := uc.locker.WithLock(ctx, accountID, func(ctx context.Context) error {
		return uc.retrier.Retry(ctx, func() error {
			return runInTx(ctx, uc.txManager, fn)
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			uc.recorder.ConcurrencyConflict(op)
			uc.logger.Warn().Err(err).Str("operation", op).Str("account_id", accountID).Msg("balance update conflict")
		}
		return domain.WrapStorage(op, err)
	}

	uc.recorder.EntryMutated(op)
	return nil
}

func (uc *EntryUseCase) checkAccount(ctx context.Context, accountID string) error {
	exists, err := uc.accountRepo.Exists(ctx, accountID)
	if err != nil {
		return domain.WrapStorage("check account", err)
	}
	if !exists {
		return domain.NewValidationError("account_id", domain.ErrAccountNotFound)
	}
	return nil
}

// requireAccount is checkAccount for read paths, where a missing account is a not-found.
func (uc *EntryUseCase) requireAccount(ctx context.Context, accountID string) error {
	exists, err := uc.accountRepo.Exists(ctx, accountID)
	if err != nil {
		return domain.WrapStorage("check account", err)
	}
	if !exists {
		return domain.NewNotFoundError(domain.ResourceAccount, accountID)
	}
	return nil
}

func (uc *EntryUseCase) checkCar(ctx context.Context, accountID string, carID *string) error {
	if carID == nil || uc.carRepo == nil {
		return nil
	}

	car, err := uc.carRepo.GetByID(ctx, *carID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("related_car_id", domain.ErrCarNotFound)
		}
		return domain.WrapStorage("get car", err)
	}

	if car.AccountID != accountID {
		return domain.NewValidationError("related_car_id", domain.ErrCarAccountMismatch)
	}
	return nil
}

func (uc *EntryUseCase) recordEvent(ctx context.Context, tx Transaction, eventType string, entry *domain.Entry, delta decimal.Decimal, balance *domain.Balance) error {
	payload := domain.EntryChangedEvent{
		EntryID:      entry.ID,
		AccountID:    entry.AccountID,
		Type:         entry.Type.String(),
		Amount:       entry.Amount.String(),
		Date:         entry.Date.Format(time.DateOnly),
		RelatedCarID: entry.RelatedCarID,
		Delta:        delta.String(),
		Balance:      balance.Amount.String(),
		EventAt:      uc.now().Format(time.RFC3339Nano),
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     eventType,
		Payload:       payload.ToPayload(),
		CreatedAt:     uc.now(),
	})
}

func applyPatch(e *domain.Entry, p EntryPatch) {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	switch {
	case p.ClearDescription:
		e.Description = nil
	case p.Description != nil:
		d := *p.Description
		e.Description = &d
	}
	switch {
	case p.ClearRelatedCar:
		e.RelatedCarID = nil
	case p.RelatedCarID != nil:
		id := *p.RelatedCarID
		e.RelatedCarID = &id
	}
}

// runInTx begins a transaction bounded by DefaultTransactionTimeout, runs fn
// and commits. Any error before commit rolls everything back.
func runInTx(ctx context.Context, txManager TransactionManager, fn func(context.Context, Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
