package dto

import (
	"time"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse represents an account's stored balance.
type BalanceResponse struct {
	AccountID string    `json:"account_id"`
	Amount    string    `json:"amount"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceFromDomain converts domain balance to response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		AccountID: b.AccountID,
		Amount:    b.Amount.String(),
		Version:   b.Version,
		UpdatedAt: b.UpdatedAt,
	}
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	Amount       string    `json:"amount"`
	Type         string    `json:"type"`
	Description  *string   `json:"description,omitempty"`
	RelatedCarID *string   `json:"related_car_id,omitempty"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		AccountID:    e.AccountID,
		Amount:       e.Amount.String(),
		Type:         e.Type.String(),
		Description:  e.Description,
		RelatedCarID: e.RelatedCarID,
		Date:         e.Date,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntryMutationResponse is returned by create and update: the entry and the balance after the write.
type EntryMutationResponse struct {
	Entry   *EntryResponse   `json:"entry"`
	Balance *BalanceResponse `json:"balance"`
}

// EntryResultFromUseCase converts a use case result to response.
func EntryResultFromUseCase(r *usecase.EntryResult) *EntryMutationResponse {
	return &EntryMutationResponse{
		Entry:   EntryFromDomain(r.Entry),
		Balance: BalanceFromDomain(r.Balance),
	}
}

// LedgerLineResponse is one entry with the running balance after it.
type LedgerLineResponse struct {
	Entry        *EntryResponse `json:"entry"`
	BalanceAfter string         `json:"balance_after"`
}

// LedgerResponse is the balance-after-each-entry view of an account.
type LedgerResponse struct {
	AccountID       string                `json:"account_id"`
	StartingBalance string                `json:"starting_balance"`
	EndingBalance   string                `json:"ending_balance"`
	Entries         []*LedgerLineResponse `json:"entries"`
}

// LedgerFromUseCase converts a projected ledger to response.
func LedgerFromUseCase(l *usecase.Ledger) *LedgerResponse {
	lines := make([]*LedgerLineResponse, len(l.Entries))
	for i, p := range l.Entries {
		lines[i] = &LedgerLineResponse{
			Entry:        EntryFromDomain(p.Entry),
			BalanceAfter: p.BalanceAfter.String(),
		}
	}
	return &LedgerResponse{
		AccountID:       l.AccountID,
		StartingBalance: l.StartingBalance.String(),
		EndingBalance:   l.EndingBalance.String(),
		Entries:         lines,
	}
}

// ReconciliationResponse reports one account's stored and recomputed balance.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	StoredBalance     string    `json:"stored_balance"`
	RecomputedBalance string    `json:"recomputed_balance"`
	Drift             string    `json:"drift"`
	Reconciled        bool      `json:"reconciled"`
	CheckedAt         time.Time `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		StoredBalance:     r.StoredBalance.String(),
		RecomputedBalance: r.RecomputedBalance.String(),
		Drift:             r.Drift.String(),
		Reconciled:        r.IsReconciled(),
		CheckedAt:         r.CheckedAt,
	}
}

// ReconciliationReportResponse summarizes a run over every account.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
