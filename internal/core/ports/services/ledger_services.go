package services

import (
	"context"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/dto"
)

// LedgerSvcFacade exposes the posting and reversal workflows of the ledger
// engine.
type LedgerSvcFacade interface {
	// CreateTransaction validates a candidate transaction and persists the
	// header, all entries and the balance deltas as one atomic unit. On any
	// validation failure it returns a *domain.DoubleEntryError and performs
	// no write.
	CreateTransaction(ctx context.Context, data domain.TransactionData, creatorUserID string) (*domain.Transaction, error)

	// PostTransaction transitions DRAFT -> POSTED, stamping approval fields.
	PostTransaction(ctx context.Context, transactionID int64, userID string) (*domain.Transaction, error)

	// ReverseTransaction creates a new transaction offsetting the original
	// and marks the original reversed, atomically.
	ReverseTransaction(ctx context.Context, transactionID int64, userID string, reason string) (*domain.Transaction, error)

	// VoidTransaction transitions POSTED -> VOID, backing out balances.
	VoidTransaction(ctx context.Context, transactionID int64, userID string) (*domain.Transaction, error)

	// DeleteTransaction hard-deletes a DRAFT transaction with its entries.
	DeleteTransaction(ctx context.Context, transactionID int64) error

	// GetTransaction retrieves a transaction with its entries populated.
	GetTransaction(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transaction headers.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// ListEntriesByAccount retrieves a paginated list of entries posted
	// against one account.
	ListEntriesByAccount(ctx context.Context, accountID int64, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ReconcileEntry records reconciliation metadata on a journal entry.
	ReconcileEntry(ctx context.Context, entryID int64, reference string, userID string) error
}

// ServiceContainer aggregates the service facades handed to callers.
type ServiceContainer struct {
	Account AccountSvcFacade
	Ledger  LedgerSvcFacade
}
