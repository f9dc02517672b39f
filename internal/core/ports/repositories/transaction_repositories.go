package repositories

import (
	"context"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for ledger transactions and
// their journal entries.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction header by id.
	FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// FindTransactionByNumber retrieves a transaction header by its unique number.
	FindTransactionByNumber(ctx context.Context, transactionNumber string) (*domain.Transaction, error)

	// FindEntriesByTransactionID retrieves all journal entries of a
	// transaction ordered by line number.
	FindEntriesByTransactionID(ctx context.Context, transactionID int64) ([]domain.JournalEntry, error)

	// ListTransactions retrieves a paginated list of transaction headers,
	// newest first, using token-based pagination.
	ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListEntriesByAccountID retrieves a paginated list of journal entries
	// posted against one account, used by downstream report consumers.
	ListEntriesByAccountID(ctx context.Context, accountID int64, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// TransactionWriter defines write operations. Each method that touches more
// than one row executes as a single storage transaction: all rows commit or
// none do.
type TransactionWriter interface {
	// SaveTransaction persists a transaction header with all its entries and
	// applies the per-account balance deltas atomically, locking the touched
	// account rows. Returns the generated transaction id.
	SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry, balanceChanges map[int64]decimal.Decimal) (int64, error)

	// SaveReversal persists a reversing transaction exactly like
	// SaveTransaction and, in the same storage transaction, flips the
	// original transaction to REVERSED / is_reversed.
	SaveReversal(ctx context.Context, reversing domain.Transaction, entries []domain.JournalEntry, balanceChanges map[int64]decimal.Decimal, originalID int64, userID string, now time.Time) (int64, error)

	// MarkTransactionPosted transitions a DRAFT transaction to POSTED,
	// stamping approval and posting audit fields.
	MarkTransactionPosted(ctx context.Context, transactionID int64, userID string, now time.Time) error

	// VoidTransaction transitions a POSTED transaction to VOID and backs the
	// given balance deltas out atomically.
	VoidTransaction(ctx context.Context, transactionID int64, balanceBackout map[int64]decimal.Decimal, userID string, now time.Time) error

	// DeleteTransaction hard-deletes a DRAFT transaction with its entries and
	// backs the given balance deltas out atomically.
	DeleteTransaction(ctx context.Context, transactionID int64, balanceBackout map[int64]decimal.Decimal) error

	// UpdateEntryReconciliation sets the reconciliation metadata of a single
	// journal entry; the only mutation entries permit after creation.
	UpdateEntryReconciliation(ctx context.Context, entryID int64, reference string, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository
// interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
