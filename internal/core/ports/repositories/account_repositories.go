package repositories

import (
	"context"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its numeric identifier.
	FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique chart code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by id.
	FindAccountsByIDs(ctx context.Context, accountIDs []int64) (map[int64]domain.Account, error)

	// ListAccounts retrieves accounts ordered by path. A limit of 0 means no limit.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// CountEntriesByAccount returns the number of journal entries referencing
	// the account, used to guard hard deletion.
	CountEntriesByAccount(ctx context.Context, accountID int64) (int64, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account and returns its generated id.
	SaveAccount(ctx context.Context, account domain.Account) (int64, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive (soft disable).
	DeactivateAccount(ctx context.Context, accountID int64, userID string, now time.Time) error

	// DeleteAccount hard-deletes an account. Protection rules are enforced by
	// the service layer before calling this.
	DeleteAccount(ctx context.Context, accountID int64) error
}

// AccountTransactionSupport defines operations used inside a storage
// transaction while posting.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks their rows for the
	// duration of the surrounding transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []int64) (map[int64]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas to multiple
	// accounts within the given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[int64]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
