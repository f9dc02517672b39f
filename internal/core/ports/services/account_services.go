package services

import (
	"context"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/dto"
)

// AccountSvcFacade exposes chart-of-accounts lifecycle operations.
type AccountSvcFacade interface {
	// CreateAccount validates the request, derives the normal balance and the
	// path/level from the parent, persists the account and registers it in
	// the in-memory registry.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// GetAccountByID retrieves an account by numeric id.
	GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// GetAccountByCode retrieves an account by chart code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts lists accounts ordered by path.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// DeactivateAccount soft-disables an account.
	DeactivateAccount(ctx context.Context, accountID int64, userID string) error

	// DeleteAccount hard-deletes an account; refused for system accounts and
	// for accounts referenced by journal entries.
	DeleteAccount(ctx context.Context, accountID int64) error

	// LoadRegistry hydrates the shared account registry from storage.
	LoadRegistry(ctx context.Context) (int, error)
}
