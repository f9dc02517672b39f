package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/apperrors"
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/core/ledger"
	portsrepo "github.com/corebooks/bookkeeping_backend/internal/core/ports/repositories"
	portssvc "github.com/corebooks/bookkeeping_backend/internal/core/ports/services"
	"github.com/corebooks/bookkeeping_backend/internal/dto"
	"github.com/corebooks/bookkeeping_backend/internal/utils/accounting"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// accountService manages the chart of accounts and keeps the in-memory
// registry in sync with storage.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	registry    *ledger.AccountRegistry
	validate    *validator.Validate
}

// NewAccountService creates the chart-of-accounts service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, registry *ledger.AccountRegistry) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		registry:    registry,
		validate:    validator.New(),
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount validates the request, derives the normal balance from the
// account type, resolves the parent to compute level and path, and persists
// the account. The new account is registered in memory on success.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := slog.Default()

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	normalBalance, err := accounting.NormalBalanceForType(domain.AccountType(req.AccountType))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if req.NormalBalance != "" && domain.NormalBalance(req.NormalBalance) != normalBalance {
		return nil, fmt.Errorf("%w: normal balance for %s accounts is %s", apperrors.ErrValidation, req.AccountType, normalBalance)
	}

	level := 0
	path := req.Code
	var parentID *int64
	if req.ParentCode != "" {
		parent, ok := s.registry.GetByCode(req.ParentCode)
		if !ok {
			return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, req.ParentCode)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrValidation, parent.Code)
		}
		if parent.AccountType != domain.AccountType(req.AccountType) {
			return nil, fmt.Errorf("%w: account type %s does not match parent type %s",
				apperrors.ErrValidation, req.AccountType, parent.AccountType)
		}
		level = parent.Level + 1
		path = parent.Path + "." + req.Code
		parentID = &parent.AccountID
	}

	allowTransactions := true
	if req.AllowTransactions != nil {
		allowTransactions = *req.AllowTransactions
	}

	now := time.Now().UTC()
	account := domain.Account{
		Code:              req.Code,
		Name:              req.Name,
		AccountType:       domain.AccountType(req.AccountType),
		NormalBalance:     normalBalance,
		ParentAccountID:   parentID,
		Level:             level,
		Path:              path,
		Description:       req.Description,
		IsActive:          true,
		IsSystem:          req.IsSystem,
		AllowTransactions: allowTransactions,
		CurrentBalance:    decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	id, err := s.accountRepo.SaveAccount(ctx, account)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("account code %s: %w", req.Code, err)
		}
		logger.Error("Failed to save account", slog.String("code", req.Code), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	account.AccountID = id
	s.registry.Register(account)

	logger.Info("Account created",
		slog.Int64("account_id", id),
		slog.String("code", account.Code),
		slog.String("type", string(account.AccountType)))
	return &account, nil
}

// GetAccountByID retrieves an account, preferring the in-memory registry.
func (s *accountService) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	if account, ok := s.registry.GetByID(accountID); ok {
		return &account, nil
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %d: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its chart code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	if account, ok := s.registry.GetByCode(code); ok {
		return &account, nil
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return account, nil
}

// ListAccounts retrieves a page of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeactivateAccount soft-deletes an account so no new entries can reference
// it. History against the account stays intact.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID int64, userID string) error {
	logger := slog.Default()

	account, ok := s.registry.GetByID(accountID)
	if !ok {
		found, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to find account %d: %w", accountID, err)
		}
		account = *found
	}
	if account.IsSystem {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountProtected, account.Code)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, now); err != nil {
		return fmt.Errorf("failed to deactivate account %d: %w", accountID, err)
	}

	account.IsActive = false
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID
	s.registry.Register(account)

	logger.Info("Account deactivated", slog.Int64("account_id", accountID), slog.String("code", account.Code))
	return nil
}

// DeleteAccount hard-deletes an account. System accounts and accounts with
// journal entries against them are protected.
func (s *accountService) DeleteAccount(ctx context.Context, accountID int64) error {
	logger := slog.Default()

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %d: %w", accountID, err)
	}
	if account.IsSystem {
		return fmt.Errorf("%w: account %s", apperrors.ErrAccountProtected, account.Code)
	}

	entryCount, err := s.accountRepo.CountEntriesByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to count entries for account %d: %w", accountID, err)
	}
	if entryCount > 0 {
		return fmt.Errorf("%w: account %s has %d journal entries", apperrors.ErrConflict, account.Code, entryCount)
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account %d: %w", accountID, err)
	}
	_ = s.registry.Remove(account.Code)

	logger.Info("Account deleted", slog.Int64("account_id", accountID), slog.String("code", account.Code))
	return nil
}

// LoadRegistry hydrates the in-memory registry from storage. It returns the
// number of accounts loaded and is called once at startup.
func (s *accountService) LoadRegistry(ctx context.Context) (int, error) {
	logger := slog.Default()

	const pageSize = 500
	loaded := 0
	for offset := 0; ; offset += pageSize {
		accounts, err := s.accountRepo.ListAccounts(ctx, pageSize, offset)
		if err != nil {
			return loaded, fmt.Errorf("failed to load accounts at offset %d: %w", offset, err)
		}
		for _, account := range accounts {
			s.registry.Register(account)
		}
		loaded += len(accounts)
		if len(accounts) < pageSize {
			break
		}
	}

	logger.Info("Account registry loaded", slog.Int("accounts", loaded))
	return loaded, nil
}
