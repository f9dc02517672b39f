package ledger

import (
	"fmt"
	"sync"

	"github.com/corebooks/bookkeeping_backend/internal/apperrors"
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountRegistry is an in-memory index of the chart of accounts, used for
// fast lookup during validation and posting. It stores account values, not
// pointers, so callers cannot mutate indexed state behind its back. Path and
// level are assumed precomputed by the caller at registration time.
type AccountRegistry struct {
	mu     sync.RWMutex
	byCode map[string]domain.Account
	byID   map[int64]domain.Account
}

func NewAccountRegistry() *AccountRegistry {
	return &AccountRegistry{
		byCode: make(map[string]domain.Account),
		byID:   make(map[int64]domain.Account),
	}
}

// Register inserts or overwrites an account under both its code and its id.
func (r *AccountRegistry) Register(account domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byCode[account.Code]; ok && existing.AccountID != account.AccountID {
		delete(r.byID, existing.AccountID)
	}
	r.byCode[account.Code] = account
	r.byID[account.AccountID] = account
}

// GetByCode returns the account registered under code.
func (r *AccountRegistry) GetByCode(code string) (domain.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byCode[code]
	return account, ok
}

// GetByID returns the account registered under id.
func (r *AccountRegistry) GetByID(accountID int64) (domain.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[accountID]
	return account, ok
}

// Has reports whether an account is registered under code.
func (r *AccountRegistry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[code]
	return ok
}

// ByType returns all registered accounts of the given type, in no particular
// order.
func (r *AccountRegistry) ByType(accountType domain.AccountType) []domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var accounts []domain.Account
	for _, account := range r.byCode {
		if account.AccountType == accountType {
			accounts = append(accounts, account)
		}
	}
	return accounts
}

// NormalBalance is a lookup convenience for balance calculation callers.
func (r *AccountRegistry) NormalBalance(code string) (domain.NormalBalance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byCode[code]
	if !ok {
		return "", false
	}
	return account.NormalBalance, true
}

// Remove drops an account from both indices. System accounts are protected.
// Guarding against removal of accounts still referenced by journal entries is
// a caller responsibility; the registry has no view of persisted entries.
func (r *AccountRegistry) Remove(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byCode[code]
	if !ok {
		return fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	if account.IsSystem {
		return fmt.Errorf("%w: account %s is a system account", apperrors.ErrAccountProtected, code)
	}
	delete(r.byCode, code)
	delete(r.byID, account.AccountID)
	return nil
}

// ApplyDelta adjusts the cached running balance of an account after a
// posting. Unknown ids are ignored; the registry is a cache, storage holds
// the authoritative balance.
func (r *AccountRegistry) ApplyDelta(accountID int64, delta decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[accountID]
	if !ok {
		return
	}
	account.CurrentBalance = account.CurrentBalance.Add(delta)
	r.byID[accountID] = account
	r.byCode[account.Code] = account
}

// SetBalance replaces the cached running balance of an account.
func (r *AccountRegistry) SetBalance(accountID int64, balance decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[accountID]
	if !ok {
		return
	}
	account.CurrentBalance = balance
	r.byID[accountID] = account
	r.byCode[account.Code] = account
}

// Len returns the number of registered accounts.
func (r *AccountRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCode)
}
