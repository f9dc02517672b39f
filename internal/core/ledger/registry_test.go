package ledger_test

import (
	"testing"

	"github.com/corebooks/bookkeeping_backend/internal/apperrors"
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/core/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(id int64, code string, accountType domain.AccountType, normal domain.NormalBalance) domain.Account {
	return domain.Account{
		AccountID:         id,
		Code:              code,
		Name:              "Account " + code,
		AccountType:       accountType,
		NormalBalance:     normal,
		Level:             0,
		Path:              code,
		IsActive:          true,
		AllowTransactions: true,
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	cash := testAccount(1, "1000", domain.Asset, domain.NormalDebit)
	registry.Register(cash)

	byCode, ok := registry.GetByCode("1000")
	require.True(t, ok)
	assert.Equal(t, cash.AccountID, byCode.AccountID)

	byID, ok := registry.GetByID(1)
	require.True(t, ok)
	assert.Equal(t, "1000", byID.Code)

	assert.True(t, registry.Has("1000"))
	assert.False(t, registry.Has("9999"))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryRegisterOverwritesByCode(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	registry.Register(testAccount(1, "1000", domain.Asset, domain.NormalDebit))
	registry.Register(testAccount(2, "1000", domain.Asset, domain.NormalDebit))

	byCode, ok := registry.GetByCode("1000")
	require.True(t, ok)
	assert.EqualValues(t, 2, byCode.AccountID)

	// The superseded id no longer resolves.
	_, ok = registry.GetByID(1)
	assert.False(t, ok)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryByType(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	registry.Register(testAccount(1, "1000", domain.Asset, domain.NormalDebit))
	registry.Register(testAccount(2, "1100", domain.Asset, domain.NormalDebit))
	registry.Register(testAccount(3, "4000", domain.Revenue, domain.NormalCredit))

	assets := registry.ByType(domain.Asset)
	assert.Len(t, assets, 2)
	assert.Len(t, registry.ByType(domain.Revenue), 1)
	assert.Empty(t, registry.ByType(domain.Equity))
}

func TestRegistryNormalBalance(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	registry.Register(testAccount(1, "2000", domain.Liability, domain.NormalCredit))

	normal, ok := registry.NormalBalance("2000")
	require.True(t, ok)
	assert.Equal(t, domain.NormalCredit, normal)

	_, ok = registry.NormalBalance("missing")
	assert.False(t, ok)
}

func TestRegistryRemove(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	registry.Register(testAccount(1, "1000", domain.Asset, domain.NormalDebit))

	require.NoError(t, registry.Remove("1000"))
	assert.False(t, registry.Has("1000"))
	_, ok := registry.GetByID(1)
	assert.False(t, ok)

	err := registry.Remove("1000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegistryRemoveProtectsSystemAccounts(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	suspense := testAccount(9, "1099", domain.Asset, domain.NormalDebit)
	suspense.IsSystem = true
	registry.Register(suspense)

	err := registry.Remove("1099")
	assert.ErrorIs(t, err, apperrors.ErrAccountProtected)
	assert.True(t, registry.Has("1099"))
}

func TestRegistryApplyDelta(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	registry.Register(testAccount(1, "1000", domain.Asset, domain.NormalDebit))

	registry.ApplyDelta(1, decimal.NewFromInt(250))
	registry.ApplyDelta(1, decimal.NewFromInt(-100))

	account, ok := registry.GetByID(1)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(150).Equal(account.CurrentBalance))

	// Both indices see the refreshed balance.
	account, _ = registry.GetByCode("1000")
	assert.True(t, decimal.NewFromInt(150).Equal(account.CurrentBalance))

	// Unknown ids are ignored.
	registry.ApplyDelta(42, decimal.NewFromInt(1))
}

func TestRegistrySetBalance(t *testing.T) {
	registry := ledger.NewAccountRegistry()
	registry.Register(testAccount(1, "1000", domain.Asset, domain.NormalDebit))

	registry.SetBalance(1, decimal.NewFromInt(999))
	account, _ := registry.GetByCode("1000")
	assert.True(t, decimal.NewFromInt(999).Equal(account.CurrentBalance))
}
