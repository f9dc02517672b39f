package accounting_test

import (
	"testing"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalBalanceForType(t *testing.T) {
	cases := map[domain.AccountType]domain.NormalBalance{
		domain.Asset:     domain.NormalDebit,
		domain.Expense:   domain.NormalDebit,
		domain.Liability: domain.NormalCredit,
		domain.Equity:    domain.NormalCredit,
		domain.Revenue:   domain.NormalCredit,
	}
	for accountType, want := range cases {
		got, err := accounting.NormalBalanceForType(accountType)
		require.NoError(t, err, "type %s", accountType)
		assert.Equal(t, want, got, "type %s", accountType)
	}

	_, err := accounting.NormalBalanceForType("CONTRA")
	assert.Error(t, err)
}

func TestCalculateAccountBalance(t *testing.T) {
	tests := []struct {
		name          string
		accountType   domain.AccountType
		normalBalance domain.NormalBalance
		debits        int64
		credits       int64
		want          int64
	}{
		{"asset with debit surplus", domain.Asset, domain.NormalDebit, 1000, 300, 700},
		{"liability with credit surplus", domain.Liability, domain.NormalCredit, 200, 1000, 800},
		{"asset below normal side stays negative", domain.Asset, domain.NormalDebit, 300, 1000, -700},
		{"revenue with no activity", domain.Revenue, domain.NormalCredit, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := accounting.CalculateAccountBalance(
				tc.accountType,
				tc.normalBalance,
				decimal.NewFromInt(tc.debits),
				decimal.NewFromInt(tc.credits),
			)
			assert.True(t, decimal.NewFromInt(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestEntryDelta(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	// Debit-normal account: debits raise the balance, credits lower it.
	assert.True(t, hundred.Equal(accounting.EntryDelta(domain.NormalDebit, hundred, decimal.Zero)))
	assert.True(t, hundred.Neg().Equal(accounting.EntryDelta(domain.NormalDebit, decimal.Zero, hundred)))

	// Credit-normal account: the mirror image.
	assert.True(t, hundred.Equal(accounting.EntryDelta(domain.NormalCredit, decimal.Zero, hundred)))
	assert.True(t, hundred.Neg().Equal(accounting.EntryDelta(domain.NormalCredit, hundred, decimal.Zero)))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "33.33", accounting.Round2(decimal.RequireFromString("33.333")).String())
	assert.Equal(t, "1.24", accounting.Round2(decimal.RequireFromString("1.235")).String())
	assert.Equal(t, "100", accounting.Round2(decimal.NewFromInt(100)).String())
}
