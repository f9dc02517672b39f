package ledger_test

import (
	"testing"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/core/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func TestBuilderBuildsBalancedTransaction(t *testing.T) {
	builder := ledger.NewTransactionBuilder().
		SetDescription("Invoice #42 paid").
		SetDate(testDate).
		SetReference("INV-42").
		SetCurrency("USD").
		Debit(1, decimal.NewFromInt(100), "bank in").
		Credit(2, decimal.NewFromInt(100))

	data, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "Invoice #42 paid", data.Description)
	assert.Equal(t, "INV-42", data.Reference)
	require.Len(t, data.Entries, 2)
	assert.Equal(t, 1, data.Entries[0].LineNumber)
	assert.Equal(t, 2, data.Entries[1].LineNumber)
	assert.Equal(t, "bank in", data.Entries[0].Description)
	assert.Equal(t, "USD", data.Entries[0].CurrencyCode)
	assert.True(t, data.Entries[0].DebitAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, data.Entries[0].CreditAmount.IsZero())
	assert.True(t, data.Entries[1].CreditAmount.Equal(decimal.NewFromInt(100)))
}

func TestBuilderRoundsAtAppendTime(t *testing.T) {
	data, err := ledger.NewTransactionBuilder().
		SetDescription("rounding check").
		SetDate(testDate).
		SetCurrency("USD").
		Debit(1, decimal.RequireFromString("33.333")).
		Credit(2, decimal.RequireFromString("33.33")).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "33.33", data.Entries[0].DebitAmount.String())
	assert.Equal(t, "33.33", data.Entries[1].CreditAmount.String())
}

func TestBuilderValidateDoesNotMutate(t *testing.T) {
	builder := ledger.NewTransactionBuilder().
		SetDescription("check").
		SetDate(testDate).
		SetCurrency("USD").
		Debit(1, decimal.NewFromInt(10))

	first := builder.Validate()
	second := builder.Validate()
	assert.Equal(t, first, second)

	// Finishing the other side afterwards still works.
	builder.Credit(2, decimal.NewFromInt(10))
	_, err := builder.Build()
	assert.NoError(t, err)
}

func TestBuilderBuildFailureCarriesAllDetails(t *testing.T) {
	_, err := ledger.NewTransactionBuilder().
		Debit(1, decimal.NewFromInt(100)).
		Build()

	var deErr *domain.DoubleEntryError
	require.ErrorAs(t, err, &deErr)

	codes := make(map[string]bool)
	for _, detail := range deErr.Details {
		codes[detail.Code] = true
	}
	assert.True(t, codes[domain.CodeMissingDescription])
	assert.True(t, codes[domain.CodeMissingTransactionDate])
	assert.True(t, codes[domain.CodeMissingCurrency])
	assert.True(t, codes[domain.CodeInsufficientEntries])
	assert.True(t, codes[domain.CodeUnbalancedTransaction])
}

func TestBuilderReset(t *testing.T) {
	builder := ledger.NewTransactionBuilder().
		SetDescription("first").
		SetDate(testDate).
		SetCurrency("USD").
		Debit(1, decimal.NewFromInt(5)).
		Credit(2, decimal.NewFromInt(5))

	builder.Reset().
		SetDescription("second").
		SetDate(testDate).
		SetCurrency("EUR").
		Debit(3, decimal.NewFromInt(7)).
		Credit(4, decimal.NewFromInt(7))

	data, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "second", data.Description)
	require.Len(t, data.Entries, 2)
	assert.EqualValues(t, 3, data.Entries[0].AccountID)
	assert.EqualValues(t, 4, data.Entries[1].AccountID)
	assert.Equal(t, 1, data.Entries[0].LineNumber)
}

func TestBuilderSnapshotIsDetached(t *testing.T) {
	builder := ledger.NewTransactionBuilder().
		SetDescription("detach").
		SetDate(testDate).
		SetCurrency("USD").
		Debit(1, decimal.NewFromInt(1)).
		Credit(2, decimal.NewFromInt(1))

	data, err := builder.Build()
	require.NoError(t, err)

	builder.Debit(3, decimal.NewFromInt(9))
	assert.Len(t, data.Entries, 2)
}
