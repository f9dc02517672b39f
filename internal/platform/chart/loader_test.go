package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidChart(t *testing.T) {
	raw := []byte(`
accounts:
  - code: "1"
    name: Assets
    type: ASSET
    system: true
    allow_transactions: false
  - code: "1000"
    name: Cash
    type: ASSET
    parent_code: "1"
`)
	file, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, file.Accounts, 2)
	assert.Equal(t, "1", file.Accounts[0].Code)
	assert.True(t, file.Accounts[0].System)
	require.NotNil(t, file.Accounts[0].AllowTransactions)
	assert.False(t, *file.Accounts[0].AllowTransactions)
	assert.Nil(t, file.Accounts[1].AllowTransactions)
}

func TestParse_RejectsUnknownType(t *testing.T) {
	raw := []byte(`
accounts:
  - code: "1"
    name: Assets
    type: BOGUS
`)
	_, err := Parse(raw)
	assert.Error(t, err)
}

func TestParse_RejectsForwardParentReference(t *testing.T) {
	raw := []byte(`
accounts:
  - code: "1000"
    name: Cash
    type: ASSET
    parent_code: "1"
  - code: "1"
    name: Assets
    type: ASSET
`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent")
}

func TestParse_RejectsDuplicateCode(t *testing.T) {
	raw := []byte(`
accounts:
  - code: "1"
    name: Assets
    type: ASSET
  - code: "1"
    name: Assets Again
    type: ASSET
`)
	_, err := Parse(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestParse_RejectsEmptyChart(t *testing.T) {
	_, err := Parse([]byte(`accounts: []`))
	assert.Error(t, err)
}
