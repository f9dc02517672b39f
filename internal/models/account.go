package models

import (
	"github.com/shopspring/decimal"
)

// Account is the persistence shape of a chart-of-accounts row.
type Account struct {
	AccountID         int64           `db:"account_id"`
	Code              string          `db:"code"`
	Name              string          `db:"name"`
	AccountType       string          `db:"account_type"`
	NormalBalance     string          `db:"normal_balance"`
	ParentAccountID   *int64          `db:"parent_account_id"` // Nullable
	Level             int             `db:"level"`
	Path              string          `db:"path"`
	Description       string          `db:"description"`
	IsActive          bool            `db:"is_active"`
	IsSystem          bool            `db:"is_system"`
	AllowTransactions bool            `db:"allow_transactions"`
	CurrentBalance    decimal.Decimal `db:"current_balance"`
	AuditFields
}
