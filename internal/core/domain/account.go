package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting classification of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account type naturally accumulates value.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Account is a node in the chart of accounts.
//
// Path is the dot-joined chain of ancestor codes ending in the account's own
// code; Level is the tree depth with roots at 0. Both are derived from the
// parent's path and level at creation time and must stay consistent with
// ParentAccountID.
type Account struct {
	AccountID         int64           `json:"accountID"`
	Code              string          `json:"code"` // Unique within the chart
	Name              string          `json:"name"`
	AccountType       AccountType     `json:"accountType"`
	NormalBalance     NormalBalance   `json:"normalBalance"` // Must obey the fixed type mapping
	ParentAccountID   *int64          `json:"parentAccountID"`
	Level             int             `json:"level"`
	Path              string          `json:"path"`
	Description       string          `json:"description"`
	IsActive          bool            `json:"isActive"`
	IsSystem          bool            `json:"isSystem"`          // Protected from removal
	AllowTransactions bool            `json:"allowTransactions"` // Leaf-only posting flag
	CurrentBalance    decimal.Decimal `json:"currentBalance"`    // Denormalized running total
	AuditFields
}
