package dto

import (
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest carries the fields needed to add an account to the
// chart. NormalBalance is optional; when present it must match the fixed
// mapping for the account type.
type CreateAccountRequest struct {
	Code          string `json:"code" validate:"required,max=20"`
	Name          string `json:"name" validate:"required,max=120"`
	AccountType   string `json:"accountType" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	NormalBalance string `json:"normalBalance" validate:"omitempty,oneof=DEBIT CREDIT"`
	// ParentCode references an existing account; empty for root accounts.
	ParentCode        string `json:"parentCode" validate:"omitempty,max=20"`
	Description       string `json:"description"`
	IsSystem          bool   `json:"isSystem"`
	AllowTransactions *bool  `json:"allowTransactions"` // Defaults to true
}

// AccountResponse is the outward shape of an account.
type AccountResponse struct {
	AccountID         int64           `json:"accountID"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	AccountType       string          `json:"accountType"`
	NormalBalance     string          `json:"normalBalance"`
	ParentAccountID   *int64          `json:"parentAccountID,omitempty"`
	Level             int             `json:"level"`
	Path              string          `json:"path"`
	Description       string          `json:"description,omitempty"`
	IsActive          bool            `json:"isActive"`
	IsSystem          bool            `json:"isSystem"`
	AllowTransactions bool            `json:"allowTransactions"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain Account to its response shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:         a.AccountID,
		Code:              a.Code,
		Name:              a.Name,
		AccountType:       string(a.AccountType),
		NormalBalance:     string(a.NormalBalance),
		ParentAccountID:   a.ParentAccountID,
		Level:             a.Level,
		Path:              a.Path,
		Description:       a.Description,
		IsActive:          a.IsActive,
		IsSystem:          a.IsSystem,
		AllowTransactions: a.AllowTransactions,
		CurrentBalance:    a.CurrentBalance,
		CreatedAt:         a.CreatedAt,
	}
}
