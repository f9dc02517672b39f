package mapping

import (
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/models"
)

// ToModelAccount converts a domain Account to a model Account.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:         d.AccountID,
		Code:              d.Code,
		Name:              d.Name,
		AccountType:       string(d.AccountType),
		NormalBalance:     string(d.NormalBalance),
		ParentAccountID:   d.ParentAccountID,
		Level:             d.Level,
		Path:              d.Path,
		Description:       d.Description,
		IsActive:          d.IsActive,
		IsSystem:          d.IsSystem,
		AllowTransactions: d.AllowTransactions,
		CurrentBalance:    d.CurrentBalance,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:         m.AccountID,
		Code:              m.Code,
		Name:              m.Name,
		AccountType:       domain.AccountType(m.AccountType),
		NormalBalance:     domain.NormalBalance(m.NormalBalance),
		ParentAccountID:   m.ParentAccountID,
		Level:             m.Level,
		Path:              m.Path,
		Description:       m.Description,
		IsActive:          m.IsActive,
		IsSystem:          m.IsSystem,
		AllowTransactions: m.AllowTransactions,
		CurrentBalance:    m.CurrentBalance,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
