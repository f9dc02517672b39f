package accounting

import (
	"fmt"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Round2 rounds an amount to 2 decimal places, half away from zero. All line
// amounts pass through this exactly once, when the line is appended.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// NormalBalanceForType returns the side on which an account type accumulates
// value. The mapping is total and fixed:
// ASSET/EXPENSE -> DEBIT, LIABILITY/EQUITY/REVENUE -> CREDIT.
func NormalBalanceForType(accountType domain.AccountType) (domain.NormalBalance, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return domain.NormalDebit, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return domain.NormalCredit, nil
	default:
		return "", fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// CalculateAccountBalance computes an account's balance from its debit and
// credit totals. The account type is accepted for auditing but does not alter
// the formula; only the normal balance drives the sign. A negative result
// signals a balance opposite to the account's normal side and is valid.
func CalculateAccountBalance(accountType domain.AccountType, normalBalance domain.NormalBalance, totalDebits, totalCredits decimal.Decimal) decimal.Decimal {
	_ = accountType
	if normalBalance == domain.NormalDebit {
		return totalDebits.Sub(totalCredits)
	}
	return totalCredits.Sub(totalDebits)
}

// EntryDelta is the signed contribution of a single journal entry to the
// balance of an account with the given normal balance.
func EntryDelta(normalBalance domain.NormalBalance, debitAmount, creditAmount decimal.Decimal) decimal.Decimal {
	if normalBalance == domain.NormalDebit {
		return debitAmount.Sub(creditAmount)
	}
	return creditAmount.Sub(debitAmount)
}
