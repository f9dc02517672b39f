package accounting

import (
	"fmt"
	"strings"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// balanceTolerance is the smallest debit/credit difference that counts as
// unbalanced. Amounts are rounded to 2 places, so anything below a cent is
// rounding noise.
var balanceTolerance = decimal.New(1, -2)

// ValidateDoubleEntry checks a candidate set of journal lines against the
// double-entry rules. Every applicable check runs and accumulates; the
// function never short-circuits on the first failure and never returns a Go
// error.
func ValidateDoubleEntry(entries []domain.JournalEntry) []domain.ValidationError {
	var errs []domain.ValidationError

	if len(entries) == 0 {
		errs = append(errs, domain.ValidationError{
			Field:   "entries",
			Message: "Transaction must have at least one journal entry",
			Code:    domain.CodeNoEntries,
		})
	}
	if len(entries) < 2 {
		errs = append(errs, domain.ValidationError{
			Field:   "entries",
			Message: "Double-entry transaction requires at least two journal entries",
			Code:    domain.CodeInsufficientEntries,
		})
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero

	for i, entry := range entries {
		if entry.AccountID == 0 {
			errs = append(errs, domain.ValidationError{
				Field:   fmt.Sprintf("entries[%d].accountId", i),
				Message: fmt.Sprintf("Entry %d is missing an account", i+1),
				Code:    domain.CodeMissingAccountID,
			})
		}

		debitPositive := entry.DebitAmount.IsPositive()
		creditPositive := entry.CreditAmount.IsPositive()

		if debitPositive && creditPositive {
			errs = append(errs, domain.ValidationError{
				Field:   fmt.Sprintf("entries[%d]", i),
				Message: fmt.Sprintf("Entry %d cannot have both a debit and a credit amount", i+1),
				Code:    domain.CodeBothDebitAndCredit,
			})
		}
		if entry.DebitAmount.IsZero() && entry.CreditAmount.IsZero() {
			errs = append(errs, domain.ValidationError{
				Field:   fmt.Sprintf("entries[%d]", i),
				Message: fmt.Sprintf("Entry %d must have a debit or a credit amount", i+1),
				Code:    domain.CodeNoAmount,
			})
		}
		if entry.DebitAmount.IsNegative() {
			errs = append(errs, domain.ValidationError{
				Field:   fmt.Sprintf("entries[%d].debitAmount", i),
				Message: fmt.Sprintf("Entry %d debit amount cannot be negative", i+1),
				Code:    domain.CodeNegativeDebit,
			})
		}
		if entry.CreditAmount.IsNegative() {
			errs = append(errs, domain.ValidationError{
				Field:   fmt.Sprintf("entries[%d].creditAmount", i),
				Message: fmt.Sprintf("Entry %d credit amount cannot be negative", i+1),
				Code:    domain.CodeNegativeCredit,
			})
		}

		totalDebits = totalDebits.Add(entry.DebitAmount)
		totalCredits = totalCredits.Add(entry.CreditAmount)
	}

	if totalDebits.Sub(totalCredits).Abs().GreaterThanOrEqual(balanceTolerance) {
		errs = append(errs, domain.ValidationError{
			Field:   "entries",
			Message: fmt.Sprintf("Total debits (%s) must equal total credits (%s)", totalDebits.String(), totalCredits.String()),
			Code:    domain.CodeUnbalancedTransaction,
		})
	}

	return errs
}

// ValidateTransactionData validates the header fields of a candidate
// transaction in declaration order, then appends the double-entry result for
// its lines.
func ValidateTransactionData(data domain.TransactionData) []domain.ValidationError {
	var errs []domain.ValidationError

	if strings.TrimSpace(data.Description) == "" {
		errs = append(errs, domain.ValidationError{
			Field:   "description",
			Message: "Description is required",
			Code:    domain.CodeMissingDescription,
		})
	}
	if data.TransactionDate.IsZero() {
		errs = append(errs, domain.ValidationError{
			Field:   "transactionDate",
			Message: "Transaction date is required",
			Code:    domain.CodeMissingTransactionDate,
		})
	}
	if data.CurrencyCode == "" {
		errs = append(errs, domain.ValidationError{
			Field:   "currencyCode",
			Message: "Currency code is required",
			Code:    domain.CodeMissingCurrency,
		})
	}

	return append(errs, ValidateDoubleEntry(data.Entries)...)
}
