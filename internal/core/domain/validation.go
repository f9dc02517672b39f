package domain

import "fmt"

// Validation error codes emitted by the transaction validator.
const (
	CodeNoEntries              = "NO_ENTRIES"
	CodeInsufficientEntries    = "INSUFFICIENT_ENTRIES"
	CodeMissingAccountID       = "MISSING_ACCOUNT_ID"
	CodeBothDebitAndCredit     = "BOTH_DEBIT_AND_CREDIT"
	CodeNoAmount               = "NO_AMOUNT"
	CodeNegativeDebit          = "NEGATIVE_DEBIT"
	CodeNegativeCredit         = "NEGATIVE_CREDIT"
	CodeUnbalancedTransaction  = "UNBALANCED_TRANSACTION"
	CodeMissingDescription     = "MISSING_DESCRIPTION"
	CodeMissingTransactionDate = "MISSING_TRANSACTION_DATE"
	CodeMissingCurrency        = "MISSING_CURRENCY"
)

// ValidationError is a single structured rule failure. Validators collect
// these instead of returning Go errors so callers can inspect every problem
// before deciding to proceed.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DoubleEntryError aborts an attempted build or persist of an invalid
// transaction and carries the full list of rule failures.
type DoubleEntryError struct {
	Message string            `json:"message"`
	Details []ValidationError `json:"details"`
}

func NewDoubleEntryError(message string, details []ValidationError) *DoubleEntryError {
	return &DoubleEntryError{Message: message, Details: details}
}

func (e *DoubleEntryError) Error() string {
	return fmt.Sprintf("%s (%d validation errors)", e.Message, len(e.Details))
}
