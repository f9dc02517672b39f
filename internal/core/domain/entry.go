package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is one ledger line, owned by exactly one Transaction.
//
// Exactly one of DebitAmount/CreditAmount is strictly positive and the other
// is exactly zero; both are rounded to 2 decimal places. Entries are written
// together with their transaction in one atomic unit and are never mutated
// afterwards except for the reconciliation metadata.
type JournalEntry struct {
	EntryID                 int64           `json:"entryID"`
	TransactionID           int64           `json:"transactionID"`
	LineNumber              int             `json:"lineNumber"` // 1-based order within the transaction
	AccountID               int64           `json:"accountID"`
	Description             string          `json:"description"`
	DebitAmount             decimal.Decimal `json:"debitAmount"`
	CreditAmount            decimal.Decimal `json:"creditAmount"`
	CurrencyCode            string          `json:"currencyCode"`
	IsReconciled            bool            `json:"isReconciled"`
	ReconciledAt            *time.Time      `json:"reconciledAt"`
	ReconciliationReference string          `json:"reconciliationReference"`
	AuditFields
}
