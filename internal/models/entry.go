package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the persistence shape of a single ledger line.
type JournalEntry struct {
	EntryID                 int64           `db:"entry_id"`
	TransactionID           int64           `db:"transaction_id"`
	LineNumber              int             `db:"line_number"`
	AccountID               int64           `db:"account_id"`
	Description             string          `db:"description"`
	DebitAmount             decimal.Decimal `db:"debit_amount"`
	CreditAmount            decimal.Decimal `db:"credit_amount"`
	CurrencyCode            string          `db:"currency_code"`
	IsReconciled            bool            `db:"is_reconciled"`
	ReconciledAt            *time.Time      `db:"reconciled_at"` // Nullable
	ReconciliationReference string          `db:"reconciliation_reference"`
	AuditFields
}
