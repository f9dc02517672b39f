package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persistence shape of a ledger posting header.
type Transaction struct {
	TransactionID         int64           `db:"transaction_id"`
	TransactionNumber     string          `db:"transaction_number"`
	Reference             string          `db:"reference"`
	Description           string          `db:"description"`
	TransactionDate       time.Time       `db:"transaction_date"`
	PostingDate           time.Time       `db:"posting_date"`
	Type                  string          `db:"type"`
	Source                string          `db:"source"`
	CurrencyCode          string          `db:"currency_code"`
	TotalAmount           decimal.Decimal `db:"total_amount"`
	Status                string          `db:"status"`
	IsReversed            bool            `db:"is_reversed"`
	ReversedTransactionID *int64          `db:"reversed_transaction_id"` // Nullable
	ApprovedBy            string          `db:"approved_by"`
	ApprovedAt            *time.Time      `db:"approved_at"`
	PostedBy              string          `db:"posted_by"`
	PostedAt              *time.Time      `db:"posted_at"`
	AuditFields
}
