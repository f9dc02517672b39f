package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the business meaning of a ledger posting.
type TransactionType string

const (
	TypeJournal      TransactionType = "JOURNAL"
	TypePayment      TransactionType = "PAYMENT"
	TypeReceipt      TransactionType = "RECEIPT"
	TypeAdjustment   TransactionType = "ADJUSTMENT"
	TypeTransfer     TransactionType = "TRANSFER"
	TypeAccrual      TransactionType = "ACCRUAL"
	TypeDepreciation TransactionType = "DEPRECIATION"
)

// TransactionSource records where a transaction originated.
type TransactionSource string

const (
	SourceManual TransactionSource = "MANUAL"
	SourceImport TransactionSource = "IMPORT"
	SourceAPI    TransactionSource = "API"
	SourceSystem TransactionSource = "SYSTEM"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusDraft    TransactionStatus = "DRAFT"
	StatusPosted   TransactionStatus = "POSTED"
	StatusReversed TransactionStatus = "REVERSED"
	StatusVoid     TransactionStatus = "VOID"
)

// CanTransitionTo reports whether the state machine permits moving from s to
// next. REVERSED and VOID are terminal.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusPosted
	case StatusPosted:
		return next == StatusReversed || next == StatusVoid
	default:
		return false
	}
}

// Transaction is a ledger posting header. Its journal entries are owned rows
// loaded separately and cascade-deleted with it.
type Transaction struct {
	TransactionID     int64             `json:"transactionID"`
	TransactionNumber string            `json:"transactionNumber"` // Unique; TXN-<epoch-millis>-<3-digit-random> when generated
	Reference         string            `json:"reference"`         // Optional external reference
	Description       string            `json:"description"`
	TransactionDate   time.Time         `json:"transactionDate"`
	PostingDate       time.Time         `json:"postingDate"`
	Type              TransactionType   `json:"type"`
	Source            TransactionSource `json:"source"`
	CurrencyCode      string            `json:"currencyCode"`
	TotalAmount       decimal.Decimal   `json:"totalAmount"` // Common debit=credit total of the entries
	Status            TransactionStatus `json:"status"`
	IsReversed        bool              `json:"isReversed"`
	// ReversedTransactionID is a weak back-reference to the transaction this
	// one reverses; nil for ordinary postings.
	ReversedTransactionID *int64     `json:"reversedTransactionID"`
	ApprovedBy            string     `json:"approvedBy"`
	ApprovedAt            *time.Time `json:"approvedAt"`
	PostedBy              string     `json:"postedBy"`
	PostedAt              *time.Time `json:"postedAt"`
	AuditFields
	Entries []JournalEntry `json:"entries,omitempty"`
}

// TransactionData is the immutable candidate produced by a TransactionBuilder
// and consumed by validation and persistence. It carries no identity; ids and
// status are assigned when the ledger engine persists it.
type TransactionData struct {
	TransactionNumber     string
	Reference             string
	Description           string
	TransactionDate       time.Time
	PostingDate           time.Time
	Type                  TransactionType
	Source                TransactionSource
	CurrencyCode          string
	ReversedTransactionID *int64
	Entries               []JournalEntry
}
