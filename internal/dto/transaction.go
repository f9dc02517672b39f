package dto

import (
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest is one journal line of a candidate transaction.
type CreateEntryRequest struct {
	AccountID    int64           `json:"accountID" validate:"required,gt=0"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
}

// CreateTransactionRequest is the transport shape of a candidate transaction.
// The double-entry rules themselves are checked by the transaction validator,
// which reports every failure; the struct tags only gate the obvious shape
// problems.
type CreateTransactionRequest struct {
	TransactionNumber string               `json:"transactionNumber" validate:"omitempty,max=40"`
	Reference         string               `json:"reference" validate:"omitempty,max=100"`
	Description       string               `json:"description" validate:"required"`
	TransactionDate   time.Time            `json:"transactionDate" validate:"required"`
	PostingDate       *time.Time           `json:"postingDate"`
	Type              string               `json:"type" validate:"omitempty,oneof=JOURNAL PAYMENT RECEIPT ADJUSTMENT TRANSFER ACCRUAL DEPRECIATION"`
	Source            string               `json:"source" validate:"omitempty,oneof=MANUAL IMPORT API SYSTEM"`
	CurrencyCode      string               `json:"currencyCode" validate:"required,len=3"`
	Entries           []CreateEntryRequest `json:"entries" validate:"required,min=2,dive"`
}

// ToTransactionData converts the request into the domain candidate value
// consumed by the validator and the ledger engine.
func (r CreateTransactionRequest) ToTransactionData() domain.TransactionData {
	data := domain.TransactionData{
		TransactionNumber: r.TransactionNumber,
		Reference:         r.Reference,
		Description:       r.Description,
		TransactionDate:   r.TransactionDate,
		Type:              domain.TransactionType(r.Type),
		Source:            domain.TransactionSource(r.Source),
		CurrencyCode:      r.CurrencyCode,
		Entries:           make([]domain.JournalEntry, len(r.Entries)),
	}
	if r.PostingDate != nil {
		data.PostingDate = *r.PostingDate
	}
	for i, e := range r.Entries {
		data.Entries[i] = domain.JournalEntry{
			LineNumber:   i + 1,
			AccountID:    e.AccountID,
			Description:  e.Description,
			DebitAmount:  e.DebitAmount.Round(2),
			CreditAmount: e.CreditAmount.Round(2),
			CurrencyCode: r.CurrencyCode,
		}
	}
	return data
}

// TransactionResponse is the outward shape of a transaction header.
type TransactionResponse struct {
	TransactionID         int64           `json:"transactionID"`
	TransactionNumber     string          `json:"transactionNumber"`
	Reference             string          `json:"reference,omitempty"`
	Description           string          `json:"description"`
	TransactionDate       time.Time       `json:"transactionDate"`
	PostingDate           time.Time       `json:"postingDate"`
	Type                  string          `json:"type"`
	Source                string          `json:"source"`
	CurrencyCode          string          `json:"currencyCode"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	Status                string          `json:"status"`
	IsReversed            bool            `json:"isReversed"`
	ReversedTransactionID *int64          `json:"reversedTransactionID,omitempty"`
	Entries               []EntryResponse `json:"entries,omitempty"`
}

// EntryResponse is the outward shape of a journal entry.
type EntryResponse struct {
	EntryID       int64           `json:"entryID"`
	TransactionID int64           `json:"transactionID"`
	LineNumber    int             `json:"lineNumber"`
	AccountID     int64           `json:"accountID"`
	Description   string          `json:"description,omitempty"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
	CurrencyCode  string          `json:"currencyCode"`
	IsReconciled  bool            `json:"isReconciled"`
}

// ToTransactionResponse converts a domain Transaction (with or without
// entries loaded) to its response shape.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:         t.TransactionID,
		TransactionNumber:     t.TransactionNumber,
		Reference:             t.Reference,
		Description:           t.Description,
		TransactionDate:       t.TransactionDate,
		PostingDate:           t.PostingDate,
		Type:                  string(t.Type),
		Source:                string(t.Source),
		CurrencyCode:          t.CurrencyCode,
		TotalAmount:           t.TotalAmount,
		Status:                string(t.Status),
		IsReversed:            t.IsReversed,
		ReversedTransactionID: t.ReversedTransactionID,
	}
	for i := range t.Entries {
		resp.Entries = append(resp.Entries, ToEntryResponse(&t.Entries[i]))
	}
	return resp
}

// ToEntryResponse converts a domain JournalEntry to its response shape.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:       e.EntryID,
		TransactionID: e.TransactionID,
		LineNumber:    e.LineNumber,
		AccountID:     e.AccountID,
		Description:   e.Description,
		DebitAmount:   e.DebitAmount,
		CreditAmount:  e.CreditAmount,
		CurrencyCode:  e.CurrencyCode,
		IsReconciled:  e.IsReconciled,
	}
}

// ListTransactionsParams holds pagination parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int
	NextToken *string
}

// ListTransactionsResponse is a page of transaction headers.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ListEntriesParams holds pagination parameters for listing account entries.
type ListEntriesParams struct {
	Limit     int
	NextToken *string
}

// ListEntriesResponse is a page of journal entries for one account.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
