package ledger

import (
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// TransactionBuilder accumulates the header fields and journal lines of
// exactly one transaction at a time. The builder is the sole owner of its
// state: chained calls mutate it in place, Build yields an immutable
// snapshot, and Reset clears everything so the instance can be reused for an
// unrelated transaction.
//
// Not safe for concurrent use.
type TransactionBuilder struct {
	data domain.TransactionData
}

func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{}
}

func (b *TransactionBuilder) SetDescription(description string) *TransactionBuilder {
	b.data.Description = description
	return b
}

func (b *TransactionBuilder) SetDate(date time.Time) *TransactionBuilder {
	b.data.TransactionDate = date
	return b
}

func (b *TransactionBuilder) SetPostingDate(date time.Time) *TransactionBuilder {
	b.data.PostingDate = date
	return b
}

func (b *TransactionBuilder) SetReference(reference string) *TransactionBuilder {
	b.data.Reference = reference
	return b
}

func (b *TransactionBuilder) SetCurrency(currencyCode string) *TransactionBuilder {
	b.data.CurrencyCode = currencyCode
	return b
}

func (b *TransactionBuilder) SetType(transactionType domain.TransactionType) *TransactionBuilder {
	b.data.Type = transactionType
	return b
}

func (b *TransactionBuilder) SetSource(source domain.TransactionSource) *TransactionBuilder {
	b.data.Source = source
	return b
}

func (b *TransactionBuilder) SetTransactionNumber(number string) *TransactionBuilder {
	b.data.TransactionNumber = number
	return b
}

// Debit appends a debit line for the given account. The amount is rounded to
// 2 places at append time; the line number is the 1-based append order.
func (b *TransactionBuilder) Debit(accountID int64, amount decimal.Decimal, description ...string) *TransactionBuilder {
	return b.appendEntry(accountID, accounting.Round2(amount), decimal.Zero, description)
}

// Credit appends a credit line for the given account.
func (b *TransactionBuilder) Credit(accountID int64, amount decimal.Decimal, description ...string) *TransactionBuilder {
	return b.appendEntry(accountID, decimal.Zero, accounting.Round2(amount), description)
}

func (b *TransactionBuilder) appendEntry(accountID int64, debit, credit decimal.Decimal, description []string) *TransactionBuilder {
	entry := domain.JournalEntry{
		LineNumber:   len(b.data.Entries) + 1,
		AccountID:    accountID,
		DebitAmount:  debit,
		CreditAmount: credit,
		CurrencyCode: b.data.CurrencyCode,
	}
	if len(description) > 0 {
		entry.Description = description[0]
	}
	b.data.Entries = append(b.data.Entries, entry)
	return b
}

// Validate runs the full rule set against the current snapshot without
// mutating any state. It may be called any number of times.
func (b *TransactionBuilder) Validate() []domain.ValidationError {
	return accounting.ValidateTransactionData(b.snapshot())
}

// Build re-validates and, when clean, returns an immutable transaction value
// ready for persistence. On any rule failure it returns a DoubleEntryError
// carrying the complete error list.
func (b *TransactionBuilder) Build() (domain.TransactionData, error) {
	if errs := b.Validate(); len(errs) > 0 {
		return domain.TransactionData{}, domain.NewDoubleEntryError("transaction failed double-entry validation", errs)
	}
	return b.snapshot(), nil
}

// Reset clears all accumulated header fields and entries so the builder can
// be reused with no residual state.
func (b *TransactionBuilder) Reset() *TransactionBuilder {
	b.data = domain.TransactionData{}
	return b
}

// snapshot copies the accumulated value so the caller cannot alias the
// builder's internal entry slice.
func (b *TransactionBuilder) snapshot() domain.TransactionData {
	data := b.data
	if b.data.Entries != nil {
		data.Entries = make([]domain.JournalEntry, len(b.data.Entries))
		copy(data.Entries, b.data.Entries)
	}
	// Entries inherit the header currency even when it was set after them.
	for i := range data.Entries {
		data.Entries[i].CurrencyCode = b.data.CurrencyCode
	}
	return data
}
