package mapping

import (
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:         d.TransactionID,
		TransactionNumber:     d.TransactionNumber,
		Reference:             d.Reference,
		Description:           d.Description,
		TransactionDate:       d.TransactionDate,
		PostingDate:           d.PostingDate,
		Type:                  string(d.Type),
		Source:                string(d.Source),
		CurrencyCode:          d.CurrencyCode,
		TotalAmount:           d.TotalAmount,
		Status:                string(d.Status),
		IsReversed:            d.IsReversed,
		ReversedTransactionID: d.ReversedTransactionID,
		ApprovedBy:            d.ApprovedBy,
		ApprovedAt:            d.ApprovedAt,
		PostedBy:              d.PostedBy,
		PostedAt:              d.PostedAt,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:         m.TransactionID,
		TransactionNumber:     m.TransactionNumber,
		Reference:             m.Reference,
		Description:           m.Description,
		TransactionDate:       m.TransactionDate,
		PostingDate:           m.PostingDate,
		Type:                  domain.TransactionType(m.Type),
		Source:                domain.TransactionSource(m.Source),
		CurrencyCode:          m.CurrencyCode,
		TotalAmount:           m.TotalAmount,
		Status:                domain.TransactionStatus(m.Status),
		IsReversed:            m.IsReversed,
		ReversedTransactionID: m.ReversedTransactionID,
		ApprovedBy:            m.ApprovedBy,
		ApprovedAt:            m.ApprovedAt,
		PostedBy:              m.PostedBy,
		PostedAt:              m.PostedAt,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:                 d.EntryID,
		TransactionID:           d.TransactionID,
		LineNumber:              d.LineNumber,
		AccountID:               d.AccountID,
		Description:             d.Description,
		DebitAmount:             d.DebitAmount,
		CreditAmount:            d.CreditAmount,
		CurrencyCode:            d.CurrencyCode,
		IsReconciled:            d.IsReconciled,
		ReconciledAt:            d.ReconciledAt,
		ReconciliationReference: d.ReconciliationReference,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:                 m.EntryID,
		TransactionID:           m.TransactionID,
		LineNumber:              m.LineNumber,
		AccountID:               m.AccountID,
		Description:             m.Description,
		DebitAmount:             m.DebitAmount,
		CreditAmount:            m.CreditAmount,
		CurrencyCode:            m.CurrencyCode,
		IsReconciled:            m.IsReconciled,
		ReconciledAt:            m.ReconciledAt,
		ReconciliationReference: m.ReconciliationReference,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntrySlice converts a slice of model entries to domain entries.
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}
