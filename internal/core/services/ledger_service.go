package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/apperrors"
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/core/ledger"
	portsrepo "github.com/corebooks/bookkeeping_backend/internal/core/ports/repositories"
	portssvc "github.com/corebooks/bookkeeping_backend/internal/core/ports/services"
	"github.com/corebooks/bookkeeping_backend/internal/dto"
	"github.com/corebooks/bookkeeping_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrPostingNotAllowed  = errors.New("account does not allow direct postings")
	ErrAlreadyReversed    = errors.New("transaction is already reversed")
	ErrReversalOfReversal = errors.New("cannot reverse a transaction that is itself a reversal")
)

// ledgerService is the persistence orchestrator for the double-entry engine.
// It gates every write through the transaction validator, resolves accounts
// through the in-memory registry, and delegates atomicity to the repository:
// header, entries and balance deltas commit as one unit or not at all.
type ledgerService struct {
	txnRepo  portsrepo.TransactionRepositoryFacade
	registry *ledger.AccountRegistry
}

// NewLedgerService creates the ledger engine. The registry must be hydrated
// (see AccountSvcFacade.LoadRegistry) before transactions are created.
func NewLedgerService(txnRepo portsrepo.TransactionRepositoryFacade, registry *ledger.AccountRegistry) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txnRepo:  txnRepo,
		registry: registry,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// generateTransactionNumber produces TXN-<epoch-millis>-<3-digit-random>.
// The pattern is not collision-free under concurrent generation; the unique
// index maps a collision to apperrors.ErrDuplicate so the caller can retry.
func generateTransactionNumber() string {
	return fmt.Sprintf("TXN-%d-%03d", time.Now().UnixMilli(), rand.Intn(1000))
}

// preparedTransaction is the outcome of validating and resolving a candidate
// against the registry: the assembled header, its entries, and the signed
// balance delta per account.
type preparedTransaction struct {
	txn            domain.Transaction
	entries        []domain.JournalEntry
	balanceChanges map[int64]decimal.Decimal
}

// prepare validates the candidate, resolves every referenced account and
// computes per-account balance deltas. It performs no writes.
func (s *ledgerService) prepare(ctx context.Context, data domain.TransactionData, creatorUserID string, now time.Time) (*preparedTransaction, error) {
	logger := slog.Default()

	if errs := accounting.ValidateTransactionData(data); len(errs) > 0 {
		logger.Warn("Transaction failed validation",
			slog.Int("error_count", len(errs)),
			slog.String("description", data.Description))
		return nil, domain.NewDoubleEntryError("transaction failed double-entry validation", errs)
	}

	balanceChanges := make(map[int64]decimal.Decimal)
	totalDebits := decimal.Zero
	for _, entry := range data.Entries {
		account, ok := s.registry.GetByID(entry.AccountID)
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, entry.AccountID)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s", ErrAccountInactive, account.Code)
		}
		if !account.AllowTransactions {
			return nil, fmt.Errorf("%w: account %s", ErrPostingNotAllowed, account.Code)
		}

		delta := accounting.EntryDelta(account.NormalBalance, entry.DebitAmount, entry.CreditAmount)
		balanceChanges[entry.AccountID] = balanceChanges[entry.AccountID].Add(delta)
		totalDebits = totalDebits.Add(entry.DebitAmount)
	}

	number := data.TransactionNumber
	if number == "" {
		number = generateTransactionNumber()
	}

	txnType := data.Type
	if txnType == "" {
		txnType = domain.TypeJournal
	}
	source := data.Source
	if source == "" {
		source = domain.SourceManual
	}
	postingDate := data.PostingDate
	if postingDate.IsZero() {
		postingDate = data.TransactionDate
	}

	txn := domain.Transaction{
		TransactionNumber:     number,
		Reference:             data.Reference,
		Description:           data.Description,
		TransactionDate:       data.TransactionDate,
		PostingDate:           postingDate,
		Type:                  txnType,
		Source:                source,
		CurrencyCode:          data.CurrencyCode,
		TotalAmount:           totalDebits,
		Status:                domain.StatusDraft,
		ReversedTransactionID: data.ReversedTransactionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	entries := make([]domain.JournalEntry, len(data.Entries))
	copy(entries, data.Entries)
	for i := range entries {
		entries[i].LineNumber = i + 1
		entries[i].CurrencyCode = data.CurrencyCode
		entries[i].AuditFields = txn.AuditFields
	}

	return &preparedTransaction{txn: txn, entries: entries, balanceChanges: balanceChanges}, nil
}

// CreateTransaction validates and persists a candidate transaction. On any
// validation failure it returns *domain.DoubleEntryError and writes nothing.
func (s *ledgerService) CreateTransaction(ctx context.Context, data domain.TransactionData, creatorUserID string) (*domain.Transaction, error) {
	logger := slog.Default()
	now := time.Now().UTC()

	prepared, err := s.prepare(ctx, data, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	id, err := s.txnRepo.SaveTransaction(ctx, prepared.txn, prepared.entries, prepared.balanceChanges)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Transaction number collision; caller retries with a fresh number.
			return nil, fmt.Errorf("transaction number %s: %w", prepared.txn.TransactionNumber, err)
		}
		logger.Error("Failed to save transaction",
			slog.String("transaction_number", prepared.txn.TransactionNumber),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	for accountID, delta := range prepared.balanceChanges {
		s.registry.ApplyDelta(accountID, delta)
	}

	prepared.txn.TransactionID = id
	for i := range prepared.entries {
		prepared.entries[i].TransactionID = id
	}
	prepared.txn.Entries = prepared.entries

	logger.Info("Transaction created",
		slog.Int64("transaction_id", id),
		slog.String("transaction_number", prepared.txn.TransactionNumber),
		slog.String("total_amount", prepared.txn.TotalAmount.String()))
	return &prepared.txn, nil
}

// PostTransaction transitions DRAFT -> POSTED, stamping approval and posting
// audit fields. Any other starting state is a conflict.
func (s *ledgerService) PostTransaction(ctx context.Context, transactionID int64, userID string) (*domain.Transaction, error) {
	logger := slog.Default()

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}

	if !txn.Status.CanTransitionTo(domain.StatusPosted) {
		logger.Warn("Refusing to post transaction",
			slog.Int64("transaction_id", transactionID),
			slog.String("status", string(txn.Status)))
		return nil, fmt.Errorf("%w: transaction status is %s, expected %s", apperrors.ErrConflict, txn.Status, domain.StatusDraft)
	}

	now := time.Now().UTC()
	if err := s.txnRepo.MarkTransactionPosted(ctx, transactionID, userID, now); err != nil {
		return nil, fmt.Errorf("failed to post transaction %d: %w", transactionID, err)
	}

	txn.Status = domain.StatusPosted
	txn.ApprovedBy = userID
	txn.ApprovedAt = &now
	txn.PostedBy = userID
	txn.PostedAt = &now
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	logger.Info("Transaction posted", slog.Int64("transaction_id", transactionID), slog.String("posted_by", userID))
	return txn, nil
}

// validateReversalAndGetOriginal enforces the reversal state-machine guards
// and returns the original transaction with its entries.
func (s *ledgerService) validateReversalAndGetOriginal(ctx context.Context, transactionID int64) (*domain.Transaction, []domain.JournalEntry, error) {
	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}

	if original.IsReversed {
		return nil, nil, fmt.Errorf("%w: transaction %d", apperrors.ErrConflict, transactionID)
	}
	if original.Status == domain.StatusVoid {
		return nil, nil, fmt.Errorf("%w: transaction %d is void", apperrors.ErrConflict, transactionID)
	}
	if original.Status == domain.StatusDraft {
		return nil, nil, fmt.Errorf("%w: transaction %d is not posted", apperrors.ErrConflict, transactionID)
	}
	// A transaction may be on exactly one side of a reversal pair.
	if original.ReversedTransactionID != nil {
		return nil, nil, fmt.Errorf("%w: transaction %d", ErrReversalOfReversal, transactionID)
	}

	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load entries for transaction %d: %w", transactionID, err)
	}
	return original, entries, nil
}

// ReverseTransaction creates a new transaction offsetting the original and
// flips the original to REVERSED in the same storage transaction. The
// reversal swaps the debit/credit side of every line so that it passes
// double-entry validation and cancels the original's balance effect; its
// recorded total amount is the negated original total.
func (s *ledgerService) ReverseTransaction(ctx context.Context, transactionID int64, userID string, reason string) (*domain.Transaction, error) {
	logger := slog.Default()

	original, originalEntries, err := s.validateReversalAndGetOriginal(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	builder := ledger.NewTransactionBuilder().
		SetDescription(fmt.Sprintf("REVERSAL: %s - %s", original.Description, reason)).
		SetDate(original.TransactionDate).
		SetReference(original.Reference).
		SetCurrency(original.CurrencyCode).
		SetType(original.Type).
		SetSource(domain.SourceSystem)

	for _, entry := range originalEntries {
		if entry.DebitAmount.IsPositive() {
			builder.Credit(entry.AccountID, entry.DebitAmount, entry.Description)
		} else {
			builder.Debit(entry.AccountID, entry.CreditAmount, entry.Description)
		}
	}

	data, err := builder.Build()
	if err != nil {
		// Original entries came out of storage, so this indicates corruption.
		logger.Error("Reversal failed validation", slog.Int64("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("reversal of transaction %d failed validation: %w", transactionID, err)
	}
	data.ReversedTransactionID = &original.TransactionID

	now := time.Now().UTC()
	prepared, err := s.prepare(ctx, data, userID, now)
	if err != nil {
		return nil, err
	}

	// Reversals are effective immediately; record the negated original total.
	prepared.txn.TotalAmount = original.TotalAmount.Neg()
	prepared.txn.Status = domain.StatusPosted
	prepared.txn.PostedBy = userID
	prepared.txn.PostedAt = &now

	id, err := s.txnRepo.SaveReversal(ctx, prepared.txn, prepared.entries, prepared.balanceChanges, original.TransactionID, userID, now)
	if err != nil {
		logger.Error("Failed to save reversal",
			slog.Int64("original_transaction_id", original.TransactionID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save reversal of transaction %d: %w", transactionID, err)
	}

	for accountID, delta := range prepared.balanceChanges {
		s.registry.ApplyDelta(accountID, delta)
	}

	prepared.txn.TransactionID = id
	for i := range prepared.entries {
		prepared.entries[i].TransactionID = id
	}
	prepared.txn.Entries = prepared.entries

	logger.Info("Transaction reversed",
		slog.Int64("original_transaction_id", original.TransactionID),
		slog.Int64("reversing_transaction_id", id))
	return &prepared.txn, nil
}

// backoutDeltas computes the balance deltas that cancel a transaction's
// entries.
func (s *ledgerService) backoutDeltas(entries []domain.JournalEntry) (map[int64]decimal.Decimal, error) {
	backout := make(map[int64]decimal.Decimal)
	for _, entry := range entries {
		account, ok := s.registry.GetByID(entry.AccountID)
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, entry.AccountID)
		}
		delta := accounting.EntryDelta(account.NormalBalance, entry.DebitAmount, entry.CreditAmount)
		backout[entry.AccountID] = backout[entry.AccountID].Sub(delta)
	}
	return backout, nil
}

// VoidTransaction transitions POSTED -> VOID, backing the transaction's
// balance effect out atomically. The entries stay visible in history.
func (s *ledgerService) VoidTransaction(ctx context.Context, transactionID int64, userID string) (*domain.Transaction, error) {
	logger := slog.Default()

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}
	if txn.IsReversed {
		return nil, fmt.Errorf("%w: transaction %d", ErrAlreadyReversed, transactionID)
	}
	if !txn.Status.CanTransitionTo(domain.StatusVoid) {
		return nil, fmt.Errorf("%w: transaction status is %s, expected %s", apperrors.ErrConflict, txn.Status, domain.StatusPosted)
	}

	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for transaction %d: %w", transactionID, err)
	}
	backout, err := s.backoutDeltas(entries)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.txnRepo.VoidTransaction(ctx, transactionID, backout, userID, now); err != nil {
		return nil, fmt.Errorf("failed to void transaction %d: %w", transactionID, err)
	}

	for accountID, delta := range backout {
		s.registry.ApplyDelta(accountID, delta)
	}

	txn.Status = domain.StatusVoid
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	logger.Info("Transaction voided", slog.Int64("transaction_id", transactionID))
	return txn, nil
}

// DeleteTransaction hard-deletes a DRAFT transaction together with its
// entries, backing out the balance deltas it applied at creation.
func (s *ledgerService) DeleteTransaction(ctx context.Context, transactionID int64) error {
	logger := slog.Default()

	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}
	if txn.Status != domain.StatusDraft {
		logger.Warn("Refusing to delete non-draft transaction",
			slog.Int64("transaction_id", transactionID),
			slog.String("status", string(txn.Status)))
		return fmt.Errorf("%w: transaction status is %s, expected %s", apperrors.ErrConflict, txn.Status, domain.StatusDraft)
	}

	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to load entries for transaction %d: %w", transactionID, err)
	}
	backout, err := s.backoutDeltas(entries)
	if err != nil {
		return err
	}

	if err := s.txnRepo.DeleteTransaction(ctx, transactionID, backout); err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", transactionID, err)
	}

	for accountID, delta := range backout {
		s.registry.ApplyDelta(accountID, delta)
	}

	logger.Info("Transaction deleted", slog.Int64("transaction_id", transactionID))
	return nil
}

// GetTransaction retrieves a transaction with its entries populated.
func (s *ledgerService) GetTransaction(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %d: %w", transactionID, err)
	}

	entries, err := s.txnRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for transaction %d: %w", transactionID, err)
	}
	txn.Entries = entries
	return txn, nil
}

// ListTransactions retrieves a paginated list of transaction headers.
func (s *ledgerService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	txns, nextToken, err := s.txnRepo.ListTransactions(ctx, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	resp := &dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(txns)),
		NextToken:    nextToken,
	}
	for i := range txns {
		resp.Transactions[i] = dto.ToTransactionResponse(&txns[i])
	}
	return resp, nil
}

// ListEntriesByAccount retrieves a paginated list of entries posted against
// one account. Downstream statement generators read through this.
func (s *ledgerService) ListEntriesByAccount(ctx context.Context, accountID int64, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.txnRepo.ListEntriesByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for account %d: %w", accountID, err)
	}

	resp := &dto.ListEntriesResponse{
		Entries:   make([]dto.EntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entries[i])
	}
	return resp, nil
}

// ReconcileEntry records reconciliation metadata on a journal entry.
func (s *ledgerService) ReconcileEntry(ctx context.Context, entryID int64, reference string, userID string) error {
	now := time.Now().UTC()
	if err := s.txnRepo.UpdateEntryReconciliation(ctx, entryID, reference, userID, now); err != nil {
		return fmt.Errorf("failed to reconcile entry %d: %w", entryID, err)
	}
	return nil
}
