package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/apperrors"
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	portsrepo "github.com/corebooks/bookkeeping_backend/internal/core/ports/repositories"
	"github.com/corebooks/bookkeeping_backend/internal/models"
	"github.com/corebooks/bookkeeping_backend/internal/utils/mapping"
	"github.com/corebooks/bookkeeping_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, transaction_number, reference, description, transaction_date, posting_date,
	type, source, currency_code, total_amount, status, is_reversed, reversed_transaction_id,
	approved_by, approved_at, posted_by, posted_at,
	created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `entry_id, transaction_id, line_number, account_id, description, debit_amount, credit_amount,
	currency_code, is_reconciled, reconciled_at, reconciliation_reference,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for transaction and
// journal entry data. The account repository is injected for the in-transaction
// locking and balance update steps.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionNumber,
		&m.Reference,
		&m.Description,
		&m.TransactionDate,
		&m.PostingDate,
		&m.Type,
		&m.Source,
		&m.CurrencyCode,
		&m.TotalAmount,
		&m.Status,
		&m.IsReversed,
		&m.ReversedTransactionID,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.PostedBy,
		&m.PostedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TransactionID,
		&m.LineNumber,
		&m.AccountID,
		&m.Description,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.CurrencyCode,
		&m.IsReconciled,
		&m.ReconciledAt,
		&m.ReconciliationReference,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// insertTransactionTx inserts the header, locks the touched accounts, applies
// balance deltas and batch-inserts the entries, all on the given tx. Returns
// the generated transaction id.
func (r *PgxTransactionRepository) insertTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, entries []domain.JournalEntry, balanceChanges map[int64]decimal.Decimal) (int64, error) {
	modelTxn := mapping.ToModelTransaction(txn)

	headerQuery := `
		INSERT INTO transactions (transaction_number, reference, description, transaction_date, posting_date,
			type, source, currency_code, total_amount, status, is_reversed, reversed_transaction_id,
			approved_by, approved_at, posted_by, posted_at,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING transaction_id;
	`
	var transactionID int64
	err := tx.QueryRow(ctx, headerQuery,
		modelTxn.TransactionNumber,
		modelTxn.Reference,
		modelTxn.Description,
		modelTxn.TransactionDate,
		modelTxn.PostingDate,
		modelTxn.Type,
		modelTxn.Source,
		modelTxn.CurrencyCode,
		modelTxn.TotalAmount,
		modelTxn.Status,
		modelTxn.IsReversed,
		modelTxn.ReversedTransactionID,
		modelTxn.ApprovedBy,
		modelTxn.ApprovedAt,
		modelTxn.PostedBy,
		modelTxn.PostedAt,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	).Scan(&transactionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return 0, fmt.Errorf("%w: transaction number %s already exists", apperrors.ErrDuplicate, modelTxn.TransactionNumber)
		}
		return 0, fmt.Errorf("failed to insert transaction %s: %w", modelTxn.TransactionNumber, err)
	}

	// Lock the touched account rows before applying balance deltas.
	accountIDs := make([]int64, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return 0, fmt.Errorf("failed to lock accounts for update: %w", err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, txn.CreatedBy, txn.CreatedAt); err != nil {
		return 0, fmt.Errorf("failed to update account balances: %w", err)
	}

	batch := &pgx.Batch{}
	entryQuery := `
		INSERT INTO journal_entries (transaction_id, line_number, account_id, description, debit_amount, credit_amount,
			currency_code, is_reconciled, reconciliation_reference,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, entry := range entries {
		modelEntry := mapping.ToModelJournalEntry(entry)
		batch.Queue(entryQuery,
			transactionID,
			modelEntry.LineNumber,
			modelEntry.AccountID,
			modelEntry.Description,
			modelEntry.DebitAmount,
			modelEntry.CreditAmount,
			modelEntry.CurrencyCode,
			modelEntry.IsReconciled,
			modelEntry.ReconciliationReference,
			modelEntry.CreatedAt,
			modelEntry.CreatedBy,
			modelEntry.LastUpdatedAt,
			modelEntry.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to execute entry batch for transaction %s: %w", modelTxn.TransactionNumber, err)
	}

	return transactionID, nil
}

// SaveTransaction persists a transaction header with all its entries and
// applies the per-account balance deltas within a single DB transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry, balanceChanges map[int64]decimal.Decimal) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx) // Ignored once committed

	transactionID, err := r.insertTransactionTx(ctx, tx, txn, entries, balanceChanges)
	if err != nil {
		return 0, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return transactionID, nil
}

// SaveReversal persists the reversing transaction and flips the original to
// REVERSED in the same DB transaction.
func (r *PgxTransactionRepository) SaveReversal(ctx context.Context, reversing domain.Transaction, entries []domain.JournalEntry, balanceChanges map[int64]decimal.Decimal, originalID int64, userID string, now time.Time) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	reversingID, err := r.insertTransactionTx(ctx, tx, reversing, entries, balanceChanges)
	if err != nil {
		return 0, err
	}

	flipQuery := `
		UPDATE transactions
		SET status = $2, is_reversed = TRUE, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND is_reversed = FALSE AND status = $5;
	`
	ct, err := tx.Exec(ctx, flipQuery, originalID, string(domain.StatusReversed), now, userID, string(domain.StatusPosted))
	if err != nil {
		return 0, fmt.Errorf("failed to mark transaction %d reversed: %w", originalID, err)
	}
	// Zero rows means the original was reversed or voided concurrently.
	if ct.RowsAffected() == 0 {
		return 0, fmt.Errorf("%w: transaction %d", apperrors.ErrConflict, originalID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return reversingID, nil
}

// MarkTransactionPosted transitions a DRAFT transaction to POSTED. The status
// predicate makes concurrent posting a conflict rather than a double apply.
func (r *PgxTransactionRepository) MarkTransactionPosted(ctx context.Context, transactionID int64, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, approved_by = $3, approved_at = $4, posted_by = $3, posted_at = $4,
			last_updated_at = $4, last_updated_by = $3
		WHERE transaction_id = $1 AND status = $5;
	`
	ct, err := r.Pool.Exec(ctx, query, transactionID, string(domain.StatusPosted), userID, now, string(domain.StatusDraft))
	if err != nil {
		return fmt.Errorf("failed to post transaction %d: %w", transactionID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %d is not in %s status", apperrors.ErrConflict, transactionID, domain.StatusDraft)
	}
	return nil
}

// VoidTransaction transitions a POSTED transaction to VOID and backs the given
// balance deltas out in the same DB transaction. Entries stay in place.
func (r *PgxTransactionRepository) VoidTransaction(ctx context.Context, transactionID int64, balanceBackout map[int64]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND status = $5 AND is_reversed = FALSE;
	`
	ct, err := tx.Exec(ctx, query, transactionID, string(domain.StatusVoid), now, userID, string(domain.StatusPosted))
	if err != nil {
		return fmt.Errorf("failed to void transaction %d: %w", transactionID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %d is not in %s status", apperrors.ErrConflict, transactionID, domain.StatusPosted)
	}

	accountIDs := make([]int64, 0, len(balanceBackout))
	for accID := range balanceBackout {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for update: %w", err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceBackout, userID, now); err != nil {
		return fmt.Errorf("failed to back out account balances: %w", err)
	}

	return r.Commit(ctx, tx)
}

// DeleteTransaction hard-deletes a DRAFT transaction and backs out its balance
// deltas. Entries go with the header via ON DELETE CASCADE.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID int64, balanceBackout map[int64]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now().UTC()
	accountIDs := make([]int64, 0, len(balanceBackout))
	for accID := range balanceBackout {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for update: %w", err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceBackout, "", now); err != nil {
		return fmt.Errorf("failed to back out account balances: %w", err)
	}

	query := `DELETE FROM transactions WHERE transaction_id = $1 AND status = $2;`
	ct, err := tx.Exec(ctx, query, transactionID, string(domain.StatusDraft))
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", transactionID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %d is not in %s status", apperrors.ErrConflict, transactionID, domain.StatusDraft)
	}

	return r.Commit(ctx, tx)
}

// UpdateEntryReconciliation records reconciliation metadata on a single entry.
func (r *PgxTransactionRepository) UpdateEntryReconciliation(ctx context.Context, entryID int64, reference string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET is_reconciled = TRUE, reconciled_at = $2, reconciliation_reference = $3,
			last_updated_at = $2, last_updated_by = $4
		WHERE entry_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, entryID, now, reference, userID)
	if err != nil {
		return fmt.Errorf("failed to reconcile entry %d: %w", entryID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %d", apperrors.ErrNotFound, entryID)
	}
	return nil
}

// FindTransactionByID retrieves a transaction header by id.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by id %d: %w", transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(m)
	return &domainTxn, nil
}

// FindTransactionByNumber retrieves a transaction header by its unique number.
func (r *PgxTransactionRepository) FindTransactionByNumber(ctx context.Context, transactionNumber string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_number = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by number %s: %w", transactionNumber, err)
	}

	domainTxn := mapping.ToDomainTransaction(m)
	return &domainTxn, nil
}

// FindEntriesByTransactionID retrieves all entries of a transaction ordered by
// line number.
func (r *PgxTransactionRepository) FindEntriesByTransactionID(ctx context.Context, transactionID int64) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE transaction_id = $1 ORDER BY line_number;`

	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for transaction %d: %w", transactionID, err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row for transaction %d: %w", transactionID, err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows for transaction %d: %w", transactionID, err)
	}

	return mapping.ToDomainJournalEntrySlice(entries), nil
}

// ListTransactions retrieves a paginated list of transaction headers ordered
// newest first using token-based pagination on (created_at, transaction_id).
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeIDToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `WHERE (created_at, transaction_id) < ($1, $2)`
		args = append(args, lastCreatedAt, lastID)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $1;"
		rows, err = r.Pool.Query(ctx, query, fetchLimit)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", scanErr)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	var nextTokenVal *string
	if len(modelTxns) > limit {
		last := modelTxns[limit-1]
		token := pagination.EncodeIDToken(last.CreatedAt, last.TransactionID)
		nextTokenVal = &token
		modelTxns = modelTxns[:limit]
	}

	txns := make([]domain.Transaction, len(modelTxns))
	for i, m := range modelTxns {
		txns[i] = mapping.ToDomainTransaction(m)
	}
	return txns, nextTokenVal, nil
}

// ListEntriesByAccountID retrieves a paginated list of entries posted against
// one account, newest first, using token-based pagination.
func (r *PgxTransactionRepository) ListEntriesByAccountID(ctx context.Context, accountID int64, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM journal_entries WHERE account_id = $1`
	orderByClause := `ORDER BY created_at DESC, entry_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeIDToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `AND (created_at, entry_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for account %d: %w", accountID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row for account %d: %w", accountID, scanErr)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows for account %d: %w", accountID, err)
	}

	var nextTokenVal *string
	if len(modelEntries) > limit {
		last := modelEntries[limit-1]
		token := pagination.EncodeIDToken(last.CreatedAt, last.EntryID)
		nextTokenVal = &token
		modelEntries = modelEntries[:limit]
	}

	return mapping.ToDomainJournalEntrySlice(modelEntries), nextTokenVal, nil
}
