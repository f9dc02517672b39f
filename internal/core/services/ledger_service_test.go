package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/apperrors"
	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/core/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransactionRepo struct {
	mock.Mock
}

func (m *mockTransactionRepo) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockTransactionRepo) FindTransactionByNumber(ctx context.Context, transactionNumber string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockTransactionRepo) FindEntriesByTransactionID(ctx context.Context, transactionID int64) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *mockTransactionRepo) ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *mockTransactionRepo) ListEntriesByAccountID(ctx context.Context, accountID int64, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *mockTransactionRepo) SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.JournalEntry, balanceChanges map[int64]decimal.Decimal) (int64, error) {
	args := m.Called(ctx, txn, entries, balanceChanges)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepo) SaveReversal(ctx context.Context, reversing domain.Transaction, entries []domain.JournalEntry, balanceChanges map[int64]decimal.Decimal, originalID int64, userID string, now time.Time) (int64, error) {
	args := m.Called(ctx, reversing, entries, balanceChanges, originalID, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepo) MarkTransactionPosted(ctx context.Context, transactionID int64, userID string, now time.Time) error {
	args := m.Called(ctx, transactionID, userID, now)
	return args.Error(0)
}

func (m *mockTransactionRepo) VoidTransaction(ctx context.Context, transactionID int64, balanceBackout map[int64]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, transactionID, balanceBackout, userID, now)
	return args.Error(0)
}

func (m *mockTransactionRepo) DeleteTransaction(ctx context.Context, transactionID int64, balanceBackout map[int64]decimal.Decimal) error {
	args := m.Called(ctx, transactionID, balanceBackout)
	return args.Error(0)
}

func (m *mockTransactionRepo) UpdateEntryReconciliation(ctx context.Context, entryID int64, reference string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, reference, userID, now)
	return args.Error(0)
}

func newTestRegistry() *ledger.AccountRegistry {
	registry := ledger.NewAccountRegistry()
	registry.Register(domain.Account{
		AccountID: 1, Code: "1000", Name: "Cash",
		AccountType: domain.Asset, NormalBalance: domain.NormalDebit,
		IsActive: true, AllowTransactions: true,
	})
	registry.Register(domain.Account{
		AccountID: 2, Code: "4000", Name: "Sales Revenue",
		AccountType: domain.Revenue, NormalBalance: domain.NormalCredit,
		IsActive: true, AllowTransactions: true,
	})
	registry.Register(domain.Account{
		AccountID: 3, Code: "1999", Name: "Closed Account",
		AccountType: domain.Asset, NormalBalance: domain.NormalDebit,
		IsActive: false, AllowTransactions: true,
	})
	registry.Register(domain.Account{
		AccountID: 4, Code: "1", Name: "Assets",
		AccountType: domain.Asset, NormalBalance: domain.NormalDebit,
		IsActive: true, AllowTransactions: false,
	})
	return registry
}

func balancedData() domain.TransactionData {
	data, err := ledger.NewTransactionBuilder().
		SetDescription("Cash sale").
		SetDate(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)).
		SetCurrency("USD").
		Debit(1, decimal.NewFromInt(100)).
		Credit(2, decimal.NewFromInt(100)).
		Build()
	if err != nil {
		panic(err)
	}
	return data
}

func TestCreateTransaction_Success(t *testing.T) {
	repo := new(mockTransactionRepo)
	registry := newTestRegistry()
	svc := NewLedgerService(repo, registry)

	var savedChanges map[int64]decimal.Decimal
	repo.On("SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedChanges = args.Get(3).(map[int64]decimal.Decimal)
		}).
		Return(int64(42), nil)

	txn, err := svc.CreateTransaction(context.Background(), balancedData(), "user-1")

	require.NoError(t, err)
	assert.EqualValues(t, 42, txn.TransactionID)
	assert.Equal(t, domain.StatusDraft, txn.Status)
	assert.Regexp(t, regexp.MustCompile(`^TXN-\d+-\d{3}$`), txn.TransactionNumber)
	assert.True(t, txn.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.Len(t, txn.Entries, 2)
	assert.EqualValues(t, 42, txn.Entries[0].TransactionID)

	// Debiting cash raises it, crediting revenue raises it.
	require.NotNil(t, savedChanges)
	assert.True(t, savedChanges[1].Equal(decimal.NewFromInt(100)))
	assert.True(t, savedChanges[2].Equal(decimal.NewFromInt(100)))

	cash, _ := registry.GetByID(1)
	assert.True(t, cash.CurrentBalance.Equal(decimal.NewFromInt(100)))
}

func TestCreateTransaction_UnbalancedWritesNothing(t *testing.T) {
	repo := new(mockTransactionRepo)
	svc := NewLedgerService(repo, newTestRegistry())

	data := domain.TransactionData{
		Description:     "Broken",
		TransactionDate: time.Now(),
		CurrencyCode:    "USD",
		Entries: []domain.JournalEntry{
			{AccountID: 1, DebitAmount: decimal.NewFromInt(100)},
			{AccountID: 2, CreditAmount: decimal.NewFromInt(50)},
		},
	}

	_, err := svc.CreateTransaction(context.Background(), data, "user-1")

	var deErr *domain.DoubleEntryError
	require.ErrorAs(t, err, &deErr)
	repo.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTransaction_AccountChecks(t *testing.T) {
	repo := new(mockTransactionRepo)
	svc := NewLedgerService(repo, newTestRegistry())
	ctx := context.Background()

	build := func(debitAccount int64) domain.TransactionData {
		return domain.TransactionData{
			Description:     "Account checks",
			TransactionDate: time.Now(),
			CurrencyCode:    "USD",
			Entries: []domain.JournalEntry{
				{AccountID: debitAccount, DebitAmount: decimal.NewFromInt(10)},
				{AccountID: 2, CreditAmount: decimal.NewFromInt(10)},
			},
		}
	}

	_, err := svc.CreateTransaction(ctx, build(999), "user-1")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.CreateTransaction(ctx, build(3), "user-1")
	assert.ErrorIs(t, err, ErrAccountInactive)

	_, err = svc.CreateTransaction(ctx, build(4), "user-1")
	assert.ErrorIs(t, err, ErrPostingNotAllowed)

	repo.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTransaction_DuplicateNumber(t *testing.T) {
	repo := new(mockTransactionRepo)
	svc := NewLedgerService(repo, newTestRegistry())

	repo.On("SaveTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), apperrors.ErrDuplicate)

	_, err := svc.CreateTransaction(context.Background(), balancedData(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestPostTransaction_DraftOnly(t *testing.T) {
	repo := new(mockTransactionRepo)
	svc := NewLedgerService(repo, newTestRegistry())
	ctx := context.Background()

	repo.On("FindTransactionByID", mock.Anything, int64(1)).
		Return(&domain.Transaction{TransactionID: 1, Status: domain.StatusDraft}, nil)
	repo.On("MarkTransactionPosted", mock.Anything, int64(1), "approver", mock.Anything).Return(nil)

	txn, err := svc.PostTransaction(ctx, 1, "approver")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPosted, txn.Status)
	assert.Equal(t, "approver", txn.PostedBy)
	require.NotNil(t, txn.PostedAt)

	repo.On("FindTransactionByID", mock.Anything, int64(2)).
		Return(&domain.Transaction{TransactionID: 2, Status: domain.StatusPosted}, nil)

	_, err = svc.PostTransaction(ctx, 2, "approver")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "MarkTransactionPosted", mock.Anything, int64(2), mock.Anything, mock.Anything)
}

func postedOriginal() (*domain.Transaction, []domain.JournalEntry) {
	txn := &domain.Transaction{
		TransactionID:     7,
		TransactionNumber: "TXN-1700000000000-123",
		Description:       "Cash sale",
		TransactionDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrencyCode:      "USD",
		TotalAmount:       decimal.NewFromInt(100),
		Status:            domain.StatusPosted,
	}
	entries := []domain.JournalEntry{
		{EntryID: 70, TransactionID: 7, LineNumber: 1, AccountID: 1, DebitAmount: decimal.NewFromInt(100), CreditAmount: decimal.Zero, CurrencyCode: "USD"},
		{EntryID: 71, TransactionID: 7, LineNumber: 2, AccountID: 2, DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(100), CurrencyCode: "USD"},
	}
	return txn, entries
}

func TestReverseTransaction_SwapsSidesAndNegatesTotal(t *testing.T) {
	repo := new(mockTransactionRepo)
	registry := newTestRegistry()
	registry.SetBalance(1, decimal.NewFromInt(100))
	registry.SetBalance(2, decimal.NewFromInt(100))
	svc := NewLedgerService(repo, registry)

	original, entries := postedOriginal()
	repo.On("FindTransactionByID", mock.Anything, int64(7)).Return(original, nil)
	repo.On("FindEntriesByTransactionID", mock.Anything, int64(7)).Return(entries, nil)

	var reversing domain.Transaction
	var reversingEntries []domain.JournalEntry
	var changes map[int64]decimal.Decimal
	repo.On("SaveReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, int64(7), "user-2", mock.Anything).
		Run(func(args mock.Arguments) {
			reversing = args.Get(1).(domain.Transaction)
			reversingEntries = args.Get(2).([]domain.JournalEntry)
			changes = args.Get(3).(map[int64]decimal.Decimal)
		}).
		Return(int64(8), nil)

	txn, err := svc.ReverseTransaction(context.Background(), 7, "user-2", "duplicate posting")
	require.NoError(t, err)

	assert.EqualValues(t, 8, txn.TransactionID)
	assert.Equal(t, domain.StatusPosted, txn.Status)
	assert.True(t, reversing.TotalAmount.Equal(decimal.NewFromInt(-100)))
	require.NotNil(t, reversing.ReversedTransactionID)
	assert.EqualValues(t, 7, *reversing.ReversedTransactionID)
	assert.Contains(t, reversing.Description, "REVERSAL")
	assert.Contains(t, reversing.Description, "duplicate posting")
	assert.Equal(t, domain.SourceSystem, reversing.Source)

	// Every line swaps sides against the original.
	require.Len(t, reversingEntries, 2)
	assert.EqualValues(t, 1, reversingEntries[0].AccountID)
	assert.True(t, reversingEntries[0].CreditAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, reversingEntries[0].DebitAmount.IsZero())
	assert.EqualValues(t, 2, reversingEntries[1].AccountID)
	assert.True(t, reversingEntries[1].DebitAmount.Equal(decimal.NewFromInt(100)))

	// The reversal exactly cancels the original's balance effect.
	assert.True(t, changes[1].Equal(decimal.NewFromInt(-100)))
	assert.True(t, changes[2].Equal(decimal.NewFromInt(-100)))
	cash, _ := registry.GetByID(1)
	revenue, _ := registry.GetByID(2)
	assert.True(t, cash.CurrentBalance.IsZero())
	assert.True(t, revenue.CurrentBalance.IsZero())
}

func TestReverseTransaction_Guards(t *testing.T) {
	repo := new(mockTransactionRepo)
	svc := NewLedgerService(repo, newTestRegistry())
	ctx := context.Background()

	repo.On("FindTransactionByID", mock.Anything, int64(10)).
		Return(&domain.Transaction{TransactionID: 10, Status: domain.StatusReversed, IsReversed: true}, nil)
	_, err := svc.ReverseTransaction(ctx, 10, "u", "r")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	repo.On("FindTransactionByID", mock.Anything, int64(11)).
		Return(&domain.Transaction{TransactionID: 11, Status: domain.StatusDraft}, nil)
	_, err = svc.ReverseTransaction(ctx, 11, "u", "r")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	repo.On("FindTransactionByID", mock.Anything, int64(12)).
		Return(&domain.Transaction{TransactionID: 12, Status: domain.StatusVoid}, nil)
	_, err = svc.ReverseTransaction(ctx, 12, "u", "r")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	originalID := int64(7)
	repo.On("FindTransactionByID", mock.Anything, int64(13)).
		Return(&domain.Transaction{TransactionID: 13, Status: domain.StatusPosted, ReversedTransactionID: &originalID}, nil)
	_, err = svc.ReverseTransaction(ctx, 13, "u", "r")
	assert.ErrorIs(t, err, ErrReversalOfReversal)

	repo.AssertNotCalled(t, "SaveReversal",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVoidTransaction_PostedOnly(t *testing.T) {
	repo := new(mockTransactionRepo)
	registry := newTestRegistry()
	registry.SetBalance(1, decimal.NewFromInt(100))
	registry.SetBalance(2, decimal.NewFromInt(100))
	svc := NewLedgerService(repo, registry)
	ctx := context.Background()

	original, entries := postedOriginal()
	repo.On("FindTransactionByID", mock.Anything, int64(7)).Return(original, nil)
	repo.On("FindEntriesByTransactionID", mock.Anything, int64(7)).Return(entries, nil)

	var backout map[int64]decimal.Decimal
	repo.On("VoidTransaction", mock.Anything, int64(7), mock.Anything, "user-2", mock.Anything).
		Run(func(args mock.Arguments) {
			backout = args.Get(2).(map[int64]decimal.Decimal)
		}).
		Return(nil)

	txn, err := svc.VoidTransaction(ctx, 7, "user-2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoid, txn.Status)
	assert.True(t, backout[1].Equal(decimal.NewFromInt(-100)))
	assert.True(t, backout[2].Equal(decimal.NewFromInt(-100)))

	repo.On("FindTransactionByID", mock.Anything, int64(20)).
		Return(&domain.Transaction{TransactionID: 20, Status: domain.StatusDraft}, nil)
	_, err = svc.VoidTransaction(ctx, 20, "user-2")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteTransaction_DraftOnly(t *testing.T) {
	repo := new(mockTransactionRepo)
	registry := newTestRegistry()
	registry.SetBalance(1, decimal.NewFromInt(100))
	registry.SetBalance(2, decimal.NewFromInt(100))
	svc := NewLedgerService(repo, registry)
	ctx := context.Background()

	draft, entries := postedOriginal()
	draft.Status = domain.StatusDraft
	repo.On("FindTransactionByID", mock.Anything, int64(7)).Return(draft, nil)
	repo.On("FindEntriesByTransactionID", mock.Anything, int64(7)).Return(entries, nil)
	repo.On("DeleteTransaction", mock.Anything, int64(7), mock.Anything).Return(nil)

	require.NoError(t, svc.DeleteTransaction(ctx, 7))
	cash, _ := registry.GetByID(1)
	assert.True(t, cash.CurrentBalance.IsZero())

	repo.On("FindTransactionByID", mock.Anything, int64(30)).
		Return(&domain.Transaction{TransactionID: 30, Status: domain.StatusPosted}, nil)
	err := svc.DeleteTransaction(ctx, 30)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	repo.AssertNotCalled(t, "DeleteTransaction", mock.Anything, int64(30), mock.Anything)
}

func TestGetTransaction_PopulatesEntries(t *testing.T) {
	repo := new(mockTransactionRepo)
	svc := NewLedgerService(repo, newTestRegistry())

	original, entries := postedOriginal()
	repo.On("FindTransactionByID", mock.Anything, int64(7)).Return(original, nil)
	repo.On("FindEntriesByTransactionID", mock.Anything, int64(7)).Return(entries, nil)

	txn, err := svc.GetTransaction(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, txn.Entries, 2)
}

func TestGetTransaction_NotFound(t *testing.T) {
	repo := new(mockTransactionRepo)
	svc := NewLedgerService(repo, newTestRegistry())

	repo.On("FindTransactionByID", mock.Anything, int64(404)).
		Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetTransaction(context.Background(), 404)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
