package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/corebooks/bookkeeping_backend/internal/core/domain"
	"github.com/corebooks/bookkeeping_backend/internal/core/ledger"
	"github.com/corebooks/bookkeeping_backend/internal/dto"
	"github.com/corebooks/bookkeeping_backend/internal/platform/chart"
	"github.com/corebooks/bookkeeping_backend/internal/platform/config"
	"github.com/shopspring/decimal"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// MigrateCmd applies all pending up migrations.
type MigrateCmd struct{}

func (cmd *MigrateCmd) Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Use a standard sql.DB via the pgx stdlib driver for golang-migrate.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer migrationDB.Close()

	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	if err == migrate.ErrNoChange {
		fmt.Println("No new migrations to apply.")
	} else {
		fmt.Println("Database migrations applied successfully.")
	}
	return nil
}

// SeedCmd seeds the chart of accounts from a YAML file.
type SeedCmd struct {
	Chart string `help:"Path to a chart of accounts YAML file. Falls back to CHART_FILE, then the bundled default."`
}

func (cmd *SeedCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	path := cmd.Chart
	if path == "" {
		path = app.cfg.ChartFile
	}
	if path == "" {
		path = "configs/default_chart.yaml"
	}

	file, err := chart.Load(path)
	if err != nil {
		return err
	}

	created, err := chart.Seed(app.ctx, file, app.services.Account, app.user)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d of %d accounts.\n", created, len(file.Accounts))
	return nil
}

// AccountsCmd groups chart-of-accounts subcommands.
type AccountsCmd struct {
	List       AccountsListCmd       `cmd:"" default:"1" help:"List accounts with balances."`
	Create     AccountsCreateCmd     `cmd:"" help:"Create an account."`
	Deactivate AccountsDeactivateCmd `cmd:"" help:"Deactivate an account."`
	Delete     AccountsDeleteCmd     `cmd:"" help:"Delete an account without entries."`
}

type AccountsListCmd struct {
	Limit  int `help:"Maximum number of accounts to list." default:"100"`
	Offset int `help:"Offset into the account list." default:"0"`
}

func (cmd *AccountsListCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	accounts, err := app.services.Account.ListAccounts(app.ctx, cmd.Limit, cmd.Offset)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tTYPE\tNORMAL\tACTIVE\tBALANCE")
	for _, a := range accounts {
		indent := strings.Repeat("  ", a.Level)
		fmt.Fprintf(w, "%d\t%s\t%s%s\t%s\t%s\t%t\t%s\n",
			a.AccountID, a.Code, indent, a.Name, a.AccountType, a.NormalBalance, a.IsActive, a.CurrentBalance.StringFixed(2))
	}
	return w.Flush()
}

type AccountsCreateCmd struct {
	Code        string `arg:"" help:"Unique account code."`
	Name        string `arg:"" help:"Account name."`
	Type        string `arg:"" help:"Account type (ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE)."`
	Parent      string `help:"Parent account code."`
	Description string `help:"Account description."`
	NoPostings  bool   `help:"Disallow direct postings to this account."`
}

func (cmd *AccountsCreateCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	allowTransactions := !cmd.NoPostings
	account, err := app.services.Account.CreateAccount(app.ctx, dto.CreateAccountRequest{
		Code:              cmd.Code,
		Name:              cmd.Name,
		AccountType:       strings.ToUpper(cmd.Type),
		ParentCode:        cmd.Parent,
		Description:       cmd.Description,
		AllowTransactions: &allowTransactions,
	}, app.user)
	if err != nil {
		return err
	}

	fmt.Printf("Created account %d (%s %s, normal %s).\n", account.AccountID, account.Code, account.Name, account.NormalBalance)
	return nil
}

type AccountsDeactivateCmd struct {
	ID int64 `arg:"" help:"Account id."`
}

func (cmd *AccountsDeactivateCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.services.Account.DeactivateAccount(app.ctx, cmd.ID, app.user); err != nil {
		return err
	}
	fmt.Printf("Deactivated account %d.\n", cmd.ID)
	return nil
}

type AccountsDeleteCmd struct {
	ID int64 `arg:"" help:"Account id."`
}

func (cmd *AccountsDeleteCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.services.Account.DeleteAccount(app.ctx, cmd.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted account %d.\n", cmd.ID)
	return nil
}

// CreateCmd creates a draft transaction from repeated --entry flags.
type CreateCmd struct {
	Description string    `help:"Transaction description." required:""`
	Date        time.Time `help:"Transaction date (RFC3339 or YYYY-MM-DD)." format:"2006-01-02"`
	Currency    string    `help:"ISO 4217 currency code." default:""`
	Reference   string    `help:"External reference."`
	Type        string    `help:"Transaction type." default:"JOURNAL" enum:"JOURNAL,PAYMENT,RECEIPT,ADJUSTMENT,TRANSFER,ACCRUAL,DEPRECIATION"`
	Entry       []string  `help:"Entry as CODE:D|C:AMOUNT, e.g. 1000:D:150.00. Repeatable." required:""`
	Post        bool      `help:"Post the transaction immediately after creating it."`
}

func (cmd *CreateCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	date := cmd.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	currency := cmd.Currency
	if currency == "" {
		currency = app.cfg.DefaultCurrency
	}

	builder := ledger.NewTransactionBuilder().
		SetDescription(cmd.Description).
		SetDate(date).
		SetCurrency(currency).
		SetReference(cmd.Reference).
		SetType(domain.TransactionType(cmd.Type))

	for _, raw := range cmd.Entry {
		code, side, amount, err := parseEntry(raw)
		if err != nil {
			return err
		}
		account, err := app.services.Account.GetAccountByCode(app.ctx, code)
		if err != nil {
			return fmt.Errorf("entry %q: %w", raw, err)
		}
		if side == "D" {
			builder.Debit(account.AccountID, amount)
		} else {
			builder.Credit(account.AccountID, amount)
		}
	}

	data, err := builder.Build()
	if err != nil {
		return err
	}

	txn, err := app.services.Ledger.CreateTransaction(app.ctx, data, app.user)
	if err != nil {
		return err
	}
	fmt.Printf("Created transaction %d (%s) with %d entries, total %s %s.\n",
		txn.TransactionID, txn.TransactionNumber, len(txn.Entries), txn.TotalAmount.StringFixed(2), txn.CurrencyCode)

	if cmd.Post {
		if _, err := app.services.Ledger.PostTransaction(app.ctx, txn.TransactionID, app.user); err != nil {
			return err
		}
		fmt.Printf("Posted transaction %d.\n", txn.TransactionID)
	}
	return nil
}

// parseEntry splits CODE:D|C:AMOUNT.
func parseEntry(raw string) (code string, side string, amount decimal.Decimal, err error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return "", "", decimal.Zero, fmt.Errorf("invalid entry %q, expected CODE:D|C:AMOUNT", raw)
	}
	code = parts[0]

	switch strings.ToUpper(parts[1]) {
	case "D", "DR", "DEBIT":
		side = "D"
	case "C", "CR", "CREDIT":
		side = "C"
	default:
		return "", "", decimal.Zero, fmt.Errorf("invalid entry side %q in %q, expected D or C", parts[1], raw)
	}

	amount, err = decimal.NewFromString(parts[2])
	if err != nil {
		return "", "", decimal.Zero, fmt.Errorf("invalid entry amount %q in %q: %w", parts[2], raw, err)
	}
	return code, side, amount, nil
}

// PostCmd posts a draft transaction.
type PostCmd struct {
	ID int64 `arg:"" help:"Transaction id."`
}

func (cmd *PostCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	txn, err := app.services.Ledger.PostTransaction(app.ctx, cmd.ID, app.user)
	if err != nil {
		return err
	}
	fmt.Printf("Posted transaction %d (%s).\n", txn.TransactionID, txn.TransactionNumber)
	return nil
}

// ReverseCmd reverses a posted transaction.
type ReverseCmd struct {
	ID     int64  `arg:"" help:"Transaction id."`
	Reason string `help:"Reason for the reversal." required:""`
}

func (cmd *ReverseCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	reversing, err := app.services.Ledger.ReverseTransaction(app.ctx, cmd.ID, app.user, cmd.Reason)
	if err != nil {
		return err
	}
	fmt.Printf("Reversed transaction %d with %d (%s).\n", cmd.ID, reversing.TransactionID, reversing.TransactionNumber)
	return nil
}

// VoidCmd voids a posted transaction.
type VoidCmd struct {
	ID int64 `arg:"" help:"Transaction id."`
}

func (cmd *VoidCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.services.Ledger.VoidTransaction(app.ctx, cmd.ID, app.user); err != nil {
		return err
	}
	fmt.Printf("Voided transaction %d.\n", cmd.ID)
	return nil
}

// DeleteCmd deletes a draft transaction.
type DeleteCmd struct {
	ID int64 `arg:"" help:"Transaction id."`
}

func (cmd *DeleteCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.services.Ledger.DeleteTransaction(app.ctx, cmd.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted transaction %d.\n", cmd.ID)
	return nil
}

// ShowCmd prints a transaction with its entries.
type ShowCmd struct {
	ID int64 `arg:"" help:"Transaction id."`
}

func (cmd *ShowCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	txn, err := app.services.Ledger.GetTransaction(app.ctx, cmd.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Transaction %d (%s)\n", txn.TransactionID, txn.TransactionNumber)
	fmt.Printf("  Description: %s\n", txn.Description)
	fmt.Printf("  Date:        %s\n", txn.TransactionDate.Format("2006-01-02"))
	fmt.Printf("  Status:      %s\n", txn.Status)
	fmt.Printf("  Total:       %s %s\n", txn.TotalAmount.StringFixed(2), txn.CurrencyCode)
	if txn.ReversedTransactionID != nil {
		fmt.Printf("  Reverses:    %d\n", *txn.ReversedTransactionID)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  LINE\tACCOUNT\tDEBIT\tCREDIT")
	for _, e := range txn.Entries {
		fmt.Fprintf(w, "  %d\t%d\t%s\t%s\n", e.LineNumber, e.AccountID, e.DebitAmount.StringFixed(2), e.CreditAmount.StringFixed(2))
	}
	return w.Flush()
}

// ListCmd lists transaction headers, newest first.
type ListCmd struct {
	Limit int    `help:"Maximum number of transactions to list." default:"20"`
	Token string `help:"Pagination token from a previous call."`
}

func (cmd *ListCmd) Run() error {
	app, err := bootstrap(context.Background(), cli.User)
	if err != nil {
		return err
	}
	defer app.Close()

	params := dto.ListTransactionsParams{Limit: cmd.Limit}
	if cmd.Token != "" {
		params.NextToken = &cmd.Token
	}

	resp, err := app.services.Ledger.ListTransactions(app.ctx, params)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tDATE\tSTATUS\tTOTAL\tDESCRIPTION")
	for _, t := range resp.Transactions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.TransactionID, t.TransactionNumber, t.TransactionDate.Format("2006-01-02"), t.Status, t.TotalAmount, t.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if resp.NextToken != nil {
		fmt.Printf("Next page: --token %s\n", *resp.NextToken)
	}
	return nil
}
