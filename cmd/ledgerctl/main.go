package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	portssvc "github.com/corebooks/bookkeeping_backend/internal/core/ports/services"
	"github.com/corebooks/bookkeeping_backend/internal/core/services"
	"github.com/corebooks/bookkeeping_backend/internal/platform/config"
	"github.com/corebooks/bookkeeping_backend/internal/repositories/database/pgsql"
	"github.com/corebooks/bookkeeping_backend/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	cli struct {
		Version kong.VersionFlag `help:"Show version information"`
		User    string           `help:"User recorded in audit fields." default:"ledgerctl" env:"LEDGER_USER"`
		Commands
	}
)

// Commands is the top-level command tree.
type Commands struct {
	Migrate  MigrateCmd  `cmd:"" help:"Apply pending database migrations."`
	Seed     SeedCmd     `cmd:"" help:"Seed the chart of accounts from a YAML file."`
	Accounts AccountsCmd `cmd:"" help:"Manage the chart of accounts."`
	Create   CreateCmd   `cmd:"" help:"Create a draft transaction."`
	Post     PostCmd     `cmd:"" help:"Post a draft transaction."`
	Reverse  ReverseCmd  `cmd:"" help:"Reverse a posted transaction."`
	Void     VoidCmd     `cmd:"" help:"Void a posted transaction."`
	Delete   DeleteCmd   `cmd:"" help:"Delete a draft transaction."`
	Show     ShowCmd     `cmd:"" help:"Show a transaction with its entries."`
	List     ListCmd     `cmd:"" help:"List transactions."`
}

// appContext bundles everything a command needs after bootstrap.
type appContext struct {
	ctx      context.Context
	cfg      *config.Config
	pool     *pgxpool.Pool
	services *portssvc.ServiceContainer
	user     string
}

func (a *appContext) Close() {
	database.ClosePgxPool(a.pool)
}

// bootstrap connects to the database, wires the repositories and services and
// hydrates the account registry.
func bootstrap(ctx context.Context, user string) (*appContext, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	repos := pgsql.NewRepositoryProvider(pool)
	container := services.NewServiceContainer(&repos)

	if _, err := container.Account.LoadRegistry(ctx); err != nil {
		database.ClosePgxPool(pool)
		return nil, fmt.Errorf("failed to load account registry: %w", err)
	}

	return &appContext{
		ctx:      ctx,
		cfg:      cfg,
		pool:     pool,
		services: container,
		user:     user,
	}, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	kctx := kong.Parse(&cli,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("ledgerctl"),
		kong.Description("A double-entry bookkeeping ledger."),
		kong.UsageOnError(),
	)

	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
