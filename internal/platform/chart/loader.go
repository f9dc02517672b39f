package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/corebooks/bookkeeping_backend/internal/apperrors"
	portssvc "github.com/corebooks/bookkeeping_backend/internal/core/ports/services"
	"github.com/corebooks/bookkeeping_backend/internal/dto"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SeedAccount is one row of a chart-of-accounts seed file. Parent accounts
// must appear before their children.
type SeedAccount struct {
	Code              string `yaml:"code" validate:"required,max=20"`
	Name              string `yaml:"name" validate:"required,max=100"`
	Type              string `yaml:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentCode        string `yaml:"parent_code,omitempty"`
	Description       string `yaml:"description,omitempty"`
	System            bool   `yaml:"system,omitempty"`
	AllowTransactions *bool  `yaml:"allow_transactions,omitempty"`
}

// ChartFile is the top-level shape of a chart seed file.
type ChartFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// Load parses and validates a chart seed file.
func Load(path string) (*ChartFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse parses and validates chart seed file content.
func Parse(raw []byte) (*ChartFile, error) {
	var file ChartFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse chart file: %w", err)
	}
	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("chart file contains no accounts")
	}

	validate := validator.New()
	seen := make(map[string]bool, len(file.Accounts))
	for i, account := range file.Accounts {
		if err := validate.Struct(account); err != nil {
			return nil, fmt.Errorf("chart account %d (%s): %w", i, account.Code, err)
		}
		if seen[account.Code] {
			return nil, fmt.Errorf("chart account %d: duplicate code %s", i, account.Code)
		}
		// Parents must precede children so path and level resolve in one pass.
		if account.ParentCode != "" && !seen[account.ParentCode] {
			return nil, fmt.Errorf("chart account %d (%s): parent %s not defined earlier in the file", i, account.Code, account.ParentCode)
		}
		seen[account.Code] = true
	}
	return &file, nil
}

// Seed creates every account of the chart that does not exist yet. Existing
// codes are skipped so seeding is idempotent. Returns the number created.
func Seed(ctx context.Context, file *ChartFile, accountSvc portssvc.AccountSvcFacade, userID string) (int, error) {
	logger := slog.Default()

	created := 0
	for _, seed := range file.Accounts {
		req := dto.CreateAccountRequest{
			Code:              seed.Code,
			Name:              seed.Name,
			AccountType:       seed.Type,
			ParentCode:        seed.ParentCode,
			Description:       seed.Description,
			IsSystem:          seed.System,
			AllowTransactions: seed.AllowTransactions,
		}
		if _, err := accountSvc.CreateAccount(ctx, req, userID); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			return created, fmt.Errorf("failed to seed account %s: %w", seed.Code, err)
		}
		created++
	}

	logger.Info("Chart of accounts seeded", slog.Int("created", created), slog.Int("total", len(file.Accounts)))
	return created, nil
}
