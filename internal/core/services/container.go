package services

import (
	"github.com/corebooks/bookkeeping_backend/internal/core/ledger"
	portsrepo "github.com/corebooks/bookkeeping_backend/internal/core/ports/repositories"
	portssvc "github.com/corebooks/bookkeeping_backend/internal/core/ports/services"
)

// NewServiceContainer wires the services over a shared account registry.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	registry := ledger.NewAccountRegistry()
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo, registry),
		Ledger:  NewLedgerService(repos.TransactionRepo, registry),
	}
}
