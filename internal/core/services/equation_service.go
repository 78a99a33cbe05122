package services

import (
	"context"
	"fmt"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portsrepo "github.com/quillbooks/quillbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
)

// equationService recomputes the accounting equation on every call. It holds
// no state of its own: it is the single real-time truth signal that the
// books balance globally, independent of any one report's internal check.
type equationService struct {
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
}

// NewEquationService creates a new EquationSvc.
func NewEquationService(accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.EquationSvc {
	return &equationService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.EquationSvc = (*equationService)(nil)

// Check sums balances across all active accounts grouped by type and proves
// Assets = Liabilities + Equity with exact comparison. Income and expense
// balances enter the equity side as current earnings, since no period close
// ever folds them into an equity account.
func (s *equationService) Check(ctx context.Context) (*domain.EquationStatus, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	balances, err := s.ledgerRepo.AllBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}

	totals := make(map[domain.AccountType]domain.Amount, len(domain.AccountTypes))
	for _, acc := range accounts {
		if !acc.IsActive {
			continue
		}
		totals[acc.AccountType] = totals[acc.AccountType].Add(balances[acc.AccountID])
	}

	earnings := totals[domain.Income].Sub(totals[domain.Expense])
	status := &domain.EquationStatus{
		TotalAssets:      totals[domain.Asset],
		TotalLiabilities: totals[domain.Liability],
		TotalEquity:      totals[domain.Equity].Add(earnings),
		CurrentEarnings:  earnings,
	}
	status.Balanced = status.TotalAssets.Equal(status.TotalLiabilities.Add(status.TotalEquity))
	return status, nil
}
