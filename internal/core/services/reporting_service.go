package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portsrepo "github.com/quillbooks/quillbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/middleware"
)

// reportingService derives every financial report from ledger store state.
// All methods are read-only projections; the single mutation path is
// LedgerSvc.PostTransaction. Each report carries its own balance check even
// though the equation monitor asserts the same globally.
type reportingService struct {
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
	equationSvc portssvc.EquationSvc
}

// NewReportingService creates a new ReportingSvc.
func NewReportingService(accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository, equationSvc portssvc.EquationSvc) portssvc.ReportingSvc {
	return &reportingService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		equationSvc: equationSvc,
	}
}

var _ portssvc.ReportingSvc = (*reportingService)(nil)

// TrialBalance lists every active account's balance in its debit or credit
// column as of the given instant. A balance that has swung past zero shows
// positive in the opposite column, so totals still prove the ledger.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	accounts, err := s.activeAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		AsOf: asOf,
		Rows: make([]domain.TrialBalanceRow, 0, len(accounts)),
	}
	for _, acc := range accounts {
		balance, err := s.ledgerRepo.BalanceOf(ctx, acc.AccountID, &asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance of %s: %w", acc.AccountID, err)
		}

		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			Name:        acc.Name,
			AccountType: acc.AccountType,
		}
		debitSide := acc.NormalSide() == domain.Debit
		if balance.IsNegative() {
			balance = balance.Neg()
			debitSide = !debitSide
		}
		if debitSide {
			row.DebitBalance = balance
		} else {
			row.CreditBalance = balance
		}
		report.Rows = append(report.Rows, row)
		report.TotalDebits = report.TotalDebits.Add(row.DebitBalance)
		report.TotalCredits = report.TotalCredits.Add(row.CreditBalance)
	}

	report.Balanced = report.TotalDebits.Equal(report.TotalCredits)
	if !report.Balanced {
		middleware.GetLoggerFromCtx(ctx).Error("Trial balance does not balance",
			slog.String("total_debits", report.TotalDebits.String()),
			slog.String("total_credits", report.TotalCredits.String()))
	}
	return report, nil
}

// BalanceSheet partitions assets and liabilities by classification and adds
// derived earnings to the equity section. periodStart, when given, splits
// earnings into retained (before) and current-period (since); there is no
// implicit fiscal-year convention.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time, periodStart *time.Time) (*domain.BalanceSheetReport, error) {
	accounts, err := s.activeAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.BalanceSheetReport{AsOf: asOf}
	totalEarnings := domain.ZeroAmount

	for _, acc := range accounts {
		balance, err := s.ledgerRepo.BalanceOf(ctx, acc.AccountID, &asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance of %s: %w", acc.AccountID, err)
		}
		row := domain.AccountBalance{
			AccountID: acc.AccountID,
			Code:      acc.Code,
			Name:      acc.Name,
			Balance:   balance,
		}

		switch acc.AccountType {
		case domain.Asset:
			section := assetSection(report, acc.Classification)
			section.Accounts = append(section.Accounts, row)
			section.Total = section.Total.Add(balance)
			report.TotalAssets = report.TotalAssets.Add(balance)
		case domain.Liability:
			section := liabilitySection(report, acc.Classification)
			section.Accounts = append(section.Accounts, row)
			section.Total = section.Total.Add(balance)
			report.TotalLiabilities = report.TotalLiabilities.Add(balance)
		case domain.Equity:
			report.EquityAccounts = append(report.EquityAccounts, row)
			report.TotalEquity = report.TotalEquity.Add(balance)
		case domain.Income:
			totalEarnings = totalEarnings.Add(balance)
		case domain.Expense:
			totalEarnings = totalEarnings.Sub(balance)
		}
	}

	if periodStart != nil {
		period, err := s.earningsWithin(ctx, domain.Between(*periodStart, asOf))
		if err != nil {
			return nil, err
		}
		report.CurrentPeriodEarnings = period
		report.RetainedEarnings = totalEarnings.Sub(period)
	} else {
		report.RetainedEarnings = totalEarnings
	}
	report.TotalEquity = report.TotalEquity.Add(totalEarnings)

	// Fail closed: an unbalanced sheet reports its discrepancy instead of
	// hiding it.
	rhs := report.TotalLiabilities.Add(report.TotalEquity)
	report.Discrepancy = report.TotalAssets.Sub(rhs)
	report.Balanced = report.Discrepancy.IsZero()
	if !report.Balanced {
		middleware.GetLoggerFromCtx(ctx).Error("Balance sheet does not balance",
			slog.String("discrepancy", report.Discrepancy.String()))
	}
	return report, nil
}

// IncomeStatement reports income and expense activity over a date range.
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error) {
	accounts, err := s.activeAccounts(ctx)
	if err != nil {
		return nil, err
	}
	txns, err := s.ledgerRepo.AllPostedTransactions(ctx, domain.Between(from, to))
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	activity := make(map[string]domain.Amount)
	byID := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.AccountID] = acc
	}
	for _, txn := range txns {
		for _, line := range txn.Lines {
			acc, ok := byID[line.AccountID]
			if !ok || (acc.AccountType != domain.Income && acc.AccountType != domain.Expense) {
				continue
			}
			activity[acc.AccountID] = activity[acc.AccountID].Add(domain.SignedDelta(line, acc.AccountType))
		}
	}

	report := &domain.IncomeStatementReport{From: from, To: to}
	for _, acc := range accounts {
		row := domain.AccountBalance{
			AccountID: acc.AccountID,
			Code:      acc.Code,
			Name:      acc.Name,
			Balance:   activity[acc.AccountID],
		}
		switch acc.AccountType {
		case domain.Income:
			report.IncomeRows = append(report.IncomeRows, row)
			report.TotalIncome = report.TotalIncome.Add(row.Balance)
		case domain.Expense:
			report.ExpenseRows = append(report.ExpenseRows, row)
			report.TotalExpenses = report.TotalExpenses.Add(row.Balance)
		}
	}
	report.NetIncome = report.TotalIncome.Sub(report.TotalExpenses)
	return report, nil
}

// GeneralLedger returns the ordered line history of the selected account, or
// of every active account, with the running balance after each line.
// Accounts without activity in the range are reported with an empty line
// list and a zero balance, never omitted.
func (s *reportingService) GeneralLedger(ctx context.Context, accountID *string, r domain.DateRange) (*domain.GeneralLedgerReport, error) {
	var selected []domain.Account
	if accountID != nil {
		account, err := s.accountRepo.FindAccountByID(ctx, *accountID)
		if err != nil {
			return nil, err
		}
		selected = []domain.Account{*account}
	} else {
		accounts, err := s.activeAccounts(ctx)
		if err != nil {
			return nil, err
		}
		selected = accounts
	}

	report := &domain.GeneralLedgerReport{
		From:     r.From,
		To:       r.To,
		Accounts: make([]domain.GeneralLedgerAccount, 0, len(selected)),
	}
	for _, acc := range selected {
		lines, err := s.ledgerRepo.TransactionsFor(ctx, acc.AccountID, r)
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger lines for %s: %w", acc.AccountID, err)
		}

		entry := domain.GeneralLedgerAccount{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			Name:        acc.Name,
			AccountType: acc.AccountType,
			Lines:       lines,
		}
		if len(lines) > 0 {
			entry.EndingBalance = lines[len(lines)-1].Running
			opening := entry.EndingBalance
			for _, l := range lines {
				opening = opening.Sub(domain.SignedDelta(domain.Line{Side: l.Side, Amount: l.Amount}, acc.AccountType))
			}
			entry.OpeningBalance = opening
		}
		report.Accounts = append(report.Accounts, entry)
	}
	return report, nil
}

// CashFlow classifies every movement on a cash-classified account as an
// inflow (debit) or outflow (credit). Requesting it with no cash-classified
// accounts is a report precondition failure, not an empty success.
func (s *reportingService) CashFlow(ctx context.Context, from time.Time, to *time.Time) (*domain.CashFlowReport, error) {
	accounts, err := s.activeAccounts(ctx)
	if err != nil {
		return nil, err
	}
	cash := make(map[string]struct{})
	for _, acc := range accounts {
		if acc.IsCash {
			cash[acc.AccountID] = struct{}{}
		}
	}
	if len(cash) == 0 {
		return nil, fmt.Errorf("%w: no accounts are classified as cash", apperrors.ErrReportPrecondition)
	}

	txns, err := s.ledgerRepo.AllPostedTransactions(ctx, domain.DateRange{From: &from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	report := &domain.CashFlowReport{From: from, To: to}
	for _, txn := range txns {
		for _, line := range txn.Lines {
			if _, ok := cash[line.AccountID]; !ok {
				continue
			}
			entry := domain.CashFlowEntry{
				TransactionID: txn.TransactionID,
				Timestamp:     txn.Timestamp,
				Description:   txn.Description,
				AccountID:     line.AccountID,
				Amount:        line.Amount,
			}
			if line.Side == domain.Debit {
				entry.Direction = domain.Inflow
				report.TotalInflows = report.TotalInflows.Add(line.Amount)
			} else {
				entry.Direction = domain.Outflow
				report.TotalOutflow = report.TotalOutflow.Add(line.Amount)
			}
			report.Entries = append(report.Entries, entry)
		}
	}
	report.NetCashFlow = report.TotalInflows.Sub(report.TotalOutflow)
	return report, nil
}

// Dashboard composes the other reports into key metrics plus a system-health
// block. It performs no computation of its own.
func (s *reportingService) Dashboard(ctx context.Context) (*domain.DashboardReport, error) {
	now := time.Now().UTC()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	equation, err := s.equationSvc.Check(ctx)
	if err != nil {
		return nil, err
	}
	trialBalance, err := s.TrialBalance(ctx, now)
	if err != nil {
		return nil, err
	}
	balanceSheet, err := s.BalanceSheet(ctx, now, &yearStart)
	if err != nil {
		return nil, err
	}
	incomeStatement, err := s.IncomeStatement(ctx, yearStart, now)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardReport{
		TotalAssets:      equation.TotalAssets,
		TotalLiabilities: equation.TotalLiabilities,
		NetWorth:         equation.TotalAssets.Sub(equation.TotalLiabilities),
		YTDNetIncome:     incomeStatement.NetIncome,
		BooksBalanced:    equation.Balanced,
		SystemHealth: domain.SystemHealth{
			TrialBalanceBalanced: trialBalance.Balanced,
			BalanceSheetBalanced: balanceSheet.Balanced,
			TotalAccounts:        len(trialBalance.Rows),
		},
	}, nil
}

// earningsWithin sums income minus expense activity over the range.
func (s *reportingService) earningsWithin(ctx context.Context, r domain.DateRange) (domain.Amount, error) {
	accounts, err := s.activeAccounts(ctx)
	if err != nil {
		return domain.ZeroAmount, err
	}
	byID := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.AccountID] = acc
	}

	txns, err := s.ledgerRepo.AllPostedTransactions(ctx, r)
	if err != nil {
		return domain.ZeroAmount, fmt.Errorf("failed to read transactions: %w", err)
	}

	earnings := domain.ZeroAmount
	for _, txn := range txns {
		for _, line := range txn.Lines {
			acc, ok := byID[line.AccountID]
			if !ok {
				continue
			}
			switch acc.AccountType {
			case domain.Income:
				earnings = earnings.Add(domain.SignedDelta(line, acc.AccountType))
			case domain.Expense:
				earnings = earnings.Sub(domain.SignedDelta(line, acc.AccountType))
			}
		}
	}
	return earnings, nil
}

// activeAccounts returns the active chart of accounts sorted by code.
func (s *reportingService) activeAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	active := accounts[:0:0]
	for _, acc := range accounts {
		if acc.IsActive {
			active = append(active, acc)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Code < active[j].Code })
	return active, nil
}

func assetSection(r *domain.BalanceSheetReport, c domain.AccountClassification) *domain.BalanceSheetSection {
	switch c {
	case domain.ClassificationCurrent:
		return &r.CurrentAssets
	case domain.ClassificationNonCurrent:
		return &r.NonCurrentAssets
	default:
		return &r.UncategorizedAssets
	}
}

func liabilitySection(r *domain.BalanceSheetReport, c domain.AccountClassification) *domain.BalanceSheetSection {
	switch c {
	case domain.ClassificationCurrent:
		return &r.CurrentLiabilities
	case domain.ClassificationNonCurrent:
		return &r.NonCurrentLiabilities
	default:
		return &r.UncategorizedLiabs
	}
}
