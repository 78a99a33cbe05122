package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/core/services"
	"github.com/quillbooks/quillbooks_backend/internal/repositories/memory"
	"github.com/quillbooks/quillbooks_backend/internal/utils/accounting"
)

// reportingFixture wires the reporting stack onto the in-memory store so the
// reports are exercised against real posting semantics instead of mocks.
type reportingFixture struct {
	store     *memory.Store
	accounts  map[string]domain.Account
	reporting portssvc.ReportingSvc
	equation  portssvc.EquationSvc
}

func newReportingFixture(t *testing.T) *reportingFixture {
	t.Helper()
	store := memory.NewStore()
	equation := services.NewEquationService(store, store)
	return &reportingFixture{
		store:     store,
		accounts:  map[string]domain.Account{},
		reporting: services.NewReportingService(store, store, equation),
		equation:  equation,
	}
}

func (f *reportingFixture) addAccount(t *testing.T, id, code string, accountType domain.AccountType, opts ...func(*domain.Account)) {
	t.Helper()
	account := domain.Account{
		AccountID:   id,
		Code:        code,
		Name:        code + " " + id,
		AccountType: accountType,
		IsActive:    true,
	}
	for _, opt := range opts {
		opt(&account)
	}
	require.NoError(t, f.store.SaveAccount(context.Background(), account))
	f.accounts[id] = account
}

func asCash(a *domain.Account)       { a.IsCash = true }
func asCurrent(a *domain.Account)    { a.Classification = domain.ClassificationCurrent }
func asNonCurrent(a *domain.Account) { a.Classification = domain.ClassificationNonCurrent }

func (f *reportingFixture) post(t *testing.T, timestamp time.Time, lines ...domain.Line) {
	t.Helper()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Description:   "fixture entry",
		Timestamp:     timestamp,
		Status:        domain.Posted,
		Lines:         lines,
	}
	result := accounting.Validate(txn, f.accounts)
	require.True(t, result.Valid, "fixture transaction invalid: %v", result.Violations)
	require.NoError(t, f.store.PostTransaction(context.Background(), txn, accounting.BalanceChanges(txn, f.accounts)))
}

func dLine(accountID, amount string) domain.Line {
	return domain.Line{AccountID: accountID, Side: domain.Debit, Amount: domain.MustParseAmount(amount)}
}

func cLine(accountID, amount string) domain.Line {
	return domain.Line{AccountID: accountID, Side: domain.Credit, Amount: domain.MustParseAmount(amount)}
}

// standardBooks seeds a small company: capital contribution, a loan, a sale
// and a rent payment.
func (f *reportingFixture) standardBooks(t *testing.T, base time.Time) {
	f.addAccount(t, "cash", "1000", domain.Asset, asCash, asCurrent)
	f.addAccount(t, "equipment", "1500", domain.Asset, asNonCurrent)
	f.addAccount(t, "loan", "2000", domain.Liability, asNonCurrent)
	f.addAccount(t, "capital", "3000", domain.Equity)
	f.addAccount(t, "sales", "4000", domain.Income)
	f.addAccount(t, "rent", "5000", domain.Expense)

	f.post(t, base, dLine("cash", "5000.00"), cLine("capital", "5000.00"))
	f.post(t, base.Add(time.Hour), dLine("equipment", "2000.00"), cLine("loan", "2000.00"))
	f.post(t, base.Add(2*time.Hour), dLine("cash", "1000.00"), cLine("sales", "1000.00"))
	f.post(t, base.Add(3*time.Hour), dLine("rent", "750.00"), cLine("cash", "750.00"))
}

func TestTrialBalance(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	report, err := f.reporting.TrialBalance(ctx, base.Add(4*time.Hour))
	require.NoError(t, err)

	assert.True(t, report.Balanced)
	assert.Equal(t, report.TotalDebits.String(), report.TotalCredits.String())
	assert.Equal(t, "8000.00", report.TotalDebits.String())
	require.Len(t, report.Rows, 6)

	// Rows come back in chart order; cash leads with its debit balance.
	assert.Equal(t, "1000", report.Rows[0].Code)
	assert.Equal(t, "5250.00", report.Rows[0].DebitBalance.String())
	assert.True(t, report.Rows[0].CreditBalance.IsZero())
}

func TestTrialBalance_AsOfExcludesLaterActivity(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	// Before the rent payment, cash still holds the full 6000.
	report, err := f.reporting.TrialBalance(ctx, base.Add(2*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.True(t, report.Balanced)
	assert.Equal(t, "6000.00", report.Rows[0].DebitBalance.String())
}

func TestBalanceSheet(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	report, err := f.reporting.BalanceSheet(ctx, base.Add(4*time.Hour), nil)
	require.NoError(t, err)

	assert.Equal(t, "7250.00", report.TotalAssets.String())
	assert.Equal(t, "2000.00", report.TotalLiabilities.String())
	// Equity: 5000 capital + 250 earnings (1000 sales - 750 rent).
	assert.Equal(t, "5250.00", report.TotalEquity.String())
	assert.Equal(t, "250.00", report.RetainedEarnings.String())
	assert.True(t, report.CurrentPeriodEarnings.IsZero())
	assert.True(t, report.Balanced)
	assert.True(t, report.Discrepancy.IsZero())

	assert.Equal(t, "5250.00", report.CurrentAssets.Total.String())
	assert.Equal(t, "2000.00", report.NonCurrentAssets.Total.String())
	assert.Empty(t, report.UncategorizedAssets.Accounts)
	assert.Equal(t, "2000.00", report.NonCurrentLiabilities.Total.String())
}

func TestBalanceSheet_PeriodStartSplitsEarnings(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	// Everything after the loan purchase counts as the current period.
	periodStart := base.Add(90 * time.Minute)
	report, err := f.reporting.BalanceSheet(ctx, base.Add(4*time.Hour), &periodStart)
	require.NoError(t, err)

	assert.Equal(t, "250.00", report.CurrentPeriodEarnings.String())
	assert.True(t, report.RetainedEarnings.IsZero())
	assert.True(t, report.Balanced)
}

func TestIncomeStatement(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	report, err := f.reporting.IncomeStatement(ctx, base, base.Add(4*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "1000.00", report.TotalIncome.String())
	assert.Equal(t, "750.00", report.TotalExpenses.String())
	assert.Equal(t, "250.00", report.NetIncome.String())
	require.Len(t, report.IncomeRows, 1)
	require.Len(t, report.ExpenseRows, 1)
	assert.Equal(t, "1000.00", report.IncomeRows[0].Balance.String())
}

func TestIncomeStatement_ZeroActivityAccountsAreListed(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	f.addAccount(t, "sales", "4000", domain.Income)
	f.addAccount(t, "rent", "5000", domain.Expense)

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	report, err := f.reporting.IncomeStatement(ctx, from, from.AddDate(0, 1, 0))
	require.NoError(t, err)

	require.Len(t, report.IncomeRows, 1)
	assert.True(t, report.IncomeRows[0].Balance.IsZero())
	assert.True(t, report.NetIncome.IsZero())
}

func TestGeneralLedger_SingleAccount(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	accountID := "cash"
	report, err := f.reporting.GeneralLedger(ctx, &accountID, domain.DateRange{})
	require.NoError(t, err)

	require.Len(t, report.Accounts, 1)
	entry := report.Accounts[0]
	require.Len(t, entry.Lines, 3)
	assert.Equal(t, "5000.00", entry.Lines[0].Running.String())
	assert.Equal(t, "6000.00", entry.Lines[1].Running.String())
	assert.Equal(t, "5250.00", entry.Lines[2].Running.String())
	assert.Equal(t, "5250.00", entry.EndingBalance.String())
	assert.True(t, entry.OpeningBalance.IsZero())

	// The ending balance must agree with the balance query.
	balance, err := f.store.BalanceOf(ctx, "cash", nil)
	require.NoError(t, err)
	assert.True(t, entry.EndingBalance.Equal(balance))
}

func TestGeneralLedger_RangeComputesOpeningBalance(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	accountID := "cash"
	from := base.Add(2 * time.Hour)
	report, err := f.reporting.GeneralLedger(ctx, &accountID, domain.DateRange{From: &from})
	require.NoError(t, err)

	entry := report.Accounts[0]
	require.Len(t, entry.Lines, 2)
	// Opening balance covers the capital contribution before the range.
	assert.Equal(t, "5000.00", entry.OpeningBalance.String())
	assert.Equal(t, "5250.00", entry.EndingBalance.String())
}

func TestGeneralLedger_EmptyAccountSerializesWithEmptyLines(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	f.addAccount(t, "cash", "1000", domain.Asset, asCash)

	accountID := "cash"
	report, err := f.reporting.GeneralLedger(ctx, &accountID, domain.DateRange{})
	require.NoError(t, err)

	raw, err := json.Marshal(report.Accounts[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"transactions":[]`)
	assert.Contains(t, string(raw), `"endingBalance":"0.00"`)
}

func TestGeneralLedger_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)

	accountID := "ghost"
	_, err := f.reporting.GeneralLedger(ctx, &accountID, domain.DateRange{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCashFlow(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	report, err := f.reporting.CashFlow(ctx, base, nil)
	require.NoError(t, err)

	// Capital contribution and the sale flow in, rent flows out. The loan
	// bought equipment directly and never touched cash.
	assert.Equal(t, "6000.00", report.TotalInflows.String())
	assert.Equal(t, "750.00", report.TotalOutflow.String())
	assert.Equal(t, "5250.00", report.NetCashFlow.String())
	require.Len(t, report.Entries, 3)
	assert.Equal(t, domain.Inflow, report.Entries[0].Direction)
	assert.Equal(t, domain.Outflow, report.Entries[2].Direction)
}

func TestCashFlow_NoCashAccountsFailsPrecondition(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	f.addAccount(t, "sales", "4000", domain.Income)

	_, err := f.reporting.CashFlow(ctx, time.Now().UTC().AddDate(0, -1, 0), nil)
	assert.ErrorIs(t, err, apperrors.ErrReportPrecondition)
}

func TestEquationCheck(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	status, err := f.equation.Check(ctx)
	require.NoError(t, err)

	assert.True(t, status.Balanced)
	assert.Equal(t, "7250.00", status.TotalAssets.String())
	assert.Equal(t, "2000.00", status.TotalLiabilities.String())
	assert.Equal(t, "5250.00", status.TotalEquity.String())
	assert.Equal(t, "250.00", status.CurrentEarnings.String())
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	// Dashboard reports year-to-date, so the fixture posts in the current year.
	base := time.Date(time.Now().UTC().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	f.standardBooks(t, base)

	report, err := f.reporting.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, "7250.00", report.TotalAssets.String())
	assert.Equal(t, "2000.00", report.TotalLiabilities.String())
	assert.Equal(t, "5250.00", report.NetWorth.String())
	assert.Equal(t, "250.00", report.YTDNetIncome.String())
	assert.True(t, report.BooksBalanced)
	assert.True(t, report.SystemHealth.TrialBalanceBalanced)
	assert.True(t, report.SystemHealth.BalanceSheetBalanced)
	assert.Equal(t, 6, report.SystemHealth.TotalAccounts)
}

func TestReports_InactiveAccountsExcluded(t *testing.T) {
	ctx := context.Background()
	f := newReportingFixture(t)
	f.addAccount(t, "cash", "1000", domain.Asset, asCash)
	f.addAccount(t, "old", "1900", domain.Asset)

	require.NoError(t, f.store.DeactivateAccount(ctx, "old", "admin", time.Now().UTC()))

	report, err := f.reporting.TrialBalance(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "cash", report.Rows[0].AccountID)
}
