package domain

import "time"

// Every report carries its own balance check. The checks are redundant with
// the global accounting-equation monitor on purpose: a bug in one derivation
// path should be caught by the other.

// TrialBalanceRow places an account's balance in the debit or credit column
// according to its normal side. A balance that has swung past zero shows up
// as a positive value in the opposite column.
type TrialBalanceRow struct {
	AccountID     string      `json:"accountID"`
	Code          string      `json:"code"`
	Name          string      `json:"name"`
	AccountType   AccountType `json:"accountType"`
	DebitBalance  Amount      `json:"debitBalance"`
	CreditBalance Amount      `json:"creditBalance"`
}

// TrialBalanceReport lists every active account with its side balances.
type TrialBalanceReport struct {
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  Amount            `json:"totalDebits"`
	TotalCredits Amount            `json:"totalCredits"`
	Balanced     bool              `json:"balanced"`
}

// AccountBalance is an account together with its signed balance, used as a
// row in the balance sheet, income statement and equation reports.
type AccountBalance struct {
	AccountID string `json:"accountID"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Balance   Amount `json:"balance"`
}

// BalanceSheetSection groups accounts of one classification with a subtotal.
type BalanceSheetSection struct {
	Accounts []AccountBalance `json:"accounts"`
	Total    Amount           `json:"total"`
}

// BalanceSheetReport partitions assets and liabilities into current,
// non-current and uncategorized sections. Equity includes the named equity
// accounts plus derived earnings, split at the caller-supplied period start.
type BalanceSheetReport struct {
	AsOf                  time.Time           `json:"asOf"`
	CurrentAssets         BalanceSheetSection `json:"currentAssets"`
	NonCurrentAssets      BalanceSheetSection `json:"nonCurrentAssets"`
	UncategorizedAssets   BalanceSheetSection `json:"uncategorizedAssets"`
	CurrentLiabilities    BalanceSheetSection `json:"currentLiabilities"`
	NonCurrentLiabilities BalanceSheetSection `json:"nonCurrentLiabilities"`
	UncategorizedLiabs    BalanceSheetSection `json:"uncategorizedLiabilities"`
	EquityAccounts        []AccountBalance    `json:"equityAccounts"`
	RetainedEarnings      Amount              `json:"retainedEarnings"`      // Earnings before the period start
	CurrentPeriodEarnings Amount              `json:"currentPeriodEarnings"` // Earnings since the period start
	TotalAssets           Amount              `json:"totalAssets"`
	TotalLiabilities      Amount              `json:"totalLiabilities"`
	TotalEquity           Amount              `json:"totalEquity"`
	Balanced              bool                `json:"balanced"`
	Discrepancy           Amount              `json:"discrepancy"`
}

// IncomeStatementReport covers income and expenses over a date range.
type IncomeStatementReport struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	IncomeRows    []AccountBalance `json:"income"`
	ExpenseRows   []AccountBalance `json:"expenses"`
	TotalIncome   Amount           `json:"totalIncome"`
	TotalExpenses Amount           `json:"totalExpenses"`
	NetIncome     Amount           `json:"netIncome"`
}

// GeneralLedgerAccount is one account's full ordered line history with the
// running balance after each line. Accounts without activity in the range
// are reported with an empty line list, never omitted.
type GeneralLedgerAccount struct {
	AccountID      string       `json:"accountID"`
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	AccountType    AccountType  `json:"accountType"`
	Lines          []LedgerLine `json:"transactions"`
	EndingBalance  Amount       `json:"endingBalance"`
	OpeningBalance Amount       `json:"openingBalance"`
}

// GeneralLedgerReport holds the histories of the selected accounts.
type GeneralLedgerReport struct {
	From     *time.Time             `json:"from,omitempty"`
	To       *time.Time             `json:"to,omitempty"`
	Accounts []GeneralLedgerAccount `json:"accounts"`
}

// CashFlowDirection classifies a cash-account line.
type CashFlowDirection string

const (
	Inflow  CashFlowDirection = "INFLOW"  // Debit to a cash account
	Outflow CashFlowDirection = "OUTFLOW" // Credit to a cash account
)

// CashFlowEntry is a single movement on a cash-classified account.
type CashFlowEntry struct {
	TransactionID string            `json:"transactionID"`
	Timestamp     time.Time         `json:"timestamp"`
	Description   string            `json:"description"`
	AccountID     string            `json:"accountID"`
	Direction     CashFlowDirection `json:"direction"`
	Amount        Amount            `json:"amount"`
}

// CashFlowReport aggregates movements on cash-classified accounts.
type CashFlowReport struct {
	From         time.Time       `json:"from"`
	To           *time.Time      `json:"to,omitempty"`
	Entries      []CashFlowEntry `json:"entries"`
	TotalInflows Amount          `json:"totalInflows"`
	TotalOutflow Amount          `json:"totalOutflows"`
	NetCashFlow  Amount          `json:"netCashFlow"`
}

// EquationStatus is the global accounting-equation check
// Assets = Liabilities + Equity, where equity absorbs current earnings.
type EquationStatus struct {
	TotalAssets      Amount `json:"totalAssets"`
	TotalLiabilities Amount `json:"totalLiabilities"`
	TotalEquity      Amount `json:"totalEquity"` // Includes current earnings
	CurrentEarnings  Amount `json:"currentEarnings"`
	Balanced         bool   `json:"balanced"`
}

// SystemHealth summarizes the redundant consistency checks for the dashboard.
type SystemHealth struct {
	TrialBalanceBalanced bool `json:"trialBalanceBalanced"`
	BalanceSheetBalanced bool `json:"balanceSheetBalanced"`
	TotalAccounts        int  `json:"totalAccounts"`
}

// DashboardReport is a read-only rollup of the other reports.
type DashboardReport struct {
	TotalAssets      Amount       `json:"totalAssets"`
	TotalLiabilities Amount       `json:"totalLiabilities"`
	NetWorth         Amount       `json:"netWorth"`
	YTDNetIncome     Amount       `json:"ytdNetIncome"`
	BooksBalanced    bool         `json:"booksBalanced"`
	SystemHealth     SystemHealth `json:"systemHealth"`
}
