package services

import (
	"context"
	"time"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	"github.com/quillbooks/quillbooks_backend/internal/dto"
)

// AccountSvc manages the chart of accounts.
type AccountSvc interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	DeactivateAccount(ctx context.Context, accountID, userID string) error
}

// LedgerSvc accepts, validates and posts transactions against the ledger.
type LedgerSvc interface {
	// ValidateTransaction runs advisory validation, accumulating every
	// violation. It never mutates the ledger.
	ValidateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (domain.ValidationResult, error)
	// PostTransaction validates and atomically posts. On a domain violation
	// it returns *apperrors.RejectedError with the full validation result.
	PostTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	// ReverseTransaction posts a new transaction with swapped sides and links
	// it to the original. The original is never mutated beyond the link.
	ReverseTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error)
	BalanceOf(ctx context.Context, accountID string, asOf *time.Time) (domain.Amount, error)
}

// EquationSvc verifies the global accounting equation.
type EquationSvc interface {
	Check(ctx context.Context) (*domain.EquationStatus, error)
}

// ReportingSvc derives the financial reports from ledger state. All methods
// are read-only projections.
type ReportingSvc interface {
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)
	BalanceSheet(ctx context.Context, asOf time.Time, periodStart *time.Time) (*domain.BalanceSheetReport, error)
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatementReport, error)
	GeneralLedger(ctx context.Context, accountID *string, r domain.DateRange) (*domain.GeneralLedgerReport, error)
	CashFlow(ctx context.Context, from time.Time, to *time.Time) (*domain.CashFlowReport, error)
	Dashboard(ctx context.Context) (*domain.DashboardReport, error)
}

// ServiceContainer bundles every service interface for injection into the
// HTTP layer.
type ServiceContainer struct {
	Account   AccountSvc
	Ledger    LedgerSvc
	Equation  EquationSvc
	Reporting ReportingSvc
	User      UserSvc
}

// UserSvc manages portal users and credential checks.
type UserSvc interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
