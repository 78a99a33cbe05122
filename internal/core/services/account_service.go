package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portsrepo "github.com/quillbooks/quillbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/dto"
	"github.com/quillbooks/quillbooks_backend/internal/middleware"
)

var (
	ErrAccountCodeTaken   = errors.New("account code already in use")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountHasBalance  = errors.New("account with a non-zero balance cannot be deactivated")
)

// accountService manages the chart of accounts. The ledger core only reads
// accounts; all writes flow through here.
type accountService struct {
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
}

// NewAccountService creates a new AccountSvc.
func NewAccountService(accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.AccountSvc {
	return &accountService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

var _ portssvc.AccountSvc = (*accountService)(nil)

// CreateAccount registers a new account after checking code uniqueness.
// Code uniqueness spans active and inactive accounts alike.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountType := domain.AccountType(req.AccountType)
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, req.AccountType)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account code %s: %w", req.Code, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountCodeTaken, req.Code)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		Code:           req.Code,
		Name:           req.Name,
		AccountType:    accountType,
		Classification: domain.AccountClassification(req.Classification),
		IsCash:         req.IsCash,
		Description:    req.Description,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrAccountCodeTaken, req.Code)
		}
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("type", string(account.AccountType)))
	return &account, nil
}

// GetAccountByID looks up a single account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns the full chart of accounts.
func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx)
}

// DeactivateAccount soft-deletes an account. Ledger history referencing it
// is preserved untouched. Accounts still carrying a balance must be zeroed
// by a transaction first, so the accounting equation over active accounts
// keeps holding.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	balance, err := s.ledgerRepo.BalanceOf(ctx, accountID, nil)
	if err != nil {
		return err
	}
	if !balance.IsZero() {
		return fmt.Errorf("%w: %s has balance %s", ErrAccountHasBalance, accountID, balance)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		return err
	}
	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
