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
	"github.com/quillbooks/quillbooks_backend/internal/utils/accounting"
)

var (
	ErrAlreadyReversed = errors.New("transaction has already been reversed")
	ErrIsReversal      = errors.New("a reversal entry cannot itself be reversed")
)

// ledgerService accepts proposed transactions, validates them against the
// account registry and posts them atomically to the ledger store.
type ledgerService struct {
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
}

// NewLedgerService creates a new LedgerSvc.
func NewLedgerService(accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.LedgerSvc {
	return &ledgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

// ValidateTransaction runs advisory validation and accumulates every
// violation so the caller can render all of them at once. The ledger is
// never touched.
func (s *ledgerService) ValidateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (domain.ValidationResult, error) {
	txn := req.ToDomainTransaction()

	accounts, err := s.fetchAccounts(ctx, txn)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	return accounting.ValidateAll(txn, accounts), nil
}

// PostTransaction validates the proposal and, on success, appends it to the
// ledger and updates every affected running balance in one atomic step.
// Validation always runs here regardless of any earlier advisory call.
func (s *ledgerService) PostTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	txn := req.ToDomainTransaction()
	txn.TransactionID = uuid.NewString()
	txn.Status = domain.Posted
	if txn.Timestamp.IsZero() {
		txn.Timestamp = now
	}
	txn.CreatedAt = now
	txn.CreatedBy = creatorUserID
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = creatorUserID

	accounts, err := s.fetchAccounts(ctx, txn)
	if err != nil {
		return nil, err
	}

	result := accounting.Validate(txn, accounts)
	if !result.Valid {
		logger.Warn("Transaction rejected",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("violation", result.Violations[0].String()))
		return nil, apperrors.NewRejectedError(result)
	}

	changes := accounting.BalanceChanges(txn, accounts)
	if err := s.ledgerRepo.PostTransaction(ctx, txn, changes); err != nil {
		return nil, fmt.Errorf("failed to post transaction %s: %w", txn.TransactionID, err)
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.Int("lines", len(txn.Lines)),
		slog.String("total", result.TotalDebits.String()))
	return &txn, nil
}

// GetTransaction retrieves a posted transaction with its lines.
func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.ledgerRepo.FindTransactionByID(ctx, transactionID)
}

// ReverseTransaction posts a new transaction mirroring the original with
// debit and credit sides swapped, then links the two. The original is never
// edited; the ledger stays append-only.
func (s *ledgerService) ReverseTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if original.ReversesID != "" {
		return nil, ErrIsReversal
	}
	if original.Status == domain.Reversed || original.ReversedByID != "" {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, transactionID)
	}

	now := time.Now().UTC()
	reversal := domain.Transaction{
		TransactionID: uuid.NewString(),
		Description:   fmt.Sprintf("Reversal of %s: %s", original.TransactionID, original.Description),
		Timestamp:     now,
		Status:        domain.Posted,
		ReversesID:    original.TransactionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	reversal.Lines = make([]domain.Line, len(original.Lines))
	for i, l := range original.Lines {
		reversal.Lines[i] = domain.Line{
			AccountID: l.AccountID,
			Side:      l.Side.Opposite(),
			Amount:    l.Amount,
			Memo:      l.Memo,
		}
	}

	accounts, err := s.fetchAccounts(ctx, reversal)
	if err != nil {
		return nil, err
	}

	result := accounting.Validate(reversal, accounts)
	if !result.Valid {
		// A referenced account may have been deactivated since the original
		// posting; reversing then requires reactivating it first.
		return nil, apperrors.NewRejectedError(result)
	}

	changes := accounting.BalanceChanges(reversal, accounts)
	if err := s.ledgerRepo.PostTransaction(ctx, reversal, changes); err != nil {
		return nil, fmt.Errorf("failed to post reversal of %s: %w", transactionID, err)
	}
	if err := s.ledgerRepo.MarkReversed(ctx, original.TransactionID, reversal.TransactionID, userID, now); err != nil {
		return nil, fmt.Errorf("failed to link reversal %s: %w", reversal.TransactionID, err)
	}

	logger.Info("Transaction reversed",
		slog.String("original_id", original.TransactionID),
		slog.String("reversal_id", reversal.TransactionID))
	return &reversal, nil
}

// BalanceOf exposes current and historical account balances.
func (s *ledgerService) BalanceOf(ctx context.Context, accountID string, asOf *time.Time) (domain.Amount, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return domain.ZeroAmount, err
	}
	return s.ledgerRepo.BalanceOf(ctx, accountID, asOf)
}

func (s *ledgerService) fetchAccounts(ctx context.Context, txn domain.Transaction) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(txn.Lines))
	seen := make(map[string]struct{}, len(txn.Lines))
	for _, l := range txn.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for validation: %w", err)
	}
	return accounts, nil
}
