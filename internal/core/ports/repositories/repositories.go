package repositories

import (
	"context"
	"time"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
)

// AccountRepository defines persistence for the chart of accounts.
// The ledger core only reads it; administrative writes come from the
// account service.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)
	// FindAccountsByIDs returns the accounts present among ids; missing ids
	// are simply absent from the map, so validation can report them.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// DeactivateAccount flips is_active off. Accounts referenced by posted
	// transactions are never physically deleted.
	DeactivateAccount(ctx context.Context, accountID, updatedBy string, at time.Time) error
}

// LedgerRepository is the append-only store of posted transactions plus the
// incrementally maintained per-account balances. Implementations must make
// PostTransaction atomic: a reader never observes the transaction applied to
// some balances but not others.
type LedgerRepository interface {
	// PostTransaction appends txn and applies balanceChanges in one atomic
	// step. It fails with apperrors.ErrConcurrentModification when any
	// affected account has been deactivated since validation.
	PostTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]domain.Amount) error
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	// BalanceOf returns the current balance when asOf is nil, or the balance
	// as of the given instant computed from transactions with
	// timestamp <= asOf.
	BalanceOf(ctx context.Context, accountID string, asOf *time.Time) (domain.Amount, error)
	// AllBalances returns a consistent snapshot of every account balance.
	AllBalances(ctx context.Context) (map[string]domain.Amount, error)
	// TransactionsFor returns the account's lines within the range ordered
	// by (timestamp, transaction_id), each with the balance immediately
	// after the line was applied.
	TransactionsFor(ctx context.Context, accountID string, r domain.DateRange) ([]domain.LedgerLine, error)
	// AllPostedTransactions returns posted transactions within the range
	// ordered by (timestamp, transaction_id).
	AllPostedTransactions(ctx context.Context, r domain.DateRange) ([]domain.Transaction, error)
	// MarkReversed links an original transaction to its reversing entry.
	MarkReversed(ctx context.Context, originalID, reversingID, updatedBy string, at time.Time) error
}

// UserRepository defines persistence for portal users.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
