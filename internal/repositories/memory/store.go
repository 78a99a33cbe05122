package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portsrepo "github.com/quillbooks/quillbooks_backend/internal/core/ports/repositories"
)

// Store is a thread-safe in-memory implementation of the account, ledger and
// user repositories. Posts are serialized by a single writer lock; reads see
// a consistent snapshot under the read lock, so a transaction's effect is
// never observed on some balances but not others.
//
// Each Store is an isolated instance: nothing here is process-wide.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	codeIndex    map[string]string // code -> accountID
	transactions []domain.Transaction // append-only, posting order
	balances     map[string]domain.Amount
	users        map[string]domain.User
	usernames    map[string]string // username -> userID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		codeIndex: make(map[string]string),
		balances:  make(map[string]domain.Amount),
		users:     make(map[string]domain.User),
		usernames: make(map[string]string),
	}
}

var (
	_ portsrepo.AccountRepository = (*Store)(nil)
	_ portsrepo.LedgerRepository  = (*Store)(nil)
	_ portsrepo.UserRepository    = (*Store)(nil)
)

// --- AccountRepository ---

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.codeIndex[account.Code]; ok && existingID != account.AccountID {
		return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
	}
	s.accounts[account.AccountID] = account
	s.codeIndex[account.Code] = account.AccountID
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

func (s *Store) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, ok := s.codeIndex[code]
	if !ok {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	account := s.accounts[accountID]
	return &account, nil
}

func (s *Store) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if account, ok := s.accounts[id]; ok {
			found[id] = account
		}
	}
	return found, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (s *Store) DeactivateAccount(_ context.Context, accountID, updatedBy string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	account.IsActive = false
	account.LastUpdatedAt = at
	account.LastUpdatedBy = updatedBy
	s.accounts[accountID] = account
	return nil
}

// --- LedgerRepository ---

// PostTransaction appends the transaction and applies every balance change
// under the writer lock. Affected accounts are re-checked for activity here:
// a deactivation racing the post surfaces as ErrConcurrentModification with
// no balance mutated.
func (s *Store) PostTransaction(_ context.Context, txn domain.Transaction, balanceChanges map[string]domain.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for accountID := range balanceChanges {
		account, ok := s.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: account %s was deactivated", apperrors.ErrConcurrentModification, accountID)
		}
	}

	stored := txn
	stored.Lines = make([]domain.Line, len(txn.Lines))
	copy(stored.Lines, txn.Lines)
	s.transactions = append(s.transactions, stored)

	for accountID, delta := range balanceChanges {
		s.balances[accountID] = s.balances[accountID].Add(delta)
	}
	return nil
}

func (s *Store) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.transactions {
		if s.transactions[i].TransactionID == transactionID {
			txn := s.transactions[i]
			txn.Lines = append([]domain.Line(nil), txn.Lines...)
			return &txn, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
}

// BalanceOf returns the incrementally maintained balance, or replays the
// history for a historical instant. The two must always agree for asOf=now;
// the replay path doubles as a consistency check in tests.
func (s *Store) BalanceOf(_ context.Context, accountID string, asOf *time.Time) (domain.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return domain.ZeroAmount, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	if asOf == nil {
		return s.balances[accountID], nil
	}

	balance := domain.ZeroAmount
	for _, txn := range s.transactions {
		if txn.Timestamp.After(*asOf) {
			continue
		}
		for _, line := range txn.Lines {
			if line.AccountID == accountID {
				balance = balance.Add(domain.SignedDelta(line, account.AccountType))
			}
		}
	}
	return balance, nil
}

func (s *Store) AllBalances(_ context.Context) (map[string]domain.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]domain.Amount, len(s.balances))
	for accountID, balance := range s.balances {
		snapshot[accountID] = balance
	}
	return snapshot, nil
}

// TransactionsFor replays the account's full history in (timestamp,
// transaction_id) order, emitting the lines inside the range with the
// balance immediately after each line.
func (s *Store) TransactionsFor(_ context.Context, accountID string, r domain.DateRange) ([]domain.LedgerLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}

	ordered := s.sortedTransactions()
	running := domain.ZeroAmount
	lines := []domain.LedgerLine{}
	for _, txn := range ordered {
		for i, line := range txn.Lines {
			if line.AccountID != accountID {
				continue
			}
			running = running.Add(domain.SignedDelta(line, account.AccountType))
			if !r.Contains(txn.Timestamp) {
				continue
			}
			lines = append(lines, domain.LedgerLine{
				TransactionID: txn.TransactionID,
				Description:   txn.Description,
				Timestamp:     txn.Timestamp,
				LineIndex:     i,
				Side:          line.Side,
				Amount:        line.Amount,
				Running:       running,
			})
		}
	}
	return lines, nil
}

func (s *Store) AllPostedTransactions(_ context.Context, r domain.DateRange) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.sortedTransactions()
	result := []domain.Transaction{}
	for _, txn := range ordered {
		if !r.Contains(txn.Timestamp) {
			continue
		}
		copied := txn
		copied.Lines = append([]domain.Line(nil), txn.Lines...)
		result = append(result, copied)
	}
	return result, nil
}

func (s *Store) MarkReversed(_ context.Context, originalID, reversingID, updatedBy string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].TransactionID == originalID {
			s.transactions[i].Status = domain.Reversed
			s.transactions[i].ReversedByID = reversingID
			s.transactions[i].LastUpdatedAt = at
			s.transactions[i].LastUpdatedBy = updatedBy
			return nil
		}
	}
	return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, originalID)
}

// sortedTransactions returns the history ordered by (timestamp, id).
// Callers must hold at least the read lock.
func (s *Store) sortedTransactions() []domain.Transaction {
	ordered := make([]domain.Transaction, len(s.transactions))
	copy(ordered, s.transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].TransactionID < ordered[j].TransactionID
	})
	return ordered
}

// --- UserRepository ---

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.usernames[user.Username]; ok && existingID != user.UserID {
		return fmt.Errorf("%w: username %s", apperrors.ErrDuplicate, user.Username)
	}
	s.users[user.UserID] = user
	s.usernames[user.Username] = user.UserID
	return nil
}

func (s *Store) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return &user, nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.usernames[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, username)
	}
	user := s.users[userID]
	return &user, nil
}
