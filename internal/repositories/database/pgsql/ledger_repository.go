package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portsrepo "github.com/quillbooks/quillbooks_backend/internal/core/ports/repositories"
)

// PgxLedgerRepository persists the append-only transaction log and the
// balances table, updated together in one database transaction.
type PgxLedgerRepository struct {
	BaseRepository
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// signedAmountSQL computes a line's effect on its account balance: positive
// on the account's normal side, negative otherwise.
const signedAmountSQL = `
	CASE WHEN (a.account_type IN ('ASSET', 'EXPENSE') AND l.side = 'DEBIT')
	       OR (a.account_type IN ('LIABILITY', 'EQUITY', 'INCOME') AND l.side = 'CREDIT')
	     THEN l.amount ELSE -l.amount END`

// PostTransaction appends the transaction and applies the balance changes
// atomically. Affected accounts are locked FOR UPDATE and re-checked for
// activity, so a deactivation racing the post fails the whole transaction
// with no partial balance update.
func (r *PgxLedgerRepository) PostTransaction(ctx context.Context, txn domain.Transaction, balanceChanges map[string]domain.Amount) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}

	lockQuery := `SELECT account_id, is_active FROM accounts WHERE account_id = ANY($1) FOR UPDATE;`
	rows, err := tx.Query(ctx, lockQuery, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	locked := make(map[string]bool, len(accountIDs))
	for rows.Next() {
		var accountID string
		var isActive bool
		if err := rows.Scan(&accountID, &isActive); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan locked account: %w", err)
		}
		locked[accountID] = isActive
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, accountID := range accountIDs {
		isActive, ok := locked[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if !isActive {
			return fmt.Errorf("%w: account %s was deactivated", apperrors.ErrConcurrentModification, accountID)
		}
	}

	txnQuery := `
		INSERT INTO transactions (
			transaction_id, description, txn_timestamp, status,
			reverses_transaction_id, reversed_by_transaction_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, txnQuery,
		txn.TransactionID,
		txn.Description,
		txn.Timestamp,
		string(txn.Status),
		txn.ReversesID,
		txn.ReversedByID,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO transaction_lines (transaction_id, line_no, account_id, side, amount, memo)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for i, line := range txn.Lines {
		batch.Queue(lineQuery,
			txn.TransactionID,
			i,
			line.AccountID,
			string(line.Side),
			line.Amount.Minor(),
			line.Memo,
		)
	}
	balanceQuery := `
		INSERT INTO account_balances (account_id, balance, last_updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id)
		DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance, last_updated_at = EXCLUDED.last_updated_at;
	`
	for accountID, delta := range balanceChanges {
		batch.Queue(balanceQuery, accountID, delta.Minor(), txn.CreatedAt)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute batch for transaction %s: %w", txn.TransactionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

const txnColumns = `t.transaction_id, t.description, t.txn_timestamp, t.status,
	COALESCE(t.reverses_transaction_id, ''), COALESCE(t.reversed_by_transaction_id, ''),
	t.created_at, t.created_by, t.last_updated_at, t.last_updated_by`

func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions t WHERE t.transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, err
	}

	lineQuery := `
		SELECT account_id, side, amount, memo
		FROM transaction_lines
		WHERE transaction_id = $1
		ORDER BY line_no;
	`
	rows, err := r.Pool.Query(ctx, lineQuery, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for %s: %w", transactionID, err)
	}
	defer rows.Close()
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		txn.Lines = append(txn.Lines, line)
	}
	return &txn, rows.Err()
}

func (r *PgxLedgerRepository) BalanceOf(ctx context.Context, accountID string, asOf *time.Time) (domain.Amount, error) {
	if asOf == nil {
		var minor int64
		query := `SELECT COALESCE((SELECT balance FROM account_balances WHERE account_id = $1), 0);`
		if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&minor); err != nil {
			return domain.ZeroAmount, fmt.Errorf("failed to read balance of %s: %w", accountID, err)
		}
		return domain.NewAmountFromMinor(minor), nil
	}

	query := `
		SELECT COALESCE(SUM(` + signedAmountSQL + `), 0)
		FROM transaction_lines l
		JOIN transactions t ON t.transaction_id = l.transaction_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.account_id = $1 AND t.txn_timestamp <= $2;
	`
	var minor int64
	if err := r.Pool.QueryRow(ctx, query, accountID, *asOf).Scan(&minor); err != nil {
		return domain.ZeroAmount, fmt.Errorf("failed to replay balance of %s: %w", accountID, err)
	}
	return domain.NewAmountFromMinor(minor), nil
}

func (r *PgxLedgerRepository) AllBalances(ctx context.Context) (map[string]domain.Amount, error) {
	query := `SELECT account_id, balance FROM account_balances;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]domain.Amount)
	for rows.Next() {
		var accountID string
		var minor int64
		if err := rows.Scan(&accountID, &minor); err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balances[accountID] = domain.NewAmountFromMinor(minor)
	}
	return balances, rows.Err()
}

// TransactionsFor computes running balances with a window over the account's
// full history in (timestamp, transaction_id, line_no) order, then restricts
// to the requested range, so a line's running balance reflects everything
// before it regardless of the range bounds.
func (r *PgxLedgerRepository) TransactionsFor(ctx context.Context, accountID string, dr domain.DateRange) ([]domain.LedgerLine, error) {
	query := `
		SELECT transaction_id, description, txn_timestamp, line_no, side, amount, running
		FROM (
			SELECT t.transaction_id, t.description, t.txn_timestamp, l.line_no, l.side, l.amount,
			       SUM(` + signedAmountSQL + `) OVER (
			           ORDER BY t.txn_timestamp, t.transaction_id, l.line_no
			       ) AS running
			FROM transaction_lines l
			JOIN transactions t ON t.transaction_id = l.transaction_id
			JOIN accounts a ON a.account_id = l.account_id
			WHERE l.account_id = $1
		) h
		WHERE ($2::timestamptz IS NULL OR h.txn_timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR h.txn_timestamp <= $3)
		ORDER BY h.txn_timestamp, h.transaction_id, h.line_no;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger lines for %s: %w", accountID, err)
	}
	defer rows.Close()

	lines := []domain.LedgerLine{}
	for rows.Next() {
		var line domain.LedgerLine
		var side string
		var amount, running int64
		if err := rows.Scan(
			&line.TransactionID,
			&line.Description,
			&line.Timestamp,
			&line.LineIndex,
			&side,
			&amount,
			&running,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		line.Side = domain.Side(side)
		line.Amount = domain.NewAmountFromMinor(amount)
		line.Running = domain.NewAmountFromMinor(running)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *PgxLedgerRepository) AllPostedTransactions(ctx context.Context, dr domain.DateRange) ([]domain.Transaction, error) {
	query := `
		SELECT ` + txnColumns + `, l.account_id, l.side, l.amount, l.memo
		FROM transactions t
		JOIN transaction_lines l ON l.transaction_id = t.transaction_id
		WHERE ($1::timestamptz IS NULL OR t.txn_timestamp >= $1)
		  AND ($2::timestamptz IS NULL OR t.txn_timestamp <= $2)
		ORDER BY t.txn_timestamp, t.transaction_id, l.line_no;
	`
	rows, err := r.Pool.Query(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	result := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		var status string
		var line domain.Line
		var side string
		var amount int64
		if err := rows.Scan(
			&txn.TransactionID,
			&txn.Description,
			&txn.Timestamp,
			&status,
			&txn.ReversesID,
			&txn.ReversedByID,
			&txn.CreatedAt,
			&txn.CreatedBy,
			&txn.LastUpdatedAt,
			&txn.LastUpdatedBy,
			&line.AccountID,
			&side,
			&amount,
			&line.Memo,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txn.Status = domain.TransactionStatus(status)
		line.Side = domain.Side(side)
		line.Amount = domain.NewAmountFromMinor(amount)

		if n := len(result); n > 0 && result[n-1].TransactionID == txn.TransactionID {
			result[n-1].Lines = append(result[n-1].Lines, line)
		} else {
			txn.Lines = []domain.Line{line}
			result = append(result, txn)
		}
	}
	return result, rows.Err()
}

func (r *PgxLedgerRepository) MarkReversed(ctx context.Context, originalID, reversingID, updatedBy string, at time.Time) error {
	query := `
		UPDATE transactions
		SET status = 'REVERSED', reversed_by_transaction_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, originalID, reversingID, at, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to mark %s reversed: %w", originalID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, originalID)
	}
	return nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var txn domain.Transaction
	var status string
	err := row.Scan(
		&txn.TransactionID,
		&txn.Description,
		&txn.Timestamp,
		&status,
		&txn.ReversesID,
		&txn.ReversedByID,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.Status = domain.TransactionStatus(status)
	return txn, nil
}

func scanLine(row pgx.Row) (domain.Line, error) {
	var line domain.Line
	var side string
	var amount int64
	if err := row.Scan(&line.AccountID, &side, &amount, &line.Memo); err != nil {
		return domain.Line{}, err
	}
	line.Side = domain.Side(side)
	line.Amount = domain.NewAmountFromMinor(amount)
	return line, nil
}
