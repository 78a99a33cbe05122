package accounting

import (
	"fmt"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
)

// Validation is a pure function of the proposed transaction and the accounts
// it references. It never mutates either; posting re-runs it so a stale
// advisory result is never trusted.

// Validate checks a proposed transaction and stops at the first violation.
// This is the mode used on the posting path.
func Validate(txn domain.Transaction, accounts map[string]domain.Account) domain.ValidationResult {
	return validate(txn, accounts, true)
}

// ValidateAll checks a proposed transaction and accumulates every violation,
// for the advisory "validate without posting" use case where the caller wants
// to render all problems at once.
func ValidateAll(txn domain.Transaction, accounts map[string]domain.Account) domain.ValidationResult {
	return validate(txn, accounts, false)
}

func validate(txn domain.Transaction, accounts map[string]domain.Account, failFast bool) domain.ValidationResult {
	result := domain.ValidationResult{
		TotalDebits:  txn.TotalDebits(),
		TotalCredits: txn.TotalCredits(),
	}

	add := func(v domain.Violation) bool {
		result.Violations = append(result.Violations, v)
		return failFast
	}

	if len(txn.Lines) < 2 {
		if add(domain.Violation{
			Code:      domain.ViolationStructural,
			LineIndex: -1,
			Message:   fmt.Sprintf("transaction must have at least 2 lines, got %d", len(txn.Lines)),
		}) {
			return result
		}
	}

	for i, line := range txn.Lines {
		if !line.Amount.IsPositive() {
			if add(domain.Violation{
				Code:      domain.ViolationStructural,
				LineIndex: i,
				AccountID: line.AccountID,
				Message:   fmt.Sprintf("line amount must be strictly positive, got %s", line.Amount),
			}) {
				return result
			}
		}
		if !line.Side.IsValid() {
			if add(domain.Violation{
				Code:      domain.ViolationStructural,
				LineIndex: i,
				AccountID: line.AccountID,
				Message:   fmt.Sprintf("line side must be DEBIT or CREDIT, got %q", line.Side),
			}) {
				return result
			}
		}
	}

	for i, line := range txn.Lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			if add(domain.Violation{
				Code:      domain.ViolationUnknownAccount,
				LineIndex: i,
				AccountID: line.AccountID,
				Message:   fmt.Sprintf("account %s does not exist", line.AccountID),
			}) {
				return result
			}
			continue
		}
		if !account.IsActive {
			if add(domain.Violation{
				Code:      domain.ViolationInactiveAccount,
				LineIndex: i,
				AccountID: line.AccountID,
				Message:   fmt.Sprintf("account %s (%s) is inactive", account.Code, line.AccountID),
			}) {
				return result
			}
		}
	}

	// The central invariant: exact equality of the two sides, no rounding.
	if !result.TotalDebits.Equal(result.TotalCredits) {
		result.Violations = append(result.Violations, domain.Violation{
			Code:      domain.ViolationUnbalanced,
			LineIndex: -1,
			Message: fmt.Sprintf("debits %s do not equal credits %s",
				result.TotalDebits, result.TotalCredits),
		})
		return result
	}

	result.Valid = len(result.Violations) == 0
	return result
}

// BalanceChanges computes the signed balance delta per account for a
// validated transaction: a line on the account's normal side increases the
// balance, the opposite side decreases it.
func BalanceChanges(txn domain.Transaction, accounts map[string]domain.Account) map[string]domain.Amount {
	changes := make(map[string]domain.Amount, len(txn.Lines))
	for _, line := range txn.Lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			continue
		}
		delta := domain.SignedDelta(line, account.AccountType)
		changes[line.AccountID] = changes[line.AccountID].Add(delta)
	}
	return changes
}
