package domain

import "fmt"

// ViolationCode classifies why a proposed transaction was rejected.
type ViolationCode string

const (
	// ViolationStructural covers shape problems: fewer than two lines or a
	// non-positive line amount.
	ViolationStructural ViolationCode = "STRUCTURAL"
	// ViolationUnknownAccount marks a line referencing no known account.
	ViolationUnknownAccount ViolationCode = "UNKNOWN_ACCOUNT"
	// ViolationInactiveAccount marks a line referencing a deactivated account.
	ViolationInactiveAccount ViolationCode = "INACTIVE_ACCOUNT"
	// ViolationUnbalanced means the debit and credit totals differ.
	ViolationUnbalanced ViolationCode = "UNBALANCED"
)

// Violation is a single validation failure, tagged with the offending line
// index (-1 for transaction-level violations) and, where relevant, the
// account that caused it.
type Violation struct {
	Code      ViolationCode `json:"code"`
	LineIndex int           `json:"lineIndex"`
	AccountID string        `json:"accountID,omitempty"`
	Message   string        `json:"message"`
}

func (v Violation) String() string {
	if v.LineIndex >= 0 {
		return fmt.Sprintf("%s (line %d): %s", v.Code, v.LineIndex, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// ValidationResult is the outcome of validating a proposed transaction.
// Per-side totals are always populated so callers can display the
// discrepancy of an unbalanced entry.
type ValidationResult struct {
	Valid        bool        `json:"valid"`
	TotalDebits  Amount      `json:"totalDebits"`
	TotalCredits Amount      `json:"totalCredits"`
	Violations   []Violation `json:"violations,omitempty"`
}
