package domain

import "time"

// Side indicates whether a line debits or credits its account.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// IsValid reports whether s is DEBIT or CREDIT.
func (s Side) IsValid() bool {
	return s == Debit || s == Credit
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// TransactionStatus indicates the state of a posted transaction.
type TransactionStatus string

const (
	Posted   TransactionStatus = "POSTED"
	Reversed TransactionStatus = "REVERSED"
)

// Line is a single debit or credit against one account within a transaction.
type Line struct {
	AccountID string `json:"accountID"`
	Side      Side   `json:"side"`
	Amount    Amount `json:"amount"` // Strictly positive
	Memo      string `json:"memo"`   // Optional
}

// Transaction is a balanced, multi-line financial event. Once posted it is
// immutable; corrections are new transactions with swapped sides, never
// in-place edits.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // Primary key (UUID)
	Description   string            `json:"description"`
	Timestamp     time.Time         `json:"timestamp"` // When the event occurred
	Lines         []Line            `json:"lines"`     // Insertion order preserved for display
	Status        TransactionStatus `json:"status"`
	ReversesID    string            `json:"reversesID,omitempty"`    // Set on a reversal entry
	ReversedByID  string            `json:"reversedByID,omitempty"`  // Set on the original once reversed
	AuditFields
}

// TotalDebits sums the debit side of the transaction.
func (t Transaction) TotalDebits() Amount {
	total := ZeroAmount
	for _, l := range t.Lines {
		if l.Side == Debit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// TotalCredits sums the credit side of the transaction.
func (t Transaction) TotalCredits() Amount {
	total := ZeroAmount
	for _, l := range t.Lines {
		if l.Side == Credit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// SignedDelta returns the effect of a line on the balance of an account of
// the given type: positive when the line lands on the account's normal side,
// negative otherwise.
func SignedDelta(l Line, accountType AccountType) Amount {
	if l.Side == NormalSide(accountType) {
		return l.Amount
	}
	return l.Amount.Neg()
}

// LedgerLine is one line of an account's history together with the account
// balance immediately after the line was applied. Used by the general ledger.
type LedgerLine struct {
	TransactionID string    `json:"transactionID"`
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
	LineIndex     int       `json:"lineIndex"`
	Side          Side      `json:"side"`
	Amount        Amount    `json:"amount"`
	Running       Amount    `json:"runningBalance"`
}
