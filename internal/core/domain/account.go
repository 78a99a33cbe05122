package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every valid account type, in report order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Income, Expense}

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// NormalSide returns the side that increases an account of type t.
// Asset/Expense accounts grow with debits; Liability/Equity/Income grow
// with credits. The mapping is fixed and carries no runtime state.
func NormalSide(t AccountType) Side {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// AccountClassification partitions balance-sheet accounts into current and
// non-current sections. Accounts without a classification degrade to
// "uncategorized" in reports rather than failing them.
type AccountClassification string

const (
	ClassificationCurrent    AccountClassification = "CURRENT"
	ClassificationNonCurrent AccountClassification = "NON_CURRENT"
	ClassificationNone       AccountClassification = ""
)

// Account represents an entry in the chart of accounts.
type Account struct {
	AccountID      string                `json:"accountID"`      // Primary key (UUID)
	Code           string                `json:"code"`           // Short human key, unique among all accounts
	Name           string                `json:"name"`           // User-defined name
	AccountType    AccountType           `json:"accountType"`    // ASSET, LIABILITY, etc.
	Classification AccountClassification `json:"classification"` // Current / non-current, optional
	IsCash         bool                  `json:"isCash"`         // Participates in the cash flow statement
	Description    string                `json:"description"`    // Optional user description
	IsActive       bool                  `json:"isActive"`       // Deactivated accounts are never deleted
	AuditFields
}

// NormalSide returns the increasing side for this account.
func (a Account) NormalSide() Side {
	return NormalSide(a.AccountType)
}
