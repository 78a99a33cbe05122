package accounting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	"github.com/quillbooks/quillbooks_backend/internal/utils/accounting"
)

func testAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"cash":    {AccountID: "cash", Code: "1000", AccountType: domain.Asset, IsActive: true},
		"sales":   {AccountID: "sales", Code: "4000", AccountType: domain.Income, IsActive: true},
		"rent":    {AccountID: "rent", Code: "5000", AccountType: domain.Expense, IsActive: true},
		"closed":  {AccountID: "closed", Code: "1900", AccountType: domain.Asset, IsActive: false},
		"payable": {AccountID: "payable", Code: "2000", AccountType: domain.Liability, IsActive: true},
	}
}

func line(accountID string, side domain.Side, amount string) domain.Line {
	return domain.Line{AccountID: accountID, Side: side, Amount: domain.MustParseAmount(amount)}
}

func TestValidate_BalancedTransaction(t *testing.T) {
	txn := domain.Transaction{
		Description: "cash sale",
		Lines: []domain.Line{
			line("cash", domain.Debit, "1000.00"),
			line("sales", domain.Credit, "1000.00"),
		},
	}

	result := accounting.Validate(txn, testAccounts())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
	assert.Equal(t, "1000.00", result.TotalDebits.String())
	assert.Equal(t, "1000.00", result.TotalCredits.String())
}

func TestValidate_SplitTransaction(t *testing.T) {
	// One debit funded by two credits is fine; only the totals must match.
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("rent", domain.Debit, "1500.00"),
			line("cash", domain.Credit, "900.00"),
			line("payable", domain.Credit, "600.00"),
		},
	}

	result := accounting.Validate(txn, testAccounts())
	assert.True(t, result.Valid)
}

func TestValidate_Unbalanced(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("cash", domain.Debit, "500.00"),
			line("sales", domain.Credit, "400.00"),
		},
	}

	result := accounting.Validate(txn, testAccounts())

	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, domain.ViolationUnbalanced, result.Violations[0].Code)
	assert.Equal(t, -1, result.Violations[0].LineIndex)
	assert.Equal(t, "500.00", result.TotalDebits.String())
	assert.Equal(t, "400.00", result.TotalCredits.String())
}

func TestValidate_TooFewLines(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{line("cash", domain.Debit, "10.00")},
	}

	result := accounting.Validate(txn, testAccounts())

	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, domain.ViolationStructural, result.Violations[0].Code)
}

func TestValidate_NonPositiveAmount(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{
			{AccountID: "cash", Side: domain.Debit, Amount: domain.ZeroAmount},
			line("sales", domain.Credit, "0.00"),
		},
	}

	result := accounting.Validate(txn, testAccounts())

	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, domain.ViolationStructural, result.Violations[0].Code)
	assert.Equal(t, 0, result.Violations[0].LineIndex)
}

func TestValidate_UnknownAccount(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("ghost", domain.Debit, "25.00"),
			line("sales", domain.Credit, "25.00"),
		},
	}

	result := accounting.Validate(txn, testAccounts())

	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, domain.ViolationUnknownAccount, result.Violations[0].Code)
	assert.Equal(t, "ghost", result.Violations[0].AccountID)
}

func TestValidate_InactiveAccount(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("closed", domain.Debit, "25.00"),
			line("sales", domain.Credit, "25.00"),
		},
	}

	result := accounting.Validate(txn, testAccounts())

	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, domain.ViolationInactiveAccount, result.Violations[0].Code)
}

func TestValidateAll_AccumulatesEveryViolation(t *testing.T) {
	// Unknown account, inactive account and an imbalance in one request.
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("ghost", domain.Debit, "100.00"),
			line("closed", domain.Debit, "50.00"),
			line("sales", domain.Credit, "10.00"),
		},
	}

	result := accounting.ValidateAll(txn, testAccounts())

	assert.False(t, result.Valid)
	codes := make([]domain.ViolationCode, len(result.Violations))
	for i, v := range result.Violations {
		codes[i] = v.Code
	}
	assert.Contains(t, codes, domain.ViolationUnknownAccount)
	assert.Contains(t, codes, domain.ViolationInactiveAccount)
	assert.Contains(t, codes, domain.ViolationUnbalanced)
	assert.Len(t, codes, 3)
}

func TestValidate_FailFastStopsAtFirstViolation(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("ghost", domain.Debit, "100.00"),
			line("closed", domain.Debit, "50.00"),
			line("sales", domain.Credit, "10.00"),
		},
	}

	result := accounting.Validate(txn, testAccounts())
	require.Len(t, result.Violations, 1)
	assert.Equal(t, domain.ViolationUnknownAccount, result.Violations[0].Code)
}

func TestBalanceChanges(t *testing.T) {
	accounts := testAccounts()
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("cash", domain.Debit, "1000.00"),
			line("sales", domain.Credit, "1000.00"),
		},
	}

	changes := accounting.BalanceChanges(txn, accounts)

	// Both accounts grow: the debit is on cash's normal side, the credit on
	// sales' normal side.
	assert.Equal(t, "1000.00", changes["cash"].String())
	assert.Equal(t, "1000.00", changes["sales"].String())
}

func TestBalanceChanges_AggregatesRepeatedAccount(t *testing.T) {
	accounts := testAccounts()
	txn := domain.Transaction{
		Lines: []domain.Line{
			line("cash", domain.Debit, "100.00"),
			line("cash", domain.Credit, "30.00"),
			line("sales", domain.Credit, "70.00"),
		},
	}

	changes := accounting.BalanceChanges(txn, accounts)
	assert.Equal(t, "70.00", changes["cash"].String())
	assert.Equal(t, "70.00", changes["sales"].String())
}
