package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
)

func TestNormalSide(t *testing.T) {
	assert.Equal(t, domain.Debit, domain.NormalSide(domain.Asset))
	assert.Equal(t, domain.Debit, domain.NormalSide(domain.Expense))
	assert.Equal(t, domain.Credit, domain.NormalSide(domain.Liability))
	assert.Equal(t, domain.Credit, domain.NormalSide(domain.Equity))
	assert.Equal(t, domain.Credit, domain.NormalSide(domain.Income))
}

func TestTransactionTotals(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{
			{AccountID: "cash", Side: domain.Debit, Amount: domain.MustParseAmount("700.00")},
			{AccountID: "bank", Side: domain.Debit, Amount: domain.MustParseAmount("300.00")},
			{AccountID: "sales", Side: domain.Credit, Amount: domain.MustParseAmount("1000.00")},
		},
	}
	assert.Equal(t, "1000.00", txn.TotalDebits().String())
	assert.Equal(t, "1000.00", txn.TotalCredits().String())
}

func TestSignedDelta(t *testing.T) {
	amount := domain.MustParseAmount("50.00")

	// A debit increases an asset, a credit decreases it.
	debit := domain.Line{Side: domain.Debit, Amount: amount}
	credit := domain.Line{Side: domain.Credit, Amount: amount}
	assert.Equal(t, amount, domain.SignedDelta(debit, domain.Asset))
	assert.Equal(t, amount.Neg(), domain.SignedDelta(credit, domain.Asset))

	// The mirror holds for credit-normal accounts.
	assert.Equal(t, amount, domain.SignedDelta(credit, domain.Income))
	assert.Equal(t, amount.Neg(), domain.SignedDelta(debit, domain.Liability))
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Opposite())
	assert.Equal(t, domain.Debit, domain.Credit.Opposite())
}
