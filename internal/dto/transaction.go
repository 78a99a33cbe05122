package dto

import (
	"strings"
	"time"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
)

// CreateTransactionLine is one line of a proposed transaction. Amounts
// arrive as decimal strings or minor-unit integers, never binary floats.
type CreateTransactionLine struct {
	AccountID string        `json:"account" binding:"required"`
	Type      string        `json:"type" binding:"required,txnside"`
	Amount    domain.Amount `json:"amount"`
	Memo      string        `json:"memo"`
}

// CreateTransactionRequest is the inbound shape for both the advisory
// validate endpoint and the posting endpoint.
type CreateTransactionRequest struct {
	Description string                  `json:"description" binding:"required"`
	Timestamp   *time.Time              `json:"timestamp"` // Defaults to now
	Lines       []CreateTransactionLine `json:"lines" binding:"required"`
}

// ToDomainTransaction maps the request to a domain transaction. IDs and audit
// fields are assigned by the ledger service.
func (r CreateTransactionRequest) ToDomainTransaction() domain.Transaction {
	lines := make([]domain.Line, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.Line{
			AccountID: l.AccountID,
			Side:      domain.Side(strings.ToUpper(l.Type)),
			Amount:    l.Amount,
			Memo:      l.Memo,
		}
	}
	txn := domain.Transaction{
		Description: r.Description,
		Lines:       lines,
	}
	if r.Timestamp != nil {
		txn.Timestamp = *r.Timestamp
	}
	return txn
}

// TransactionLineResponse is one line of a posted transaction.
type TransactionLineResponse struct {
	AccountID string        `json:"account"`
	Type      string        `json:"type"`
	Amount    domain.Amount `json:"amount"`
	Memo      string        `json:"memo,omitempty"`
}

// TransactionResponse is a posted transaction.
type TransactionResponse struct {
	TransactionID string                    `json:"transactionID"`
	Description   string                    `json:"description"`
	Timestamp     time.Time                 `json:"timestamp"`
	Status        string                    `json:"status"`
	ReversesID    string                    `json:"reversesID,omitempty"`
	ReversedByID  string                    `json:"reversedByID,omitempty"`
	Lines         []TransactionLineResponse `json:"lines"`
	CreatedAt     time.Time                 `json:"createdAt"`
	CreatedBy     string                    `json:"createdBy"`
}

// ToTransactionResponse converts a domain transaction to its response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	lines := make([]TransactionLineResponse, len(txn.Lines))
	for i, l := range txn.Lines {
		lines[i] = TransactionLineResponse{
			AccountID: l.AccountID,
			Type:      strings.ToLower(string(l.Side)),
			Amount:    l.Amount,
			Memo:      l.Memo,
		}
	}
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		Description:   txn.Description,
		Timestamp:     txn.Timestamp,
		Status:        string(txn.Status),
		ReversesID:    txn.ReversesID,
		ReversedByID:  txn.ReversedByID,
		Lines:         lines,
		CreatedAt:     txn.CreatedAt,
		CreatedBy:     txn.CreatedBy,
	}
}

// ValidationResponse wraps a validation result for the advisory endpoint.
type ValidationResponse struct {
	Valid        bool               `json:"valid"`
	TotalDebits  domain.Amount      `json:"totalDebits"`
	TotalCredits domain.Amount      `json:"totalCredits"`
	Violations   []domain.Violation `json:"violations,omitempty"`
}

// ToValidationResponse converts a domain validation result.
func ToValidationResponse(result domain.ValidationResult) ValidationResponse {
	return ValidationResponse{
		Valid:        result.Valid,
		TotalDebits:  result.TotalDebits,
		TotalCredits: result.TotalCredits,
		Violations:   result.Violations,
	}
}
