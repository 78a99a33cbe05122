package dto

import (
	"time"

	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code           string `json:"code" binding:"required"`
	Name           string `json:"name" binding:"required"`
	AccountType    string `json:"accountType" binding:"required,accounttype"`
	Classification string `json:"classification" binding:"omitempty,oneof=CURRENT NON_CURRENT"`
	IsCash         bool   `json:"isCash"`
	Description    string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string    `json:"accountID"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	AccountType    string    `json:"accountType"`
	Classification string    `json:"classification,omitempty"`
	IsCash         bool      `json:"isCash"`
	Description    string    `json:"description,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	LastUpdatedAt  time.Time `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		Code:           acc.Code,
		Name:           acc.Name,
		AccountType:    string(acc.AccountType),
		Classification: string(acc.Classification),
		IsCash:         acc.IsCash,
		Description:    acc.Description,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt,
		LastUpdatedAt:  acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of accounts to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountBalanceResponse is returned by the balance query endpoint.
type AccountBalanceResponse struct {
	AccountID string        `json:"accountID"`
	Balance   domain.Amount `json:"balance"`
	AsOf      *time.Time    `json:"asOf,omitempty"`
}
