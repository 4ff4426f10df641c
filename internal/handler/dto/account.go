package dto

import (
	"time"

	"github.com/vinylshop/vinylshop/internal/model"
)

// OpenAccountRequest represents the request body for opening an account.
type OpenAccountRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"required,max=255"`
}

// RenameAccountRequest represents the request body for renaming an account.
type RenameAccountRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToAccountResponse converts an Account model to AccountResponse DTO.
func ToAccountResponse(a *model.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID.String(),
		Email:     a.Email.String(),
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}
