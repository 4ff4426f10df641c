// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/vinylshop/vinylshop/internal/model"
)

// DateLayout is the wire format of date_of_birth.
const DateLayout = "2006-01-02"

// RegisterUserRequest represents the request body for registering a user.
// Email format is checked by the domain, not by tags, so every bad address
// is reported the same way.
type RegisterUserRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Email       string  `json:"email" validate:"required"`
	Password    string  `json:"password" validate:"required,min=8,max=1024"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=255"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateUserRequest represents the request body for updating a profile.
type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email       *string `json:"email,omitempty"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=255"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	DateOfBirth *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ChangePasswordRequest represents the request body for changing a password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024,nefield=CurrentPassword"`
}

// VerifyUserRequest carries the token sent to the user's inbox.
type VerifyUserRequest struct {
	Token string `json:"token" validate:"required,len=26,alphanum"`
}

// UserResponse represents a user in API responses. Secrets are never
// serialized.
type UserResponse struct {
	ID          string    `json:"id"`
	RoleID      int64     `json:"role_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	Status      string    `json:"status"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) *UserResponse {
	resp := &UserResponse{
		ID:         u.ID.String(),
		RoleID:     u.RoleID,
		Name:       u.Name,
		Email:      u.Email.String(),
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		Status:     string(u.Status()),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format(DateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}

// ParseDate converts an optional wire date into a time.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
