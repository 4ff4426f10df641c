// Package model defines domain entities for the application.
package model

import "time"

// DefaultRoleID is the role assigned to newly registered users.
const DefaultRoleID int64 = 1

// UserStatus represents the computed status of a user.
type UserStatus string

const (
	UserStatusActive     UserStatus = "active"
	UserStatusUnverified UserStatus = "unverified"
	UserStatusDeleted    UserStatus = "deleted"
)

// User is the customer aggregate, fetched and persisted as a whole.
type User struct {
	ID                 UserID       `json:"id"`
	RoleID             int64        `json:"role_id"`
	Name               string       `json:"name"`
	Email              EmailAddress `json:"email"`
	PasswordHash       string       `json:"-"`
	FirstName          *string      `json:"first_name,omitempty"`
	LastName           *string      `json:"last_name,omitempty"`
	Phone              *string      `json:"phone,omitempty"`
	DateOfBirth        *time.Time   `json:"date_of_birth,omitempty"`
	IsVerified         bool         `json:"is_verified"`
	VerificationToken  *string      `json:"-"`
	PasswordResetToken *string      `json:"-"`
	RememberToken      *string      `json:"-"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	DeletedAt          *time.Time   `json:"-"`
}

// IsNew reports whether the user has never been saved.
func (u *User) IsNew() bool {
	return u.ID.IsZero()
}

// IsDeleted reports whether the user was soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Status computes the current status of the user.
func (u *User) Status() UserStatus {
	if u.DeletedAt != nil {
		return UserStatusDeleted
	}
	if !u.IsVerified {
		return UserStatusUnverified
	}
	return UserStatusActive
}

// Clone returns a deep copy so stored state is never aliased by callers.
func (u *User) Clone() *User {
	c := *u
	c.FirstName = cloneString(u.FirstName)
	c.LastName = cloneString(u.LastName)
	c.Phone = cloneString(u.Phone)
	c.VerificationToken = cloneString(u.VerificationToken)
	c.PasswordResetToken = cloneString(u.PasswordResetToken)
	c.RememberToken = cloneString(u.RememberToken)
	c.DateOfBirth = cloneTime(u.DateOfBirth)
	c.DeletedAt = cloneTime(u.DeletedAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
