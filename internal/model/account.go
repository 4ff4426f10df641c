package model

import "time"

// Account is the account aggregate, identified by an AccountID and an email.
type Account struct {
	ID        AccountID    `json:"id"`
	Email     EmailAddress `json:"email"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	DeletedAt *time.Time   `json:"-"`
}

// IsNew reports whether the account has never been saved.
func (a *Account) IsNew() bool {
	return a.ID.IsZero()
}

// IsDeleted reports whether the account was closed.
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	c.DeletedAt = cloneTime(a.DeletedAt)
	return &c
}
