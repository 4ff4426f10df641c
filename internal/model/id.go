package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidID is returned when an identifier does not hold a base-10 integer.
var ErrInvalidID = errors.New("invalid identifier")

// ID is an immutable identifier wrapping the string form of a primary key.
// The type parameter only tags which aggregate the id belongs to, so a UserID
// cannot be passed where an AccountID is expected.
type ID[T any] struct {
	value string
}

// UserID identifies a User.
type UserID = ID[User]

// AccountID identifies an Account.
type AccountID = ID[Account]

// NewID wraps raw as-is. No format validation is applied.
func NewID[T any](raw string) ID[T] {
	return ID[T]{value: raw}
}

// IDFromInt wraps the decimal form of n.
func IDFromInt[T any](n int64) ID[T] {
	return ID[T]{value: strconv.FormatInt(n, 10)}
}

// NewUserID wraps a raw user id.
func NewUserID(raw string) UserID { return NewID[User](raw) }

// UserIDFromInt builds a UserID from a numeric primary key.
func UserIDFromInt(n int64) UserID { return IDFromInt[User](n) }

// NewAccountID wraps a raw account id.
func NewAccountID(raw string) AccountID { return NewID[Account](raw) }

// AccountIDFromInt builds an AccountID from a numeric primary key.
func AccountIDFromInt(n int64) AccountID { return IDFromInt[Account](n) }

// Int64 parses the wrapped value as a base-10 integer.
// Non-numeric content yields ErrInvalidID rather than a silent zero.
func (id ID[T]) Int64() (int64, error) {
	n, err := strconv.ParseInt(id.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id.value)
	}
	return n, nil
}

// String returns the wrapped value unchanged.
func (id ID[T]) String() string {
	return id.value
}

// IsZero reports whether the id is empty, i.e. the aggregate was never saved.
func (id ID[T]) IsZero() bool {
	return id.value == ""
}

// Equals compares two ids by value.
func (id ID[T]) Equals(other ID[T]) bool {
	return id.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (id ID[T]) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID[T]) UnmarshalText(b []byte) error {
	id.value = string(b)
	return nil
}
