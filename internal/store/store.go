// Package store defines the repository contract for user and account
// aggregates and the errors every adapter reports.
package store

import (
	"context"
	"errors"

	"github.com/vinylshop/vinylshop/internal/model"
)

// Errors returned by every store adapter. Adapters wrap the underlying cause,
// so callers match with errors.Is.
var (
	// ErrNotFound means no live aggregate matches the lookup key.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail means the unique email constraint rejected a write.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidData means the store rejected a value it cannot hold, such
	// as a string longer than its column. Retrying the same write fails again.
	ErrInvalidData = errors.New("invalid data")
	// ErrStoreUnavailable means the backing store failed or timed out.
	// Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Repository looks up and persists aggregates of type T identified by K.
//
// Save persists the aggregate as one unit of work: on success the new state
// is visible to every later FindByEmail/FindByID, on failure nothing is.
// A new aggregate (zero id) gets its id and timestamps assigned in place.
// Ids are assigned only by the store, so saving an aggregate whose id has
// no live record returns ErrNotFound.
type Repository[T any, K any] interface {
	FindByEmail(ctx context.Context, email model.EmailAddress) (*T, error)
	FindByID(ctx context.Context, id K) (*T, error)
	Save(ctx context.Context, aggregate *T) error
	// Delete soft-deletes the aggregate. Its email stays reserved.
	Delete(ctx context.Context, id K) error
}

// UserRepository stores users.
type UserRepository = Repository[model.User, model.UserID]

// AccountRepository stores accounts.
type AccountRepository = Repository[model.Account, model.AccountID]

// IsRetryable reports whether err is worth retrying by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
