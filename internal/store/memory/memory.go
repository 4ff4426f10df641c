// Package memory provides a map-backed store adapter for tests and local runs.
// It enforces the same unique-email and soft-delete rules as the Postgres schema.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vinylshop/vinylshop/internal/model"
	"github.com/vinylshop/vinylshop/internal/store"
)

// accessors maps the generic table onto a concrete aggregate type.
type accessors[T any] struct {
	id         func(*T) model.ID[T]
	setID      func(*T, model.ID[T])
	email      func(*T) model.EmailAddress
	setStamps  func(t *T, created, updated time.Time)
	createdAt  func(*T) time.Time
	deletedAt  func(*T) *time.Time
	setDeleted func(*T, time.Time)
	clone      func(*T) *T
}

// Table is an in-memory Repository for one aggregate type.
type Table[T any] struct {
	mu      sync.RWMutex
	rows    map[string]*T
	byEmail map[string]string
	nextID  int64
	now     func() time.Time
	acc     accessors[T]
}

func newTable[T any](acc accessors[T]) *Table[T] {
	return &Table[T]{
		rows:    make(map[string]*T),
		byEmail: make(map[string]string),
		nextID:  1,
		now:     func() time.Time { return time.Now().UTC() },
		acc:     acc,
	}
}

// NewUsers returns an empty user table.
func NewUsers() *Table[model.User] {
	return newTable(accessors[model.User]{
		id:    func(u *model.User) model.UserID { return u.ID },
		setID: func(u *model.User, id model.UserID) { u.ID = id },
		email: func(u *model.User) model.EmailAddress { return u.Email },
		setStamps: func(u *model.User, created, updated time.Time) {
			u.CreatedAt, u.UpdatedAt = created, updated
		},
		createdAt:  func(u *model.User) time.Time { return u.CreatedAt },
		deletedAt:  func(u *model.User) *time.Time { return u.DeletedAt },
		setDeleted: func(u *model.User, at time.Time) { u.DeletedAt = &at },
		clone:      func(u *model.User) *model.User { return u.Clone() },
	})
}

// NewAccounts returns an empty account table.
func NewAccounts() *Table[model.Account] {
	return newTable(accessors[model.Account]{
		id:    func(a *model.Account) model.AccountID { return a.ID },
		setID: func(a *model.Account, id model.AccountID) { a.ID = id },
		email: func(a *model.Account) model.EmailAddress { return a.Email },
		setStamps: func(a *model.Account, created, updated time.Time) {
			a.CreatedAt, a.UpdatedAt = created, updated
		},
		createdAt:  func(a *model.Account) time.Time { return a.CreatedAt },
		deletedAt:  func(a *model.Account) *time.Time { return a.DeletedAt },
		setDeleted: func(a *model.Account, at time.Time) { a.DeletedAt = &at },
		clone:      func(a *model.Account) *model.Account { return a.Clone() },
	})
}

// FindByEmail returns the live aggregate with exactly this email.
func (t *Table[T]) FindByEmail(ctx context.Context, email model.EmailAddress) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	id, ok := t.byEmail[email.String()]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t.live(id)
}

// FindByID returns the live aggregate with this id.
func (t *Table[T]) FindByID(ctx context.Context, id model.ID[T]) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.live(id.String())
}

func (t *Table[T]) live(id string) (*T, error) {
	row, ok := t.rows[id]
	if !ok || t.acc.deletedAt(row) != nil {
		return nil, store.ErrNotFound
	}
	return t.acc.clone(row), nil
}

// Save inserts a new aggregate or updates a live one by id.
// An id this table never assigned, or one since deleted, is ErrNotFound.
func (t *Table[T]) Save(ctx context.Context, aggregate *T) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.acc.id(aggregate)
	email := t.acc.email(aggregate).String()

	var existing *T
	if !id.IsZero() {
		row, ok := t.rows[id.String()]
		if !ok || t.acc.deletedAt(row) != nil {
			return store.ErrNotFound
		}
		existing = row
	}

	if owner, taken := t.byEmail[email]; taken && (id.IsZero() || owner != id.String()) {
		return store.ErrDuplicateEmail
	}

	now := t.now()
	created := now

	if existing == nil {
		id = model.IDFromInt[T](t.nextID)
		t.nextID++
	} else {
		created = t.acc.createdAt(existing)
		delete(t.byEmail, t.acc.email(existing).String())
	}

	t.acc.setID(aggregate, id)
	t.acc.setStamps(aggregate, created, now)

	t.rows[id.String()] = t.acc.clone(aggregate)
	t.byEmail[email] = id.String()
	return nil
}

// Delete marks the aggregate deleted. Its email remains reserved.
func (t *Table[T]) Delete(ctx context.Context, id model.ID[T]) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id.String()]
	if !ok || t.acc.deletedAt(row) != nil {
		return store.ErrNotFound
	}
	t.acc.setDeleted(row, t.now())
	return nil
}

// Len returns the number of stored rows, deleted ones included.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

var (
	_ store.UserRepository    = (*Table[model.User])(nil)
	_ store.AccountRepository = (*Table[model.Account])(nil)
)
