package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vinylshop/vinylshop/internal/model"
	"github.com/vinylshop/vinylshop/internal/store"
)

// Accounts is the PostgreSQL account store.
type Accounts struct {
	repo *Repository
}

var _ store.AccountRepository = (*Accounts)(nil)

// FindByEmail retrieves an open account by exact email.
func (a *Accounts) FindByEmail(ctx context.Context, email model.EmailAddress) (*model.Account, error) {
	ctx, cancel := a.repo.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, email, name, created_at, updated_at, deleted_at
		FROM accounts
		WHERE email = $1 AND deleted_at IS NULL
	`

	account, err := scanAccount(a.repo.db.QueryRow(ctx, query, email.String()))
	if err != nil {
		return nil, classify("find account by email", err)
	}
	return account, nil
}

// FindByID retrieves an open account by id.
func (a *Accounts) FindByID(ctx context.Context, id model.AccountID) (*model.Account, error) {
	n, err := id.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	ctx, cancel := a.repo.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, email, name, created_at, updated_at, deleted_at
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL
	`

	account, err := scanAccount(a.repo.db.QueryRow(ctx, query, n))
	if err != nil {
		return nil, classify("find account by id", err)
	}
	return account, nil
}

// Save inserts a new account or updates an open one by id.
// An id with no open row is ErrNotFound.
func (a *Accounts) Save(ctx context.Context, account *model.Account) error {
	ctx, cancel := a.repo.withTimeout(ctx)
	defer cancel()

	var row pgx.Row
	if account.IsNew() {
		query := `
			INSERT INTO accounts (email, name, created_at, updated_at)
			VALUES ($1, $2, now(), now())
			RETURNING id, created_at, updated_at
		`
		row = a.repo.db.QueryRow(ctx, query, account.Email.String(), account.Name)
	} else {
		n, err := account.ID.Int64()
		if err != nil {
			return fmt.Errorf("%w: %w", store.ErrNotFound, err)
		}
		query := `
			UPDATE accounts
			SET email = $2, name = $3, updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING id, created_at, updated_at
		`
		row = a.repo.db.QueryRow(ctx, query, n, account.Email.String(), account.Name)
	}

	var (
		id      int64
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&id, &created, &updated); err != nil {
		return classify("save account", err)
	}

	account.ID = model.AccountIDFromInt(id)
	account.CreatedAt = created
	account.UpdatedAt = updated
	return nil
}

// Delete closes an account.
func (a *Accounts) Delete(ctx context.Context, id model.AccountID) error {
	n, err := id.Int64()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	ctx, cancel := a.repo.withTimeout(ctx)
	defer cancel()

	tag, err := a.repo.db.Exec(ctx, `
		UPDATE accounts
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, n)
	if err != nil {
		return classify("delete account", err)
	}
	return affectedOne(tag)
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		account model.Account
		id      int64
		email   string
	)

	if err := row.Scan(&id, &email, &account.Name, &account.CreatedAt, &account.UpdatedAt, &account.DeletedAt); err != nil {
		return nil, err
	}

	account.ID = model.AccountIDFromInt(id)
	parsed, err := model.NewEmailAddress(email)
	if err != nil {
		return nil, fmt.Errorf("stored account %d: %w", id, err)
	}
	account.Email = parsed
	return &account, nil
}
