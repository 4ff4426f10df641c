package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vinylshop/vinylshop/internal/model"
	"github.com/vinylshop/vinylshop/internal/store"
)

const userColumns = `id, role_id, name, email, password, first_name, last_name, phone,
		date_of_birth, is_verified, verification_token, password_reset_token,
		remember_token, created_at, updated_at, deleted_at`

// Users is the PostgreSQL user store.
type Users struct {
	repo *Repository
}

var _ store.UserRepository = (*Users)(nil)

// FindByEmail retrieves a live user by exact email.
func (u *Users) FindByEmail(ctx context.Context, email model.EmailAddress) (*model.User, error) {
	ctx, cancel := u.repo.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`

	user, err := scanUser(u.repo.db.QueryRow(ctx, query, email.String()))
	if err != nil {
		return nil, classify("find user by email", err)
	}
	return user, nil
}

// FindByID retrieves a live user by id.
func (u *Users) FindByID(ctx context.Context, id model.UserID) (*model.User, error) {
	n, err := id.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	ctx, cancel := u.repo.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	user, err := scanUser(u.repo.db.QueryRow(ctx, query, n))
	if err != nil {
		return nil, classify("find user by id", err)
	}
	return user, nil
}

// Save inserts a new user or updates a live one by id.
// An id with no live row is ErrNotFound; ids are only ever assigned by the
// users sequence. Each call is a single autocommitted statement.
func (u *Users) Save(ctx context.Context, user *model.User) error {
	ctx, cancel := u.repo.withTimeout(ctx)
	defer cancel()

	args := []any{
		user.RoleID,
		user.Name,
		user.Email.String(),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.DateOfBirth,
		user.IsVerified,
		user.VerificationToken,
		user.PasswordResetToken,
		user.RememberToken,
	}

	var (
		id      int64
		created time.Time
		updated time.Time
		row     pgx.Row
	)

	if user.IsNew() {
		query := `
			INSERT INTO users (role_id, name, email, password, first_name, last_name, phone,
				date_of_birth, is_verified, verification_token, password_reset_token,
				remember_token, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
			RETURNING id, created_at, updated_at
		`
		row = u.repo.db.QueryRow(ctx, query, args...)
	} else {
		n, err := user.ID.Int64()
		if err != nil {
			return fmt.Errorf("%w: %w", store.ErrNotFound, err)
		}
		query := `
			UPDATE users SET
				role_id = $2,
				name = $3,
				email = $4,
				password = $5,
				first_name = $6,
				last_name = $7,
				phone = $8,
				date_of_birth = $9,
				is_verified = $10,
				verification_token = $11,
				password_reset_token = $12,
				remember_token = $13,
				updated_at = now()
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING id, created_at, updated_at
		`
		row = u.repo.db.QueryRow(ctx, query, append([]any{n}, args...)...)
	}

	if err := row.Scan(&id, &created, &updated); err != nil {
		return classify("save user", err)
	}

	user.ID = model.UserIDFromInt(id)
	user.CreatedAt = created
	user.UpdatedAt = updated
	return nil
}

// Delete soft-deletes a user.
func (u *Users) Delete(ctx context.Context, id model.UserID) error {
	n, err := id.Int64()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	ctx, cancel := u.repo.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	tag, err := u.repo.db.Exec(ctx, query, n)
	if err != nil {
		return classify("delete user", err)
	}
	return affectedOne(tag)
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user  model.User
		id    int64
		email string
	)

	err := row.Scan(
		&id,
		&user.RoleID,
		&user.Name,
		&email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.DateOfBirth,
		&user.IsVerified,
		&user.VerificationToken,
		&user.PasswordResetToken,
		&user.RememberToken,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID = model.UserIDFromInt(id)
	user.Email, err = model.NewEmailAddress(email)
	if err != nil {
		return nil, fmt.Errorf("stored user %d: %w", id, err)
	}
	return &user, nil
}
