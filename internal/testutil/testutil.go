package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vinylshop/vinylshop/internal/migrations"
	"github.com/vinylshop/vinylshop/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 424242

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema rolls every migration back and applies them again.
func ResetSchema(ctx context.Context, databaseURL string) error {
	db, err := migrations.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Reset(ctx, db); err != nil {
		return err
	}
	return migrations.Up(ctx, db)
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// UniqueEmail generates an address that will not collide across test runs.
func UniqueEmail(prefix string) model.EmailAddress {
	return model.MustEmailAddress(fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano()))
}

// NewTestUser creates an unsaved user with sensible defaults.
func NewTestUser(t testing.TB, email model.EmailAddress) *model.User {
	t.Helper()
	first := "Test"
	return &model.User{
		RoleID:       model.DefaultRoleID,
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		FirstName:    &first,
	}
}

// NewTestAccount creates an unsaved account.
func NewTestAccount(t testing.TB, email model.EmailAddress) *model.Account {
	t.Helper()
	return &model.Account{
		Email: email,
		Name:  "Test Account",
	}
}
