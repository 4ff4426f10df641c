// Package repository provides the PostgreSQL store adapter.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinylshop/vinylshop/internal/store"
)

// DefaultTimeout bounds each store call when no timeout is configured.
const DefaultTimeout = 3 * time.Second

// PostgreSQL SQLSTATE codes and classes the adapters tell apart.
const (
	uniqueViolation    = "23505"
	dataExceptionClass = "22"
)

// querier is the subset of pgxpool.Pool used by the adapters.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides database access methods.
type Repository struct {
	pool    *pgxpool.Pool
	db      querier
	timeout time.Duration
}

// New creates a new Repository with a connection pool.
// Every store call is bounded by timeout.
func New(ctx context.Context, databaseURL string, timeout time.Duration) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := newRepository(pool, timeout)
	r.pool = pool
	return r, nil
}

func newRepository(db querier, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Repository{db: db, timeout: timeout}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("database pool not initialized")
	}
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// Users returns the user store.
func (r *Repository) Users() *Users {
	return &Users{repo: r}
}

// Accounts returns the account store.
func (r *Repository) Accounts() *Accounts {
	return &Accounts{repo: r}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// classify maps a driver error onto the store taxonomy.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return store.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, store.ErrDuplicateEmail)
	case isDataException(err):
		return fmt.Errorf("%s: %w: %w", op, store.ErrInvalidData, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, store.ErrStoreUnavailable, err)
	}
}

// isUniqueViolation checks if the error is a unique violation on an email index.
// Primary key collisions are not email duplicates.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return pgErr.ConstraintName == "" || strings.Contains(pgErr.ConstraintName, "email")
}

// isDataException checks for SQLSTATE class 22, raised for values a column
// cannot hold.
func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, dataExceptionClass)
}

// affectedOne reports ErrNotFound when a write touched no rows.
func affectedOne(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
