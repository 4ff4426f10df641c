// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// gooseResetContext is a seam for testing goose.ResetContext.
var gooseResetContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.ResetContext(ctx, db, dir, opts...)
}

// Open opens a database/sql handle for running migrations.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	return db, nil
}

func setup() error {
	goose.SetBaseFS(files)
	return goose.SetDialect("postgres")
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Reset rolls back every applied migration. Used by integration tests.
func Reset(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	if err := gooseResetContext(ctx, db, dir); err != nil {
		return fmt.Errorf("reset migrations: %w", err)
	}
	return nil
}

// Run opens databaseURL, applies migrations and closes the handle.
func Run(ctx context.Context, databaseURL string) error {
	db, err := Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	return Up(ctx, db)
}
