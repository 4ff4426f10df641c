package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow replays fixed column values into Scan destinations.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(r.values[i])
		if target.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer {
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v)
			v = p
		}
		target.Set(v)
	}
	return nil
}

type fakeCall struct {
	sql  string
	args []any
}

// fakeDB is a scripted querier. Rows and exec results are consumed in order.
type fakeDB struct {
	rows     []pgx.Row
	tags     []pgconn.CommandTag
	execErr  error
	calls    []fakeCall
	deadline bool
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	_, f.deadline = ctx.Deadline()
	f.calls = append(f.calls, fakeCall{sql: sql, args: args})
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	_, f.deadline = ctx.Deadline()
	f.calls = append(f.calls, fakeCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if len(f.tags) == 0 {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	tag := f.tags[0]
	f.tags = f.tags[1:]
	return tag, nil
}

func userRow(id int64, email string, deletedAt *time.Time) fakeRow {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var deleted any
	if deletedAt != nil {
		deleted = *deletedAt
	}
	return fakeRow{values: []any{
		id,           // id
		int64(1),     // role_id
		"Test User",  // name
		email,        // email
		"hash",       // password
		"Ada",        // first_name
		nil,          // last_name
		nil,          // phone
		nil,          // date_of_birth
		true,         // is_verified
		nil,          // verification_token
		nil,          // password_reset_token
		nil,          // remember_token
		now,          // created_at
		now,          // updated_at
		deleted,      // deleted_at
	}}
}
