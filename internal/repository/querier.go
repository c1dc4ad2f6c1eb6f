package repository

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql executors the repositories need.
// Satisfied by *sql.DB, *sql.Conn, *sql.Tx, and *tenant.Session, so the same
// repository works against the master pool or a per-request tenant session.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
