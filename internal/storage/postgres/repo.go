// Package postgres implements a Postgres repository using pgx v5. Loads run in
// a single transaction: TRUNCATE, then COPY of every batch, then COMMIT.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"transitsql/internal/storage"
	pgddl "transitsql/internal/storage/postgres/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, close, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return wrapPgErr("exec", err)
}

const columnsQuery = `
SELECT column_name
  FROM information_schema.columns
 WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema())
   AND table_name = $2
 ORDER BY ordinal_position`

// TableColumns lists the columns of table ("table" or "schema.table").
func (r *Repository) TableColumns(ctx context.Context, table string) ([]string, error) {
	schemaName, name := splitSchema(table)
	rows, err := r.pool.Query(ctx, columnsQuery, schemaName, name)
	if err != nil {
		return nil, wrapPgErr("table columns", err)
	}
	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapPgErr("table columns", err)
	}
	return cols, nil
}

// Ping reports the server version, database and role.
func (r *Repository) Ping(ctx context.Context) (storage.ServerInfo, error) {
	var info storage.ServerInfo
	err := r.pool.QueryRow(ctx, "SELECT version(), current_database(), current_user").
		Scan(&info.Version, &info.Database, &info.User)
	if err != nil {
		return storage.ServerInfo{}, wrapPgErr("ping", err)
	}
	return info, nil
}

// Begin opens a transaction that replaces the contents of table.
func (r *Repository) Begin(ctx context.Context, table string) (storage.Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, wrapPgErr("begin", err)
	}
	return &session{tx: tx, table: table}, nil
}

type session struct {
	tx    pgx.Tx
	table string
}

func (s *session) Truncate(ctx context.Context) error {
	_, err := s.tx.Exec(ctx, "TRUNCATE TABLE "+pgddl.QuoteFQN(s.table)+" CASCADE")
	return wrapPgErr("truncate "+s.table, err)
}

func (s *session) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := s.tx.CopyFrom(ctx, splitFQN(s.table), columns, pgx.CopyFromRows(rows))
	return n, wrapPgErr("copy into "+s.table, err)
}

func (s *session) Commit(ctx context.Context) error {
	return wrapPgErr("commit", s.tx.Commit(ctx))
}

// Rollback is a no-op after Commit.
func (s *session) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return wrapPgErr("rollback", err)
	}
	return nil
}

// wrapPgErr surfaces the server detail and SQLSTATE when present.
func wrapPgErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("postgres: %s: %s (%s): %w", op, pgErr.Detail, pgErr.SQLState(), err)
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

func splitSchema(fqn string) (string, string) {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i], fqn[i+1:]
	}
	return "", fqn
}
