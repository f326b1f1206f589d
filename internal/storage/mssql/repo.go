// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. A load deletes the target rows and bulk-copies
// the new ones inside one transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"transitsql/internal/storage"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, close, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// TableColumns lists the columns of table in column_id order.
func (r *Repository) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sys.columns WHERE object_id = OBJECT_ID(@p1) ORDER BY column_id", msFQN(table))
	if err != nil {
		return nil, fmt.Errorf("mssql: table columns: %w", err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("mssql: table columns: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// Ping reports the server version, database and login.
func (r *Repository) Ping(ctx context.Context) (storage.ServerInfo, error) {
	var info storage.ServerInfo
	err := r.db.QueryRowContext(ctx, "SELECT @@VERSION, DB_NAME(), SUSER_SNAME()").
		Scan(&info.Version, &info.Database, &info.User)
	if err != nil {
		return storage.ServerInfo{}, fmt.Errorf("mssql: ping: %w", err)
	}
	return info, nil
}

// Begin opens a transaction that replaces the contents of table.
func (r *Repository) Begin(ctx context.Context, table string) (storage.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mssql: begin tx: %w", err)
	}
	return &session{tx: tx, table: table}, nil
}

type session struct {
	tx    *sql.Tx
	table string
	done  bool
}

// Truncate uses DELETE since TRUNCATE TABLE is refused on tables referenced
// by a foreign key.
func (s *session) Truncate(ctx context.Context) error {
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM "+msFQN(s.table)); err != nil {
		return fmt.Errorf("mssql: delete %s: %w", s.table, err)
	}
	return nil
}

// CopyFrom bulk-copies rows into the session table.
func (s *session) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := s.tx.PrepareContext(ctx, mssql.CopyIn(s.table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx) // flush
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	return n, nil
}

func (s *session) Commit(ctx context.Context) error {
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("mssql: commit: %w", err)
	}
	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("mssql: rollback: %w", err)
	}
	return nil
}

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.stops" to
// "[dbo].[stops]". If no dot is present, returns a single quoted ident.
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}
