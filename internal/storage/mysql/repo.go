// Package mysql implements a MySQL/MariaDB repository on database/sql with
// the go-sql-driver connector. Rows go in as multi-row INSERTs inside the
// load transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"transitsql/internal/storage"
	myddl "transitsql/internal/storage/mysql/ddl"
)

// maxPlaceholders is the server's limit on bound parameters per statement.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration.
type Config struct {
	// DSN in go-sql-driver form, e.g. "etl:secret@tcp(db:3306)/transito".
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	dbName string
}

// NewRepository parses the DSN, opens a pool and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	if dc.DBName == "" {
		return nil, nil, fmt.Errorf("mysql dsn: database name is required")
	}
	dc.ParseTime = true
	conn, err := mysql.NewConnector(dc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db, dbName: dc.DBName}, func() { _ = db.Close() }, nil
}

// Exec runs one statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// TableColumns lists the columns of table in ordinal order.
func (r *Repository) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position",
		r.dbName, table)
	if err != nil {
		return nil, fmt.Errorf("mysql: table columns: %w", err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("mysql: table columns: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// Ping reports the server version, database and account.
func (r *Repository) Ping(ctx context.Context) (storage.ServerInfo, error) {
	var info storage.ServerInfo
	err := r.db.QueryRowContext(ctx, "SELECT VERSION(), DATABASE(), CURRENT_USER()").
		Scan(&info.Version, &info.Database, &info.User)
	if err != nil {
		return storage.ServerInfo{}, fmt.Errorf("mysql: ping: %w", err)
	}
	return info, nil
}

// Begin opens a transaction that replaces the contents of table.
func (r *Repository) Begin(ctx context.Context, table string) (storage.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mysql: begin tx: %w", err)
	}
	return &session{tx: tx, table: table}, nil
}

type session struct {
	tx    *sql.Tx
	table string
	done  bool
}

// Truncate deletes every row. TRUNCATE TABLE would commit implicitly.
func (s *session) Truncate(ctx context.Context) error {
	if _, err := s.tx.ExecContext(ctx, "DELETE FROM "+myddl.QuoteIdent(s.table)); err != nil {
		return fmt.Errorf("mysql: delete %s: %w", s.table, err)
	}
	return nil
}

// CopyFrom inserts rows with as few multi-row INSERTs as the placeholder
// limit allows.
func (s *session) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	perStmt := max(maxPlaceholders/len(columns), 1)

	var inserted int64
	for start := 0; start < len(rows); start += perStmt {
		chunk := rows[start:min(start+perStmt, len(rows))]
		query, args, err := insertSQL(s.table, columns, chunk)
		if err != nil {
			return inserted, err
		}
		res, err := s.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("mysql: insert: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("mysql: rows affected: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}

func (s *session) Commit(ctx context.Context) error {
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
	}
	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("mysql: rollback: %w", err)
	}
	return nil
}

// insertSQL renders one INSERT ... VALUES (?, ?), (?, ?) for rows.
func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", myddl.QuoteIdent(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
		args = append(args, row...)
	}
	return b.String(), args, nil
}
