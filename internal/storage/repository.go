// Package storage holds the backend-agnostic contracts for loading resolved
// tables into a database, a registry of backend factories and dialect DDL
// builders, and the batched loader shared by every backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is an open connection to one database.
type Repository interface {
	// Exec runs a statement (or script) without arguments, typically DDL.
	Exec(ctx context.Context, sql string) error
	// TableColumns lists the live columns of table in ordinal order. A
	// missing table yields an empty list.
	TableColumns(ctx context.Context, table string) ([]string, error)
	// Begin opens a write session that replaces the contents of table.
	Begin(ctx context.Context, table string) (Session, error)
	// Ping checks connectivity and reports who and where we are.
	Ping(ctx context.Context) (ServerInfo, error)
	Close()
}

// Session is one transaction writing into a single table. Truncate and
// CopyFrom only become visible on Commit.
type Session interface {
	Truncate(ctx context.Context) error
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ServerInfo is what Ping reports.
type ServerInfo struct {
	Version  string
	Database string
	User     string
}

// Config selects and configures a backend.
type Config struct {
	Kind string // "postgres", "mssql" or "sqlite"
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call it from
// init.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
