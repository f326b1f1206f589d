package storage

import (
	"context"
	"fmt"
	"sync"

	"transitsql/internal/ddl"
	"transitsql/internal/schema"
)

// Dialect is how one backend turns resolved schemas into DDL.
type Dialect struct {
	// MapType maps a hint to the backend's column type.
	MapType func(schema.Hint) string
	// Build renders CREATE TABLE for a table definition.
	Build func(ddl.TableDef) (string, error)
	// PassThroughDeclared runs hand-authored declarations verbatim instead of
	// rebuilding them.
	PassThroughDeclared bool
}

var (
	ddlMu    sync.RWMutex
	dialects = map[string]Dialect{}
)

// RegisterDDL installs the dialect for kind.
func RegisterDDL(kind string, d Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (Dialect, error) {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return Dialect{}, fmt.Errorf("storage: no DDL registered for kind %q", kind)
	}
	return d, nil
}

// CreateTableSQL renders the DDL that creates table for ts on kind.
func CreateTableSQL(kind, table string, ts schema.TableSchema) (string, error) {
	d, err := DialectFor(kind)
	if err != nil {
		return "", err
	}
	if decl, ok := ts.Declared(); ok {
		if d.PassThroughDeclared {
			return decl.Text, nil
		}
		td, err := ddl.FromDeclared(table, decl, d.MapType)
		if err != nil {
			return "", err
		}
		return d.Build(td)
	}
	td, err := ddl.FromSchema(table, ts, d.MapType)
	if err != nil {
		return "", err
	}
	return d.Build(td)
}

// EnsureTable creates table on repo when it does not exist yet.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, ts schema.TableSchema) error {
	stmt, err := CreateTableSQL(kind, table, ts)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("storage: create %s: %w", table, err)
	}
	return nil
}
