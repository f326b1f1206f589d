package mssql

import (
	"context"

	"transitsql/internal/storage"
	msddl "transitsql/internal/storage/mssql/ddl"
)

// newRepository is swapped out by tests that must not dial a server.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	// Declarations are Postgres-flavoured, so they are rebuilt for T-SQL.
	storage.RegisterDDL("mssql", storage.Dialect{
		MapType: msddl.MapHint,
		Build:   msddl.BuildCreateTableSQL,
	})
}

// wrappedRepo adapts *Repository to storage.Repository and owns the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
