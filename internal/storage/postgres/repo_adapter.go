package postgres

import (
	"context"

	"transitsql/internal/storage"
	pgddl "transitsql/internal/storage/postgres/ddl"
)

// newRepository is swapped out by tests that must not dial a server.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	// Declared CREATE TABLE files are written for Postgres and run as-is.
	storage.RegisterDDL("postgres", storage.Dialect{
		MapType:             pgddl.MapHint,
		Build:               pgddl.BuildCreateTableSQL,
		PassThroughDeclared: true,
	})
}
