package sqlite

import (
	"context"

	"transitsql/internal/storage"
	sqliteddl "transitsql/internal/storage/sqlite/ddl"
)

// newRepository is swapped out by tests that must not dial a server.
var newRepository = NewRepository

// wrappedRepo owns the cleanup returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	// SERIAL only auto-assigns in Postgres, so declarations are rebuilt with
	// an INTEGER rowid key.
	storage.RegisterDDL("sqlite", storage.Dialect{
		MapType: sqliteddl.MapHint,
		Build:   sqliteddl.BuildCreateTableSQL,
	})
}
