package mysql

import (
	"context"

	"transitsql/internal/storage"
	myddl "transitsql/internal/storage/mysql/ddl"
)

// newRepository is swapped out by tests that must not dial a server.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mysql", storage.Dialect{
		MapType: myddl.MapHint,
		Build:   myddl.BuildCreateTableSQL,
	})
}
