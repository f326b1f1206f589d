// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and DDL dialects with the storage package:
//
//   - "postgres" (transitsql/internal/storage/postgres)
//   - "mssql"    (transitsql/internal/storage/mssql)
//   - "mysql"    (transitsql/internal/storage/mysql)
//   - "sqlite"   (transitsql/internal/storage/sqlite)
//
// Typical usage:
//
//	import _ "transitsql/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: dsn})
package all

import (
	_ "transitsql/internal/storage/mssql"
	_ "transitsql/internal/storage/mysql"
	_ "transitsql/internal/storage/postgres"
	_ "transitsql/internal/storage/sqlite"
)
