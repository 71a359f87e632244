// Package sqlite persists index snapshots in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The chunk list and metadata sidecar are stored as JSON
// columns; the backend's fitted state is stored as an opaque blob.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.zrag/data/index.db
package sqlite
