// Package sqlite provides the SQLite-backed annotation store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Annotations are keyed by document
// fingerprint so the same file keeps its markup across renames and reloads.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Geometry (rect, quads, ink strokes) is stored as JSON in the exchange format.
//
// # Data Location
//
// By default, the database is stored at ~/.folio/data/annotations.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
