// Package sqlite provides the SQLite-backed implementation of the issue
// store, including the full-text index the exact search pass runs on.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Issue records
// are stored as JSON documents keyed by (repo, number); an FTS5 table
// indexes title, body and the concatenated comment bodies.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode; callers see transient lock contention
// as domain.ErrStorageBusy.
package sqlite
