// Package sqlite provides a SQLite-based implementation of the local
// persistence ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database connection backs:
//
//   - TokenStore: the signed-in session (token pair and cached user)
//   - ChatSessionStore: the last chat session per user and store
//   - SchedulerStore: background task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.ragchat/ragchat.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite locking in
// WAL mode.
package sqlite
