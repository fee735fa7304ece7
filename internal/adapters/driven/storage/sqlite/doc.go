// Package sqlite persists scheduler state in SQLite.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Queries are built with squirrel.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.pulse-brief/data/scheduler.db.
// The daemon writes and `brief schedule status` reads concurrently; WAL mode
// and a busy timeout keep them out of each other's way.
package sqlite
