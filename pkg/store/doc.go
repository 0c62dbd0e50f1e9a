// Package store persists engine state to an embedded SQLite database
// accessed cgo-free through modernc.org/sqlite via jmoiron/sqlx, in
// write-ahead-log mode. A single writer goroutine drains a bounded
// channel of batched writes; any number of readers may query
// concurrently under WAL. Forward-only migrations are gated by a
// meta(schema_version) row; destructive migrations are never applied.
package store
