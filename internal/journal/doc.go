// Package journal provides a SQLite-backed, append-only record of every
// mutation fxrelay attempts against the relay API.
//
// The journal is history, not a queue: nothing in it is ever replayed.
// Each row captures the operation, the alias id, the JSON payload sent (or
// that would have been sent in dry-run mode) and the outcome.
//
// # Ordering
//
// Rows are ordered by seq, an INTEGER PRIMARY KEY assigned on insert.
// recorded_at is informational only; queries never order by it.
//
// # Database Configuration
//
//   - WAL mode: the UI and a concurrent "fxrelay history" can both open it
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - PRAGMA user_version tracks schema migrations
package journal
