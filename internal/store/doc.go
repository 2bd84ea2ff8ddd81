// Package store provides the SQLite-backed edit journal.
//
// The journal is an append-only log: one row per committed edit,
// keyed by a random id with a UNIQUE (session_id, seq) pair giving
// replay order inside a session. Each row carries the kind and target
// of the edit, its JSON payload, and the SHA-256 hash of the module
// text after the edit applied, so a replay can verify it converged on
// the same state.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Reads order by seq ASC, id ASC COLLATE BINARY so results are
// identical across replays.
package store
