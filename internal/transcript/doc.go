// Package transcript provides SQLite-backed durable storage for
// playthrough event logs.
//
// The store is an append-only log of the events the engine emits, one row
// per event, grouped by playthrough token. It exists for development:
// inspecting what a script actually did, diffing traces across script
// revisions, and feeding the trace CLI. It is not a save system.
//
// Ordering uses the engine's logical clock (seq INTEGER), never
// timestamps, so a replayed playthrough reads back in exactly the order
// it executed. The (playthrough, seq) pair is unique; re-recording the
// same event is a silent no-op.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: events always belong to a playthrough
package transcript
