// Package store provides SQLite-backed durable storage for encoding runs.
//
// The store keeps:
//   - Runs: one row per encoder invocation over a crate, with its options
//     and outcome counts
//   - Methods: encoded methods, content-addressed by (def, body hash, text)
//     and shared between runs that produce identical output
//   - Run methods: which methods a run produced, in logical order
//   - Encode errors: procedures that failed, with class, code and location
//
// # Ordering
//
// Within a run, results are ordered by the seq INTEGER the engine's logical
// clock assigned, NEVER by timestamps, so reading a run back is
// deterministic. Runs themselves are ordered by insertion.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content-addressed IDs are computed by package canon using RFC 8785
// canonical JSON and SHA-256 with domain separation.
package store
