// Package store provides the SQLite-backed verdict ledger.
//
// The ledger is append-only:
//   - Batches: one record per `fsmcheck check --record` invocation
//   - Runs: one verdict per scenario within a batch
//
// A run records the verdict, where it failed and the trace fingerprint. It
// does not store machine contexts; replaying the scenario file reproduces
// the full trace, and the fingerprint shows whether it still matches.
//
// # Ordering
//
// Every record gets a seq from a logical counter at insert time. History is
// ordered by seq, never by timestamps, so reads are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
