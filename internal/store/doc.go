// Package store provides the SQLite deployment ledger.
//
// Every orchestration run that is handed to the deploy runner is recorded:
//   - Runs: mode, target world, plan, buffer digest and outcome
//   - Run buffers: the exported call buffer, zstd-compressed
//   - Run refs: the content rows the run creates or deletes
//   - Deployed: the rows currently live on each world
//
// A run starts pending and becomes applied or failed. Only an applied run
// changes the deployed table, so a revise interrupted between its delete and
// its recreate stays visible as a pending run.
//
// # Ordering
//
// Runs are ordered by seq, an autoincrement logical clock, never by
// timestamps. Timestamps come from an injectable clock and are informational.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
