// Package repositories implements the SQLite run journal.
//
// The journal complements the flat-file tables: the missing-items ledger only keeps identifiers,
// while the journal keeps every run with its counters, the full error text of each failed item,
// and the reconciliation status of each dataset seen by refresh runs.
//
// Key Implementations:
//   - [RunRepository] : run lifecycle (start, finish, list) with sequence numbers
//   - [FailureRepository] : per-item failures; [FailureRepository.ForRun] adapts it to the harvester's failure recorder
//   - [StatusChangeRepository] : per-dataset status history from refresh runs
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments the counter in a dedicated sequence table.
package repositories
