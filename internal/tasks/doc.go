// Package tasks orchestrates catalog synchronization and pair harvesting with real-time progress reporting.
//
// # Core Operations
//
//  1. [CatalogSync.Initialize] : first catalog
//     - Lists datasets from the registry and normalizes them
//     - Joins dataset types from the curated classification table
//
//  2. [CatalogSync.Refresh] : catalog update
//     - Lists datasets from the registry and normalizes them
//     - Reconciles against the prior catalog (new, updated, unchanged, removed)
//
//  3. [HarvestEngine.Run] : pair statistics
//     - Filters "parallel" rows, setting aside Parallel rows without exactly two languages
//     - Resolves each row into work items ([Resolver])
//     - Fetches split statistics per item and maps them to train/dev/test counts ([MapSplits])
//
// # Run Modes
//
//   - [models.DefaultMode] : harvest every candidate
//   - [models.MonitorMode] : skip (identifier, label) pairs already in the existing table
//   - [models.ValidateMode] : skip datasets present in the existing or external table
//
// # Failure Isolation
//
// Per-item failures become [models.HarvestFailure] values: logged, appended to the mode's ledger
// stream and, when a [FailureRecorder] is set, journaled. The run then continues.
//
// Cancelling the context stops the run between items or inside the blocking provider call.
// The records harvested so far are returned with an error wrapping [shared.ErrInterrupted].
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
package tasks
