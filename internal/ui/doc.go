// Package ui implements a terminal view of a harvest run using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [RunningView] : spinner, progress bar over the candidate datasets, the current phase and the latest failures
//  2. [ResultView] : counters of the finished (or interrupted) run and a scrollable list of failed items
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the HarvestEngine, providing non-blocking status reporting during runs.
//
// Pressing q while a run is in progress cancels its context; the engine then returns the partial result,
// which the caller flushes as usual.
package ui
