// Package models defines the catalog and harvest types shared by every mtcat package.
//
// The package contains three groups of types:
//
// 1. Catalog snapshot types
//   - [RawDatasetRecord] : A dataset as returned by the registry
//   - [CatalogRow] : One normalized dataset at harvest time
//   - [Status] : Reconciliation partition tag (New, Updated, Unchanged, Removed)
//
// 2. Harvest types
//   - [PairWorkItem] : One (identifier, pair-or-config) unit of statistics work
//   - [PairRecord] : Train/dev/test example counts for one work item
//   - [BuilderInfo] : Split-level counts returned by the statistics provider
//   - [ResumeLedger] : Pairs already present in a prior pairs table
//
// 3. Run modes
//   - [RunMode] : Tagged variant of [DefaultMode], [MonitorMode] and [ValidateMode], each carrying its own payload
package models
