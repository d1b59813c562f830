// Package catalog builds and compares snapshots of the translation dataset catalog.
//
// Everything here is pure: functions take snapshots and return new ones without I/O
// and without mutating their inputs.
//
//   - [Normalize] converts registry records into catalog rows
//   - [Classify] joins a curated classification table onto a fresh snapshot
//   - [Reconcile] computes the three-way diff between an old and a new snapshot
//   - [Audit] runs data-quality checks over a snapshot
//   - [ExpandPairs] derives external reference pairs for a manually described dataset
package catalog
