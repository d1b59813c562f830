package models

// ReconciliationResult partitions the identifiers of two snapshots into four disjoint sets.
//
// Merged is the new authoritative catalog: added, updated and unchanged rows from the new
// snapshot followed by removed rows retained from the old one with [TypeRemoved].
type ReconciliationResult struct {
	Added     []CatalogRow
	Updated   []CatalogRow
	Unchanged []CatalogRow
	Removed   []CatalogRow
	Merged    []CatalogRow
}

// Partition returns the rows tagged with status.
func (r ReconciliationResult) Partition(status Status) []CatalogRow {
	switch status {
	case StatusNew:
		return r.Added
	case StatusUpdated:
		return r.Updated
	case StatusUnchanged:
		return r.Unchanged
	case StatusRemoved:
		return r.Removed
	default:
		return nil
	}
}

// Report returns every row tagged with its status, in New, Updated, Unchanged, Removed order.
func (r ReconciliationResult) Report() []StatusRow {
	report := make([]StatusRow, 0, len(r.Merged))
	for _, status := range []Status{StatusNew, StatusUpdated, StatusUnchanged, StatusRemoved} {
		for _, row := range r.Partition(status) {
			report = append(report, StatusRow{Status: status, CatalogRow: row})
		}
	}
	return report
}

// Counts returns the size of each partition.
func (r ReconciliationResult) Counts() map[Status]int {
	return map[Status]int{
		StatusNew:       len(r.Added),
		StatusUpdated:   len(r.Updated),
		StatusUnchanged: len(r.Unchanged),
		StatusRemoved:   len(r.Removed),
	}
}

// Changed reports whether any dataset was added, updated or removed.
func (r ReconciliationResult) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Removed) > 0
}
