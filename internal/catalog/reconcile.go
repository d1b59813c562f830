package catalog

import (
	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

// Reconcile performs a full outer join of old and new on Identifier and partitions the result.
//
// Rows present in both are Updated when their LastModified calendar dates differ and Unchanged
// otherwise. New rows without a type inherit the old row's type, except the Removed sentinel,
// so manual classification survives refreshes. Old rows missing from new are kept with
// DatasetType set to [models.TypeRemoved]. Both inputs are left untouched and are assumed to
// hold unique identifiers; on duplicates the first occurrence wins.
func Reconcile(old, new []models.CatalogRow) models.ReconciliationResult {
	oldIndex := index(old)
	newIndex := index(new)

	var result models.ReconciliationResult
	seen := make(map[string]struct{}, len(new))

	for _, row := range new {
		if _, dup := seen[row.Identifier]; dup {
			continue
		}
		seen[row.Identifier] = struct{}{}

		prev, ok := oldIndex[row.Identifier]
		if !ok {
			result.Added = append(result.Added, cloneRow(row))
			continue
		}

		merged := cloneRow(row)
		if merged.DatasetType == models.TypeUnset && prev.DatasetType != models.TypeRemoved {
			merged.DatasetType = prev.DatasetType
		}

		if shared.SameDate(prev.LastModified, row.LastModified) {
			result.Unchanged = append(result.Unchanged, merged)
		} else {
			result.Updated = append(result.Updated, merged)
		}
	}

	gone := make(map[string]struct{})
	for _, row := range old {
		if _, ok := newIndex[row.Identifier]; ok {
			continue
		}
		if _, dup := gone[row.Identifier]; dup {
			continue
		}
		gone[row.Identifier] = struct{}{}

		removed := cloneRow(row)
		removed.DatasetType = models.TypeRemoved
		result.Removed = append(result.Removed, removed)
	}

	result.Merged = make([]models.CatalogRow, 0, len(result.Added)+len(result.Updated)+len(result.Unchanged)+len(result.Removed))
	result.Merged = append(result.Merged, result.Added...)
	result.Merged = append(result.Merged, result.Updated...)
	result.Merged = append(result.Merged, result.Unchanged...)
	result.Merged = append(result.Merged, result.Removed...)

	return result
}

func index(rows []models.CatalogRow) map[string]models.CatalogRow {
	idx := make(map[string]models.CatalogRow, len(rows))
	for _, row := range rows {
		if _, dup := idx[row.Identifier]; !dup {
			idx[row.Identifier] = row
		}
	}
	return idx
}

// cloneRow copies row including its language slice.
func cloneRow(row models.CatalogRow) models.CatalogRow {
	if row.SupportedLanguages != nil {
		langs := make([]string, len(row.SupportedLanguages))
		copy(langs, row.SupportedLanguages)
		row.SupportedLanguages = langs
	}
	return row
}
