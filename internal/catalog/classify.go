package catalog

import "github.com/desertthunder/mtcat/internal/models"

// Classifier looks up the curated dataset type of an identifier.
type Classifier interface {
	Classify(identifier string) (models.DatasetType, bool)
}

// ClassificationTable is a [Classifier] backed by an in-memory identifier index.
type ClassificationTable map[string]models.DatasetType

// NewClassificationTable indexes the typed rows of a curated side table. Rows without a type are ignored.
func NewClassificationTable(rows []models.CatalogRow) ClassificationTable {
	table := make(ClassificationTable, len(rows))
	for _, row := range rows {
		if row.DatasetType == models.TypeUnset {
			continue
		}
		table[row.Identifier] = row.DatasetType
	}
	return table
}

// Classify implements [Classifier].
func (t ClassificationTable) Classify(identifier string) (models.DatasetType, bool) {
	dt, ok := t[identifier]
	return dt, ok
}

// Classify returns a copy of rows with DatasetType joined from c.
//
// Rows the classifier does not know keep their current type.
func Classify(rows []models.CatalogRow, c Classifier) []models.CatalogRow {
	out := make([]models.CatalogRow, len(rows))
	copy(out, rows)
	if c == nil {
		return out
	}
	for i := range out {
		if dt, ok := c.Classify(out[i].Identifier); ok {
			out[i].DatasetType = dt
		}
	}
	return out
}
