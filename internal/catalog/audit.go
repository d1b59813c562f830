package catalog

import (
	"fmt"

	"github.com/desertthunder/mtcat/internal/models"
)

// AuditCheck names a data-quality rule.
type AuditCheck string

const (
	CheckDuplicateIdentifier AuditCheck = "duplicate-identifier"
	CheckMissingField        AuditCheck = "missing-field"
	CheckNoLanguages         AuditCheck = "no-languages"
	CheckParallelPair        AuditCheck = "parallel-pair"
	CheckMultilingualCount   AuditCheck = "multilingual-count"
)

// multilingualMarker is accepted as the only language of a Multilingual Parallel row.
const multilingualMarker = "multilingual"

// AuditFinding is one rule violation.
type AuditFinding struct {
	Check      AuditCheck
	Identifier string
	Message    string
}

func (f AuditFinding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Check, f.Identifier, f.Message)
}

// Audit runs every data-quality check over rows and returns findings in row order.
// Removed rows are only checked for duplicates.
func Audit(rows []models.CatalogRow) []AuditFinding {
	var findings []AuditFinding
	seen := make(map[string]int, len(rows))

	for i, row := range rows {
		if row.Identifier != "" {
			if first, dup := seen[row.Identifier]; dup {
				findings = append(findings, AuditFinding{
					Check:      CheckDuplicateIdentifier,
					Identifier: row.Identifier,
					Message:    fmt.Sprintf("row %d repeats row %d", i+1, first+1),
				})
			} else {
				seen[row.Identifier] = i
			}
		}

		if row.DatasetType == models.TypeRemoved {
			continue
		}

		findings = append(findings, missingFields(i, row)...)

		if len(row.SupportedLanguages) == 0 {
			findings = append(findings, AuditFinding{
				Check:      CheckNoLanguages,
				Identifier: row.Identifier,
				Message:    "supported languages list is empty",
			})
		}

		switch row.DatasetType {
		case models.TypeParallel:
			if len(row.SupportedLanguages) != 2 {
				findings = append(findings, AuditFinding{
					Check:      CheckParallelPair,
					Identifier: row.Identifier,
					Message:    fmt.Sprintf("parallel dataset lists %d languages, want 2", len(row.SupportedLanguages)),
				})
			}
		case models.TypeMultilingualParallel:
			if isMultilingualMarker(row.SupportedLanguages) {
				break
			}
			if len(row.SupportedLanguages) <= 2 {
				findings = append(findings, AuditFinding{
					Check:      CheckMultilingualCount,
					Identifier: row.Identifier,
					Message:    fmt.Sprintf("multilingual dataset lists %d languages, want more than 2", len(row.SupportedLanguages)),
				})
			}
		}
	}
	return findings
}

func missingFields(i int, row models.CatalogRow) []AuditFinding {
	var findings []AuditFinding
	fields := []struct {
		name  string
		empty bool
	}{
		{"Author/Dataset", row.Identifier == ""},
		{"Hugging Face Link", row.Link == ""},
		{"Dataset Type", row.DatasetType == models.TypeUnset},
	}
	for _, f := range fields {
		if !f.empty {
			continue
		}
		id := row.Identifier
		if id == "" {
			id = fmt.Sprintf("row %d", i+1)
		}
		findings = append(findings, AuditFinding{
			Check:      CheckMissingField,
			Identifier: id,
			Message:    fmt.Sprintf("%s is empty", f.name),
		})
	}
	return findings
}

func isMultilingualMarker(langs []string) bool {
	return len(langs) == 1 && langs[0] == multilingualMarker
}
