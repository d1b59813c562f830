package catalog

import (
	"sort"
	"strings"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

const (
	// LinkPrefix is prepended to an identifier to build its dataset page link.
	LinkPrefix = "https://huggingface.co/datasets/"

	languageTagPrefix = "language:"
	codeTag           = "language:code"
	audioTag          = "modality:audio"
)

// Normalize converts raw registry records into catalog rows.
//
// Records tagged as code or audio datasets are skipped. DatasetType is left unset; it is
// joined in later by [Classify] or carried forward by [Reconcile].
func Normalize(records []models.RawDatasetRecord) []models.CatalogRow {
	rows := make([]models.CatalogRow, 0, len(records))
	for _, rec := range records {
		if excluded(rec.Tags) {
			continue
		}

		langs := languages(rec.Tags)
		rows = append(rows, models.CatalogRow{
			Identifier:         rec.ID,
			CreatedAt:          shared.TruncateDate(rec.CreatedAt),
			LastModified:       shared.TruncateDate(rec.LastModified),
			DatasetType:        models.TypeUnset,
			Link:               LinkPrefix + rec.ID,
			Downloads:          rec.Downloads,
			Likes:              rec.Likes,
			LanguageCount:      len(langs),
			SupportedLanguages: langs,
		})
	}
	return rows
}

func excluded(tags []string) bool {
	for _, tag := range tags {
		if tag == codeTag || tag == audioTag {
			return true
		}
	}
	return false
}

// languages returns the deduplicated language tag values, sorted for a stable serialized form.
func languages(tags []string) []string {
	seen := make(map[string]struct{})
	langs := []string{}
	for _, tag := range tags {
		lang, ok := strings.CutPrefix(tag, languageTagPrefix)
		if !ok || lang == "" {
			continue
		}
		if _, dup := seen[lang]; dup {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
