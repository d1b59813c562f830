package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/services"
	"github.com/desertthunder/mtcat/internal/shared"
)

// configPattern accepts pair-style config names such as "de-en", "deu_Latn-eng_Latn" or "en2fr".
var configPattern = regexp.MustCompile(`^[a-z]{2,3}((_|-)\w+)?(-|2)[a-z]{2,3}((_|-)\w+)?$`)

const defaultConfigPrefix = "default"

// FilterParallel splits rows into harvest candidates (type contains "parallel", case-insensitive)
// and edge cases (Parallel rows that do not list exactly two languages). Edge cases are not candidates.
func FilterParallel(rows []models.CatalogRow) (candidates, edgeCases []models.CatalogRow) {
	for _, row := range rows {
		if !row.DatasetType.IsParallel() {
			continue
		}
		if row.IsEdgeCase() {
			edgeCases = append(edgeCases, row)
			continue
		}
		candidates = append(candidates, row)
	}
	return candidates, edgeCases
}

// Resolver turns catalog rows into work items.
type Resolver struct {
	provider services.StatsProvider
}

func NewResolver(provider services.StatsProvider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve returns the work items of row.
//
// Parallel rows yield one item labelled with their languages joined by "-". Multilingual rows
// yield one item per config name, provided the first config looks like a language pair; only
// the first config is checked. Rows of any other type yield nothing.
func (r *Resolver) Resolve(ctx context.Context, row models.CatalogRow) ([]models.PairWorkItem, error) {
	switch {
	case row.DatasetType.IsSimpleParallel():
		return []models.PairWorkItem{{
			Identifier: row.Identifier,
			Label:      strings.Join(row.SupportedLanguages, "-"),
			Kind:       models.KindParallel,
		}}, nil
	case row.DatasetType.IsMultilingual():
		return r.resolveConfigs(ctx, row.Identifier)
	default:
		return nil, nil
	}
}

func (r *Resolver) resolveConfigs(ctx context.Context, identifier string) ([]models.PairWorkItem, error) {
	configs, err := r.provider.GetConfigNames(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoConfigs, identifier)
	}

	first := configs[0]
	if strings.HasPrefix(first, defaultConfigPrefix) {
		return nil, fmt.Errorf("%w: %s has config %q", shared.ErrDefaultConfig, identifier, first)
	}
	if !configPattern.MatchString(first) {
		return nil, fmt.Errorf("%w: %s has config %q", shared.ErrConfigPattern, identifier, first)
	}

	items := make([]models.PairWorkItem, 0, len(configs))
	for _, config := range configs {
		items = append(items, models.PairWorkItem{
			Identifier: identifier,
			Label:      config,
			Kind:       models.KindMultilingualConfig,
		})
	}
	return items, nil
}

// MapSplits folds builder info into a pair record: splits starting with "tr" count as train,
// "val" as dev, anything else as test. Splits landing in the same bucket are summed.
func MapSplits(item models.PairWorkItem, info *models.BuilderInfo) models.PairRecord {
	rec := models.PairRecord{Identifier: item.Identifier, LanguagePair: item.Label}
	if info == nil {
		return rec
	}
	for _, split := range info.Splits {
		switch {
		case strings.HasPrefix(split.Name, "tr"):
			rec.TrainCount += split.NumExamples
		case strings.HasPrefix(split.Name, "val"):
			rec.DevCount += split.NumExamples
		default:
			rec.TestCount += split.NumExamples
		}
	}
	return rec
}
