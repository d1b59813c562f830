package catalog

import (
	"fmt"
	"strings"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

// Layout describes how a manually catalogued dataset pairs its languages.
type Layout string

const (
	LayoutMultiway       Layout = "multiway"
	LayoutEnglishCentric Layout = "english-centric"
	LayoutSimple         Layout = "simple"
)

// Layouts lists the accepted layouts.
var Layouts = []Layout{LayoutMultiway, LayoutEnglishCentric, LayoutSimple}

// ParseLayout resolves a layout name, case-insensitively.
func ParseLayout(name string) (Layout, error) {
	for _, l := range Layouts {
		if strings.EqualFold(name, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown layout %q", shared.ErrInvalidArgument, name)
}

// SplitCounts holds example counts for the three split buckets.
type SplitCounts struct {
	Train int
	Dev   int
	Test  int
}

// Expansion describes an external dataset to expand into pair records.
type Expansion struct {
	Identifier string
	Languages  []string
	Layout     Layout
	// Counts applies to every pair unless PerTarget has an entry for the pair's target language.
	Counts    SplitCounts
	PerTarget map[string]SplitCounts
}

// ExpandPairs derives the pair records of an external dataset.
//
// Pairs are emitted target-major: for each target language in listed order, every valid source.
func ExpandPairs(e Expansion) ([]models.PairRecord, error) {
	if e.Identifier == "" {
		return nil, fmt.Errorf("%w: identifier", shared.ErrMissingArgument)
	}
	langs := dedupe(e.Languages)
	if len(langs) < 2 {
		return nil, fmt.Errorf("%w: need at least two languages, got %d", shared.ErrInvalidArgument, len(langs))
	}

	var keep func(src, tgt string) bool
	switch e.Layout {
	case LayoutMultiway:
		keep = func(src, tgt string) bool { return src != tgt }
	case LayoutEnglishCentric:
		keep = func(src, tgt string) bool { return isEnglish(src) && !isEnglish(tgt) }
	case LayoutSimple:
		if len(langs) != 2 {
			return nil, fmt.Errorf("%w: simple layout takes exactly two languages, got %d", shared.ErrInvalidArgument, len(langs))
		}
		return []models.PairRecord{e.record(langs[0], langs[1])}, nil
	default:
		return nil, fmt.Errorf("%w: unknown layout %q", shared.ErrInvalidArgument, e.Layout)
	}

	var records []models.PairRecord
	for _, tgt := range langs {
		for _, src := range langs {
			if keep(src, tgt) {
				records = append(records, e.record(src, tgt))
			}
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s layout yields no pairs for %v", shared.ErrInvalidArgument, e.Layout, langs)
	}
	return records, nil
}

func (e Expansion) record(src, tgt string) models.PairRecord {
	counts := e.Counts
	if c, ok := e.PerTarget[tgt]; ok {
		counts = c
	}
	return models.PairRecord{
		Identifier:   e.Identifier,
		LanguagePair: src + "-" + tgt,
		TrainCount:   counts.Train,
		DevCount:     counts.Dev,
		TestCount:    counts.Test,
	}
}

func isEnglish(lang string) bool {
	return strings.HasPrefix(lang, "en")
}

func dedupe(langs []string) []string {
	seen := make(map[string]struct{}, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
