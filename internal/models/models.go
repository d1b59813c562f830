// package models defines the data model for the translation dataset catalog
package models

import (
	"strings"
	"time"
)

// DatasetType classifies a catalog row. It is assigned by a curated side table, never by the registry.
type DatasetType string

const (
	TypeUnset                DatasetType = ""
	TypeParallel             DatasetType = "Parallel"
	TypeMultilingualParallel DatasetType = "Multilingual Parallel"
	TypeUnsupported          DatasetType = "Unsupported"
	TypeRemoved              DatasetType = "Removed" // sentinel for datasets gone from the registry
)

// IsParallel reports whether the type qualifies for pair resolution (case-insensitive "parallel" substring).
func (t DatasetType) IsParallel() bool {
	return strings.Contains(strings.ToLower(string(t)), "parallel")
}

// IsSimpleParallel reports whether the type starts with "Parallel".
func (t DatasetType) IsSimpleParallel() bool {
	return strings.HasPrefix(string(t), string(TypeParallel))
}

// IsMultilingual reports whether the type starts with "Multilingual".
func (t DatasetType) IsMultilingual() bool {
	return strings.HasPrefix(string(t), "Multilingual")
}

// RawDatasetRecord is a dataset as listed by the registry.
type RawDatasetRecord struct {
	ID           string    `json:"id"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
	Downloads    int       `json:"downloads"`
	Likes        int       `json:"likes"`
}

// CatalogRow is one dataset at harvest time. Identifier is the snapshot key.
type CatalogRow struct {
	Identifier         string      `json:"identifier"`
	CreatedAt          time.Time   `json:"created_at"`
	LastModified       time.Time   `json:"last_modified"`
	DatasetType        DatasetType `json:"dataset_type"`
	Link               string      `json:"link"`
	Downloads          int         `json:"downloads"`
	Likes              int         `json:"likes"`
	LanguageCount      int         `json:"language_count"`
	SupportedLanguages []string    `json:"supported_languages"`
}

// IsEdgeCase reports a Parallel row that does not list exactly two languages.
func (r CatalogRow) IsEdgeCase() bool {
	return r.DatasetType == TypeParallel && r.LanguageCount != 2
}

// Status tags a row with its reconciliation partition.
type Status string

const (
	StatusNew       Status = "New"
	StatusUpdated   Status = "Updated"
	StatusUnchanged Status = "Unchanged"
	StatusRemoved   Status = "Removed"
)

// StatusRow is a catalog row tagged with its reconciliation status, used by the refresh report.
type StatusRow struct {
	Status Status
	CatalogRow
}

// WorkKind discriminates how a work item's label is passed to the statistics provider.
type WorkKind int

const (
	KindParallel WorkKind = iota
	KindMultilingualConfig
)

func (k WorkKind) String() string {
	switch k {
	case KindParallel:
		return "Parallel"
	case KindMultilingualConfig:
		return "MultilingualConfig"
	default:
		return ""
	}
}

// PairWorkItem is one unit of harvesting work.
//
// Label is a language pair ("en-fr") for parallel datasets or a raw config name for multilingual ones.
type PairWorkItem struct {
	Identifier string
	Label      string
	Kind       WorkKind
}

// Config returns the config name to request from the statistics provider; empty means the default config.
func (w PairWorkItem) Config() string {
	if w.Kind == KindMultilingualConfig {
		return w.Label
	}
	return ""
}

// PairRecord holds the example counts harvested for one work item.
type PairRecord struct {
	Identifier   string `json:"identifier"`
	LanguagePair string `json:"language_pair"`
	TrainCount   int    `json:"train_count"`
	DevCount     int    `json:"dev_count"`
	TestCount    int    `json:"test_count"`
}

// SplitInfo is the example count of one named split.
type SplitInfo struct {
	Name        string
	NumExamples int
}

// BuilderInfo is the statistics provider's description of one dataset config.
type BuilderInfo struct {
	Splits []SplitInfo
}

// PairKey identifies a pairs-table row for resume checks.
type PairKey struct {
	Identifier string
	Label      string
}

// ResumeLedger is the set of (identifier, label) pairs already harvested.
type ResumeLedger map[PairKey]struct{}

// NewResumeLedger indexes the rows of a prior pairs table.
func NewResumeLedger(records []PairRecord) ResumeLedger {
	ledger := make(ResumeLedger, len(records))
	for _, rec := range records {
		ledger[PairKey{Identifier: rec.Identifier, Label: rec.LanguagePair}] = struct{}{}
	}
	return ledger
}

// Has reports whether (identifier, label) was harvested before.
func (l ResumeLedger) Has(identifier, label string) bool {
	_, ok := l[PairKey{Identifier: identifier, Label: label}]
	return ok
}

// Identifiers returns the distinct dataset identifiers in records.
func Identifiers(records []PairRecord) map[string]struct{} {
	ids := make(map[string]struct{}, len(records))
	for _, rec := range records {
		ids[rec.Identifier] = struct{}{}
	}
	return ids
}

// FailureStage names the pipeline step a per-item failure happened in.
type FailureStage string

const (
	StageResolve FailureStage = "resolve" // config lookup or config-name checks
	StageHarvest FailureStage = "harvest" // split statistics lookup
)

// HarvestFailure is a per-item failure. It is logged to the missing-items ledger and the run continues.
type HarvestFailure struct {
	Identifier string
	Label      string
	Stage      FailureStage
	Err        error
}

func (f HarvestFailure) Error() string {
	if f.Label == "" {
		return string(f.Stage) + " " + f.Identifier + ": " + f.Err.Error()
	}
	return string(f.Stage) + " " + f.Identifier + " (" + f.Label + "): " + f.Err.Error()
}

func (f HarvestFailure) Unwrap() error { return f.Err }
