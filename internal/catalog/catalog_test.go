package catalog

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func row(id string, modified string, dt models.DatasetType, langs ...string) models.CatalogRow {
	return models.CatalogRow{
		Identifier:         id,
		CreatedAt:          date("2023-06-01T00:00:00Z"),
		LastModified:       date(modified),
		DatasetType:        dt,
		Link:               LinkPrefix + id,
		LanguageCount:      len(langs),
		SupportedLanguages: langs,
	}
}

func ids(rows []models.CatalogRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Identifier
	}
	return out
}

func TestNormalize(t *testing.T) {
	t.Run("maps fields and truncates dates", func(t *testing.T) {
		records := []models.RawDatasetRecord{
			{
				ID:           "acme/wmt",
				Tags:         []string{"task_categories:translation", "language:fr", "language:en", "language:en"},
				CreatedAt:    date("2023-01-05T13:45:10Z"),
				LastModified: date("2024-02-01T23:59:59Z"),
				Downloads:    42,
				Likes:        7,
			},
		}

		rows := Normalize(records)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}

		got := rows[0]
		if got.Identifier != "acme/wmt" {
			t.Errorf("expected identifier acme/wmt, got %s", got.Identifier)
		}
		if got.Link != "https://huggingface.co/datasets/acme/wmt" {
			t.Errorf("unexpected link %s", got.Link)
		}
		if !reflect.DeepEqual(got.SupportedLanguages, []string{"en", "fr"}) {
			t.Errorf("expected [en fr], got %v", got.SupportedLanguages)
		}
		if got.LanguageCount != 2 {
			t.Errorf("expected 2 languages, got %d", got.LanguageCount)
		}
		if shared.FormatDate(got.LastModified) != "2024-02-01" {
			t.Errorf("expected last modified 2024-02-01, got %s", shared.FormatDate(got.LastModified))
		}
		if got.LastModified.Hour() != 0 {
			t.Errorf("expected truncated date, got %v", got.LastModified)
		}
		if got.DatasetType != models.TypeUnset {
			t.Errorf("expected unset type, got %q", got.DatasetType)
		}
		if got.Downloads != 42 || got.Likes != 7 {
			t.Errorf("unexpected counters %d/%d", got.Downloads, got.Likes)
		}
	})

	t.Run("skips code and audio datasets", func(t *testing.T) {
		records := []models.RawDatasetRecord{
			{ID: "a/code", Tags: []string{"language:code", "language:en"}},
			{ID: "a/audio", Tags: []string{"modality:audio", "language:en"}},
			{ID: "a/text", Tags: []string{"language:en"}},
		}

		rows := Normalize(records)
		if !reflect.DeepEqual(ids(rows), []string{"a/text"}) {
			t.Errorf("expected only a/text, got %v", ids(rows))
		}
	})

	t.Run("no language tags yields empty list", func(t *testing.T) {
		rows := Normalize([]models.RawDatasetRecord{{ID: "a/b", Tags: []string{"license:mit"}}})
		if rows[0].LanguageCount != 0 || len(rows[0].SupportedLanguages) != 0 {
			t.Errorf("expected no languages, got %v", rows[0].SupportedLanguages)
		}
	})
}

func TestClassify(t *testing.T) {
	side := []models.CatalogRow{
		row("a/one", "2024-01-01T00:00:00Z", models.TypeParallel),
		row("a/two", "2024-01-01T00:00:00Z", models.TypeUnset),
	}
	table := NewClassificationTable(side)

	if _, ok := table.Classify("a/two"); ok {
		t.Error("untyped side rows should not be indexed")
	}

	rows := []models.CatalogRow{
		row("a/one", "2024-01-01T00:00:00Z", models.TypeUnset),
		row("a/three", "2024-01-01T00:00:00Z", models.TypeUnsupported),
	}
	got := Classify(rows, table)

	if got[0].DatasetType != models.TypeParallel {
		t.Errorf("expected Parallel, got %q", got[0].DatasetType)
	}
	if got[1].DatasetType != models.TypeUnsupported {
		t.Errorf("expected unknown rows to keep their type, got %q", got[1].DatasetType)
	}
	if rows[0].DatasetType != models.TypeUnset {
		t.Error("input rows must not be mutated")
	}
}

func TestReconcile(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		old := []models.CatalogRow{
			row("a/x", "2024-01-01T00:00:00Z", models.TypeParallel, "en", "fr"),
			row("a/y", "2024-01-01T00:00:00Z", models.TypeUnsupported),
		}
		fresh := []models.CatalogRow{
			row("a/x", "2024-02-01T00:00:00Z", models.TypeUnset, "en", "fr"),
			row("a/z", "2024-02-01T00:00:00Z", models.TypeUnset),
		}

		result := Reconcile(old, fresh)

		if !reflect.DeepEqual(ids(result.Added), []string{"a/z"}) {
			t.Errorf("added = %v", ids(result.Added))
		}
		if !reflect.DeepEqual(ids(result.Updated), []string{"a/x"}) {
			t.Errorf("updated = %v", ids(result.Updated))
		}
		if len(result.Unchanged) != 0 {
			t.Errorf("unchanged = %v", ids(result.Unchanged))
		}
		if !reflect.DeepEqual(ids(result.Removed), []string{"a/y"}) {
			t.Errorf("removed = %v", ids(result.Removed))
		}

		if result.Updated[0].DatasetType != models.TypeParallel {
			t.Errorf("expected type carried forward, got %q", result.Updated[0].DatasetType)
		}
		if result.Removed[0].DatasetType != models.TypeRemoved {
			t.Errorf("expected Removed sentinel, got %q", result.Removed[0].DatasetType)
		}
		if !reflect.DeepEqual(ids(result.Merged), []string{"a/z", "a/x", "a/y"}) {
			t.Errorf("merged order = %v", ids(result.Merged))
		}
		if old[1].DatasetType != models.TypeUnsupported {
			t.Error("old snapshot must not be mutated")
		}
	})

	t.Run("partitions are complete and disjoint", func(t *testing.T) {
		old := []models.CatalogRow{
			row("a/1", "2024-01-01T00:00:00Z", models.TypeParallel),
			row("a/2", "2024-01-01T00:00:00Z", models.TypeParallel),
			row("a/3", "2024-01-01T00:00:00Z", models.TypeParallel),
		}
		fresh := []models.CatalogRow{
			row("a/2", "2024-01-01T08:30:00Z", models.TypeUnset),
			row("a/3", "2024-03-01T00:00:00Z", models.TypeUnset),
			row("a/4", "2024-03-01T00:00:00Z", models.TypeUnset),
		}

		result := Reconcile(old, fresh)

		union := map[string]struct{}{}
		for _, r := range append(old, fresh...) {
			union[r.Identifier] = struct{}{}
		}

		seen := map[string]models.Status{}
		for _, sr := range result.Report() {
			if prev, dup := seen[sr.Identifier]; dup {
				t.Errorf("%s appears in %s and %s", sr.Identifier, prev, sr.Status)
			}
			seen[sr.Identifier] = sr.Status
		}
		if len(seen) != len(union) {
			t.Errorf("expected %d identifiers, got %d", len(union), len(seen))
		}

		if seen["a/2"] != models.StatusUnchanged {
			t.Errorf("same calendar date should be unchanged, got %s", seen["a/2"])
		}
		if seen["a/3"] != models.StatusUpdated {
			t.Errorf("expected a/3 updated, got %s", seen["a/3"])
		}
		if seen["a/1"] != models.StatusRemoved || seen["a/4"] != models.StatusNew {
			t.Errorf("unexpected statuses %v", seen)
		}
		if len(result.Merged) != len(union) {
			t.Errorf("merged should hold every identifier once, got %d", len(result.Merged))
		}
	})

	t.Run("idempotent against itself", func(t *testing.T) {
		snap := []models.CatalogRow{
			row("a/1", "2024-01-01T00:00:00Z", models.TypeParallel),
			row("a/2", "2024-01-01T00:00:00Z", models.TypeMultilingualParallel),
		}

		result := Reconcile(snap, snap)
		if len(result.Added)+len(result.Updated)+len(result.Removed) != 0 {
			t.Errorf("expected only unchanged rows, got %v", result.Counts())
		}
		if result.Changed() {
			t.Error("Changed() should be false")
		}
		if !reflect.DeepEqual(ids(result.Unchanged), ids(snap)) {
			t.Errorf("unchanged = %v", ids(result.Unchanged))
		}
	})

	t.Run("reappearing dataset drops removed sentinel", func(t *testing.T) {
		old := []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeRemoved)}
		fresh := []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeUnset)}

		result := Reconcile(old, fresh)
		if result.Unchanged[0].DatasetType != models.TypeUnset {
			t.Errorf("expected unset type, got %q", result.Unchanged[0].DatasetType)
		}
	})

	t.Run("empty old marks everything new", func(t *testing.T) {
		fresh := []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeUnset)}
		result := Reconcile(nil, fresh)
		if result.Counts()[models.StatusNew] != 1 {
			t.Errorf("expected one new row, got %v", result.Counts())
		}
	})
}

func TestAudit(t *testing.T) {
	tests := []struct {
		name  string
		rows  []models.CatalogRow
		check AuditCheck
		count int
	}{
		{
			name: "duplicate identifier",
			rows: []models.CatalogRow{
				row("a/1", "2024-01-01T00:00:00Z", models.TypeUnsupported, "en"),
				row("a/1", "2024-01-01T00:00:00Z", models.TypeUnsupported, "en"),
			},
			check: CheckDuplicateIdentifier,
			count: 1,
		},
		{
			name:  "missing type",
			rows:  []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeUnset, "en")},
			check: CheckMissingField,
			count: 1,
		},
		{
			name:  "no languages",
			rows:  []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeUnsupported)},
			check: CheckNoLanguages,
			count: 1,
		},
		{
			name:  "parallel with three languages",
			rows:  []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeParallel, "de", "en", "fr")},
			check: CheckParallelPair,
			count: 1,
		},
		{
			name:  "multilingual with two languages",
			rows:  []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeMultilingualParallel, "en", "fr")},
			check: CheckMultilingualCount,
			count: 1,
		},
		{
			name:  "multilingual marker accepted",
			rows:  []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeMultilingualParallel, "multilingual")},
			check: CheckMultilingualCount,
			count: 0,
		},
		{
			name:  "removed rows skip field checks",
			rows:  []models.CatalogRow{row("a/1", "2024-01-01T00:00:00Z", models.TypeRemoved)},
			check: CheckNoLanguages,
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			for _, f := range Audit(tt.rows) {
				if f.Check == tt.check {
					got++
				}
			}
			if got != tt.count {
				t.Errorf("expected %d %s findings, got %d", tt.count, tt.check, got)
			}
		})
	}

	t.Run("clean catalog", func(t *testing.T) {
		rows := []models.CatalogRow{
			row("a/1", "2024-01-01T00:00:00Z", models.TypeParallel, "en", "fr"),
			row("a/2", "2024-01-01T00:00:00Z", models.TypeMultilingualParallel, "de", "en", "fr"),
		}
		if findings := Audit(rows); len(findings) != 0 {
			t.Errorf("expected no findings, got %v", findings)
		}
	})
}

func pairs(records []models.PairRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.LanguagePair
	}
	return out
}

func TestExpandPairs(t *testing.T) {
	t.Run("multiway", func(t *testing.T) {
		got, err := ExpandPairs(Expansion{
			Identifier: "ext/corpus",
			Languages:  []string{"en", "fr", "de"},
			Layout:     LayoutMultiway,
			Counts:     SplitCounts{Train: 10, Dev: 2, Test: 3},
		})
		if err != nil {
			t.Fatalf("ExpandPairs failed: %v", err)
		}
		want := []string{"fr-en", "de-en", "en-fr", "de-fr", "en-de", "fr-de"}
		if !reflect.DeepEqual(pairs(got), want) {
			t.Errorf("expected %v, got %v", want, pairs(got))
		}
		if got[0].TrainCount != 10 || got[0].DevCount != 2 || got[0].TestCount != 3 {
			t.Errorf("unexpected counts %+v", got[0])
		}
	})

	t.Run("english-centric with per-target counts", func(t *testing.T) {
		got, err := ExpandPairs(Expansion{
			Identifier: "ext/corpus",
			Languages:  []string{"eng", "fra", "deu"},
			Layout:     LayoutEnglishCentric,
			Counts:     SplitCounts{Test: 1},
			PerTarget:  map[string]SplitCounts{"deu": {Test: 99}},
		})
		if err != nil {
			t.Fatalf("ExpandPairs failed: %v", err)
		}
		if !reflect.DeepEqual(pairs(got), []string{"eng-fra", "eng-deu"}) {
			t.Errorf("unexpected pairs %v", pairs(got))
		}
		if got[0].TestCount != 1 || got[1].TestCount != 99 {
			t.Errorf("unexpected counts %+v", got)
		}
	})

	t.Run("simple", func(t *testing.T) {
		got, err := ExpandPairs(Expansion{Identifier: "ext/c", Languages: []string{"fr", "en"}, Layout: LayoutSimple})
		if err != nil {
			t.Fatalf("ExpandPairs failed: %v", err)
		}
		if !reflect.DeepEqual(pairs(got), []string{"fr-en"}) {
			t.Errorf("unexpected pairs %v", pairs(got))
		}
	})

	t.Run("errors", func(t *testing.T) {
		cases := []struct {
			name string
			exp  Expansion
			want error
		}{
			{"missing identifier", Expansion{Languages: []string{"en", "fr"}, Layout: LayoutSimple}, shared.ErrMissingArgument},
			{"one language", Expansion{Identifier: "x", Languages: []string{"en"}, Layout: LayoutMultiway}, shared.ErrInvalidArgument},
			{"simple with three", Expansion{Identifier: "x", Languages: []string{"en", "fr", "de"}, Layout: LayoutSimple}, shared.ErrInvalidArgument},
			{"no english", Expansion{Identifier: "x", Languages: []string{"fr", "de"}, Layout: LayoutEnglishCentric}, shared.ErrInvalidArgument},
			{"unknown layout", Expansion{Identifier: "x", Languages: []string{"en", "fr"}, Layout: "pivot"}, shared.ErrInvalidArgument},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := ExpandPairs(tc.exp); !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("ParseLayout", func(t *testing.T) {
		if l, err := ParseLayout("English-Centric"); err != nil || l != LayoutEnglishCentric {
			t.Errorf("ParseLayout = %q, %v", l, err)
		}
		if _, err := ParseLayout("pivot"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
