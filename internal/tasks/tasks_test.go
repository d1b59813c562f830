package tasks

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
	th "github.com/desertthunder/mtcat/internal/testing"
)

type fakeFailureRecorder struct {
	failures []models.HarvestFailure
	err      error
}

func (f *fakeFailureRecorder) RecordFailure(ctx context.Context, failure models.HarvestFailure) error {
	f.failures = append(f.failures, failure)
	return f.err
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (f *fakeMetrics) ObserveItem(mode, outcome string, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcomes == nil {
		f.outcomes = map[string]int{}
	}
	f.outcomes[mode+"/"+outcome]++
}

func harvestFixture() ([]models.CatalogRow, *th.ScriptedProvider) {
	rows := []models.CatalogRow{
		catalogRow("p/enfr", models.TypeParallel, "en", "fr"),
		catalogRow("p/triple", models.TypeParallel, "de", "en", "fr"),
		catalogRow("m/flores", models.TypeMultilingualParallel, "de", "en", "fr"),
		catalogRow("m/wiki", models.TypeMultilingualParallel, "de", "en", "fr"),
		catalogRow("p/missing", models.TypeParallel, "en", "sw"),
		catalogRow("u/mono", models.TypeUnsupported, "en"),
	}
	provider := &th.ScriptedProvider{
		Configs: map[string][]string{
			"m/flores": {"de-en", "fr-en"},
			"m/wiki":   {"wiki"},
		},
		Infos: map[string]*models.BuilderInfo{
			th.InfoKey("p/enfr", ""):        th.Splits("train", 100, "validation", 10, "test", 5),
			th.InfoKey("m/flores", "de-en"): th.Splits("dev", 997, "devtest", 1012),
			th.InfoKey("m/flores", "fr-en"): th.Splits("dev", 997, "devtest", 1012),
		},
		InfoErrors: map[string]error{
			th.InfoKey("p/missing", ""): shared.ErrDatasetNotFound,
		},
	}
	return rows, provider
}

func labels(records []models.PairRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Identifier + ":" + r.LanguagePair
	}
	return out
}

func TestHarvestEngine(t *testing.T) {
	t.Run("Default Mode", func(t *testing.T) {
		rows, provider := harvestFixture()
		ledger := th.NewMemoryLedger()
		recorder := &fakeFailureRecorder{}
		metrics := &fakeMetrics{}

		engine := NewHarvestEngine(provider, ledger, nil, WithFailureRecorder(recorder), WithMetrics(metrics))
		result, err := engine.Run(context.Background(), rows, models.DefaultMode{}, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		want := []string{"p/enfr:en-fr", "m/flores:de-en", "m/flores:fr-en"}
		if !reflect.DeepEqual(labels(result.Records), want) {
			t.Errorf("expected %v, got %v", want, labels(result.Records))
		}
		if result.Records[0].TrainCount != 100 || result.Records[1].DevCount != 997 || result.Records[1].TestCount != 1012 {
			t.Errorf("unexpected counts %+v", result.Records)
		}

		if len(result.EdgeCases) != 1 || result.EdgeCases[0].Identifier != "p/triple" {
			t.Errorf("expected p/triple as edge case, got %v", result.EdgeCases)
		}
		if result.Candidates != 4 {
			t.Errorf("expected 4 candidates, got %d", result.Candidates)
		}

		if !reflect.DeepEqual(ledger.Streams[models.StreamPrimary], []string{"m/wiki", "p/missing"}) {
			t.Errorf("unexpected primary ledger %v", ledger.Streams[models.StreamPrimary])
		}
		if len(ledger.Streams[models.StreamValidate]) != 0 {
			t.Errorf("validate stream should be empty, got %v", ledger.Streams[models.StreamValidate])
		}

		if len(result.Failures) != 2 {
			t.Fatalf("expected 2 failures, got %v", result.Failures)
		}
		if result.Failures[0].Stage != models.StageResolve || !errors.Is(result.Failures[0], shared.ErrConfigPattern) {
			t.Errorf("unexpected resolve failure %v", result.Failures[0])
		}
		if result.Failures[1].Stage != models.StageHarvest || !errors.Is(result.Failures[1], shared.ErrDatasetNotFound) {
			t.Errorf("unexpected harvest failure %v", result.Failures[1])
		}
		if len(recorder.failures) != 2 {
			t.Errorf("expected failures journaled, got %d", len(recorder.failures))
		}

		if metrics.outcomes["default/harvested"] != 3 || metrics.outcomes["default/failed"] != 2 {
			t.Errorf("unexpected metrics %v", metrics.outcomes)
		}
	})

	t.Run("Monitor Mode Skips Known Pairs", func(t *testing.T) {
		rows, provider := harvestFixture()
		existing := []models.PairRecord{
			{Identifier: "p/enfr", LanguagePair: "en-fr", TrainCount: 1},
			{Identifier: "m/flores", LanguagePair: "de-en", TestCount: 1},
		}

		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), nil)
		result, err := engine.Run(context.Background(), rows, models.NewMonitorMode(existing), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for _, call := range provider.Calls {
			if call.Method != "GetBuilderInfo" {
				continue
			}
			if call.Identifier == "p/enfr" || (call.Identifier == "m/flores" && call.Config == "de-en") {
				t.Errorf("known pair fetched again: %+v", call)
			}
		}
		if result.Skipped != 2 {
			t.Errorf("expected 2 skipped, got %d", result.Skipped)
		}

		want := []string{"m/flores:fr-en", "p/enfr:en-fr", "m/flores:de-en"}
		if !reflect.DeepEqual(labels(result.Records), want) {
			t.Errorf("expected fresh then existing %v, got %v", want, labels(result.Records))
		}
		if result.Records[1].TrainCount != 1 {
			t.Error("existing records must be kept as-is")
		}
	})

	t.Run("Monitor Mode Twice Is Stable", func(t *testing.T) {
		rows, provider := harvestFixture()
		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), nil)

		first, err := engine.Run(context.Background(), rows, models.DefaultMode{}, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		before := provider.CallCount("GetBuilderInfo")

		second, err := engine.Run(context.Background(), rows, models.NewMonitorMode(first.Records), nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(second.Fresh) != 0 {
			t.Errorf("expected nothing new, got %v", labels(second.Fresh))
		}
		// Only the previously failing item is tried again.
		if got := provider.CallCount("GetBuilderInfo") - before; got != 1 {
			t.Errorf("expected 1 new info call, got %d", got)
		}
		if !reflect.DeepEqual(labels(second.Records), labels(first.Records)) {
			t.Errorf("table changed between identical runs: %v", labels(second.Records))
		}
	})

	t.Run("Validate Mode Excludes Known Datasets", func(t *testing.T) {
		rows, provider := harvestFixture()
		ledger := th.NewMemoryLedger()
		mode := models.ValidateMode{
			Existing:  []models.PairRecord{{Identifier: "p/enfr", LanguagePair: "en-fr"}},
			Reference: []models.PairRecord{{Identifier: "m/flores", LanguagePair: "de-en"}},
		}

		engine := NewHarvestEngine(provider, ledger, nil)
		result, err := engine.Run(context.Background(), rows, mode, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for _, call := range provider.Calls {
			if call.Identifier == "p/enfr" || call.Identifier == "m/flores" {
				t.Errorf("known dataset queried: %+v", call)
			}
		}
		if result.Excluded != 2 {
			t.Errorf("expected 2 excluded, got %d", result.Excluded)
		}
		if !reflect.DeepEqual(labels(result.Records), []string{"p/enfr:en-fr"}) {
			t.Errorf("expected only existing hf records, got %v", labels(result.Records))
		}
		if !reflect.DeepEqual(ledger.Streams[models.StreamValidate], []string{"m/wiki", "p/missing"}) {
			t.Errorf("failures should go to the validate stream, got %v", ledger.Streams)
		}
		if len(ledger.Streams[models.StreamPrimary]) != 0 {
			t.Errorf("primary stream should be untouched, got %v", ledger.Streams[models.StreamPrimary])
		}
	})

	t.Run("Interruption Returns Partial Records", func(t *testing.T) {
		rows, provider := harvestFixture()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		infoCalls := 0
		provider.OnCall = func(call th.ProviderCall) error {
			if call.Method == "GetBuilderInfo" {
				infoCalls++
				if infoCalls == 2 {
					cancel()
				}
			}
			return nil
		}

		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), nil)
		result, err := engine.Run(ctx, rows, models.NewMonitorMode([]models.PairRecord{{Identifier: "x/y", LanguagePair: "en-de"}}), nil)
		if !errors.Is(err, shared.ErrInterrupted) {
			t.Fatalf("expected ErrInterrupted, got %v", err)
		}
		if !IsInterrupted(err) {
			t.Error("IsInterrupted should report true")
		}
		if result == nil {
			t.Fatal("expected partial result")
		}
		if !reflect.DeepEqual(labels(result.Records), []string{"p/enfr:en-fr", "x/y:en-de"}) {
			t.Errorf("expected harvested and existing records, got %v", labels(result.Records))
		}
		if len(result.Failures) != 0 {
			t.Errorf("interruption must not be logged as a failure, got %v", result.Failures)
		}
	})

	t.Run("Ledger Failure Aborts", func(t *testing.T) {
		rows, provider := harvestFixture()
		ledger := th.NewMemoryLedger()
		ledger.Err = errors.New("disk full")

		engine := NewHarvestEngine(provider, ledger, nil)
		result, err := engine.Run(context.Background(), rows, models.DefaultMode{}, nil)
		if err == nil || !strings.Contains(err.Error(), "disk full") {
			t.Fatalf("expected ledger error, got %v", err)
		}
		if result == nil || len(result.Records) == 0 {
			t.Error("records gathered before the failure should be returned")
		}
	})

	t.Run("Journal Failure Is Not Fatal", func(t *testing.T) {
		rows, provider := harvestFixture()
		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), nil,
			WithFailureRecorder(&fakeFailureRecorder{err: errors.New("database is locked")}))

		if _, err := engine.Run(context.Background(), rows, models.DefaultMode{}, nil); err != nil {
			t.Errorf("expected run to complete, got %v", err)
		}
	})

	t.Run("Verbose Logging", func(t *testing.T) {
		rows, provider := harvestFixture()
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)

		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), logger, WithVerbose(true))
		if _, err := engine.Run(context.Background(), rows, models.DefaultMode{}, nil); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "harvesting pair") {
			t.Errorf("expected verbose progress logs, got %s", output)
		}
		if !strings.Contains(output, "not found") {
			t.Errorf("expected full error text, got %s", output)
		}
	})

	t.Run("Terse Logging", func(t *testing.T) {
		rows, provider := harvestFixture()
		var buf bytes.Buffer

		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), shared.NewLogger(&buf))
		if _, err := engine.Run(context.Background(), rows, models.DefaultMode{}, nil); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if strings.Contains(buf.String(), "harvesting pair") {
			t.Errorf("terse mode should not log each item, got %s", buf.String())
		}
		if !strings.Contains(buf.String(), "error loading dataset") {
			t.Errorf("expected one-line failure notice, got %s", buf.String())
		}
	})

	t.Run("Progress Never Blocks", func(t *testing.T) {
		rows, provider := harvestFixture()
		progress := make(chan ProgressUpdate)

		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), nil)
		done := make(chan struct{})
		go func() {
			defer close(done)
			engine.Run(context.Background(), rows, models.DefaultMode{}, progress)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Run blocked on an unread progress channel")
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		rows, provider := harvestFixture()
		progress := make(chan ProgressUpdate, 100)

		engine := NewHarvestEngine(provider, th.NewMemoryLedger(), nil)
		if _, err := engine.Run(context.Background(), rows, models.DefaultMode{}, progress); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		close(progress)

		phases := map[Phase]int{}
		var last ProgressUpdate
		for u := range progress {
			phases[u.Phase]++
			last = u
		}
		if phases[HarvestPairs] != 4 || phases[ItemFailed] != 2 {
			t.Errorf("unexpected phase counts %v", phases)
		}
		if last.Phase != Finished {
			t.Errorf("expected final update to be %s, got %s", Finished, last.Phase)
		}
	})

	t.Run("Missing Provider", func(t *testing.T) {
		engine := NewHarvestEngine(nil, nil, nil)
		if _, err := engine.Run(context.Background(), nil, models.DefaultMode{}, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	phases := []Phase{FetchRegistry, Classify, Reconcile, FilterCandidates, ResolvePairs, HarvestPairs, SkipPair, ItemFailed, Finished}
	seen := map[string]bool{}
	for _, p := range phases {
		s := p.String()
		if s == "" || seen[s] {
			t.Errorf("phase %d has empty or duplicate name %q", p, s)
		}
		seen[s] = true
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should have empty name")
	}
}
