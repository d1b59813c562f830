package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveItem(t *testing.T) {
	t.Run("CountsOutcomes", func(t *testing.T) {
		r := NewRecorder()
		r.ObserveItem("update:create", "harvested", 200*time.Millisecond)
		r.ObserveItem("update:create", "harvested", 300*time.Millisecond)
		r.ObserveItem("update:create", "failed", time.Second)

		if got := testutil.ToFloat64(r.ItemsTotal.WithLabelValues("update:create", "harvested")); got != 2 {
			t.Errorf("expected 2 harvested, got %v", got)
		}
		if got := testutil.ToFloat64(r.ItemsTotal.WithLabelValues("update:create", "failed")); got != 1 {
			t.Errorf("expected 1 failed, got %v", got)
		}
	})

	t.Run("SkippedNotTimed", func(t *testing.T) {
		r := NewRecorder()
		r.ObserveItem("update:monitor", "skipped", 0)

		if got := testutil.CollectAndCount(r.ItemDuration); got != 0 {
			t.Errorf("expected no duration series, got %d", got)
		}
		if got := testutil.ToFloat64(r.ItemsTotal.WithLabelValues("update:monitor", "skipped")); got != 1 {
			t.Errorf("expected 1 skipped, got %v", got)
		}
	})
}

func TestObserveRun(t *testing.T) {
	r := NewRecorder()
	finished := time.Unix(1700000000, 0)
	r.ObserveRun("refresh", "completed", 90*time.Second, finished)

	if got := testutil.ToFloat64(r.RunsTotal.WithLabelValues("refresh", "completed")); got != 1 {
		t.Errorf("expected 1 run, got %v", got)
	}
	if got := testutil.ToFloat64(r.RunDuration.WithLabelValues("refresh")); got != 90 {
		t.Errorf("expected 90s, got %v", got)
	}
	if got := testutil.ToFloat64(r.LastRun.WithLabelValues("refresh")); got != 1700000000 {
		t.Errorf("expected finish timestamp, got %v", got)
	}
}

func TestObserveCatalog(t *testing.T) {
	r := NewRecorder()
	r.ObserveCatalog(map[models.Status]int{models.StatusNew: 2, models.StatusRemoved: 1})

	expected := `
# HELP mtcat_catalog_rows Catalog rows by reconciliation status after the most recent refresh.
# TYPE mtcat_catalog_rows gauge
mtcat_catalog_rows{status="New"} 2
mtcat_catalog_rows{status="Removed"} 1
`
	if err := testutil.CollectAndCompare(r.CatalogRows, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected catalog metrics: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Run("WritesExposition", func(t *testing.T) {
		r := NewRecorder()
		r.ObserveItem("update:create", "harvested", time.Second)

		path := filepath.Join(t.TempDir(), "textfile", "mtcat.prom")
		if err := r.WriteTextfile(path); err != nil {
			t.Fatalf("WriteTextfile failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read textfile: %v", err)
		}
		if !strings.Contains(string(data), `mtcat_items_total{mode="update:create",outcome="harvested"} 1`) {
			t.Errorf("expected items counter in textfile, got:\n%s", data)
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		if err := NewRecorder().WriteTextfile(""); err != nil {
			t.Errorf("expected no-op, got %v", err)
		}
	})
}
