// Package metrics records harvest run metrics with Prometheus and writes them to a
// node-exporter textfile once a run ends.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mtcat"

// Recorder owns a private registry so runs never collide with the global one.
type Recorder struct {
	registry *prometheus.Registry

	ItemsTotal   *prometheus.CounterVec
	ItemDuration *prometheus.HistogramVec
	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.GaugeVec
	LastRun      *prometheus.GaugeVec
	CatalogRows  *prometheus.GaugeVec
}

// NewRecorder registers every collector on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		ItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_total",
				Help:      "Total number of harvest work items by outcome.",
			},
			[]string{"mode", "outcome"}, // outcome: harvested, failed, skipped
		),
		ItemDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "item_duration_seconds",
				Help:      "Duration of statistics lookups per work item.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of runs by status.",
			},
			[]string{"mode", "status"},
		),
		RunDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of the most recent run.",
			},
			[]string{"mode"},
		),
		LastRun: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the most recent run finished.",
			},
			[]string{"mode"},
		),
		CatalogRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_rows",
				Help:      "Catalog rows by reconciliation status after the most recent refresh.",
			},
			[]string{"status"},
		),
	}
}

// Registry exposes the private registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveItem counts one work item. Skipped items do not touch the duration histogram.
func (r *Recorder) ObserveItem(mode, outcome string, elapsed time.Duration) {
	r.ItemsTotal.WithLabelValues(mode, outcome).Inc()
	if outcome != "skipped" {
		r.ItemDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	}
}

// ObserveRun records the end of a run.
func (r *Recorder) ObserveRun(mode, status string, elapsed time.Duration, finished time.Time) {
	r.RunsTotal.WithLabelValues(mode, status).Inc()
	r.RunDuration.WithLabelValues(mode).Set(elapsed.Seconds())
	r.LastRun.WithLabelValues(mode).Set(float64(finished.Unix()))
}

// ObserveCatalog sets the catalog gauges from per-status counts.
func (r *Recorder) ObserveCatalog(counts map[models.Status]int) {
	for status, n := range counts {
		r.CatalogRows.WithLabelValues(string(status)).Set(float64(n))
	}
}

// WriteTextfile writes the registry in text exposition format to path.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
