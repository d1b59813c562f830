// package tasks implements the catalog synchronization and pair harvesting workflows.
//
// The core abstraction is HarvestEngine, which walks catalog rows, resolves work items and
// fetches split statistics under a run mode. Operations emit progress updates via channels
// for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/services"
	"github.com/desertthunder/mtcat/internal/shared"
)

// Item outcomes reported to a [MetricsRecorder].
const (
	OutcomeHarvested = "harvested"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Ledger receives the identifiers of failed items.
type Ledger interface {
	Append(stream models.LedgerStream, identifier string) error
}

// FailureRecorder keeps the full error of each failed item (the ledger only keeps identifiers).
type FailureRecorder interface {
	RecordFailure(ctx context.Context, failure models.HarvestFailure) error
}

// MetricsRecorder observes per-item outcomes.
type MetricsRecorder interface {
	ObserveItem(mode, outcome string, elapsed time.Duration)
}

// HarvestResult contains all data from a harvest run.
type HarvestResult struct {
	Mode       string
	Records    []models.PairRecord // Fresh followed by the mode's prior records; the table to write
	Fresh      []models.PairRecord // Records harvested by this run
	Failures   []models.HarvestFailure
	EdgeCases  []models.CatalogRow
	Excluded   int // Candidates dropped by validate mode
	Candidates int // Rows walked
	Items      int // Work items resolved
	Skipped    int // Items skipped by monitor mode
}

// HarvestEngine runs work items through a statistics provider, one blocking call at a time.
type HarvestEngine struct {
	provider services.StatsProvider
	resolver *Resolver
	ledger   Ledger
	logger   *log.Logger
	verbose  bool
	failures FailureRecorder
	metrics  MetricsRecorder
}

// EngineOption configures optional collaborators of a [HarvestEngine].
type EngineOption func(*HarvestEngine)

// WithVerbose logs full error text for failed items instead of a one-line notice.
func WithVerbose(verbose bool) EngineOption {
	return func(e *HarvestEngine) { e.verbose = verbose }
}

// WithFailureRecorder records each failure, e.g. in the run journal.
func WithFailureRecorder(r FailureRecorder) EngineOption {
	return func(e *HarvestEngine) { e.failures = r }
}

// WithMetrics reports item outcomes to m.
func WithMetrics(m MetricsRecorder) EngineOption {
	return func(e *HarvestEngine) { e.metrics = m }
}

// NewHarvestEngine creates an engine over provider, writing failed identifiers to ledger.
func NewHarvestEngine(provider services.StatsProvider, ledger Ledger, logger *log.Logger, opts ...EngineOption) *HarvestEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &HarvestEngine{
		provider: provider,
		resolver: NewResolver(provider),
		ledger:   ledger,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run harvests pair statistics for rows under mode.
//
// Per-item failures go to the ledger stream of the mode and the run continues. When ctx is
// canceled the records gathered so far are returned together with an error wrapping
// [shared.ErrInterrupted], so callers can flush them. Ledger write failures abort the run.
func (e *HarvestEngine) Run(ctx context.Context, rows []models.CatalogRow, mode models.RunMode, progress chan<- ProgressUpdate) (*HarvestResult, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("%w: statistics provider not initialized", shared.ErrServiceUnavailable)
	}
	if mode == nil {
		return nil, fmt.Errorf("%w: nil run mode", shared.ErrUnknownRunMode)
	}

	result := &HarvestResult{Mode: mode.Name()}
	logger := shared.WithLogger(e.logger, "mode", mode.Name())

	candidates, edgeCases := FilterParallel(rows)
	result.EdgeCases = edgeCases
	for _, row := range edgeCases {
		logger.Warn("edge case: parallel dataset without exactly two languages",
			"dataset", row.Identifier, "languages", row.SupportedLanguages)
	}

	if validate, ok := mode.(models.ValidateMode); ok {
		candidates, result.Excluded = excludeKnown(candidates, validate.Known())
	}

	var ledger models.ResumeLedger
	if monitor, ok := mode.(models.MonitorMode); ok {
		ledger = monitor.Ledger()
	}

	result.Candidates = len(candidates)
	sendProgress(progress, filterUpdate(len(candidates), len(edgeCases), result.Excluded))

	finish := func(err error) (*HarvestResult, error) {
		result.Records = append(append([]models.PairRecord{}, result.Fresh...), mode.Prior()...)
		if err != nil {
			return result, err
		}
		sendProgress(progress, finishedUpdate(result))
		return result, nil
	}

	for i, row := range candidates {
		step := i + 1
		if ctx.Err() != nil {
			return finish(interrupted(ctx))
		}

		sendProgress(progress, resolveUpdate(step, len(candidates), row))
		if e.verbose {
			logger.Info("getting configs", "dataset", row.Identifier)
		}

		items, err := e.resolver.Resolve(ctx, row)
		if err != nil {
			if ctx.Err() != nil {
				return finish(interrupted(ctx))
			}
			failure := models.HarvestFailure{Identifier: row.Identifier, Stage: models.StageResolve, Err: err}
			result.Failures = append(result.Failures, failure)
			e.observe(mode, OutcomeFailed, 0)
			if err := e.fail(ctx, logger, mode, failure); err != nil {
				return finish(err)
			}
			sendProgress(progress, failedUpdate(step, len(candidates), failure))
			continue
		}
		result.Items += len(items)

		for _, item := range items {
			if ledger != nil && ledger.Has(item.Identifier, item.Label) {
				result.Skipped++
				e.observe(mode, OutcomeSkipped, 0)
				sendProgress(progress, skipUpdate(step, len(candidates), item))
				continue
			}
			if ctx.Err() != nil {
				return finish(interrupted(ctx))
			}

			sendProgress(progress, harvestUpdate(step, len(candidates), item))
			if e.verbose {
				logger.Info("harvesting pair", "dataset", item.Identifier, "config", item.Config())
			}

			start := time.Now()
			info, err := e.provider.GetBuilderInfo(ctx, item.Identifier, item.Config())
			if err != nil {
				if ctx.Err() != nil {
					return finish(interrupted(ctx))
				}
				failure := models.HarvestFailure{Identifier: item.Identifier, Label: item.Label, Stage: models.StageHarvest, Err: err}
				result.Failures = append(result.Failures, failure)
				e.observe(mode, OutcomeFailed, time.Since(start))
				if err := e.fail(ctx, logger, mode, failure); err != nil {
					return finish(err)
				}
				sendProgress(progress, failedUpdate(step, len(candidates), failure))
				continue
			}

			result.Fresh = append(result.Fresh, MapSplits(item, info))
			e.observe(mode, OutcomeHarvested, time.Since(start))
		}
	}

	return finish(nil)
}

// fail logs a per-item failure and writes it to the ledger stream of mode.
func (e *HarvestEngine) fail(ctx context.Context, logger *log.Logger, mode models.RunMode, failure models.HarvestFailure) error {
	if e.verbose {
		logger.Error("failed to harvest dataset", "dataset", failure.Identifier, "label", failure.Label,
			"stage", failure.Stage, "err", failure.Err)
	} else {
		logger.Warn("error loading dataset", "dataset", failure.Identifier)
	}

	if e.failures != nil {
		if err := e.failures.RecordFailure(ctx, failure); err != nil {
			logger.Warn("failed to journal failure", "dataset", failure.Identifier, "err", err)
		}
	}

	if e.ledger == nil {
		return nil
	}
	if err := e.ledger.Append(mode.Stream(), failure.Identifier); err != nil {
		return fmt.Errorf("failed to write missing-items ledger: %w", err)
	}
	return nil
}

func (e *HarvestEngine) observe(mode models.RunMode, outcome string, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.ObserveItem(mode.Name(), outcome, elapsed)
	}
}

func interrupted(ctx context.Context) error {
	return fmt.Errorf("%w: %v", shared.ErrInterrupted, context.Cause(ctx))
}

// IsInterrupted reports whether err stems from an interrupted run.
func IsInterrupted(err error) bool {
	return errors.Is(err, shared.ErrInterrupted)
}

func excludeKnown(rows []models.CatalogRow, known map[string]struct{}) ([]models.CatalogRow, int) {
	kept := make([]models.CatalogRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := known[row.Identifier]; ok {
			continue
		}
		kept = append(kept, row)
	}
	return kept, len(rows) - len(kept)
}
