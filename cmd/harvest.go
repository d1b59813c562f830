package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mtcat/internal/catalog"
	"github.com/desertthunder/mtcat/internal/formatter"
	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/desertthunder/mtcat/internal/tasks"
	"github.com/desertthunder/mtcat/internal/ui"
	"github.com/urfave/cli/v3"
)

// Run-mode selectors accepted by `mtcat run`.
const (
	SelectInitialize     = "initialize"
	SelectRefresh        = "refresh"
	SelectUpdateCreate   = "update:create"
	SelectUpdateMonitor  = "update:monitor"
	SelectUpdateValidate = "update:validate"
)

// Selectors lists every run-mode selector in pipeline order.
var Selectors = []string{SelectInitialize, SelectRefresh, SelectUpdateCreate, SelectUpdateMonitor, SelectUpdateValidate}

// Run dispatches the selector argument to its run mode.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	selector := cmd.StringArg("selector")
	if selector == "" {
		return fmt.Errorf("%w: run mode selector (one of %v)", shared.ErrMissingArgument, Selectors)
	}
	return r.runSelector(ctx, selector)
}

func (r *Runner) runSelector(ctx context.Context, selector string) error {
	switch selector {
	case SelectInitialize:
		return r.initialize(ctx)
	case SelectRefresh:
		return r.refresh(ctx)
	case SelectUpdateCreate, SelectUpdateMonitor, SelectUpdateValidate:
		return r.update(ctx, selector)
	default:
		return fmt.Errorf("%w: %q (one of %v)", shared.ErrUnknownRunMode, selector, Selectors)
	}
}

// Initialize builds the first catalog from a fresh snapshot and the classification table.
func (r *Runner) Initialize(ctx context.Context, cmd *cli.Command) error {
	return r.initialize(ctx)
}

// Refresh reconciles a fresh snapshot against the catalog and writes the status report.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	return r.refresh(ctx)
}

// UpdateCreate harvests pair statistics for every parallel catalog row.
func (r *Runner) UpdateCreate(ctx context.Context, cmd *cli.Command) error {
	return r.update(ctx, SelectUpdateCreate)
}

// UpdateMonitor harvests only pairs missing from the pairs table.
func (r *Runner) UpdateMonitor(ctx context.Context, cmd *cli.Command) error {
	return r.update(ctx, SelectUpdateMonitor)
}

// UpdateValidate harvests datasets absent from both the pairs table and the external reference table.
func (r *Runner) UpdateValidate(ctx context.Context, cmd *cli.Command) error {
	return r.update(ctx, SelectUpdateValidate)
}

func (r *Runner) initialize(ctx context.Context) error {
	paths := r.config.Paths
	tagged, err := formatter.LoadCatalog(paths.Classification)
	if err != nil {
		return fmt.Errorf("failed to load classification table: %w", err)
	}

	j := r.startRun(ctx, SelectInitialize)
	progress := make(chan tasks.ProgressUpdate, 50)
	wait := r.printProgress(progress)

	sync := tasks.NewCatalogSync(r.registry, shared.WithLogger(r.logger, "mode", SelectInitialize))
	rows, err := sync.Initialize(ctx, r.config.Hub.Filter, catalog.NewClassificationTable(tagged), progress)
	close(progress)
	wait()

	if err == nil {
		err = formatter.SaveCatalog(paths.Catalog, rows)
	}
	r.finishRun(ctx, j, nil, err)
	if err != nil {
		return err
	}

	r.logger.Info("catalog initialized", "path", paths.Catalog, "rows", len(rows))
	r.writePlain("✓ Catalog written: %s (%d datasets)\n", paths.Catalog, len(rows))
	return nil
}

func (r *Runner) refresh(ctx context.Context) error {
	paths := r.config.Paths
	old, err := formatter.LoadCatalog(paths.Catalog)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	j := r.startRun(ctx, SelectRefresh)
	progress := make(chan tasks.ProgressUpdate, 50)
	wait := r.printProgress(progress)

	sync := tasks.NewCatalogSync(r.registry, shared.WithLogger(r.logger, "mode", SelectRefresh))
	result, err := sync.Refresh(ctx, r.config.Hub.Filter, old, progress)
	close(progress)
	wait()

	if err != nil {
		r.finishRun(ctx, j, nil, err)
		return err
	}

	report := result.Report()
	if err := formatter.SaveCatalog(paths.Catalog, result.Merged); err != nil {
		r.finishRun(ctx, j, nil, err)
		return err
	}
	if paths.StatusReport != "" {
		if err := formatter.WriteStatusReport(paths.StatusReport, report); err != nil {
			r.finishRun(ctx, j, nil, err)
			return err
		}
	}

	if j.run != nil {
		stored, err := j.statuses.RecordReport(context.WithoutCancel(ctx), j.run.ID, report, false)
		if err != nil {
			r.logger.Warn("failed to journal status changes", "err", err)
		} else {
			r.logger.Debug("journaled status changes", "count", stored)
		}
	}
	r.metrics.ObserveCatalog(result.Counts())
	r.finishRun(ctx, j, nil, nil)

	r.writePlain("\n")
	r.writePlainHeader("Catalog refreshed")
	r.writePlain("%s\n", ui.RenderCounts(result.Counts()))
	r.writePlain("Catalog: %s (%d datasets)\n", paths.Catalog, len(result.Merged))
	if paths.StatusReport != "" {
		r.writePlain("Status report: %s\n", paths.StatusReport)
	}
	return nil
}

func (r *Runner) update(ctx context.Context, selector string) error {
	result, err := r.harvest(ctx, selector, nil)
	if result != nil {
		r.printHarvestSummary(selector, result)
	}
	return err
}

// harvest runs one of the update selectors. Partial records are written even when the run is interrupted.
// When progress is nil updates are printed to the output.
func (r *Runner) harvest(ctx context.Context, selector string, progress chan<- tasks.ProgressUpdate) (*tasks.HarvestResult, error) {
	paths := r.config.Paths
	rows, err := formatter.LoadCatalog(paths.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	mode, err := r.runMode(selector)
	if err != nil {
		return nil, err
	}

	if err := r.ledger.Clear(mode.Stream()); err != nil {
		return nil, err
	}

	j := r.startRun(ctx, selector)
	engine := tasks.NewHarvestEngine(r.provider, r.ledger, r.logger,
		tasks.WithVerbose(r.config.Harvest.Verbose),
		tasks.WithFailureRecorder(j.recorder()),
		tasks.WithMetrics(r.metrics),
	)

	if progress == nil {
		ch := make(chan tasks.ProgressUpdate, 50)
		wait := r.printProgress(ch)
		defer func() {
			close(ch)
			wait()
		}()
		progress = ch
	}

	result, runErr := engine.Run(ctx, rows, mode, progress)
	if result != nil {
		if err := formatter.SavePairs(paths.Pairs, result.Records); err != nil {
			r.finishRun(ctx, j, result, err)
			return result, err
		}
		r.logger.Info("pairs table written", "path", paths.Pairs, "rows", len(result.Records))
	}

	r.finishRun(ctx, j, result, runErr)
	return result, runErr
}

// runMode builds the harvest mode for an update selector.
func (r *Runner) runMode(selector string) (models.RunMode, error) {
	paths := r.config.Paths
	switch selector {
	case SelectUpdateCreate:
		return models.DefaultMode{}, nil
	case SelectUpdateMonitor:
		existing, err := formatter.LoadPairs(paths.Pairs)
		if err != nil {
			return nil, fmt.Errorf("failed to load pairs table: %w", err)
		}
		return models.NewMonitorMode(existing), nil
	case SelectUpdateValidate:
		existing, err := formatter.LoadPairs(paths.Pairs)
		if err != nil {
			return nil, fmt.Errorf("failed to load pairs table: %w", err)
		}
		reference, err := formatter.LoadPairs(paths.ExternalPairs)
		if err != nil {
			return nil, fmt.Errorf("failed to load external pairs table: %w", err)
		}
		return models.ValidateMode{Existing: existing, Reference: reference}, nil
	default:
		return nil, fmt.Errorf("%w: %q is not an update mode", shared.ErrUnknownRunMode, selector)
	}
}

func (r *Runner) printHarvestSummary(selector string, result *tasks.HarvestResult) {
	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("Harvest %s", selector))
	r.writePlain("Candidates: %d (%d edge cases, %d excluded)\n", result.Candidates, len(result.EdgeCases), result.Excluded)
	r.writePlain("Work items: %d\n", result.Items)
	r.writePlain("Harvested: %d\n", len(result.Fresh))
	r.writePlain("Skipped: %d\n", result.Skipped)
	r.writePlain("Failed: %d\n", len(result.Failures))
	r.writePlain("Pairs table: %s (%d rows)\n", r.config.Paths.Pairs, len(result.Records))

	if len(result.Failures) > 0 {
		path, _ := r.ledger.Path(streamFor(selector))
		r.writePlain("%s\n", ui.RenderWarning(fmt.Sprintf("Failed datasets listed in %s", path)))
	}
}

func streamFor(selector string) models.LedgerStream {
	if selector == SelectUpdateValidate {
		return models.StreamValidate
	}
	return models.StreamPrimary
}
