package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mtcat/internal/repositories"
	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists journaled runs, or the failures and status changes of one dataset.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db := r.journalDB()
	if db == nil {
		return fmt.Errorf("%w: run journal is not available (see `mtcat setup`)", shared.ErrMissingConfig)
	}

	if dataset := cmd.String("dataset"); dataset != "" {
		return r.datasetHistory(ctx, dataset, cmd.Bool("json"))
	}

	if seq := int(cmd.Int("run")); seq > 0 {
		return r.runHistory(ctx, seq, cmd.Bool("json"))
	}

	runs, err := repositories.NewRunRepository(db).List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet.\n")
	}

	r.writePlainHeader("Runs")
	for _, run := range runs {
		r.writePlain("#%-4d %-16s %-11s %s  harvested %d, failed %d, skipped %d",
			run.Sequence, run.Mode, run.Status, run.StartedAt.Local().Format(time.DateTime),
			run.ItemsHarvested, run.ItemsFailed, run.ItemsSkipped)
		if d := run.Duration(); d > 0 {
			r.writePlain(" (%s)", d.Round(time.Second))
		}
		r.writePlain("\n")
	}
	return nil
}

func (r *Runner) runHistory(ctx context.Context, sequence int, asJSON bool) error {
	run, err := repositories.NewRunRepository(r.db).GetBySequence(ctx, sequence)
	if err != nil {
		return fmt.Errorf("run #%d: %w", sequence, err)
	}

	failures, err := repositories.NewFailureRepository(r.db).ListByRun(ctx, run.ID)
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(map[string]any{"run": run, "failures": failures}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d (%s, %s)", run.Sequence, run.Mode, run.Status))
	if run.ErrorMessage != "" {
		r.writePlain("Error: %s\n", run.ErrorMessage)
	}
	for _, f := range failures {
		label := f.Identifier
		if f.Label != "" {
			label = fmt.Sprintf("%s (%s)", f.Identifier, f.Label)
		}
		r.writePlain("  ✗ [%s] %s: %s\n", f.Stage, label, f.Error)
	}
	return nil
}

func (r *Runner) datasetHistory(ctx context.Context, dataset string, asJSON bool) error {
	changes, err := repositories.NewStatusChangeRepository(r.db).History(ctx, dataset)
	if err != nil {
		return err
	}
	failures, err := repositories.NewFailureRepository(r.db).ListByIdentifier(ctx, dataset)
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(map[string]any{"status_changes": changes, "failures": failures}, true)
	}

	r.writePlainHeader(dataset)
	r.writePlain("Status changes: %d\n", len(changes))
	for _, c := range changes {
		r.writePlain("  %s  %-9s %s\n", c.CreatedAt.Local().Format(time.DateTime), c.Status, c.LastModified)
	}
	r.writePlain("Failures: %d\n", len(failures))
	for _, f := range failures {
		r.writePlain("  %s  [%s] %s %s\n", f.CreatedAt.Local().Format(time.DateTime), f.Stage, f.Label, f.Error)
	}
	return nil
}
