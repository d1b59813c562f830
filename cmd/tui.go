package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/desertthunder/mtcat/internal/tasks"
	"github.com/desertthunder/mtcat/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs an update mode with the interactive progress view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	selector := cmd.StringArg("selector")
	if selector == "" {
		selector = SelectUpdateMonitor
	}
	if selector != SelectUpdateCreate && selector != SelectUpdateMonitor && selector != SelectUpdateValidate {
		return fmt.Errorf("%w: the TUI runs update modes only, got %q", shared.ErrUnknownRunMode, selector)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, "mtcat "+selector, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.HarvestResult, error) {
		return r.harvest(ctx, selector, progress)
	})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}
