package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/desertthunder/mtcat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// inspection is the JSON shape printed by Inspect.
type inspection struct {
	Identifier string             `json:"identifier"`
	Configs    []string           `json:"configs"`
	Splits     []models.SplitInfo `json:"splits"`
	Pair       models.PairRecord  `json:"pair"`
}

// Inspect queries the statistics provider for one dataset, the same way a harvest would.
func (r *Runner) Inspect(ctx context.Context, cmd *cli.Command) error {
	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: dataset identifier", shared.ErrMissingArgument)
	}
	config := cmd.String("config")

	r.logger.Info("inspecting dataset", "dataset", identifier, "config", config, "provider", r.provider.Name())

	configs, err := r.provider.GetConfigNames(ctx, identifier)
	if err != nil {
		return fmt.Errorf("failed to list configs: %w", err)
	}

	info, err := r.provider.GetBuilderInfo(ctx, identifier, config)
	if err != nil {
		return fmt.Errorf("failed to get split info: %w", err)
	}

	kind := models.KindParallel
	if config != "" {
		kind = models.KindMultilingualConfig
	}
	out := inspection{
		Identifier: identifier,
		Configs:    configs,
		Splits:     info.Splits,
		Pair:       tasks.MapSplits(models.PairWorkItem{Identifier: identifier, Label: config, Kind: kind}, info),
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(identifier)
	r.writePlain("Configs (%d): %v\n", len(configs), configs)
	r.writePlain("Splits:\n")
	for _, s := range info.Splits {
		r.writePlain("  %-20s %d\n", s.Name, s.NumExamples)
	}
	r.writePlain("Mapped: train %d, dev %d, test %d\n", out.Pair.TrainCount, out.Pair.DevCount, out.Pair.TestCount)
	return nil
}

// inspectCommand probes the statistics provider
func inspectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the configs and split sizes the statistics provider reports for a dataset",
		ArgsUsage: "<identifier>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "identifier"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config name (default: the provider's default config)",
			},
			jsonFlag(),
		},
		Action: r.Inspect,
	}
}
