// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/mtcat/internal/catalog"
	"github.com/urfave/cli/v3"
)

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Log every dataset and the full error of each failed item",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

// runCommand dispatches a run-mode selector
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a pipeline mode: initialize, refresh, update:create, update:monitor or update:validate",
		ArgsUsage: "<selector>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "selector"},
		},
		Flags:  []cli.Flag{verboseFlag()},
		Before: r.before,
		Action: r.Run,
	}
}

// initializeCommand builds the first catalog
func initializeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "initialize",
		Usage:  "Build the catalog from a fresh registry snapshot and the classification table",
		Flags:  []cli.Flag{verboseFlag()},
		Before: r.before,
		Action: r.Initialize,
	}
}

// refreshCommand reconciles the catalog against a fresh snapshot
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "refresh",
		Usage:  "Reconcile the catalog against a fresh registry snapshot and write the status report",
		Flags:  []cli.Flag{verboseFlag()},
		Before: r.before,
		Action: r.Refresh,
	}
}

// updateCommand harvests language-pair statistics
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Harvest language-pair statistics for the catalog",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Harvest every parallel dataset and overwrite the pairs table",
				Flags:  []cli.Flag{verboseFlag()},
				Before: r.before,
				Action: r.UpdateCreate,
			},
			{
				Name:   "monitor",
				Usage:  "Harvest only pairs missing from the pairs table",
				Flags:  []cli.Flag{verboseFlag()},
				Before: r.before,
				Action: r.UpdateMonitor,
			},
			{
				Name:   "validate",
				Usage:  "Harvest datasets absent from both the pairs table and the external reference table",
				Flags:  []cli.Flag{verboseFlag()},
				Before: r.before,
				Action: r.UpdateValidate,
			},
		},
	}
}

// auditCommand checks catalog data quality
func auditCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Check the catalog for duplicates, missing values and language-count mismatches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Catalog table to audit (default: paths.catalog)",
			},
			jsonFlag(),
		},
		Action: r.Audit,
	}
}

// externalCommand manages the external reference pairs table
func externalCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "external",
		Usage: "Manage the external reference pairs table",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Expand a manually catalogued dataset into language pairs",
				ArgsUsage: "<identifier>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "identifier"},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "languages",
						Aliases:  []string{"l"},
						Usage:    "Languages of the dataset (repeat or comma-separate)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "layout",
						Usage: "Pair layout: multiway, english-centric or simple",
						Value: string(catalog.LayoutSimple),
					},
					&cli.IntFlag{
						Name:  "train",
						Usage: "Train examples per pair",
					},
					&cli.IntFlag{
						Name:  "dev",
						Usage: "Development examples per pair",
					},
					&cli.IntFlag{
						Name:  "test",
						Usage: "Test examples per pair",
					},
					&cli.StringSliceFlag{
						Name:  "target-counts",
						Usage: "Counts for one target language as lang=train/dev/test",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print the pairs instead of appending them",
					},
				},
				Action: r.ExternalAdd,
			},
		},
	}
}

// missingCommand prints a missing-items ledger
func missingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "missing",
		Usage: "List datasets that could not be harvested by the last update run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "stream",
				Usage: "Ledger stream: primary (create/monitor) or validate",
				Value: "primary",
			},
			jsonFlag(),
		},
		Action: r.Missing,
	}
}

// historyCommand reads the run journal
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show journaled runs, one run's failures or one dataset's history",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "run",
				Usage: "Show the failures of the run with this sequence number",
			},
			&cli.StringFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Usage:   "Show status changes and failures of one dataset",
			},
			jsonFlag(),
		},
		Action: r.History,
	}
}

// setupCommand prepares config, directories and the run journal
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml, data directories and the run journal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand runs an update mode with the interactive progress view
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Run an update mode with an interactive progress view",
		ArgsUsage: "[update:create|update:monitor|update:validate]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "selector"},
		},
		Flags: []cli.Flag{
			verboseFlag(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the TUI owns the terminal",
				Value: "./tmp/mtcat-tui.log",
			},
		},
		Before: r.before,
		Action: r.TUI,
	}
}
