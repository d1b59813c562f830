package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config file when missing, initializes the run journal and creates the data directories.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	paths := config.Paths
	for _, p := range []string{
		paths.Catalog, paths.Pairs, paths.ExternalPairs, paths.Classification,
		paths.MissingPrimary, paths.MissingValidate, paths.StatusReport,
	} {
		if p == "" {
			continue
		}
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	if config.Database.Path == "" {
		r.writePlain("✓ Directories ready (run journal disabled)\n")
		return nil
	}

	r.logger.Info("initializing run journal", "path", config.Database.Path)
	db, err := shared.OpenJournal(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize run journal: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Run journal ready: %s\n", config.Database.Path)
	return nil
}
