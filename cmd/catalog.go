package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/mtcat/internal/catalog"
	"github.com/desertthunder/mtcat/internal/formatter"
	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/urfave/cli/v3"
)

// Audit runs the data-quality checks over the catalog and fails when any rule is violated.
func (r *Runner) Audit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("catalog")
	if path == "" {
		path = r.config.Paths.Catalog
	}

	rows, err := formatter.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	findings := catalog.Audit(rows)
	if cmd.Bool("json") {
		if err := r.writeJSON(findings, true); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			r.writePlain("%s\n", f)
		}
	}

	if len(findings) > 0 {
		r.logger.Warn("catalog audit failed", "path", path, "rows", len(rows), "findings", len(findings))
		return fmt.Errorf("%w: %d findings in %s", shared.ErrAuditFailed, len(findings), path)
	}

	r.writePlain("✓ %s passed all checks (%d datasets)\n", path, len(rows))
	return nil
}

// ExternalAdd expands a manually catalogued dataset and appends its pairs to the external reference table.
func (r *Runner) ExternalAdd(ctx context.Context, cmd *cli.Command) error {
	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: dataset identifier", shared.ErrMissingArgument)
	}

	layout, err := catalog.ParseLayout(cmd.String("layout"))
	if err != nil {
		return err
	}

	perTarget, err := parseTargetCounts(cmd.StringSlice("target-counts"))
	if err != nil {
		return err
	}

	records, err := catalog.ExpandPairs(catalog.Expansion{
		Identifier: identifier,
		Languages:  splitLanguages(cmd.StringSlice("languages")),
		Layout:     layout,
		Counts: catalog.SplitCounts{
			Train: int(cmd.Int("train")),
			Dev:   int(cmd.Int("dev")),
			Test:  int(cmd.Int("test")),
		},
		PerTarget: perTarget,
	})
	if err != nil {
		return err
	}

	path := r.config.Paths.ExternalPairs
	if cmd.Bool("dry-run") {
		data, err := formatter.ExportPairsCSV(records)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if err := formatter.AppendPairs(path, records); err != nil {
		return err
	}

	r.logger.Info("external pairs appended", "dataset", identifier, "layout", layout, "pairs", len(records))
	r.writePlain("✓ Added %d pairs for %s to %s\n", len(records), identifier, path)
	return nil
}

// Missing prints the identifiers recorded in a missing-items ledger stream.
func (r *Runner) Missing(ctx context.Context, cmd *cli.Command) error {
	stream := models.LedgerStream(cmd.String("stream"))
	if stream != models.StreamPrimary && stream != models.StreamValidate {
		return fmt.Errorf("%w: stream must be %q or %q", shared.ErrInvalidArgument, models.StreamPrimary, models.StreamValidate)
	}

	ids, err := r.ledger.Read(stream)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if ids == nil {
			ids = []string{}
		}
		return r.writeJSON(ids, true)
	}
	for _, id := range ids {
		r.writePlain("%s\n", id)
	}
	return nil
}

// splitLanguages accepts repeated flags as well as comma-separated values.
func splitLanguages(values []string) []string {
	var langs []string
	for _, v := range values {
		for _, lang := range strings.Split(v, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				langs = append(langs, lang)
			}
		}
	}
	return langs
}

// parseTargetCounts parses entries of the form lang=train/dev/test.
func parseTargetCounts(values []string) (map[string]catalog.SplitCounts, error) {
	if len(values) == 0 {
		return nil, nil
	}

	counts := make(map[string]catalog.SplitCounts, len(values))
	for _, v := range values {
		lang, value, ok := strings.Cut(v, "=")
		parts := strings.Split(value, "/")
		if !ok || strings.TrimSpace(lang) == "" || len(parts) != 3 {
			return nil, fmt.Errorf("%w: target counts %q (want lang=train/dev/test)", shared.ErrInvalidArgument, v)
		}

		var n [3]int
		for i, p := range parts {
			c, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || c < 0 {
				return nil, fmt.Errorf("%w: target counts %q (want lang=train/dev/test)", shared.ErrInvalidArgument, v)
			}
			n[i] = c
		}
		counts[strings.TrimSpace(lang)] = catalog.SplitCounts{Train: n[0], Dev: n[1], Test: n[2]}
	}
	return counts, nil
}
