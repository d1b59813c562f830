package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mtcat/internal/catalog"
	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/services"
	"github.com/desertthunder/mtcat/internal/shared"
)

// CatalogSync fetches registry snapshots and turns them into catalog tables.
type CatalogSync struct {
	registry services.Registry
	logger   *log.Logger
}

func NewCatalogSync(registry services.Registry, logger *log.Logger) *CatalogSync {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CatalogSync{registry: registry, logger: logger}
}

// Fetch lists every dataset matching filter and normalizes the records.
// A registry failure is fatal to the run.
func (s *CatalogSync) Fetch(ctx context.Context, filter string, progress chan<- ProgressUpdate) ([]models.CatalogRow, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: registry not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, fetchRegistryUpdate(s.registry.Name(), filter))
	records, err := s.registry.ListDatasets(ctx, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, interrupted(ctx)
		}
		return nil, fmt.Errorf("failed to list datasets from %s: %w", s.registry.Name(), err)
	}

	rows := catalog.Normalize(records)
	s.logger.Info("fetched registry snapshot", "records", len(records), "rows", len(rows))
	sendProgress(progress, fetchedRegistryUpdate(len(records), len(rows)))
	return rows, nil
}

// Initialize builds a first catalog: a fresh snapshot classified by the curated side table.
func (s *CatalogSync) Initialize(ctx context.Context, filter string, classifier catalog.Classifier, progress chan<- ProgressUpdate) ([]models.CatalogRow, error) {
	rows, err := s.Fetch(ctx, filter, progress)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, classifyUpdate(len(rows)))
	classified := catalog.Classify(rows, classifier)

	untyped := 0
	for _, row := range classified {
		if row.DatasetType == models.TypeUnset {
			untyped++
		}
	}
	if untyped > 0 {
		s.logger.Warn("datasets missing from the classification table", "count", untyped)
	}
	return classified, nil
}

// Refresh reconciles a fresh snapshot against the prior catalog.
func (s *CatalogSync) Refresh(ctx context.Context, filter string, old []models.CatalogRow, progress chan<- ProgressUpdate) (models.ReconciliationResult, error) {
	rows, err := s.Fetch(ctx, filter, progress)
	if err != nil {
		return models.ReconciliationResult{}, err
	}

	result := catalog.Reconcile(old, rows)
	c := result.Counts()
	s.logger.Info("reconciled catalog",
		"new", c[models.StatusNew], "updated", c[models.StatusUpdated],
		"unchanged", c[models.StatusUnchanged], "removed", c[models.StatusRemoved])
	sendProgress(progress, reconcileUpdate(result))
	return result, nil
}
