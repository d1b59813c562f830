// package services defines the registry and statistics provider interfaces and their
// HTTP clients for the Hugging Face Hub and datasets-server APIs
package services

import (
	"context"

	"github.com/desertthunder/mtcat/internal/models"
)

// Registry lists datasets from the remote dataset registry.
type Registry interface {
	// ListDatasets returns every dataset matching filter, following pagination.
	ListDatasets(ctx context.Context, filter string) ([]models.RawDatasetRecord, error)

	// Name returns the name of the registry (e.g., "Hugging Face Hub")
	Name() string
}

// StatsProvider reports split statistics of remote datasets.
type StatsProvider interface {
	// GetBuilderInfo returns the split sizes of one config. An empty config selects the default config.
	GetBuilderInfo(ctx context.Context, identifier, config string) (*models.BuilderInfo, error)

	// GetConfigNames returns the config names of a dataset, in provider order.
	GetConfigNames(ctx context.Context, identifier string) ([]string, error)

	// Name returns the name of the provider (e.g., "datasets-server")
	Name() string
}
