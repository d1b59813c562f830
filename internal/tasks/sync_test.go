package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/mtcat/internal/catalog"
	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
	th "github.com/desertthunder/mtcat/internal/testing"
)

func registryFixture() *th.FakeRegistry {
	return &th.FakeRegistry{Records: []models.RawDatasetRecord{
		{
			ID:           "a/x",
			Tags:         []string{"language:en", "language:fr"},
			CreatedAt:    time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC),
			LastModified: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:           "a/z",
			Tags:         []string{"language:de"},
			CreatedAt:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			LastModified: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{ID: "a/code", Tags: []string{"language:code"}},
	}}
}

func TestCatalogSync(t *testing.T) {
	t.Run("Fetch", func(t *testing.T) {
		registry := registryFixture()
		sync := NewCatalogSync(registry, nil)

		rows, err := sync.Fetch(context.Background(), "task_categories:translation", nil)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("expected code dataset dropped, got %d rows", len(rows))
		}
		if len(registry.Filters) != 1 || registry.Filters[0] != "task_categories:translation" {
			t.Errorf("unexpected filters %v", registry.Filters)
		}
	})

	t.Run("Registry Failure Is Fatal", func(t *testing.T) {
		sync := NewCatalogSync(&th.FakeRegistry{Err: shared.ErrServiceUnavailable}, nil)
		if _, err := sync.Fetch(context.Background(), "", nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Initialize", func(t *testing.T) {
		sync := NewCatalogSync(registryFixture(), nil)
		table := catalog.ClassificationTable{"a/x": models.TypeParallel}

		rows, err := sync.Initialize(context.Background(), "", table, nil)
		if err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		if rows[0].DatasetType != models.TypeParallel {
			t.Errorf("expected a/x classified, got %q", rows[0].DatasetType)
		}
		if rows[1].DatasetType != models.TypeUnset {
			t.Errorf("expected a/z untyped, got %q", rows[1].DatasetType)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		sync := NewCatalogSync(registryFixture(), nil)
		old := []models.CatalogRow{
			{Identifier: "a/x", LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DatasetType: models.TypeParallel},
			{Identifier: "a/y", LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DatasetType: models.TypeUnsupported},
		}
		progress := make(chan ProgressUpdate, 10)

		result, err := sync.Refresh(context.Background(), "", old, progress)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		c := result.Counts()
		if c[models.StatusNew] != 1 || c[models.StatusUpdated] != 1 || c[models.StatusRemoved] != 1 || c[models.StatusUnchanged] != 0 {
			t.Errorf("unexpected counts %v", c)
		}
		if result.Updated[0].DatasetType != models.TypeParallel {
			t.Errorf("expected type carried forward, got %q", result.Updated[0].DatasetType)
		}

		close(progress)
		var sawReconcile bool
		for u := range progress {
			if u.Phase == Reconcile {
				sawReconcile = true
			}
		}
		if !sawReconcile {
			t.Error("expected a reconcile progress update")
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sync := NewCatalogSync(&th.FakeRegistry{Err: context.Canceled}, nil)

		if _, err := sync.Fetch(ctx, "", nil); !errors.Is(err, shared.ErrInterrupted) {
			t.Errorf("expected ErrInterrupted, got %v", err)
		}
	})
}
