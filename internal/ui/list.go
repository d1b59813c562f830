package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/mtcat/internal/models"
)

var _ list.Item = failureItem{}

// failureItem wraps [models.HarvestFailure] to implement [list.Item].
type failureItem struct {
	failure models.HarvestFailure
}

func (i failureItem) FilterValue() string { return i.failure.Identifier }
func (i failureItem) Title() string {
	if i.failure.Label == "" {
		return i.failure.Identifier
	}
	return fmt.Sprintf("%s (%s)", i.failure.Identifier, i.failure.Label)
}
func (i failureItem) Description() string {
	return fmt.Sprintf("%s • %v", i.failure.Stage, i.failure.Err)
}

func failureItems(failures []models.HarvestFailure) []list.Item {
	items := make([]list.Item, len(failures))
	for i, f := range failures {
		items[i] = failureItem{failure: f}
	}
	return items
}
