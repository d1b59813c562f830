package tasks

import (
	"fmt"

	"github.com/desertthunder/mtcat/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchRegistry Phase = iota
	Classify
	Reconcile
	FilterCandidates
	ResolvePairs
	HarvestPairs
	SkipPair
	ItemFailed
	Finished
)

func (p Phase) String() string {
	switch p {
	case FetchRegistry:
		return "fetch_registry"
	case Classify:
		return "classify"
	case Reconcile:
		return "reconcile"
	case FilterCandidates:
		return "filter_candidates"
	case ResolvePairs:
		return "resolve_pairs"
	case HarvestPairs:
		return "harvest_pairs"
	case SkipPair:
		return "skip_pair"
	case ItemFailed:
		return "item_failed"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

func fetchRegistryUpdate(name, filter string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRegistry,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Listing datasets from %s (filter %q)...", name, filter),
	}
}

func fetchedRegistryUpdate(records, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRegistry,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d datasets, %d kept after normalization", records, rows),
	}
}

func classifyUpdate(rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Classify,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Classifying %d datasets...", rows),
	}
}

func reconcileUpdate(result models.ReconciliationResult) ProgressUpdate {
	c := result.Counts()
	return ProgressUpdate{
		Phase: Reconcile,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("%d new, %d updated, %d unchanged, %d removed",
			c[models.StatusNew], c[models.StatusUpdated], c[models.StatusUnchanged], c[models.StatusRemoved]),
		Data: result,
	}
}

func filterUpdate(candidates, edgeCases, excluded int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d candidate datasets (%d edge cases, %d already known)", candidates, edgeCases, excluded),
	}
}

func resolveUpdate(step, total int, row models.CatalogRow) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePairs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving %s", step, total, row.Identifier),
		Data:    row,
	}
}

func harvestUpdate(step, total int, item models.PairWorkItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   HarvestPairs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, item.Identifier, item.Label),
		Data:    item,
	}
}

func skipUpdate(step, total int, item models.PairWorkItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipPair,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s %s already harvested", step, total, item.Identifier, item.Label),
		Data:    item,
	}
}

func failedUpdate(step, total int, f models.HarvestFailure) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ItemFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, f.Identifier, f.Err),
		Data:    f,
	}
}

func finishedUpdate(result *HarvestResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finished,
		Step:    result.Candidates,
		Total:   result.Candidates,
		Message: fmt.Sprintf("Harvested %d pairs (%d failed, %d skipped)", len(result.Fresh), len(result.Failures), result.Skipped),
		Data:    result,
	}
}
