package models

import "time"

// RunStatus is the lifecycle state of a journaled run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunCompleted   RunStatus = "completed"
	RunInterrupted RunStatus = "interrupted"
	RunFailed      RunStatus = "failed"
)

// Run is one journaled CLI run. Sequence gives a human-readable run number.
type Run struct {
	ID             string
	Sequence       int
	Mode           string
	Status         RunStatus
	ItemsTotal     int
	ItemsHarvested int
	ItemsFailed    int
	ItemsSkipped   int
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// Duration returns the run's wall time, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailureEntry is a journaled [HarvestFailure].
type FailureEntry struct {
	ID         string
	RunID      string
	Identifier string
	Label      string
	Stage      FailureStage
	Error      string
	CreatedAt  time.Time
}

// StatusChange is a journaled reconciliation status of one dataset.
type StatusChange struct {
	ID           string
	RunID        string
	Identifier   string
	Status       Status
	LastModified string
	CreatedAt    time.Time
}
