package ledger

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Run is one batch invocation. Status is "running", "completed", or
// "interrupted".
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	GroupsTotal     int
	GroupsProcessed int
	GroupsSkipped   int
	GroupsFailed    int
	Status          string
}

// GroupRun is one group attempt within a run. Status is "written",
// "empty", "skipped", or "failed". The ledger is diagnostic history
// only: resumability always derives from the output artifacts, never
// from these rows.
type GroupRun struct {
	ID         string
	RunID      string
	GroupKey   string
	Segments   int
	Matches    int
	Written    int
	Status     string
	Error      string
	DurationMs int64
	CreatedAt  time.Time
}
