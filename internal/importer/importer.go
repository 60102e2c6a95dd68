package importer

import (
	"errors"
	"fmt"
	"time"
)

// Run types.
const (
	TypeBulk        = "bulk"
	TypeIncremental = "incremental"
)

// Run statuses. A run is running from creation until it is finalized exactly
// once to completed or failed.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrNoRuns is returned by LatestRun when no import has ever been started.
var ErrNoRuns = errors.New("no import runs")

// ConflictError means another run is already in progress. It is raised before
// any page is fetched and before a new run row is created.
type ConflictError struct {
	RunID     int64
	StartedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("import already running (run %d, started %s)", e.RunID, e.StartedAt.Format(time.RFC3339))
}

// Run is one row of the import run ledger.
type Run struct {
	ID            int64      `json:"id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	TotalFetched  int        `json:"total_fetched"`
	TotalInserted int        `json:"total_inserted"`
	TotalUpdated  int        `json:"total_updated"`
	TotalSkipped  int        `json:"total_skipped"`
	LastOffset    int        `json:"last_offset"`
	FilterQuery   string     `json:"filter_query"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Progress is the cumulative state of an in-flight run, passed to progress
// callbacks after every page.
type Progress struct {
	RunID         int64
	Fetched       int
	Inserted      int
	Updated       int
	Skipped       int
	CurrentOffset int
}

// ProgressFunc receives a snapshot after each persisted page.
type ProgressFunc func(Progress)
