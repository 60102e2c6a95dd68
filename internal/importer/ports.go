package importer

import (
	"context"

	"gameapi/internal/game"
	"gameapi/internal/platform/igdb"
)

// RunRepository persists the import run ledger.
type RunRepository interface {
	// CreateRun inserts a running row and fills ID, StartedAt and UpdatedAt.
	CreateRun(ctx context.Context, run *Run) error
	// UpdateProgress persists the cumulative counters and last offset and
	// refreshes the heartbeat timestamp.
	UpdateProgress(ctx context.Context, run *Run) error
	// FinalizeRun persists the terminal status, error text, counters and
	// completion timestamp.
	FinalizeRun(ctx context.Context, run *Run) error
	// FindRunning returns the current running row, or nil when there is none.
	FindRunning(ctx context.Context) (*Run, error)
	// LatestRun returns the most recently started run, or ErrNoRuns.
	LatestRun(ctx context.Context) (Run, error)
}

// GameStore is the slice of game storage the import loop needs.
type GameStore interface {
	UpsertBatch(ctx context.Context, rows []game.Game) (game.UpsertResult, error)
	MaxIGDBUpdatedAt(ctx context.Context) (int64, bool, error)
}

// CatalogClient executes raw catalog queries.
type CatalogClient interface {
	QueryGames(ctx context.Context, query string) ([]igdb.Game, error)
}
