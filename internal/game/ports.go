package game

import (
	"context"
)

// Repository defines the contract for local game storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Game, int, error)
	GetByIGDBID(ctx context.Context, igdbID int64) (Game, error)
	// InsertIfAbsent caches a row fetched on demand; an existing row wins.
	InsertIfAbsent(ctx context.Context, g *Game) error
	// UpsertBatch writes one page of mapped rows and reports the
	// insert/update split for that page.
	UpsertBatch(ctx context.Context, rows []Game) (UpsertResult, error)
	// MaxIGDBUpdatedAt returns the newest external modification timestamp
	// across all rows; ok is false when there is none.
	MaxIGDBUpdatedAt(ctx context.Context) (cutoff int64, ok bool, err error)
}
