package game

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a game is not in the local table.
var ErrNotFound = errors.New("game not found")

// Game is a locally persisted catalog row, keyed by the IGDB identifier.
type Game struct {
	ID               int64      `json:"id"`
	IGDBID           int64      `json:"igdb_id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	CoverImageID     string     `json:"cover_image_id,omitempty"`
	FirstReleaseDate *time.Time `json:"first_release_date,omitempty"`
	Platforms        []string   `json:"platforms"`
	Genres           []string   `json:"genres"`
	Category         *int       `json:"category,omitempty"`
	Developer        string     `json:"developer,omitempty"`
	Publisher        string     `json:"publisher,omitempty"`
	AggregatedRating *int       `json:"aggregated_rating,omitempty"`
	RatingCount      *int       `json:"rating_count,omitempty"`
	IGDBURL          string     `json:"igdb_url,omitempty"`
	IGDBUpdatedAt    *int64     `json:"igdb_updated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UpsertResult reports how a batched write split between inserts and updates.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// Query defines filters and pagination for listing local games.
type Query struct {
	Platform string
	Genre    string
	Limit    int
	Offset   int
}
