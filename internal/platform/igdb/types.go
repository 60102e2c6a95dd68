package igdb

import "time"

// Game is the raw shape IGDB returns for the games endpoint.
type Game struct {
	ID                    int64             `json:"id"`
	Name                  string            `json:"name"`
	Slug                  string            `json:"slug"`
	Summary               string            `json:"summary"`
	FirstReleaseDate      int64             `json:"first_release_date"` // unix seconds
	URL                   string            `json:"url"`
	Cover                 *Cover            `json:"cover"`
	Platforms             []Platform        `json:"platforms"`
	Genres                []Genre           `json:"genres"`
	InvolvedCompanies     []InvolvedCompany `json:"involved_companies"`
	Category              *int              `json:"category"`
	AggregatedRating      *float64          `json:"aggregated_rating"`
	AggregatedRatingCount *int              `json:"aggregated_rating_count"`
	UpdatedAt             int64             `json:"updated_at"` // IGDB's own updated_at, unix seconds
}

type Cover struct {
	ID      int64  `json:"id"`
	ImageID string `json:"image_id"`
}

type Platform struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type InvolvedCompany struct {
	ID        int64   `json:"id"`
	Company   Company `json:"company"`
	Developer bool    `json:"developer"`
	Publisher bool    `json:"publisher"`
}

type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SearchResult is the simplified shape returned by SearchGames and GetGameByID.
type SearchResult struct {
	IGDBID           int64      `json:"igdb_id"`
	Title            string     `json:"title"`
	Summary          string     `json:"summary,omitempty"`
	CoverImageID     string     `json:"cover_image_id,omitempty"`
	Platforms        []string   `json:"platforms"`
	Genres           []string   `json:"genres"`
	FirstReleaseDate *time.Time `json:"first_release_date,omitempty"`
	IGDBURL          string     `json:"igdb_url,omitempty"`
}
