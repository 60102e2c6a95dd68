package importer

import (
	"math"
	"time"

	"gameapi/internal/game"
	"gameapi/internal/platform/igdb"
)

// mapPage maps one fetched page to local rows, dropping records that cannot
// form a valid row (missing identifier or title). The drop count feeds the
// skipped counter.
func mapPage(page []igdb.Game) ([]game.Game, int) {
	rows := make([]game.Game, 0, len(page))
	skipped := 0
	for _, g := range page {
		if g.ID == 0 || g.Name == "" {
			skipped++
			continue
		}
		rows = append(rows, mapGame(g))
	}
	return rows, skipped
}

func mapGame(g igdb.Game) game.Game {
	row := game.Game{
		IGDBID:      g.ID,
		Title:       g.Name,
		Slug:        g.Slug,
		Summary:     g.Summary,
		Category:    g.Category,
		RatingCount: g.AggregatedRatingCount,
		IGDBURL:     g.URL,
		Platforms:   []string{},
		Genres:      []string{},
	}

	if g.Cover != nil {
		row.CoverImageID = g.Cover.ImageID
	}
	if g.FirstReleaseDate != 0 {
		t := time.Unix(g.FirstReleaseDate, 0).UTC()
		row.FirstReleaseDate = &t
	}

	for _, p := range g.Platforms {
		name := p.Abbreviation
		if name == "" {
			name = p.Name
		}
		row.Platforms = append(row.Platforms, name)
	}
	for _, genre := range g.Genres {
		row.Genres = append(row.Genres, genre.Name)
	}

	// First flagged company wins, matching the catalog's list order.
	for _, ic := range g.InvolvedCompanies {
		if ic.Developer && row.Developer == "" {
			row.Developer = ic.Company.Name
		}
		if ic.Publisher && row.Publisher == "" {
			row.Publisher = ic.Company.Name
		}
	}

	if g.AggregatedRating != nil {
		rating := int(math.Round(*g.AggregatedRating))
		row.AggregatedRating = &rating
	}
	if g.UpdatedAt != 0 {
		updatedAt := g.UpdatedAt
		row.IGDBUpdatedAt = &updatedAt
	}

	return row
}
