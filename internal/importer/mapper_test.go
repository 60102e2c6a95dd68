package importer

import (
	"testing"
	"time"

	"gameapi/internal/platform/igdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapGame(t *testing.T) {
	rating := 87.6
	ratingCount := 42
	category := 0

	raw := igdb.Game{
		ID:               1942,
		Name:             "The Witcher 3: Wild Hunt",
		Slug:             "the-witcher-3-wild-hunt",
		Summary:          "A story-driven open world RPG.",
		FirstReleaseDate: 1431993600,
		URL:              "https://www.igdb.com/games/the-witcher-3-wild-hunt",
		UpdatedAt:        1700000123,
		Category:         &category,
		Cover:            &igdb.Cover{ID: 9, ImageID: "co1wyy"},
		Platforms: []igdb.Platform{
			{ID: 6, Name: "PC (Microsoft Windows)", Abbreviation: "PC"},
			{ID: 48, Name: "PlayStation 4"},
		},
		Genres: []igdb.Genre{{ID: 12, Name: "Role-playing (RPG)"}},
		InvolvedCompanies: []igdb.InvolvedCompany{
			{Company: igdb.Company{Name: "CD Projekt Red"}, Developer: true},
			{Company: igdb.Company{Name: "Another Studio"}, Developer: true},
			{Company: igdb.Company{Name: "CD Projekt"}, Publisher: true},
		},
		AggregatedRating:      &rating,
		AggregatedRatingCount: &ratingCount,
	}

	row := mapGame(raw)

	assert.Equal(t, int64(1942), row.IGDBID)
	assert.Equal(t, "The Witcher 3: Wild Hunt", row.Title)
	assert.Equal(t, "the-witcher-3-wild-hunt", row.Slug)
	assert.Equal(t, "co1wyy", row.CoverImageID)
	require.NotNil(t, row.FirstReleaseDate)
	assert.Equal(t, time.Unix(1431993600, 0).UTC(), *row.FirstReleaseDate)

	// Abbreviation preferred, full name as fallback.
	assert.Equal(t, []string{"PC", "PlayStation 4"}, row.Platforms)
	assert.Equal(t, []string{"Role-playing (RPG)"}, row.Genres)

	// First flagged company wins.
	assert.Equal(t, "CD Projekt Red", row.Developer)
	assert.Equal(t, "CD Projekt", row.Publisher)

	// Ratings round to the nearest integer.
	require.NotNil(t, row.AggregatedRating)
	assert.Equal(t, 88, *row.AggregatedRating)
	require.NotNil(t, row.RatingCount)
	assert.Equal(t, 42, *row.RatingCount)

	require.NotNil(t, row.IGDBUpdatedAt)
	assert.Equal(t, int64(1700000123), *row.IGDBUpdatedAt)
	require.NotNil(t, row.Category)
	assert.Equal(t, 0, *row.Category)
}

func TestMapGame_SparseRecord(t *testing.T) {
	row := mapGame(igdb.Game{ID: 7, Name: "Obscure Title"})

	assert.Equal(t, int64(7), row.IGDBID)
	assert.Nil(t, row.FirstReleaseDate)
	assert.Nil(t, row.AggregatedRating)
	assert.Nil(t, row.IGDBUpdatedAt)
	assert.Empty(t, row.CoverImageID)
	assert.NotNil(t, row.Platforms)
	assert.NotNil(t, row.Genres)
	assert.Len(t, row.Platforms, 0)
	assert.Len(t, row.Genres, 0)
}

func TestMapPage_SkipsInvalidRecords(t *testing.T) {
	page := []igdb.Game{
		{ID: 1, Name: "Keep Me"},
		{ID: 0, Name: "No ID"},
		{ID: 3, Name: ""},
		{ID: 4, Name: "Also Keep"},
	}

	rows, skipped := mapPage(page)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, int64(1), rows[0].IGDBID)
	assert.Equal(t, int64(4), rows[1].IGDBID)
}

func TestMapGame_RatingRoundsHalfUp(t *testing.T) {
	rating := 74.5
	row := mapGame(igdb.Game{ID: 1, Name: "X", AggregatedRating: &rating})
	require.NotNil(t, row.AggregatedRating)
	assert.Equal(t, 75, *row.AggregatedRating)
}
