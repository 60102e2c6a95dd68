package game

import (
	"context"
	"errors"
	"log"

	"gameapi/internal/platform/igdb"
)

// CatalogClient is the slice of the IGDB client the lookup paths need.
type CatalogClient interface {
	SearchGames(ctx context.Context, term string, limit int) ([]igdb.SearchResult, error)
	GetGameByID(ctx context.Context, igdbID int64) (*igdb.SearchResult, error)
}

// Service provides game lookup: live search against IGDB and a cache-aside
// single-game read backed by the local games table.
type Service struct {
	repo    Repository
	catalog CatalogClient
}

func NewService(repo Repository, catalog CatalogClient) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// List returns local games matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Game, int, error) {
	return s.repo.List(ctx, q)
}

// Search queries IGDB live. Results are never cached.
func (s *Service) Search(ctx context.Context, term string) ([]igdb.SearchResult, error) {
	return s.catalog.SearchGames(ctx, term, 10)
}

// GetByIGDBID returns the local row when present, otherwise fetches the game
// from IGDB, caches it, and returns it. cached reports which path was taken.
func (s *Service) GetByIGDBID(ctx context.Context, igdbID int64) (g Game, cached bool, err error) {
	g, err = s.repo.GetByIGDBID(ctx, igdbID)
	if err == nil {
		return g, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Game{}, false, err
	}

	res, err := s.catalog.GetGameByID(ctx, igdbID)
	if err != nil {
		return Game{}, false, err
	}
	if res == nil {
		return Game{}, false, ErrNotFound
	}

	g = Game{
		IGDBID:           res.IGDBID,
		Title:            res.Title,
		Summary:          res.Summary,
		CoverImageID:     res.CoverImageID,
		FirstReleaseDate: res.FirstReleaseDate,
		Platforms:        res.Platforms,
		Genres:           res.Genres,
		IGDBURL:          res.IGDBURL,
	}
	if err := s.repo.InsertIfAbsent(ctx, &g); err != nil {
		// The caller already has the data; a failed cache write is not fatal.
		log.Printf("[games] failed to cache game %d: %v", igdbID, err)
	}
	return g, false, nil
}
