package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const gameColumns = `id, igdb_id, title, slug, summary, cover_image_id, first_release_date,
	platforms, genres, category, developer, publisher, aggregated_rating, rating_count,
	igdb_url, igdb_updated_at, created_at, updated_at`

func scanGame(row pgx.Row) (Game, error) {
	var g Game
	var slug, summary, coverImageID, developer, publisher, igdbURL *string
	err := row.Scan(
		&g.ID, &g.IGDBID, &g.Title, &slug, &summary, &coverImageID, &g.FirstReleaseDate,
		&g.Platforms, &g.Genres, &g.Category, &developer, &publisher, &g.AggregatedRating,
		&g.RatingCount, &igdbURL, &g.IGDBUpdatedAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return Game{}, err
	}
	g.Slug = deref(slug)
	g.Summary = deref(summary)
	g.CoverImageID = deref(coverImageID)
	g.Developer = deref(developer)
	g.Publisher = deref(publisher)
	g.IGDBURL = deref(igdbURL)
	if g.Platforms == nil {
		g.Platforms = []string{}
	}
	if g.Genres == nil {
		g.Genres = []string{}
	}
	return g, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Game, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Platform != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(platforms)", argn))
		args = append(args, q.Platform)
		argn++
	}

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(genres)", argn))
		args = append(args, q.Genre)
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	var total int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM games %s", where)
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM games
		%s
		ORDER BY title ASC
		LIMIT $%d OFFSET $%d`,
		gameColumns, where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(ctx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) GetByIGDBID(ctx context.Context, igdbID int64) (Game, error) {
	query := fmt.Sprintf("SELECT %s FROM games WHERE igdb_id = $1", gameColumns)
	g, err := scanGame(r.db.QueryRow(ctx, query, igdbID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Game{}, ErrNotFound
		}
		return Game{}, err
	}
	return g, nil
}

func (r *PostgresRepo) InsertIfAbsent(ctx context.Context, g *Game) error {
	const query = `
		INSERT INTO games (igdb_id, title, slug, summary, cover_image_id, first_release_date,
			platforms, genres, category, developer, publisher, aggregated_rating, rating_count,
			igdb_url, igdb_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (igdb_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query,
		g.IGDBID, g.Title, g.Slug, g.Summary, g.CoverImageID, g.FirstReleaseDate,
		g.Platforms, g.Genres, g.Category, g.Developer, g.Publisher, g.AggregatedRating,
		g.RatingCount, g.IGDBURL, g.IGDBUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("cache game %d: %w", g.IGDBID, err)
	}
	return nil
}

const upsertSQL = `
	INSERT INTO games (igdb_id, title, slug, summary, cover_image_id, first_release_date,
		platforms, genres, category, developer, publisher, aggregated_rating, rating_count,
		igdb_url, igdb_updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (igdb_id) DO UPDATE SET
		title = EXCLUDED.title,
		slug = EXCLUDED.slug,
		summary = EXCLUDED.summary,
		cover_image_id = EXCLUDED.cover_image_id,
		first_release_date = EXCLUDED.first_release_date,
		platforms = EXCLUDED.platforms,
		genres = EXCLUDED.genres,
		category = EXCLUDED.category,
		developer = EXCLUDED.developer,
		publisher = EXCLUDED.publisher,
		aggregated_rating = EXCLUDED.aggregated_rating,
		rating_count = EXCLUDED.rating_count,
		igdb_url = EXCLUDED.igdb_url,
		igdb_updated_at = EXCLUDED.igdb_updated_at,
		updated_at = now()`

// UpsertBatch reconciles one page of mapped rows against the games table.
// The membership check runs before the write so the insert/update split is
// knowable; the two steps are intentionally not one transaction, so a
// concurrent writer can skew the split (the rows themselves stay correct).
func (r *PostgresRepo) UpsertBatch(ctx context.Context, rows []Game) (UpsertResult, error) {
	if len(rows) == 0 {
		return UpsertResult{}, nil
	}

	ids := make([]int64, len(rows))
	for i, g := range rows {
		ids[i] = g.IGDBID
	}

	existing := make(map[int64]bool, len(ids))
	idRows, err := r.db.Query(ctx, "SELECT igdb_id FROM games WHERE igdb_id = ANY($1)", ids)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("check existing games: %w", err)
	}
	for idRows.Next() {
		var id int64
		if err := idRows.Scan(&id); err != nil {
			idRows.Close()
			return UpsertResult{}, err
		}
		existing[id] = true
	}
	idRows.Close()
	if err := idRows.Err(); err != nil {
		return UpsertResult{}, err
	}

	batch := &pgx.Batch{}
	for _, g := range rows {
		batch.Queue(upsertSQL,
			g.IGDBID, g.Title, g.Slug, g.Summary, g.CoverImageID, g.FirstReleaseDate,
			g.Platforms, g.Genres, g.Category, g.Developer, g.Publisher, g.AggregatedRating,
			g.RatingCount, g.IGDBURL, g.IGDBUpdatedAt,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	var execErr error
	for range rows {
		if _, err := br.Exec(); err != nil {
			execErr = err
			break
		}
	}
	if closeErr := br.Close(); execErr == nil {
		execErr = closeErr
	}
	if execErr != nil {
		return UpsertResult{}, fmt.Errorf("upsert games batch: %w", execErr)
	}

	res := UpsertResult{}
	for _, g := range rows {
		if existing[g.IGDBID] {
			res.Updated++
		} else {
			res.Inserted++
		}
	}
	return res, nil
}

func (r *PostgresRepo) MaxIGDBUpdatedAt(ctx context.Context) (int64, bool, error) {
	var cutoff *int64
	if err := r.db.QueryRow(ctx, "SELECT max(igdb_updated_at) FROM games").Scan(&cutoff); err != nil {
		return 0, false, err
	}
	if cutoff == nil {
		return 0, false, nil
	}
	return *cutoff, true, nil
}
