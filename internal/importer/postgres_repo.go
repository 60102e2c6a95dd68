package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const runColumns = `id, type, status, total_fetched, total_inserted, total_updated, total_skipped,
	last_offset, filter_query, COALESCE(error_message, ''), started_at, completed_at, updated_at`

func scanRun(row pgx.Row) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.Type, &r.Status, &r.TotalFetched, &r.TotalInserted, &r.TotalUpdated,
		&r.TotalSkipped, &r.LastOffset, &r.FilterQuery, &r.ErrorMessage, &r.StartedAt,
		&r.CompletedAt, &r.UpdatedAt,
	)
	return r, err
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const query = `
		INSERT INTO import_runs (type, status, filter_query, last_offset)
		VALUES ($1, $2, $3, $4)
		RETURNING id, started_at, updated_at`

	err := r.db.QueryRow(ctx, query, run.Type, run.Status, run.FilterQuery, run.LastOffset).
		Scan(&run.ID, &run.StartedAt, &run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

func (r *PostgresRepo) UpdateProgress(ctx context.Context, run *Run) error {
	const query = `
		UPDATE import_runs SET
			total_fetched = $1,
			total_inserted = $2,
			total_updated = $3,
			total_skipped = $4,
			last_offset = $5,
			updated_at = now()
		WHERE id = $6`

	_, err := r.db.Exec(ctx, query,
		run.TotalFetched, run.TotalInserted, run.TotalUpdated, run.TotalSkipped,
		run.LastOffset, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update import run %d: %w", run.ID, err)
	}
	return nil
}

func (r *PostgresRepo) FinalizeRun(ctx context.Context, run *Run) error {
	const query = `
		UPDATE import_runs SET
			status = $1,
			error_message = NULLIF($2, ''),
			total_fetched = $3,
			total_inserted = $4,
			total_updated = $5,
			total_skipped = $6,
			completed_at = $7,
			updated_at = now()
		WHERE id = $8`

	_, err := r.db.Exec(ctx, query,
		run.Status, run.ErrorMessage, run.TotalFetched, run.TotalInserted,
		run.TotalUpdated, run.TotalSkipped, run.CompletedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finalize import run %d: %w", run.ID, err)
	}
	return nil
}

func (r *PostgresRepo) FindRunning(ctx context.Context) (*Run, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM import_runs
		WHERE status = '%s'
		ORDER BY started_at ASC
		LIMIT 1`, runColumns, StatusRunning)

	run, err := scanRun(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *PostgresRepo) LatestRun(ctx context.Context) (Run, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM import_runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1`, runColumns)

	run, err := scanRun(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Run{}, ErrNoRuns
		}
		return Run{}, err
	}
	return run, nil
}
