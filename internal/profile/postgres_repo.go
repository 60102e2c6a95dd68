package profile

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

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Profile, error) {
	const query = `
		SELECT id, COALESCE(display_name, ''), COALESCE(avatar_url, ''), created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var p Profile
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.DisplayName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, p *Profile) error {
	const query = `
		INSERT INTO profiles (id, display_name, avatar_url)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, p.ID, p.DisplayName, p.AvatarURL).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.ID, err)
	}
	return nil
}
