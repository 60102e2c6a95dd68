package profile

import (
	"context"
)

// Repository defines the contract for profile storage.
type Repository interface {
	GetByID(ctx context.Context, id string) (Profile, error)
	// Upsert creates the row on first write and overwrites the provided
	// fields afterwards.
	Upsert(ctx context.Context, p *Profile) error
}
