package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const maxDisplayNameLength = 50

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	return s.repo.GetByID(ctx, userID)
}

// Update applies the provided fields on top of the existing profile,
// creating it when the user has none yet.
func (s *Service) Update(ctx context.Context, userID string, cmd UpdateCommand) (Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Profile{}, err
		}
		p = Profile{ID: userID}
	}

	if cmd.DisplayName != nil {
		name := strings.TrimSpace(*cmd.DisplayName)
		if len(name) > maxDisplayNameLength {
			return Profile{}, fmt.Errorf("display name must be at most %d characters", maxDisplayNameLength)
		}
		p.DisplayName = name
	}
	if cmd.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*cmd.AvatarURL)
	}

	if err := s.repo.Upsert(ctx, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
