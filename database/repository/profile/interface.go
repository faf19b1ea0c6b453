package profileRepo

import (
	"context"

	"wandr/models"
)

// ProfileRepository stores user profiles and the persisted feed radius
// preference that survives across sessions.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile models.UserProfile) error
	SavePreferredRadius(ctx context.Context, id string, radiusMiles float64) error
}
