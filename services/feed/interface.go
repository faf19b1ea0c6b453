package feed

import (
	"context"

	"wandr/models"
)

// FeedResponse is what a feed operation hands back to the caller.
type FeedResponse struct {
	Recommendations []models.ScoredRecommendation `json:"recommendations"`
	RadiusMiles     float64                       `json:"radiusMiles"`
	Exhausted       bool                          `json:"exhausted"`
	FromCache       bool                          `json:"fromCache"`
	// Skipped marks a sourcing no-op: another operation for the same user
	// was already in flight or completed within the cooldown window.
	Skipped bool `json:"skipped,omitempty"`
}

// FeedService drives the ranked activity feed: initial fetch, infinite
// scroll with radius expansion, refresh, and venue blocking.
type FeedService interface {
	GetFeed(ctx context.Context, profile models.UserProfile, filters models.FeedFilters) (*FeedResponse, error)
	LoadMore(ctx context.Context, profile models.UserProfile, filters models.FeedFilters) (*FeedResponse, error)
	Refresh(ctx context.Context, profile models.UserProfile, filters models.FeedFilters) (*FeedResponse, error)
	BlockVenue(ctx context.Context, userID, providerID, name, reason string) error
	UnblockVenue(ctx context.Context, userID, providerID string) error
}
