package recommendationRepo

import (
	"context"

	"wandr/models"
)

// RecommendationRepository is the durable copy of each user's one live
// recommendation batch. Writes replace or append wholesale, never
// partial-merge.
type RecommendationRepository interface {
	Get(ctx context.Context, userID string) (*models.CachedRecommendationBatch, error)
	Replace(ctx context.Context, batch models.CachedRecommendationBatch) error
	Append(ctx context.Context, userID string, recs []models.ScoredRecommendation) error
	RemoveByProviderIDs(ctx context.Context, userID string, providerIDs []string) error
	Delete(ctx context.Context, userID string) error
}
