package feedbackRepo

import (
	"context"

	"wandr/models"
)

// FeedbackRepository durably stores accept/reject/rating signals and
// exposes the aggregates the scoring engine reads. Scoring only ever sees
// committed records.
type FeedbackRepository interface {
	Create(ctx context.Context, record models.FeedbackRecord) error
	SummaryForVenue(ctx context.Context, userID, providerID string) (models.FeedbackSummary, error)
	SummaryForCategory(ctx context.Context, userID string, category models.Category) (models.FeedbackSummary, error)
	AcceptanceForVenue(ctx context.Context, providerID string) (models.AcceptanceStats, error)
	AcceptanceForCategory(ctx context.Context, category models.Category) (models.AcceptanceStats, error)
}
