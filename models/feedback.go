package models

import "time"

// FeedbackSignal classifies how the user acted on a recommendation.
type FeedbackSignal string

const (
	FeedbackAccepted FeedbackSignal = "accepted"
	FeedbackRejected FeedbackSignal = "rejected"
	FeedbackRated    FeedbackSignal = "rated"
)

// FeedbackRecord ties a rating/tag/notes signal to a completed activity and,
// optionally, to the recommendation that produced it. Scoring reads only
// committed records.
type FeedbackRecord struct {
	ID               string         `bson:"id" json:"id"`
	UserID           string         `bson:"user_id" json:"userId"`
	ProviderID       string         `bson:"provider_id" json:"providerId"`
	RecommendationID string         `bson:"recommendation_id,omitempty" json:"recommendationId,omitempty"`
	Category         Category       `bson:"category" json:"category"`
	Signal           FeedbackSignal `bson:"signal" json:"signal"`
	Rating           float64        `bson:"rating,omitempty" json:"rating,omitempty"`
	Tags             []string       `bson:"tags,omitempty" json:"tags,omitempty"`
	Notes            string         `bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedAt      time.Time      `bson:"completed_at" json:"completedAt"`
	CreatedAt        time.Time      `bson:"created_at" json:"createdAt"`
}

// FeedbackSummary aggregates a user's committed history for one venue or
// category, feeding the feedback sub-score.
type FeedbackSummary struct {
	Accepted  int     `bson:"accepted" json:"accepted"`
	Rejected  int     `bson:"rejected" json:"rejected"`
	AvgRating float64 `bson:"avg_rating" json:"avgRating"`
	Rated     int     `bson:"rated" json:"rated"`
}

// AcceptanceStats aggregates how all users responded to a venue or category,
// feeding the collaborative sub-score.
type AcceptanceStats struct {
	Accepted int `bson:"accepted" json:"accepted"`
	Total    int `bson:"total" json:"total"`
}

// Rate returns the acceptance fraction, zero when no signals exist.
func (s AcceptanceStats) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Total)
}
