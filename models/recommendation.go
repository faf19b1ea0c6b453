package models

import "time"

// ScoreBreakdown carries the five sub-scores, the sponsor boost and the
// composite. Sub-scores are on a 0-100 scale; SponsorBoost is additive.
// FinalScore is always recomputed from the other fields, never stored on
// its own.
type ScoreBreakdown struct {
	BaseScore          float64 `bson:"base_score" json:"baseScore"`
	LocationScore      float64 `bson:"location_score" json:"locationScore"`
	TimeScore          float64 `bson:"time_score" json:"timeScore"`
	FeedbackScore      float64 `bson:"feedback_score" json:"feedbackScore"`
	CollaborativeScore float64 `bson:"collaborative_score" json:"collaborativeScore"`
	SponsorBoost       float64 `bson:"sponsor_boost" json:"sponsorBoost"`
	FinalScore         float64 `bson:"final_score" json:"finalScore"`
}

// ScoredRecommendation is a candidate plus everything the caller needs to
// present it: score breakdown, resolved hours, distance, and an optional
// suggested visit time.
type ScoredRecommendation struct {
	ID                 string         `bson:"id" json:"id"`
	Candidate          Candidate      `bson:"candidate" json:"candidate"`
	Breakdown          ScoreBreakdown `bson:"breakdown" json:"breakdown"`
	BusinessHours      BusinessHours  `bson:"business_hours" json:"businessHours"`
	DistanceMiles      float64        `bson:"distance_miles" json:"distanceMiles"`
	SuggestedVisitTime *time.Time     `bson:"suggested_visit_time,omitempty" json:"suggestedVisitTime,omitempty"`
}

// CachedRecommendationBatch is the one live batch per user. It is superseded
// wholesale on refresh and appended to on load-more.
type CachedRecommendationBatch struct {
	UserID          string                 `bson:"user_id" json:"userId"`
	Recommendations []ScoredRecommendation `bson:"recommendations" json:"recommendations"`
	GeneratedAt     time.Time              `bson:"generated_at" json:"generatedAt"`
}
