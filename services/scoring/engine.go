// Package scoring computes the weighted composite score for each candidate
// and produces the ranked recommendation list.
package scoring

import (
	"context"
	"sort"
	"sync"
	"time"

	"wandr/models"
	"wandr/services/hours"
	"wandr/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedbackReader exposes the committed-feedback aggregates the engine
// consumes. Scoring never sees an in-flight write.
type FeedbackReader interface {
	SummaryForVenue(ctx context.Context, userID, providerID string) (models.FeedbackSummary, error)
	SummaryForCategory(ctx context.Context, userID string, category models.Category) (models.FeedbackSummary, error)
	AcceptanceForVenue(ctx context.Context, providerID string) (models.AcceptanceStats, error)
	AcceptanceForCategory(ctx context.Context, category models.Category) (models.AcceptanceStats, error)
}

// Request carries one scoring pass's inputs.
type Request struct {
	Profile    models.UserProfile
	Filters    models.FeedFilters
	Candidates []models.Candidate
}

// Engine is the scoring engine. Now is injectable for deterministic tests.
type Engine struct {
	Feedback FeedbackReader
	Now      func() time.Time
}

// NewEngine builds a scoring engine over the committed-feedback reader.
func NewEngine(feedback FeedbackReader) *Engine {
	return &Engine{Feedback: feedback, Now: time.Now}
}

// Score computes the breakdown for every candidate concurrently, then ranks
// descending by final score with ties broken by ascending distance. No
// candidate is dropped for a zero time score; ranking alone deprioritizes it.
func (e *Engine) Score(ctx context.Context, req Request) []models.ScoredRecommendation {
	logger := utils.GetLogger()
	now := e.Now()

	resultsCh := make(chan models.ScoredRecommendation, len(req.Candidates))
	var wg sync.WaitGroup

	for _, c := range req.Candidates {
		if c.IsMalformed() {
			logger.Debug("skipping malformed candidate", zap.String("name", c.Name))
			continue
		}
		wg.Add(1)
		go func(c models.Candidate) {
			defer wg.Done()
			resultsCh <- e.scoreOne(ctx, req, c, now)
		}(c)
	}

	wg.Wait()
	close(resultsCh)

	recs := make([]models.ScoredRecommendation, 0, len(req.Candidates))
	for rec := range resultsCh {
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Breakdown.FinalScore != recs[j].Breakdown.FinalScore {
			return recs[i].Breakdown.FinalScore > recs[j].Breakdown.FinalScore
		}
		return recs[i].DistanceMiles < recs[j].DistanceMiles
	})
	return recs
}

// scoreOne resolves hours and feedback for a single candidate and assembles
// its breakdown.
func (e *Engine) scoreOne(ctx context.Context, req Request, c models.Candidate, now time.Time) models.ScoredRecommendation {
	logger := utils.GetLogger()

	resolved := hours.Resolve(c.RawProviderHours, c.ProviderType)

	locScore, distance := locationScore(c.Coordinate, req.Profile.CurrentLocation, req.Profile.HomeLocation, req.Profile.WorkLocation)

	intended := now
	if req.Filters.PartOfDay != "" {
		intended = hours.SuggestVisitTime(resolved, req.Filters.PartOfDay, now)
	}

	venueSummary, err := e.Feedback.SummaryForVenue(ctx, req.Profile.ID, c.ProviderID)
	if err != nil {
		logger.Warn("venue feedback lookup failed, using neutral signal",
			zap.String("providerID", c.ProviderID), zap.Error(err))
	}
	categorySummary, err := e.Feedback.SummaryForCategory(ctx, req.Profile.ID, c.Category)
	if err != nil {
		logger.Warn("category feedback lookup failed, using neutral signal",
			zap.String("category", string(c.Category)), zap.Error(err))
	}
	venueStats, err := e.Feedback.AcceptanceForVenue(ctx, c.ProviderID)
	if err != nil {
		logger.Warn("venue acceptance lookup failed, using neutral signal",
			zap.String("providerID", c.ProviderID), zap.Error(err))
	}
	categoryStats, err := e.Feedback.AcceptanceForCategory(ctx, c.Category)
	if err != nil {
		logger.Warn("category acceptance lookup failed, using neutral signal",
			zap.String("category", string(c.Category)), zap.Error(err))
	}

	breakdown := models.ScoreBreakdown{
		BaseScore:          baseScore(c.Rating, c.ReviewCount),
		LocationScore:      locScore,
		TimeScore:          timeScore(resolved, intended),
		FeedbackScore:      feedbackScore(venueSummary, categorySummary),
		CollaborativeScore: collaborativeScore(venueStats, categoryStats),
		SponsorBoost:       sponsorBoost(c.Sponsored),
	}
	breakdown.FinalScore = ComputeFinal(breakdown)

	rec := models.ScoredRecommendation{
		ID:            uuid.NewString(),
		Candidate:     c,
		Breakdown:     breakdown,
		BusinessHours: resolved,
		DistanceMiles: distance,
	}
	if suggestion := hours.SuggestVisitTime(resolved, req.Filters.PartOfDay, now); !suggestion.Equal(now) {
		rec.SuggestedVisitTime = &suggestion
	}
	return rec
}
