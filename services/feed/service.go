// Package feed drives the infinite-scroll recommendation experience:
// cached-batch reuse, candidate sourcing with radius expansion,
// deduplication across pages, exhaustion, and venue blocking.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"wandr/config"
	"wandr/cron"
	blockedRepo "wandr/database/repository/blocked"
	profileRepo "wandr/database/repository/profile"
	recommendationRepo "wandr/database/repository/recommendation"
	"wandr/models"
	"wandr/services/places"
	"wandr/services/scoring"
	"wandr/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Scorer ranks a batch of candidates.
type Scorer interface {
	Score(ctx context.Context, req scoring.Request) []models.ScoredRecommendation
}

// TaskEnqueuer enqueues background work; *asynq.Client satisfies it.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Config tunes the pagination controller.
type Config struct {
	DefaultRadiusMiles float64
	RadiusCeilingMiles float64
	BatchSize          int
	MinNewUnique       int
	MaxAttempts        int
	Cooldown           time.Duration
	ValidPhotoFraction float64
}

// ConfigFromApp reads the controller tuning from application config.
func ConfigFromApp() Config {
	app := config.AppConfig
	return Config{
		DefaultRadiusMiles: app.FeedDefaultRadiusMiles,
		RadiusCeilingMiles: app.FeedRadiusCeilingMiles,
		BatchSize:          app.FeedBatchSize,
		MinNewUnique:       app.FeedMinNewUnique,
		MaxAttempts:        app.FeedMaxAttempts,
		Cooldown:           time.Duration(app.FeedCooldownSeconds) * time.Second,
		ValidPhotoFraction: app.CacheValidPhotoFraction,
	}
}

// DefaultFeedService implements FeedService.
type DefaultFeedService struct {
	Source   places.CandidateSource
	Scorer   Scorer
	Cache    RecommendationCache
	RecRepo  recommendationRepo.RecommendationRepository
	Blocked  blockedRepo.BlockedRepository
	Profiles profileRepo.ProfileRepository
	Queue    TaskEnqueuer
	Sessions *SessionStore
	Cfg      Config
}

// GetFeed returns the user's current batch, serving a validated cached batch
// when one exists and sourcing a fresh one otherwise.
func (s *DefaultFeedService) GetFeed(ctx context.Context, profile models.UserProfile, filters models.FeedFilters) (*FeedResponse, error) {
	logger := utils.GetLogger()
	if err := checkProfile(profile); err != nil {
		return nil, err
	}
	session := s.Sessions.Get(profile.ID, s.initialRadius(profile, filters))

	blockedIDs, err := s.blockedSet(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	// Cache first. An invalid batch is a miss, never an error: cleanup of
	// malformed entries runs in the background, off the read path.
	batch, err := s.Cache.Load(ctx, profile.ID)
	if err != nil {
		logger.Warn("cache read failed, sourcing fresh", zap.String("userID", profile.ID), zap.Error(err))
	}
	if batch != nil {
		valid, malformedIDs := validateBatch(batch, s.Cfg.ValidPhotoFraction)
		if valid {
			recs := filterBlocked(batch.Recommendations, blockedIDs)
			session.MarkShown(providerIDs(recs))
			return &FeedResponse{
				Recommendations: recs,
				RadiusMiles:     session.Radius(),
				Exhausted:       session.Exhausted(),
				FromCache:       true,
			}, nil
		}
		s.scheduleBatchPurge(profile.ID, malformedIDs)
		if err := s.Cache.Invalidate(ctx, profile.ID); err != nil {
			logger.Warn("cache invalidation failed", zap.String("userID", profile.ID), zap.Error(err))
		}
	}

	if !session.TryBegin(s.Cfg.Cooldown) {
		return &FeedResponse{Skipped: true, RadiusMiles: session.Radius()}, nil
	}
	defer session.End()

	candidates, err := s.sourceUnique(ctx, session, profile, filters, blockedIDs)
	if err != nil {
		return nil, err
	}
	recs := s.Scorer.Score(ctx, scoring.Request{Profile: profile, Filters: filters, Candidates: candidates})

	fresh := models.CachedRecommendationBatch{
		UserID:          profile.ID,
		Recommendations: recs,
		GeneratedAt:     time.Now(),
	}
	s.persistReplace(ctx, fresh)
	session.MarkShown(providerIDs(recs))
	s.persistRadiusPreference(ctx, profile.ID, session.Radius())

	return &FeedResponse{
		Recommendations: recs,
		RadiusMiles:     session.Radius(),
		Exhausted:       session.Exhausted(),
	}, nil
}

// LoadMore appends the next page of unique candidates, expanding the search
// radius when a page yields too few new results.
func (s *DefaultFeedService) LoadMore(ctx context.Context, profile models.UserProfile, filters models.FeedFilters) (*FeedResponse, error) {
	if err := checkProfile(profile); err != nil {
		return nil, err
	}
	session := s.Sessions.Get(profile.ID, s.initialRadius(profile, filters))

	if session.Exhausted() {
		return &FeedResponse{
			RadiusMiles: session.Radius(),
			Exhausted:   true,
		}, nil
	}
	if !session.TryBegin(s.Cfg.Cooldown) {
		return &FeedResponse{Skipped: true, RadiusMiles: session.Radius()}, nil
	}
	defer session.End()

	blockedIDs, err := s.blockedSet(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.sourceUnique(ctx, session, profile, filters, blockedIDs)
	if err != nil {
		return nil, err
	}
	recs := s.Scorer.Score(ctx, scoring.Request{Profile: profile, Filters: filters, Candidates: candidates})

	s.persistAppend(ctx, profile.ID, recs)
	session.MarkShown(providerIDs(recs))
	s.persistRadiusPreference(ctx, profile.ID, session.Radius())

	return &FeedResponse{
		Recommendations: recs,
		RadiusMiles:     session.Radius(),
		Exhausted:       session.Exhausted(),
	}, nil
}

// Refresh resets the session and always re-sources. The stored batch is
// replaced wholesale: when refresh and load-more race, replacement wins.
func (s *DefaultFeedService) Refresh(ctx context.Context, profile models.UserProfile, filters models.FeedFilters) (*FeedResponse, error) {
	if err := checkProfile(profile); err != nil {
		return nil, err
	}
	session := s.Sessions.Get(profile.ID, s.initialRadius(profile, filters))

	if !session.TryBegin(s.Cfg.Cooldown) {
		return &FeedResponse{Skipped: true, RadiusMiles: session.Radius()}, nil
	}
	defer session.End()

	session.Reset(s.initialRadius(profile, filters))

	blockedIDs, err := s.blockedSet(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.sourceUnique(ctx, session, profile, filters, blockedIDs)
	if err != nil {
		return nil, err
	}
	recs := s.Scorer.Score(ctx, scoring.Request{Profile: profile, Filters: filters, Candidates: candidates})

	fresh := models.CachedRecommendationBatch{
		UserID:          profile.ID,
		Recommendations: recs,
		GeneratedAt:     time.Now(),
	}
	s.persistReplace(ctx, fresh)
	session.MarkShown(providerIDs(recs))

	return &FeedResponse{
		Recommendations: recs,
		RadiusMiles:     session.Radius(),
		Exhausted:       session.Exhausted(),
	}, nil
}

// BlockVenue permanently suppresses a venue for the user and scrubs it from
// the cached and stored batches.
func (s *DefaultFeedService) BlockVenue(ctx context.Context, userID, providerID, name, reason string) error {
	logger := utils.GetLogger()
	block := models.BlockedVenue{
		UserID:     userID,
		ProviderID: providerID,
		Name:       name,
		Reason:     reason,
		BlockedAt:  time.Now(),
	}
	if err := s.Blocked.Block(ctx, block); err != nil {
		return err
	}

	if batch, err := s.Cache.Load(ctx, userID); err == nil && batch != nil {
		batch.Recommendations = filterBlocked(batch.Recommendations, map[string]bool{providerID: true})
		if err := s.Cache.SaveReplace(ctx, *batch); err != nil {
			logger.Warn("failed to scrub blocked venue from cache",
				zap.String("providerID", providerID), zap.Error(err))
		}
	}
	if err := s.RecRepo.RemoveByProviderIDs(ctx, userID, []string{providerID}); err != nil {
		logger.Warn("failed to scrub blocked venue from stored batch",
			zap.String("providerID", providerID), zap.Error(err))
	}
	return nil
}

// UnblockVenue removes the suppression; the venue becomes eligible on the
// next sourcing pass.
func (s *DefaultFeedService) UnblockVenue(ctx context.Context, userID, providerID string) error {
	return s.Blocked.Unblock(ctx, userID, providerID)
}

// sourceUnique runs the bounded radius-expansion loop: fetch a page, drop
// duplicates and blocked venues, and expand the radius when the page yields
// too few new uniques. Each attempt reads the session state fresh. Provider
// failures count as zero candidates for the attempt and surface only when
// every attempt failed with nothing collected.
func (s *DefaultFeedService) sourceUnique(ctx context.Context, session *FeedSession, profile models.UserProfile, filters models.FeedFilters, blockedIDs map[string]bool) ([]models.Candidate, error) {
	logger := utils.GetLogger()
	ceiling := s.effectiveCeiling(filters)

	var collected []models.Candidate
	var lastErr error
	failedAttempts := 0

	for attempt := 1; attempt <= s.Cfg.MaxAttempts; attempt++ {
		radius := session.Radius()

		page, err := s.Source.Search(ctx, places.SearchRequest{
			Coordinate:         profile.CurrentLocation,
			RadiusMiles:        radius,
			Categories:         filters.Categories,
			ExcludeProviderIDs: append(session.ShownIDs(), keys(blockedIDs)...),
		})
		if err != nil {
			// Transient: zero candidates for this attempt, keep going.
			logger.Warn("provider fetch failed, counting as empty page",
				zap.Int("attempt", attempt), zap.Float64("radius", radius), zap.Error(err))
			lastErr = err
			failedAttempts++
			page = nil
		}

		fresh := dedupNew(page, session, blockedIDs, collected)
		collected = append(collected, fresh...)

		if len(collected) >= s.Cfg.BatchSize {
			break
		}
		if radius >= ceiling {
			// A user-imposed distance cap is a hard stop; the system
			// ceiling is not: the session just stabilizes there.
			if len(fresh) == 0 && filters.HasDistanceCap() {
				session.SetExhausted(true)
			}
			break
		}
		if len(fresh) < s.Cfg.MinNewUnique {
			next := nextRadius(radius, ceiling)
			logger.Debug("expanding search radius",
				zap.Float64("from", radius), zap.Float64("to", next), zap.Int("attempt", attempt))
			session.SetRadius(next)
			continue
		}
		break
	}

	if len(collected) == 0 && lastErr != nil && failedAttempts == s.Cfg.MaxAttempts {
		return nil, lastErr
	}
	return collected, nil
}

// dedupNew filters a page down to candidates not yet shown, not blocked,
// and not already collected in this call.
func dedupNew(page []models.Candidate, session *FeedSession, blockedIDs map[string]bool, collected []models.Candidate) []models.Candidate {
	inCall := make(map[string]bool, len(collected))
	for _, c := range collected {
		inCall[c.ProviderID] = true
	}
	var fresh []models.Candidate
	for _, c := range page {
		if c.IsMalformed() || session.HasShown(c.ProviderID) || blockedIDs[c.ProviderID] || inCall[c.ProviderID] {
			continue
		}
		inCall[c.ProviderID] = true
		fresh = append(fresh, c)
	}
	return fresh
}

// nextRadius implements the doubling-then-stepped expansion policy
// (10 -> 20 -> 30 -> ceiling).
func nextRadius(radius, ceiling float64) float64 {
	var next float64
	if radius < 20 {
		next = radius * 2
	} else {
		next = radius + 10
	}
	if next > ceiling {
		next = ceiling
	}
	return next
}

func (s *DefaultFeedService) effectiveCeiling(filters models.FeedFilters) float64 {
	ceiling := s.Cfg.RadiusCeilingMiles
	if filters.HasDistanceCap() && filters.MaxDistanceMiles < ceiling {
		ceiling = filters.MaxDistanceMiles
	}
	return ceiling
}

// initialRadius starts at the configured default unless a distance filter
// or the persisted user preference overrides it.
func (s *DefaultFeedService) initialRadius(profile models.UserProfile, filters models.FeedFilters) float64 {
	if filters.HasDistanceCap() && filters.MaxDistanceMiles < s.Cfg.DefaultRadiusMiles {
		return filters.MaxDistanceMiles
	}
	if profile.PreferredRadiusMiles > 0 {
		return profile.PreferredRadiusMiles
	}
	return s.Cfg.DefaultRadiusMiles
}

func (s *DefaultFeedService) blockedSet(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := s.Blocked.ListProviderIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// scheduleBatchPurge enqueues background removal of malformed entries.
func (s *DefaultFeedService) scheduleBatchPurge(userID string, malformedIDs []string) {
	logger := utils.GetLogger()
	if s.Queue == nil || len(malformedIDs) == 0 {
		return
	}
	payload, err := json.Marshal(models.BatchPurgePayload{UserID: userID, ProviderIDs: malformedIDs})
	if err != nil {
		logger.Warn("failed to marshal purge payload", zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(asynq.NewTask(cron.TypeBatchPurge, payload)); err != nil {
		logger.Warn("failed to enqueue batch purge", zap.String("userID", userID), zap.Error(err))
	}
}

// persistReplace writes the batch to the cache and the durable store.
func (s *DefaultFeedService) persistReplace(ctx context.Context, batch models.CachedRecommendationBatch) {
	logger := utils.GetLogger()
	if err := s.Cache.SaveReplace(ctx, batch); err != nil {
		logger.Warn("cache write failed", zap.String("userID", batch.UserID), zap.Error(err))
	}
	if err := s.RecRepo.Replace(ctx, batch); err != nil {
		logger.Warn("durable batch write failed", zap.String("userID", batch.UserID), zap.Error(err))
	}
}

// persistAppend extends the cached and stored batches.
func (s *DefaultFeedService) persistAppend(ctx context.Context, userID string, recs []models.ScoredRecommendation) {
	logger := utils.GetLogger()
	if len(recs) == 0 {
		return
	}
	if err := s.Cache.SaveAppend(ctx, userID, recs); err != nil {
		logger.Warn("cache append failed", zap.String("userID", userID), zap.Error(err))
	}
	if err := s.RecRepo.Append(ctx, userID, recs); err != nil {
		logger.Warn("durable batch append failed", zap.String("userID", userID), zap.Error(err))
	}
}

// persistRadiusPreference best-effort saves the session radius so it can
// survive across sessions.
func (s *DefaultFeedService) persistRadiusPreference(ctx context.Context, userID string, radius float64) {
	if s.Profiles == nil {
		return
	}
	if err := s.Profiles.SavePreferredRadius(ctx, userID, radius); err != nil {
		utils.GetLogger().Warn("failed to persist radius preference",
			zap.String("userID", userID), zap.Error(err))
	}
}

func checkProfile(profile models.UserProfile) error {
	if profile.ID == "" {
		return NewMissingProfileError("user profile is required")
	}
	if profile.CurrentLocation.IsZero() {
		return NewMissingProfileError("current location is required")
	}
	return nil
}

func filterBlocked(recs []models.ScoredRecommendation, blockedIDs map[string]bool) []models.ScoredRecommendation {
	if len(blockedIDs) == 0 {
		return recs
	}
	kept := make([]models.ScoredRecommendation, 0, len(recs))
	for _, r := range recs {
		if !blockedIDs[r.Candidate.ProviderID] {
			kept = append(kept, r)
		}
	}
	return kept
}

func providerIDs(recs []models.ScoredRecommendation) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.Candidate.ProviderID)
	}
	return ids
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
