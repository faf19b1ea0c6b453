package feed

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"wandr/cron"
	"wandr/models"
	"wandr/services/places"
	"wandr/services/scoring"

	"github.com/hibiken/asynq"
)

// fakeSource serves pre-programmed pages and records every request so tests
// can inspect radii and exclusion lists.
type fakeSource struct {
	pages [][]models.Candidate
	errs  []error
	calls []places.SearchRequest
}

func (f *fakeSource) Search(ctx context.Context, req places.SearchRequest) ([]models.Candidate, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, req)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx >= len(f.pages) {
		return nil, nil
	}
	return f.pages[idx], nil
}

// passScorer turns candidates into recommendations verbatim, preserving
// order.
type passScorer struct{}

func (passScorer) Score(ctx context.Context, req scoring.Request) []models.ScoredRecommendation {
	recs := make([]models.ScoredRecommendation, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		recs = append(recs, models.ScoredRecommendation{ID: c.ProviderID, Candidate: c})
	}
	return recs
}

type memCache struct {
	batches     map[string]models.CachedRecommendationBatch
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{batches: make(map[string]models.CachedRecommendationBatch)}
}

func (m *memCache) Load(ctx context.Context, userID string) (*models.CachedRecommendationBatch, error) {
	b, ok := m.batches[userID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memCache) SaveReplace(ctx context.Context, batch models.CachedRecommendationBatch) error {
	m.batches[batch.UserID] = batch
	return nil
}

func (m *memCache) SaveAppend(ctx context.Context, userID string, recs []models.ScoredRecommendation) error {
	b := m.batches[userID]
	b.UserID = userID
	b.Recommendations = append(b.Recommendations, recs...)
	m.batches[userID] = b
	return nil
}

func (m *memCache) Invalidate(ctx context.Context, userID string) error {
	m.invalidated++
	delete(m.batches, userID)
	return nil
}

type fakeBlocked struct {
	blocked map[string][]models.BlockedVenue
}

func newFakeBlocked() *fakeBlocked {
	return &fakeBlocked{blocked: make(map[string][]models.BlockedVenue)}
}

func (f *fakeBlocked) Block(ctx context.Context, block models.BlockedVenue) error {
	f.blocked[block.UserID] = append(f.blocked[block.UserID], block)
	return nil
}

func (f *fakeBlocked) Unblock(ctx context.Context, userID, providerID string) error {
	kept := f.blocked[userID][:0]
	for _, b := range f.blocked[userID] {
		if b.ProviderID != providerID {
			kept = append(kept, b)
		}
	}
	f.blocked[userID] = kept
	return nil
}

func (f *fakeBlocked) ListByUser(ctx context.Context, userID string) ([]models.BlockedVenue, error) {
	return f.blocked[userID], nil
}

func (f *fakeBlocked) ListProviderIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for _, b := range f.blocked[userID] {
		ids = append(ids, b.ProviderID)
	}
	return ids, nil
}

type fakeRecRepo struct {
	replaced []models.CachedRecommendationBatch
	appended [][]models.ScoredRecommendation
	removed  [][]string
}

func (f *fakeRecRepo) Get(ctx context.Context, userID string) (*models.CachedRecommendationBatch, error) {
	return nil, nil
}

func (f *fakeRecRepo) Replace(ctx context.Context, batch models.CachedRecommendationBatch) error {
	f.replaced = append(f.replaced, batch)
	return nil
}

func (f *fakeRecRepo) Append(ctx context.Context, userID string, recs []models.ScoredRecommendation) error {
	f.appended = append(f.appended, recs)
	return nil
}

func (f *fakeRecRepo) RemoveByProviderIDs(ctx context.Context, userID string, providerIDs []string) error {
	f.removed = append(f.removed, providerIDs)
	return nil
}

func (f *fakeRecRepo) Delete(ctx context.Context, userID string) error {
	return nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func testConfig() Config {
	return Config{
		DefaultRadiusMiles: 10,
		RadiusCeilingMiles: 31,
		BatchSize:          20,
		MinNewUnique:       5,
		MaxAttempts:        4,
		Cooldown:           0,
		ValidPhotoFraction: 0.7,
	}
}

func newTestService(src *fakeSource, cache RecommendationCache, cfg Config) (*DefaultFeedService, *fakeRecRepo, *fakeEnqueuer) {
	recRepo := &fakeRecRepo{}
	queue := &fakeEnqueuer{}
	svc := &DefaultFeedService{
		Source:   src,
		Scorer:   passScorer{},
		Cache:    cache,
		RecRepo:  recRepo,
		Blocked:  newFakeBlocked(),
		Queue:    queue,
		Sessions: NewSessionStore(),
		Cfg:      cfg,
	}
	return svc, recRepo, queue
}

func mkCandidate(id string) models.Candidate {
	return models.Candidate{
		ProviderID: id,
		Name:       "venue " + id,
		Coordinate: models.Coordinate{Latitude: 32.78, Longitude: -96.80},
		Category:   models.CategoryDining,
		PhotoRefs:  []string{"ref-" + id},
	}
}

func mkRec(id string) models.ScoredRecommendation {
	return models.ScoredRecommendation{ID: id, Candidate: mkCandidate(id)}
}

func testProfile() models.UserProfile {
	return models.UserProfile{
		ID:              "user-1",
		CurrentLocation: models.Coordinate{Latitude: 32.78, Longitude: -96.80},
	}
}

func TestGetFeedRequiresProfile(t *testing.T) {
	svc, _, _ := newTestService(&fakeSource{}, newMemCache(), testConfig())

	_, err := svc.GetFeed(context.Background(), models.UserProfile{}, models.FeedFilters{})
	if err == nil {
		t.Fatal("expected error for empty profile")
	}
	var ferr *FeedError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FeedError, got %T", err)
	}

	noLocation := models.UserProfile{ID: "user-1"}
	if _, err := svc.GetFeed(context.Background(), noLocation, models.FeedFilters{}); err == nil {
		t.Fatal("expected error for missing location")
	}
}

func TestGetFeedServesValidCachedBatch(t *testing.T) {
	cache := newMemCache()
	cache.batches["user-1"] = models.CachedRecommendationBatch{
		UserID:          "user-1",
		Recommendations: []models.ScoredRecommendation{mkRec("a"), mkRec("b"), mkRec("c")},
		GeneratedAt:     time.Now(),
	}
	src := &fakeSource{}
	svc, _, _ := newTestService(src, cache, testConfig())

	resp, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if !resp.FromCache {
		t.Error("expected batch served from cache")
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("expected 3 recommendations, got %d", len(resp.Recommendations))
	}
	if len(src.calls) != 0 {
		t.Errorf("provider should not be called on cache hit, got %d calls", len(src.calls))
	}
}

func TestGetFeedInvalidCacheResourcesAndPurges(t *testing.T) {
	bad := mkRec("bad")
	bad.Candidate.PhotoRefs = []string{"CmRa%25AAAA"}
	cache := newMemCache()
	cache.batches["user-1"] = models.CachedRecommendationBatch{
		UserID:          "user-1",
		Recommendations: []models.ScoredRecommendation{mkRec("a"), bad, mkRec("c")},
		GeneratedAt:     time.Now(),
	}
	src := &fakeSource{pages: [][]models.Candidate{{
		mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
		mkCandidate("p4"), mkCandidate("p5"),
	}}}
	svc, _, queue := newTestService(src, cache, testConfig())

	resp, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if resp.FromCache {
		t.Error("invalid cached batch must not be served")
	}
	if len(src.calls) == 0 {
		t.Fatal("expected a fresh sourcing pass")
	}
	if cache.invalidated != 1 {
		t.Errorf("expected 1 cache invalidation, got %d", cache.invalidated)
	}
	if len(queue.tasks) != 1 {
		t.Fatalf("expected 1 purge task, got %d", len(queue.tasks))
	}
	task := queue.tasks[0]
	if task.Type() != cron.TypeBatchPurge {
		t.Errorf("expected task type %q, got %q", cron.TypeBatchPurge, task.Type())
	}
	var payload models.BatchPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("bad purge payload: %v", err)
	}
	if len(payload.ProviderIDs) != 1 || payload.ProviderIDs[0] != "bad" {
		t.Errorf("expected purge of [bad], got %v", payload.ProviderIDs)
	}
}

func TestLoadMoreNeverRepeatsShownVenues(t *testing.T) {
	firstPage := []models.Candidate{
		mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
		mkCandidate("p4"), mkCandidate("p5"),
	}
	// The second page overlaps the first; only the new IDs may come back.
	secondPage := append([]models.Candidate{}, firstPage...)
	secondPage = append(secondPage,
		mkCandidate("p6"), mkCandidate("p7"), mkCandidate("p8"),
		mkCandidate("p9"), mkCandidate("p10"))

	src := &fakeSource{pages: [][]models.Candidate{firstPage, secondPage}}
	svc, _, _ := newTestService(src, newMemCache(), testConfig())

	first, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	second, err := svc.LoadMore(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}

	seen := make(map[string]bool)
	for _, r := range first.Recommendations {
		seen[r.Candidate.ProviderID] = true
	}
	for _, r := range second.Recommendations {
		if seen[r.Candidate.ProviderID] {
			t.Errorf("venue %s served twice", r.Candidate.ProviderID)
		}
	}
	if len(second.Recommendations) != 5 {
		t.Errorf("expected 5 new venues, got %d", len(second.Recommendations))
	}
}

func TestLoadMoreAllDuplicatesExpandsOnce(t *testing.T) {
	// User at (32.78, -96.80), no distance filter. The initial fetch
	// fills a 3-candidate batch at 10 miles. Load-more gets the same 3
	// provider IDs back, yields zero new uniques, and expands exactly
	// once to 20 miles, where fresh venues appear. The system ceiling
	// never marks the session exhausted.
	firstPage := []models.Candidate{
		mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
	}
	duplicatePage := append([]models.Candidate{}, firstPage...)
	widerPage := []models.Candidate{
		mkCandidate("p4"), mkCandidate("p5"), mkCandidate("p6"),
	}

	cfg := testConfig()
	cfg.BatchSize = 3
	cfg.MinNewUnique = 3
	src := &fakeSource{pages: [][]models.Candidate{firstPage, duplicatePage, widerPage}}
	svc, _, _ := newTestService(src, newMemCache(), cfg)

	first, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(first.Recommendations) != 3 {
		t.Fatalf("initial batch = %d recommendations, want 3", len(first.Recommendations))
	}
	if first.RadiusMiles != 10 {
		t.Errorf("initial radius = %v, want 10", first.RadiusMiles)
	}

	second, err := svc.LoadMore(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if len(src.calls) != 3 {
		t.Fatalf("expected 3 provider calls, got %d", len(src.calls))
	}
	if src.calls[1].RadiusMiles != 10 {
		t.Errorf("load-more first attempt radius = %v, want 10", src.calls[1].RadiusMiles)
	}
	if src.calls[2].RadiusMiles != 20 {
		t.Errorf("load-more second attempt radius = %v, want 20", src.calls[2].RadiusMiles)
	}
	if second.RadiusMiles != 20 {
		t.Errorf("response radius = %v, want 20", second.RadiusMiles)
	}
	if second.Exhausted {
		t.Error("uncapped session must not exhaust below the ceiling")
	}

	want := map[string]bool{"p4": true, "p5": true, "p6": true}
	if len(second.Recommendations) != 3 {
		t.Fatalf("load-more batch = %d recommendations, want 3", len(second.Recommendations))
	}
	for _, r := range second.Recommendations {
		if !want[r.Candidate.ProviderID] {
			t.Errorf("unexpected venue %s in load-more batch", r.Candidate.ProviderID)
		}
	}
}

func TestSparsePageExpandsRadius(t *testing.T) {
	// Two uniques at 10 miles is below the minimum, so the next attempt
	// runs at the doubled radius.
	src := &fakeSource{pages: [][]models.Candidate{
		{mkCandidate("p1"), mkCandidate("p2")},
		{mkCandidate("p3"), mkCandidate("p4"), mkCandidate("p5"),
			mkCandidate("p6"), mkCandidate("p7"), mkCandidate("p8")},
	}}
	svc, _, _ := newTestService(src, newMemCache(), testConfig())

	resp, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(src.calls) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(src.calls))
	}
	if src.calls[0].RadiusMiles != 10 {
		t.Errorf("first attempt radius = %v, want 10", src.calls[0].RadiusMiles)
	}
	if src.calls[1].RadiusMiles != 20 {
		t.Errorf("second attempt radius = %v, want 20", src.calls[1].RadiusMiles)
	}
	if resp.RadiusMiles != 20 {
		t.Errorf("response radius = %v, want 20", resp.RadiusMiles)
	}
	if len(resp.Recommendations) != 8 {
		t.Errorf("expected 8 recommendations across both attempts, got %d", len(resp.Recommendations))
	}
}

func TestNextRadiusPolicy(t *testing.T) {
	cases := []struct {
		radius, ceiling, want float64
	}{
		{10, 31, 20},
		{20, 31, 30},
		{30, 31, 31},
		{10, 15, 15},
		{31, 31, 31},
	}
	for _, tc := range cases {
		if got := nextRadius(tc.radius, tc.ceiling); got != tc.want {
			t.Errorf("nextRadius(%v, %v) = %v, want %v", tc.radius, tc.ceiling, got, tc.want)
		}
	}
}

func TestDistanceCapExhaustsFeed(t *testing.T) {
	// One page of results inside the cap, then nothing new.
	src := &fakeSource{pages: [][]models.Candidate{
		{mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
			mkCandidate("p4"), mkCandidate("p5")},
		{mkCandidate("p1")}, // already shown
	}}
	svc, _, _ := newTestService(src, newMemCache(), testConfig())
	filters := models.FeedFilters{MaxDistanceMiles: 10}

	if _, err := svc.GetFeed(context.Background(), testProfile(), filters); err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	resp, err := svc.LoadMore(context.Background(), testProfile(), filters)
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if !resp.Exhausted {
		t.Error("capped feed with no new venues at the cap should be exhausted")
	}

	// Exhausted sessions short-circuit: no further provider calls.
	calls := len(src.calls)
	again, err := svc.LoadMore(context.Background(), testProfile(), filters)
	if err != nil {
		t.Fatalf("LoadMore after exhaustion: %v", err)
	}
	if !again.Exhausted {
		t.Error("exhaustion must persist for the session")
	}
	if len(src.calls) != calls {
		t.Errorf("exhausted load-more must not hit the provider, got %d extra calls", len(src.calls)-calls)
	}
}

func TestUncappedFeedNeverExhausts(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultRadiusMiles = 31 // start at the system ceiling
	cfg.MaxAttempts = 1
	src := &fakeSource{}
	svc, _, _ := newTestService(src, newMemCache(), cfg)

	resp, err := svc.LoadMore(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if resp.Exhausted {
		t.Error("an uncapped feed stabilizes at the ceiling, it never exhausts")
	}
	if resp.RadiusMiles != 31 {
		t.Errorf("radius = %v, want 31", resp.RadiusMiles)
	}
}

func TestCooldownSkipsSecondOperation(t *testing.T) {
	cfg := testConfig()
	cfg.Cooldown = time.Minute
	src := &fakeSource{pages: [][]models.Candidate{
		{mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
			mkCandidate("p4"), mkCandidate("p5")},
	}}
	svc, _, _ := newTestService(src, newMemCache(), cfg)

	if _, err := svc.LoadMore(context.Background(), testProfile(), models.FeedFilters{}); err != nil {
		t.Fatalf("first LoadMore: %v", err)
	}
	resp, err := svc.LoadMore(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("second LoadMore: %v", err)
	}
	if !resp.Skipped {
		t.Error("load-more within the cooldown window must be a no-op")
	}
	if len(src.calls) != 1 {
		t.Errorf("expected 1 provider call, got %d", len(src.calls))
	}
}

func TestProviderErrorsTolerated(t *testing.T) {
	// A transient failure on the first attempt counts as an empty page;
	// the loop expands and the second attempt succeeds.
	src := &fakeSource{
		errs: []error{places.NewProviderUnavailable("upstream timeout")},
		pages: [][]models.Candidate{
			nil,
			{mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
				mkCandidate("p4"), mkCandidate("p5")},
		},
	}
	svc, _, _ := newTestService(src, newMemCache(), testConfig())

	resp, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(resp.Recommendations) != 5 {
		t.Errorf("expected 5 recommendations after recovery, got %d", len(resp.Recommendations))
	}
}

func TestAllAttemptsFailingSurfacesError(t *testing.T) {
	cfg := testConfig()
	cfg.MaxAttempts = 2
	src := &fakeSource{errs: []error{
		places.NewProviderUnavailable("down"),
		places.NewProviderUnavailable("down"),
	}}
	svc, _, _ := newTestService(src, newMemCache(), cfg)

	_, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err == nil {
		t.Fatal("expected error when every attempt fails with nothing collected")
	}
	if !strings.Contains(err.Error(), "down") {
		t.Errorf("expected provider error to surface, got %v", err)
	}
}

func TestRefreshResetsSessionAndReplaces(t *testing.T) {
	src := &fakeSource{pages: [][]models.Candidate{
		{mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
			mkCandidate("p4"), mkCandidate("p5")},
		// After refresh the ledger is clear, so old IDs may reappear.
		{mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
			mkCandidate("p4"), mkCandidate("p5")},
	}}
	svc, recRepo, _ := newTestService(src, newMemCache(), testConfig())

	if _, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{}); err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	resp, err := svc.Refresh(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(resp.Recommendations) != 5 {
		t.Errorf("expected refreshed batch of 5, got %d", len(resp.Recommendations))
	}
	if len(recRepo.replaced) != 2 {
		t.Errorf("expected 2 full replacements (initial + refresh), got %d", len(recRepo.replaced))
	}
}

func TestBlockVenueScrubsBatches(t *testing.T) {
	cache := newMemCache()
	cache.batches["user-1"] = models.CachedRecommendationBatch{
		UserID:          "user-1",
		Recommendations: []models.ScoredRecommendation{mkRec("p1"), mkRec("p2")},
		GeneratedAt:     time.Now(),
	}
	svc, recRepo, _ := newTestService(&fakeSource{}, cache, testConfig())

	if err := svc.BlockVenue(context.Background(), "user-1", "p1", "venue p1", "not interested"); err != nil {
		t.Fatalf("BlockVenue: %v", err)
	}

	batch := cache.batches["user-1"]
	if len(batch.Recommendations) != 1 || batch.Recommendations[0].Candidate.ProviderID != "p2" {
		t.Errorf("blocked venue not scrubbed from cache: %+v", batch.Recommendations)
	}
	if len(recRepo.removed) != 1 || recRepo.removed[0][0] != "p1" {
		t.Errorf("blocked venue not scrubbed from stored batch: %v", recRepo.removed)
	}

	// A cached batch containing the blocked venue is filtered on read too.
	cache.batches["user-1"] = models.CachedRecommendationBatch{
		UserID:          "user-1",
		Recommendations: []models.ScoredRecommendation{mkRec("p1"), mkRec("p2"), mkRec("p3")},
		GeneratedAt:     time.Now(),
	}
	resp, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	for _, r := range resp.Recommendations {
		if r.Candidate.ProviderID == "p1" {
			t.Error("blocked venue served from cache")
		}
	}
}

func TestBlockedVenuesExcludedFromSourcing(t *testing.T) {
	src := &fakeSource{pages: [][]models.Candidate{
		{mkCandidate("p1"), mkCandidate("p2"), mkCandidate("p3"),
			mkCandidate("p4"), mkCandidate("p5")},
	}}
	svc, _, _ := newTestService(src, newMemCache(), testConfig())

	if err := svc.BlockVenue(context.Background(), "user-1", "p3", "venue p3", "bad experience"); err != nil {
		t.Fatalf("BlockVenue: %v", err)
	}
	resp, err := svc.GetFeed(context.Background(), testProfile(), models.FeedFilters{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	for _, r := range resp.Recommendations {
		if r.Candidate.ProviderID == "p3" {
			t.Error("blocked venue appeared in a fresh batch")
		}
	}
	if len(resp.Recommendations) != 4 {
		t.Errorf("expected 4 recommendations after filtering, got %d", len(resp.Recommendations))
	}
}
