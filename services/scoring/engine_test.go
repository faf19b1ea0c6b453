package scoring

import (
	"context"
	"testing"
	"time"

	"wandr/models"
)

// stubFeedback returns canned aggregates per provider/category.
type stubFeedback struct {
	venueSummaries map[string]models.FeedbackSummary
	catSummaries   map[models.Category]models.FeedbackSummary
	venueStats     map[string]models.AcceptanceStats
	catStats       map[models.Category]models.AcceptanceStats
}

func (s *stubFeedback) SummaryForVenue(_ context.Context, _, providerID string) (models.FeedbackSummary, error) {
	return s.venueSummaries[providerID], nil
}

func (s *stubFeedback) SummaryForCategory(_ context.Context, _ string, c models.Category) (models.FeedbackSummary, error) {
	return s.catSummaries[c], nil
}

func (s *stubFeedback) AcceptanceForVenue(_ context.Context, providerID string) (models.AcceptanceStats, error) {
	return s.venueStats[providerID], nil
}

func (s *stubFeedback) AcceptanceForCategory(_ context.Context, c models.Category) (models.AcceptanceStats, error) {
	return s.catStats[c], nil
}

func emptyFeedback() *stubFeedback {
	return &stubFeedback{
		venueSummaries: map[string]models.FeedbackSummary{},
		catSummaries:   map[models.Category]models.FeedbackSummary{},
		venueStats:     map[string]models.AcceptanceStats{},
		catStats:       map[models.Category]models.AcceptanceStats{},
	}
}

// noon is a fixed Wednesday noon so estimated hours are open.
var noon = time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)

func testEngine(fb FeedbackReader) *Engine {
	return &Engine{Feedback: fb, Now: func() time.Time { return noon }}
}

func candidate(id string, lat, lng, rating float64, reviews int) models.Candidate {
	return models.Candidate{
		ProviderID:   id,
		Name:         "venue-" + id,
		Coordinate:   models.Coordinate{Latitude: lat, Longitude: lng},
		Category:     models.CategoryDining,
		ProviderType: "restaurant",
		Rating:       rating,
		ReviewCount:  reviews,
	}
}

var dallas = models.Coordinate{Latitude: 32.78, Longitude: -96.80}

func TestComputeFinalDeterministic(t *testing.T) {
	b := models.ScoreBreakdown{
		BaseScore:          80,
		LocationScore:      70,
		TimeScore:          100,
		FeedbackScore:      50,
		CollaborativeScore: 50,
		SponsorBoost:       10,
	}
	first := ComputeFinal(b)
	for i := 0; i < 10; i++ {
		if got := ComputeFinal(b); got != first {
			t.Fatalf("ComputeFinal not deterministic: %f != %f", got, first)
		}
	}
	want := 0.25*80 + 0.25*70 + 0.20*100 + 0.20*50 + 0.10*50 + 10
	if first != want {
		t.Errorf("ComputeFinal = %f, want %f", first, want)
	}
}

func TestScoreRanksByFinalThenDistance(t *testing.T) {
	engine := testEngine(emptyFeedback())

	near := candidate("near", 32.79, -96.81, 4.5, 200)
	far := candidate("far", 32.95, -96.60, 4.5, 200)

	recs := engine.Score(context.Background(), Request{
		Profile:    models.UserProfile{ID: "u1", CurrentLocation: dallas},
		Candidates: []models.Candidate{far, near},
	})

	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].Candidate.ProviderID != "near" {
		t.Errorf("nearer venue should rank first, got %s", recs[0].Candidate.ProviderID)
	}
	for _, r := range recs {
		if got := ComputeFinal(r.Breakdown); got != r.Breakdown.FinalScore {
			t.Errorf("FinalScore %f not reproducible from sub-scores (%f)", r.Breakdown.FinalScore, got)
		}
	}
}

func TestScoreTieBrokenByDistance(t *testing.T) {
	engine := testEngine(emptyFeedback())

	// Same rating and reviews, both beyond the location falloff so their
	// location scores are both zero and final scores tie.
	a := candidate("a", 33.20, -96.80, 4.0, 100)
	b := candidate("b", 33.40, -96.80, 4.0, 100)

	recs := engine.Score(context.Background(), Request{
		Profile:    models.UserProfile{ID: "u1", CurrentLocation: dallas},
		Candidates: []models.Candidate{b, a},
	})

	if recs[0].Breakdown.FinalScore != recs[1].Breakdown.FinalScore {
		t.Fatalf("expected tied final scores, got %f and %f",
			recs[0].Breakdown.FinalScore, recs[1].Breakdown.FinalScore)
	}
	if recs[0].Candidate.ProviderID != "a" {
		t.Errorf("tie should break toward the closer venue, got %s first", recs[0].Candidate.ProviderID)
	}
}

func TestScoreMalformedCandidateDropped(t *testing.T) {
	engine := testEngine(emptyFeedback())

	bad := models.Candidate{Name: "no id", Coordinate: models.Coordinate{Latitude: 1, Longitude: 1}}
	good := candidate("ok", 32.79, -96.81, 4.0, 50)

	recs := engine.Score(context.Background(), Request{
		Profile:    models.UserProfile{ID: "u1", CurrentLocation: dallas},
		Candidates: []models.Candidate{bad, good},
	})
	if len(recs) != 1 || recs[0].Candidate.ProviderID != "ok" {
		t.Errorf("malformed candidate should be dropped without aborting the batch: %+v", recs)
	}
}

func TestRejectedVenueFloorsFeedbackScore(t *testing.T) {
	fb := emptyFeedback()
	fb.venueSummaries["spurned"] = models.FeedbackSummary{Rejected: 1}
	engine := testEngine(fb)

	recs := engine.Score(context.Background(), Request{
		Profile:    models.UserProfile{ID: "u1", CurrentLocation: dallas},
		Candidates: []models.Candidate{candidate("spurned", 32.79, -96.81, 5.0, 500)},
	})
	if got := recs[0].Breakdown.FeedbackScore; got != rejectedFloor {
		t.Errorf("FeedbackScore = %f, want floor %f after explicit rejection", got, rejectedFloor)
	}
}

func TestSponsorBoostCapped(t *testing.T) {
	if got := sponsorBoost(true); got != sponsorBoostCap {
		t.Errorf("sponsorBoost(true) = %f, want %f", got, sponsorBoostCap)
	}
	if got := sponsorBoost(false); got != 0 {
		t.Errorf("sponsorBoost(false) = %f, want 0", got)
	}

	// A sponsored venue with poor base/location/time must not overtake a
	// strong organic one.
	engine := testEngine(emptyFeedback())
	sponsored := candidate("paid", 33.40, -96.80, 1.0, 2) // far away, bad rating
	sponsored.Sponsored = true
	organic := candidate("earned", 32.79, -96.81, 4.8, 400)

	recs := engine.Score(context.Background(), Request{
		Profile:    models.UserProfile{ID: "u1", CurrentLocation: dallas},
		Candidates: []models.Candidate{sponsored, organic},
	})
	if recs[0].Candidate.ProviderID != "earned" {
		t.Errorf("sponsor boost overcame a poor candidate: %s ranked first", recs[0].Candidate.ProviderID)
	}
}

func TestZeroTimeScoreRetainedButDeprioritized(t *testing.T) {
	engine := testEngine(emptyFeedback())

	// A bar's estimated hours (16:00-02:00) are closed at noon.
	closedNow := candidate("bar", 32.79, -96.81, 4.0, 100)
	closedNow.ProviderType = "bar"
	closedNow.Category = models.CategorySocial

	openNow := candidate("diner", 32.79, -96.81, 4.0, 100)

	recs := engine.Score(context.Background(), Request{
		Profile:    models.UserProfile{ID: "u1", CurrentLocation: dallas},
		Candidates: []models.Candidate{closedNow, openNow},
	})
	if len(recs) != 2 {
		t.Fatalf("zero time score must not drop a candidate, got %d", len(recs))
	}
	if recs[0].Candidate.ProviderID != "diner" {
		t.Errorf("open venue should outrank the closed one")
	}
	for _, r := range recs {
		if r.Candidate.ProviderID == "bar" && r.Breakdown.TimeScore != 0 {
			t.Errorf("closed venue TimeScore = %f, want 0", r.Breakdown.TimeScore)
		}
	}
}

func TestBaseScoreDiminishingReturns(t *testing.T) {
	lone := baseScore(5.0, 1)
	crowd := baseScore(4.5, 400)
	if lone >= crowd {
		t.Errorf("single 5-star review (%f) should not dominate a well-reviewed 4.5 (%f)", lone, crowd)
	}
}

func TestCorridorBonus(t *testing.T) {
	home := models.Coordinate{Latitude: 32.70, Longitude: -96.80}
	work := models.Coordinate{Latitude: 32.90, Longitude: -96.80}
	onCorridor := models.Coordinate{Latitude: 32.80, Longitude: -96.80}
	offCorridor := models.Coordinate{Latitude: 32.80, Longitude: -96.30}

	current := models.Coordinate{Latitude: 32.80, Longitude: -96.79}

	withBonus, _ := locationScore(onCorridor, current, &home, &work)
	without, _ := locationScore(onCorridor, current, nil, nil)
	if withBonus <= without {
		t.Errorf("corridor venue should earn a bonus: %f vs %f", withBonus, without)
	}

	offScore, _ := locationScore(offCorridor, current, &home, &work)
	offPlain, _ := locationScore(offCorridor, current, nil, nil)
	if offScore != offPlain {
		t.Errorf("off-corridor venue must not earn the bonus: %f vs %f", offScore, offPlain)
	}
}
