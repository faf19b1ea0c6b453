package scoring

import (
	"math"
	"time"

	"wandr/models"
	"wandr/services/geo"
	"wandr/services/hours"
)

const (
	maxSubScore = 100.0

	// locationFalloffMiles is where the location score reaches zero.
	locationFalloffMiles = 10.0
	// corridorSlackMiles is how far off the home-work line a venue may sit
	// and still earn the corridor bonus.
	corridorSlackMiles = 2.0
	corridorBonus      = 15.0

	// fullTimeScoreMinutes is the remaining-open window that earns a full
	// time score.
	fullTimeScoreMinutes = 180.0

	neutralScore = 50.0
	// rejectedFloor is where explicit venue rejection drives the feedback
	// score.
	rejectedFloor = 5.0

	// sponsorBoostCap keeps sponsorship from overcoming a sufficiently poor
	// base/location/time combination.
	sponsorBoostCap = 10.0
)

// Weights of the composite. Fixed: FinalScore must be a pure function of
// the six signals.
const (
	weightBase          = 0.25
	weightLocation      = 0.25
	weightTime          = 0.20
	weightFeedback      = 0.20
	weightCollaborative = 0.10
)

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(maxSubScore, s))
}

// ComputeFinal applies the fixed weighting to a breakdown's sub-scores.
// Recomputation is idempotent: same inputs, same output.
func ComputeFinal(b models.ScoreBreakdown) float64 {
	return weightBase*b.BaseScore +
		weightLocation*b.LocationScore +
		weightTime*b.TimeScore +
		weightFeedback*b.FeedbackScore +
		weightCollaborative*b.CollaborativeScore +
		b.SponsorBoost
}

// baseScore normalizes provider rating and review count. The review-count
// factor is logarithmic so a single five-star review cannot dominate.
func baseScore(rating float64, reviewCount int) float64 {
	if rating > 5 {
		rating = 5
	}
	if rating < 0 || reviewCount < 0 {
		return 0
	}
	reviewFactor := math.Log10(float64(reviewCount)+1) / math.Log10(101)
	if reviewFactor > 1 {
		reviewFactor = 1
	}
	return clampScore((rating / 5) * maxSubScore * reviewFactor)
}

// locationScore decays linearly with distance from the current location and
// earns a bonus when the venue sits near the home-work corridor.
func locationScore(candidate models.Coordinate, current models.Coordinate, home, work *models.Coordinate) (float64, float64) {
	distance := geo.Distance(current, candidate)

	score := 0.0
	if distance < locationFalloffMiles {
		score = maxSubScore * (1 - distance/locationFalloffMiles)
	}

	if home != nil && work != nil {
		commute := geo.Distance(*home, *work)
		viaCandidate := geo.Distance(*home, candidate) + geo.Distance(candidate, *work)
		if viaCandidate <= commute+corridorSlackMiles {
			score += corridorBonus
		}
	}
	return clampScore(score), distance
}

// timeScore measures how well the resolved hours line up with the intended
// visit time. Closed at the intended time means exactly zero; ranking keeps
// the candidate but deprioritizes it.
func timeScore(h models.BusinessHours, intended time.Time) float64 {
	if !hours.IsOpenAt(h, intended) {
		return 0
	}
	remaining := minutesUntilClose(h, intended)
	if remaining >= fullTimeScoreMinutes {
		return maxSubScore
	}
	return clampScore(maxSubScore * remaining / fullTimeScoreMinutes)
}

// minutesUntilClose finds how long the venue stays open after the instant.
func minutesUntilClose(h models.BusinessHours, t time.Time) float64 {
	minutes := t.Hour()*60 + t.Minute()
	for _, p := range h.Periods {
		if p.Weekday != t.Weekday() {
			continue
		}
		if p.Close < p.Open {
			// Past-midnight close: open segment today plus early segment.
			if minutes >= p.Open {
				return float64(p.Close + 24*60 - minutes)
			}
			if minutes <= p.Close {
				return float64(p.Close - minutes)
			}
			continue
		}
		if minutes >= p.Open && minutes < p.Close {
			return float64(p.Close - minutes)
		}
	}
	return 0
}

// feedbackScore folds the user's committed history for the venue and its
// category into a 0-100 signal. Explicit venue rejection floors it.
func feedbackScore(venue, category models.FeedbackSummary) float64 {
	if venue.Rejected > 0 {
		return rejectedFloor
	}
	score := neutralScore
	score += 10 * float64(venue.Accepted)
	score += 5 * float64(category.Accepted)
	score -= 8 * float64(category.Rejected)
	if venue.Rated > 0 {
		score += (venue.AvgRating - 3) * 10
	} else if category.Rated > 0 {
		score += (category.AvgRating - 3) * 5
	}
	return clampScore(score)
}

// collaborativeScore is a simple "others like this" signal from aggregate
// acceptance patterns, neutral when nobody has weighed in.
func collaborativeScore(venue, category models.AcceptanceStats) float64 {
	if venue.Total == 0 && category.Total == 0 {
		return neutralScore
	}
	var rate float64
	switch {
	case venue.Total == 0:
		rate = category.Rate()
	case category.Total == 0:
		rate = venue.Rate()
	default:
		rate = 0.7*venue.Rate() + 0.3*category.Rate()
	}
	return clampScore(rate * maxSubScore)
}

// sponsorBoost is additive and only non-zero for designated sponsored
// candidates.
func sponsorBoost(sponsored bool) float64 {
	if sponsored {
		return sponsorBoostCap
	}
	return 0
}
