package feed

import (
	"strings"

	"wandr/models"
)

// A double-encoded photo reference is the known corruption pattern: the
// provider reference was URL-encoded twice somewhere upstream, leaving
// literal "%25" escapes the photo endpoint cannot resolve.
const doubleEncodedMarker = "%25"

// wellFormedPhotoRef reports whether a single provider photo reference is
// usable.
func wellFormedPhotoRef(ref string) bool {
	if ref == "" || strings.ContainsAny(ref, " \t\n") {
		return false
	}
	return !strings.Contains(ref, doubleEncodedMarker)
}

// hasWellFormedPhoto reports whether the recommendation carries at least one
// usable photo reference.
func hasWellFormedPhoto(rec models.ScoredRecommendation) bool {
	for _, ref := range rec.Candidate.PhotoRefs {
		if wellFormedPhotoRef(ref) {
			return true
		}
	}
	return false
}

// hasMalformedPhoto reports whether the recommendation carries the known
// double-encoded reference pattern.
func hasMalformedPhoto(rec models.ScoredRecommendation) bool {
	for _, ref := range rec.Candidate.PhotoRefs {
		if strings.Contains(ref, doubleEncodedMarker) {
			return true
		}
	}
	return false
}

// validateBatch decides whether a cached batch may be re-served: at least
// validFraction of its entries must carry a well-formed photo reference and
// none may carry the malformed pattern. It returns the provider IDs of
// malformed entries so cleanup can purge them off the read path.
func validateBatch(batch *models.CachedRecommendationBatch, validFraction float64) (bool, []string) {
	if batch == nil || len(batch.Recommendations) == 0 {
		return false, nil
	}

	wellFormed := 0
	var malformedIDs []string
	for _, rec := range batch.Recommendations {
		if hasMalformedPhoto(rec) {
			malformedIDs = append(malformedIDs, rec.Candidate.ProviderID)
			continue
		}
		if hasWellFormedPhoto(rec) {
			wellFormed++
		}
	}

	if len(malformedIDs) > 0 {
		return false, malformedIDs
	}
	total := float64(len(batch.Recommendations))
	return float64(wellFormed) >= validFraction*total, nil
}
