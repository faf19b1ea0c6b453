// Package places wraps the external places provider, fetching pages of
// venues for a location, radius and category filter and normalizing them
// into candidates. The provider is an opaque collaborator: only the
// request/response contract here is relied on.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wandr/config"
	"wandr/models"
	"wandr/utils"

	"go.uber.org/zap"
)

const milesToMeters = 1609.34

// SearchRequest is the contract toward the places provider.
type SearchRequest struct {
	Coordinate         models.Coordinate
	RadiusMiles        float64
	Categories         []models.Category
	ExcludeProviderIDs []string
}

// CandidateSource fetches venues for a search request. An empty result is a
// normal "no more results" case, never an error.
type CandidateSource interface {
	Search(ctx context.Context, req SearchRequest) ([]models.Candidate, error)
}

// HTTPCandidateSource implements CandidateSource against a Google-Places
// style nearby-search endpoint.
type HTTPCandidateSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPCandidateSource builds the provider client from configuration.
func NewHTTPCandidateSource() *HTTPCandidateSource {
	timeout := time.Duration(config.AppConfig.PlacesTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &HTTPCandidateSource{
		BaseURL: config.AppConfig.PlacesBaseURL,
		APIKey:  config.AppConfig.PlacesAPIKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

// providerPlace mirrors the provider's nearby-search result shape.
type providerPlace struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       int      `json:"price_level"`
	Photos           []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
	OpeningHours struct {
		Periods []struct {
			Open struct {
				Day  int    `json:"day"`
				Time string `json:"time"`
			} `json:"open"`
			Close struct {
				Day  int    `json:"day"`
				Time string `json:"time"`
			} `json:"close"`
		} `json:"periods"`
	} `json:"opening_hours"`
	Sponsored bool `json:"sponsored"`
}

type providerResponse struct {
	Results []providerPlace `json:"results"`
	Status  string          `json:"status"`
}

// Search fetches one page of venues. Transient provider failures surface as
// ProviderError; malformed individual venues are dropped, not fatal.
func (s *HTTPCandidateSource) Search(ctx context.Context, req SearchRequest) ([]models.Candidate, error) {
	logger := utils.GetLogger()

	endpoint := fmt.Sprintf("%s/nearbysearch/json", s.BaseURL)
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", req.Coordinate.Latitude, req.Coordinate.Longitude))
	params.Set("radius", strconv.Itoa(int(req.RadiusMiles*milesToMeters)))
	params.Set("key", s.APIKey)
	if len(req.Categories) > 0 {
		if keyword, ok := categoryToSearchKeyword[req.Categories[0]]; ok {
			params.Set("type", keyword)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		logger.Warn("places provider request failed", zap.Error(err))
		return nil, NewProviderUnavailable(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Warn("places provider returned server error", zap.Int("status", resp.StatusCode))
		return nil, NewProviderUnavailable(fmt.Sprintf("provider returned %d", resp.StatusCode))
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewProviderUnavailable(fmt.Sprintf("failed to decode provider response: %v", err))
	}

	excluded := make(map[string]bool, len(req.ExcludeProviderIDs))
	for _, id := range req.ExcludeProviderIDs {
		excluded[id] = true
	}

	candidates := make([]models.Candidate, 0, len(body.Results))
	for _, place := range body.Results {
		if excluded[place.PlaceID] {
			continue
		}
		candidate := normalizePlace(place)
		if candidate.IsMalformed() {
			logger.Debug("dropping malformed candidate", zap.String("name", place.Name))
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// normalizePlace converts one provider result into a candidate.
func normalizePlace(place providerPlace) models.Candidate {
	photoRefs := make([]string, 0, len(place.Photos))
	for _, p := range place.Photos {
		photoRefs = append(photoRefs, p.PhotoReference)
	}
	return models.Candidate{
		ProviderID: place.PlaceID,
		Name:       place.Name,
		Coordinate: models.Coordinate{
			Latitude:  place.Geometry.Location.Lat,
			Longitude: place.Geometry.Location.Lng,
		},
		Category:         categoryFor(place.Types),
		ProviderType:     primaryType(place.Types),
		RawProviderHours: parsePeriods(place),
		Rating:           place.Rating,
		ReviewCount:      place.UserRatingsTotal,
		PriceLevel:       place.PriceLevel,
		PhotoRefs:        photoRefs,
		Sponsored:        place.Sponsored,
	}
}

// parsePeriods converts the provider's day/time period list into weekday
// periods with minutes from midnight. Unparseable periods are skipped.
func parsePeriods(place providerPlace) []models.DayHours {
	var periods []models.DayHours
	for _, p := range place.OpeningHours.Periods {
		open, okOpen := parseClockTime(p.Open.Time)
		closeAt, okClose := parseClockTime(p.Close.Time)
		if !okOpen || !okClose || p.Open.Day < 0 || p.Open.Day > 6 {
			continue
		}
		periods = append(periods, models.DayHours{
			Weekday: time.Weekday(p.Open.Day),
			Open:    open,
			Close:   closeAt,
		})
	}
	return periods
}

// parseClockTime parses the provider's "HHMM" clock strings.
func parseClockTime(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	hh, err := strconv.Atoi(s[:2])
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(s[2:])
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}
