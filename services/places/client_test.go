package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"wandr/models"
)

func TestCategoryForKnownTypes(t *testing.T) {
	cases := []struct {
		types []string
		want  models.Category
	}{
		{[]string{"restaurant", "point_of_interest"}, models.CategoryDining},
		{[]string{"point_of_interest", "gym"}, models.CategoryFitness},
		{[]string{"night_club"}, models.CategorySocial},
		{[]string{"alien_mothership"}, models.CategoryOther},
		{nil, models.CategoryOther},
	}
	for _, c := range cases {
		if got := categoryFor(c.types); got != c.want {
			t.Errorf("categoryFor(%v) = %s, want %s", c.types, got, c.want)
		}
	}
}

const searchPayload = `{
	"status": "OK",
	"results": [
		{
			"place_id": "p-1",
			"name": "Taqueria Luna",
			"geometry": {"location": {"lat": 32.79, "lng": -96.81}},
			"types": ["restaurant"],
			"rating": 4.5,
			"user_ratings_total": 320,
			"price_level": 2,
			"photos": [{"photo_reference": "ref-1"}],
			"opening_hours": {"periods": [
				{"open": {"day": 3, "time": "1100"}, "close": {"day": 3, "time": "2200"}}
			]}
		},
		{
			"place_id": "",
			"name": "Ghost Venue",
			"geometry": {"location": {"lat": 32.70, "lng": -96.70}},
			"types": ["bar"]
		},
		{
			"place_id": "p-2",
			"name": "Previously Shown",
			"geometry": {"location": {"lat": 32.80, "lng": -96.82}},
			"types": ["gym"]
		}
	]
}`

func TestSearchNormalizesAndFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("location"); got == "" {
			t.Error("missing location parameter")
		}
		w.Write([]byte(searchPayload))
	}))
	defer srv.Close()

	source := &HTTPCandidateSource{BaseURL: srv.URL, APIKey: "test", Client: srv.Client()}
	got, err := source.Search(context.Background(), SearchRequest{
		Coordinate:         models.Coordinate{Latitude: 32.78, Longitude: -96.80},
		RadiusMiles:        10,
		ExcludeProviderIDs: []string{"p-2"},
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	// Malformed (empty place_id) and excluded (p-2) venues are dropped.
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.ProviderID != "p-1" || c.Category != models.CategoryDining {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if len(c.RawProviderHours) != 1 || c.RawProviderHours[0].Open != 11*60 || c.RawProviderHours[0].Close != 22*60 {
		t.Errorf("hours not normalized: %+v", c.RawProviderHours)
	}
	if len(c.PhotoRefs) != 1 || c.PhotoRefs[0] != "ref-1" {
		t.Errorf("photo refs not carried: %+v", c.PhotoRefs)
	}
}

func TestSearchServerErrorIsProviderUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	source := &HTTPCandidateSource{BaseURL: srv.URL, APIKey: "test", Client: srv.Client()}
	_, err := source.Search(context.Background(), SearchRequest{
		Coordinate:  models.Coordinate{Latitude: 32.78, Longitude: -96.80},
		RadiusMiles: 10,
	})
	if err == nil {
		t.Fatal("expected provider error")
	}
	if _, ok := err.(*ProviderError); !ok {
		t.Errorf("error type %T, want *ProviderError", err)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer srv.Close()

	source := &HTTPCandidateSource{BaseURL: srv.URL, APIKey: "test", Client: srv.Client()}
	got, err := source.Search(context.Background(), SearchRequest{
		Coordinate:  models.Coordinate{Latitude: 32.78, Longitude: -96.80},
		RadiusMiles: 10,
	})
	if err != nil {
		t.Fatalf("empty page must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}

func TestParseClockTime(t *testing.T) {
	if m, ok := parseClockTime("2330"); !ok || m != 23*60+30 {
		t.Errorf("parseClockTime(2330) = %d,%v", m, ok)
	}
	for _, bad := range []string{"", "930", "24aa", "2460", "1299"} {
		if _, ok := parseClockTime(bad); ok {
			t.Errorf("parseClockTime(%q) accepted, want reject", bad)
		}
	}
}
