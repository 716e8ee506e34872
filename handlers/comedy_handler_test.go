package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comedyFinderAPI/internal/types/comedy"
	"comedyFinderAPI/services"
)

type stubFinder struct {
	resp  *comedy.FindResponse
	err   error
	calls int
	lat   float64
	lng   float64
}

func (s *stubFinder) FindComedy(ctx context.Context, lat, lng float64) (*comedy.FindResponse, error) {
	s.calls++
	s.lat, s.lng = lat, lng
	return s.resp, s.err
}

func postFind(t *testing.T, h *ComedyHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/find-comedy", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.FindComedy(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body comedy.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestFindComedyValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing latitude", `{"longitude": -118.24}`, "Missing latitude or longitude"},
		{"missing longitude", `{"latitude": 34.05}`, "Missing latitude or longitude"},
		{"null latitude", `{"latitude": null, "longitude": -118.24}`, "Missing latitude or longitude"},
		{"empty body", ``, "Missing latitude or longitude"},
		{"malformed json", `{"latitude": 34.05,`, "Missing latitude or longitude"},
		{"string coordinate", `{"latitude": "34.05", "longitude": -118.24}`, "Missing latitude or longitude"},
		{"latitude out of range", `{"latitude": 91, "longitude": 0}`, "Invalid latitude or longitude"},
		{"longitude out of range", `{"latitude": 0, "longitude": -180.5}`, "Invalid latitude or longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stubFinder{}
			rec := postFind(t, NewComedyHandler(finder), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantMsg, decodeError(t, rec))
			assert.Zero(t, finder.calls, "no upstream work before validation")
		})
	}
}

func TestFindComedyZeroCoordinatesAreValid(t *testing.T) {
	finder := &stubFinder{resp: &comedy.FindResponse{Events: []comedy.ComedyEvent{}}}

	rec := postFind(t, NewComedyHandler(finder), `{"latitude": 0, "longitude": 0}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, finder.calls)
	assert.Zero(t, finder.lat)
	assert.Zero(t, finder.lng)
}

func TestFindComedySuccess(t *testing.T) {
	rating := 4.5
	finder := &stubFinder{resp: &comedy.FindResponse{
		Events: []comedy.ComedyEvent{{
			Category:    comedy.CategoryStandUp,
			VenueName:   "The Comedy Store",
			EventTitle:  "",
			Distance:    2.3,
			AIReasoning: "legendary room",
			Rating:      &rating,
		}},
		Cached: true,
	}}

	rec := postFind(t, NewComedyHandler(finder), `{"latitude": 34.0522, "longitude": -118.2437}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 34.0522, finder.lat)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["cached"])

	events := body["events"].([]any)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	assert.Equal(t, "Stand-Up Comedy Club", ev["category"])
	assert.Equal(t, "The Comedy Store", ev["venueName"])
	assert.Equal(t, "legendary room", ev["aiReasoning"])
	assert.Equal(t, 4.5, ev["rating"])
	assert.NotContains(t, ev, "price")
}

func TestFindComedyErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not configured", services.ErrNotConfigured, http.StatusInternalServerError, services.ErrNotConfigured.Message},
		{"no venues", services.ErrNoVenues, http.StatusNotFound, "No comedy venues found in your area"},
		{"no events", services.ErrNoEvents, http.StatusNotFound, "No comedy events found in your area"},
		{"classification", services.ErrClassification, http.StatusInternalServerError, "Could not classify comedy events"},
		{"unexpected", errors.New("kaboom"), http.StatusInternalServerError, "kaboom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postFind(t, NewComedyHandler(&stubFinder{err: tt.err}), `{"latitude": 34.05, "longitude": -118.24}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, rec))
		})
	}
}

type scriptedSearcher struct {
	places []services.Place
	calls  int
}

func (s *scriptedSearcher) Search(ctx context.Context, keyword string, lat, lng float64) ([]services.Place, error) {
	s.calls++
	return s.places, nil
}

func (s *scriptedSearcher) Details(ctx context.Context, placeID string) (*services.PlaceDetails, error) {
	return &services.PlaceDetails{PlaceID: placeID}, nil
}

type scriptedCompleter struct {
	response string
}

func (c scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return c.response, nil
}

func TestFindComedyWithPipeline(t *testing.T) {
	place := services.Place{PlaceID: "p1", Name: "Laugh Lab", Rating: 4.4}
	place.Geometry.Location = services.LatLng{Lat: 34.06, Lng: -118.25}

	t.Run("missing credentials", func(t *testing.T) {
		svc := services.NewComedyService(services.Dependencies{})

		rec := postFind(t, NewComedyHandler(svc), `{"latitude": 34.05, "longitude": -118.24}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, decodeError(t, rec), "API keys not configured")
	})

	t.Run("malformed classifier output", func(t *testing.T) {
		searcher := &scriptedSearcher{places: []services.Place{place}}
		svc := services.NewComedyService(services.Dependencies{
			Places:    searcher,
			Completer: scriptedCompleter{response: "Here are my picks: Laugh Lab!"},
			Cache:     services.NewMemoryEventCache(0),
		})

		rec := postFind(t, NewComedyHandler(svc), `{"latitude": 34.05, "longitude": -118.24}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Could not classify comedy events", decodeError(t, rec))
	})

	t.Run("venues found and classified", func(t *testing.T) {
		searcher := &scriptedSearcher{places: []services.Place{place}}
		svc := services.NewComedyService(services.Dependencies{
			Places:    searcher,
			Completer: scriptedCompleter{response: `{"Improv Comedy Leaders": {"place_id": "p1", "reasoning": "improv every night"}}`},
		})

		rec := postFind(t, NewComedyHandler(svc), `{"latitude": 34.05, "longitude": -118.24}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var body comedy.FindResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Cached)
		require.Len(t, body.Events, 1)
		assert.Equal(t, comedy.CategoryImprov, body.Events[0].Category)
		assert.Equal(t, "Laugh Lab", body.Events[0].VenueName)
	})

	t.Run("no category matched", func(t *testing.T) {
		searcher := &scriptedSearcher{places: []services.Place{place}}
		svc := services.NewComedyService(services.Dependencies{
			Places:    searcher,
			Completer: scriptedCompleter{response: `{"Comedy Workshop": null, "Comedy Podcasts": null, "Stand-Up Comedy Club": null, "Improv Comedy Leaders": null}`},
			Cache:     services.NewMemoryEventCache(0),
		})

		rec := postFind(t, NewComedyHandler(svc), `{"latitude": 34.05, "longitude": -118.24}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"events": [], "cached": false}`, rec.Body.String())
	})
}
