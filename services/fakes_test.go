package services

import (
	"context"
	"errors"
	"sync"

	"comedyFinderAPI/internal/types/comedy"
)

type fakeSearcher struct {
	mu          sync.Mutex
	results     map[string][]Place
	errs        map[string]error
	details     map[string]*PlaceDetails
	searchCalls int
	detailCalls []string
}

func (f *fakeSearcher) Search(ctx context.Context, keyword string, lat, lng float64) ([]Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	if err := f.errs[keyword]; err != nil {
		return nil, err
	}
	return f.results[keyword], nil
}

func (f *fakeSearcher) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, placeID)
	if d, ok := f.details[placeID]; ok {
		return d, nil
	}
	return nil, errors.New("details unavailable")
}

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeFetcher struct {
	pages   map[string]*ScrapedPage
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string) (*ScrapedPage, error) {
	f.fetched = append(f.fetched, pageURL)
	if page, ok := f.pages[pageURL]; ok {
		return page, nil
	}
	return nil, errors.New("scrape timed out")
}

type fakeVenueStore struct {
	upserted []comedy.ComedyVenue
	err      error
}

func (f *fakeVenueStore) UpsertVenues(ctx context.Context, venues []comedy.ComedyVenue) error {
	f.upserted = append(f.upserted, venues...)
	return f.err
}

func (f *fakeVenueStore) GetAllVenues(ctx context.Context) ([]comedy.ComedyVenue, error) {
	return f.upserted, f.err
}

func (f *fakeVenueStore) GetVenue(ctx context.Context, placeID string) (*comedy.ComedyVenue, error) {
	for _, v := range f.upserted {
		if v.PlaceID == placeID {
			return &v, nil
		}
	}
	return nil, ErrVenueNotFound
}

func newPlace(id, name string, lat, lng, rating float64) Place {
	p := Place{
		PlaceID:          id,
		Name:             name,
		Vicinity:         name + " street",
		Rating:           rating,
		UserRatingsTotal: 100,
		Types:            []string{"night_club"},
	}
	p.Geometry.Location = LatLng{Lat: lat, Lng: lng}
	return p
}

func ptr[T any](v T) *T {
	return &v
}
