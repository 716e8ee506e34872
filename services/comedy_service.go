package services

import (
	"context"
	"sort"
	"time"

	"comedyFinderAPI/internal/config"
	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/internal/types/comedy"
	"comedyFinderAPI/utils"
)

const (
	maxDetailLookups = 20
	maxScrapedVenues = 10
)

// Dependencies are the collaborators a ComedyService needs. Fetcher is only
// required in events mode; Cache and Venues are optional.
type Dependencies struct {
	Places    PlaceSearcher
	Completer Completer
	Fetcher   PageFetcher
	Cache     EventCache
	Venues    VenueStore
	Mode      string
}

type ComedyService struct {
	places    PlaceSearcher
	completer Completer
	fetcher   PageFetcher
	cache     EventCache
	venues    VenueStore
	mode      string
}

func NewComedyService(deps Dependencies) *ComedyService {
	mode := deps.Mode
	if mode != config.ModeEvents {
		mode = config.ModeVenues
	}
	return &ComedyService{
		places:    deps.Places,
		completer: deps.Completer,
		fetcher:   deps.Fetcher,
		cache:     deps.Cache,
		venues:    deps.Venues,
		mode:      mode,
	}
}

func (s *ComedyService) Mode() string {
	return s.mode
}

// FindComedy runs the whole pipeline for one coordinate.
func (s *ComedyService) FindComedy(ctx context.Context, lat, lng float64) (*comedy.FindResponse, error) {
	if s.places == nil || s.completer == nil {
		return nil, ErrNotConfigured
	}
	if s.mode == config.ModeEvents && s.fetcher == nil {
		return nil, ErrScraperNotConfigured
	}

	log := logger.FromContext(ctx, "comedy")

	// events mode never reads the venues-mode cache rows
	var hash string
	if s.mode == config.ModeVenues {
		hash = utils.LocationHash(lat, lng)
		if cached := lookupCache(ctx, s.cache, hash); cached != nil {
			log.Infow("cache hit", "hash", hash)
			return &comedy.FindResponse{Events: cached, Cached: true}, nil
		}
	}

	start := time.Now()
	defer func() {
		pipelineDuration.WithLabelValues(s.mode).Observe(time.Since(start).Seconds())
	}()

	places, err := SearchAll(ctx, s.places, lat, lng)
	if err != nil {
		return nil, err
	}

	venues := make([]comedy.ComedyVenue, 0, len(places))
	for _, p := range places {
		venues = append(venues, p.ToVenue(lat, lng))
	}

	var events []comedy.ComedyEvent
	if s.mode == config.ModeEvents {
		events, err = s.findEvents(ctx, venues)
	} else {
		events, err = s.findVenues(ctx, venues)
	}
	if err != nil {
		return nil, err
	}

	if s.mode == config.ModeVenues {
		storeCache(ctx, s.cache, hash, events)
	}

	log.Infow("comedy search complete", "mode", s.mode, "venues", len(venues), "events", len(events))
	return &comedy.FindResponse{Events: events, Cached: false}, nil
}

func (s *ComedyService) findVenues(ctx context.Context, venues []comedy.ComedyVenue) ([]comedy.ComedyEvent, error) {
	events, err := ClassifyVenues(ctx, s.completer, venues)
	if err != nil {
		return nil, &PipelineError{Status: ErrClassification.Status, Message: ErrClassification.Message, Err: err}
	}
	// a readable reply with every category null is an empty answer, not a failure
	return events, nil
}

func (s *ComedyService) findEvents(ctx context.Context, venues []comedy.ComedyVenue) ([]comedy.ComedyEvent, error) {
	candidates := s.collectCandidates(ctx, venues)
	if len(candidates) == 0 {
		return nil, ErrNoEvents
	}

	classified, err := ClassifyEvents(ctx, s.completer, candidates)
	if err != nil {
		return nil, &PipelineError{Status: ErrClassification.Status, Message: ErrClassification.Message, Err: err}
	}
	if len(classified) == 0 {
		return nil, ErrClassification
	}

	return SelectBest(classified), nil
}

// collectCandidates looks up the nearest venues, scrapes the ones with a
// website and mines their pages for events.
func (s *ComedyService) collectCandidates(ctx context.Context, venues []comedy.ComedyVenue) []comedy.CandidateEvent {
	log := logger.FromContext(ctx, "comedy")

	nearby := NearbyVenues(venues, SearchRadiusMiles)
	if len(nearby) > maxDetailLookups {
		nearby = nearby[:maxDetailLookups]
	}

	var (
		candidates []comedy.CandidateEvent
		scraped    int
		enriched   = make([]comedy.ComedyVenue, 0, len(nearby))
	)

	for _, venue := range nearby {
		if scraped >= maxScrapedVenues {
			break
		}

		details, err := s.places.Details(ctx, venue.PlaceID)
		if err != nil {
			log.Warnw("place details failed", "place_id", venue.PlaceID, "error", err)
		} else {
			details.ApplyTo(&venue)
		}
		enriched = append(enriched, venue)

		if venue.Website == "" {
			continue
		}
		scraped++

		page, err := s.fetcher.Fetch(ctx, venue.Website)
		if err != nil {
			log.Warnw("scrape failed", "venue", venue.Name, "url", venue.Website, "error", err)
			candidates = append(candidates, PlaceholderEvent(venue))
			continue
		}
		candidates = append(candidates, ExtractEvents(venue, page.Text())...)
	}

	if s.venues != nil && len(enriched) > 0 {
		if err := s.venues.UpsertVenues(ctx, enriched); err != nil {
			log.Warnw("venue upsert failed", "count", len(enriched), "error", err)
		}
	}

	log.Infow("candidate events collected", "scraped", scraped, "candidates", len(candidates))
	return candidates
}

// NearbyVenues keeps venues within radius miles, nearest first.
func NearbyVenues(venues []comedy.ComedyVenue, radius float64) []comedy.ComedyVenue {
	out := make([]comedy.ComedyVenue, 0, len(venues))
	for _, v := range venues {
		if v.Distance <= radius {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

