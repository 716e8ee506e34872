package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/internal/types/comedy"
	"comedyFinderAPI/utils"
)

const (
	placesBaseURL = "https://maps.googleapis.com/maps/api/place"
	// 10 miles
	SearchRadiusMeters = 16093
	SearchRadiusMiles  = 10.0
)

// SearchKeywords are queried in order; results are merged first-seen wins.
var SearchKeywords = []string{"comedy club", "comedy show", "improv", "stand up comedy"}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is the subset of a nearby-search result the pipeline uses.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Vicinity         string   `json:"vicinity"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Geometry         struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

type PlaceDetails struct {
	PlaceID              string `json:"place_id"`
	Name                 string `json:"name"`
	FormattedAddress     string `json:"formatted_address"`
	FormattedPhoneNumber string `json:"formatted_phone_number"`
	Website              string `json:"website"`
	URL                  string `json:"url"`
}

// PlaceSearcher is the places provider as seen by the pipeline.
type PlaceSearcher interface {
	Search(ctx context.Context, keyword string, lat, lng float64) ([]Place, error)
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
}

type nearbySearchResponse struct {
	Results      []Place `json:"results"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
}

type detailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

type GooglePlacesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGooglePlacesClient(apiKey string) *GooglePlacesClient {
	return &GooglePlacesClient{
		apiKey:  apiKey,
		baseURL: placesBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithBaseURL points the client at another host (tests).
func (c *GooglePlacesClient) WithBaseURL(baseURL string) *GooglePlacesClient {
	c.baseURL = baseURL
	return c
}

func (c *GooglePlacesClient) Search(ctx context.Context, keyword string, lat, lng float64) ([]Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", strconv.Itoa(SearchRadiusMeters))
	params.Set("keyword", keyword)
	params.Set("key", c.apiKey)

	var body nearbySearchResponse
	err := c.getJSON(ctx, "/nearbysearch/json?"+params.Encode(), &body)
	observeUpstream("places_search", err)
	if err != nil {
		return nil, fmt.Errorf("nearby search %q: %w", keyword, err)
	}

	if err := checkPlacesStatus(body.Status, body.ErrorMessage); err != nil {
		return nil, fmt.Errorf("nearby search %q: %w", keyword, err)
	}

	return body.Results, nil
}

func (c *GooglePlacesClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,formatted_phone_number,website,url")
	params.Set("key", c.apiKey)

	var body detailsResponse
	err := c.getJSON(ctx, "/details/json?"+params.Encode(), &body)
	observeUpstream("places_details", err)
	if err != nil {
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}

	if err := checkPlacesStatus(body.Status, body.ErrorMessage); err != nil {
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}

	return &body.Result, nil
}

func (c *GooglePlacesClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func checkPlacesStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS", "":
		return nil
	}
	if message != "" {
		return fmt.Errorf("places status %s: %s", status, message)
	}
	return fmt.Errorf("places status %s", status)
}

// SearchAll runs every keyword query and merges results by place id.
// A failed keyword counts as zero results.
func SearchAll(ctx context.Context, searcher PlaceSearcher, lat, lng float64) ([]Place, error) {
	log := logger.FromContext(ctx, "places")

	seen := make(map[string]struct{})
	all := make([]Place, 0)

	for _, keyword := range SearchKeywords {
		results, err := searcher.Search(ctx, keyword, lat, lng)
		if err != nil {
			log.Warnw("keyword search failed", "keyword", keyword, "error", err)
			continue
		}

		for _, p := range results {
			if p.PlaceID == "" {
				continue
			}
			if _, dup := seen[p.PlaceID]; dup {
				continue
			}
			seen[p.PlaceID] = struct{}{}
			all = append(all, p)
		}
	}

	if len(all) == 0 {
		return nil, ErrNoVenues
	}

	log.Infow("places collected", "count", len(all), "keywords", len(SearchKeywords))
	return all, nil
}

// ToVenue projects a place into the venue shape, with distance from the user.
func (p Place) ToVenue(userLat, userLng float64) comedy.ComedyVenue {
	return comedy.ComedyVenue{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		Address:          p.Vicinity,
		Latitude:         p.Geometry.Location.Lat,
		Longitude:        p.Geometry.Location.Lng,
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingsTotal,
		Types:            p.Types,
		Distance:         utils.DistanceMiles(userLat, userLng, p.Geometry.Location.Lat, p.Geometry.Location.Lng),
	}
}

// ApplyTo copies contact fields from a details lookup onto a venue.
func (d *PlaceDetails) ApplyTo(v *comedy.ComedyVenue) {
	if d == nil {
		return
	}
	if d.FormattedAddress != "" {
		v.Address = d.FormattedAddress
	}
	v.Phone = d.FormattedPhoneNumber
	v.Website = d.Website
}
