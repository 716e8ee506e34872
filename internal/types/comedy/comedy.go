package comedy

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryWorkshop Category = "Comedy Workshop"
	CategoryPodcasts Category = "Comedy Podcasts"
	CategoryStandUp  Category = "Stand-Up Comedy Club"
	CategoryImprov   Category = "Improv Comedy Leaders"
)

// Categories is the closed taxonomy, in response order.
var Categories = []Category{
	CategoryWorkshop,
	CategoryPodcasts,
	CategoryStandUp,
	CategoryImprov,
}

// ParseCategory accepts only an exact taxonomy label.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type ComedyEvent struct {
	Category         Category `json:"category"`
	VenueName        string   `json:"venueName"`
	EventTitle       string   `json:"eventTitle"`
	Distance         float64  `json:"distance"`
	AIReasoning      string   `json:"aiReasoning"`
	PlaceID          string   `json:"placeId,omitempty"`
	Address          string   `json:"address,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"userRatingsTotal,omitempty"`
	Price            string   `json:"price,omitempty"`
	Performers       []string `json:"performers,omitempty"`
	EventURL         string   `json:"eventUrl,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// Score is the ranking used to pick one event per category.
func (e ComedyEvent) Score() float64 {
	rating := 0.0
	if e.Rating != nil {
		rating = *e.Rating
	}
	return rating - 0.1*e.Distance
}

type ComedyVenue struct {
	PlaceID          string   `db:"place_id"           json:"placeId"`
	Name             string   `db:"name"               json:"name"`
	Address          string   `db:"address"            json:"address"`
	Latitude         float64  `db:"latitude"           json:"latitude"`
	Longitude        float64  `db:"longitude"          json:"longitude"`
	Rating           float64  `db:"rating"             json:"rating"`
	UserRatingsTotal int      `db:"user_ratings_total" json:"userRatingsTotal"`
	Phone            string   `db:"phone"              json:"phone,omitempty"`
	Website          string   `db:"website"            json:"website,omitempty"`
	Types            []string `db:"types"              json:"types,omitempty"`
	Distance         float64  `db:"-"                  json:"distance"`
}

// CandidateEvent is one event mined from a venue's web page before classification.
type CandidateEvent struct {
	Key         string
	Venue       ComedyVenue
	Title       string
	Description string
	Price       string
	Time        string
	Performers  []string
	URL         string
	Placeholder bool
}

// CacheRow mirrors a comedy_events_cache row.
type CacheRow struct {
	ID               uuid.UUID `db:"id"`
	LocationHash     string    `db:"location_hash"`
	Category         Category  `db:"category"`
	VenueName        string    `db:"venue_name"`
	EventTitle       string    `db:"event_title"`
	Description      string    `db:"description"`
	DistanceMiles    float64   `db:"distance_miles"`
	Rating           float64   `db:"rating"`
	UserRatingsTotal int       `db:"user_ratings_total"`
	Address          string    `db:"address"`
	PlaceID          string    `db:"place_id"`
	Latitude         *float64  `db:"latitude"`
	Longitude        *float64  `db:"longitude"`
	AIReasoning      string    `db:"ai_reasoning"`
	Price            string    `db:"price"`
	Performers       []string  `db:"performers"`
	EventURL         string    `db:"event_url"`
	CreatedAt        time.Time `db:"created_at"`
	ExpiresAt        time.Time `db:"expires_at"`
}

// ToEvent converts a cache row back into the response shape.
func (r CacheRow) ToEvent() ComedyEvent {
	ev := ComedyEvent{
		Category:    r.Category,
		VenueName:   r.VenueName,
		EventTitle:  r.EventTitle,
		Distance:    r.DistanceMiles,
		AIReasoning: r.AIReasoning,
		PlaceID:     r.PlaceID,
		Address:     r.Address,
		Price:       r.Price,
		Performers:  r.Performers,
		EventURL:    r.EventURL,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
	if r.Rating != 0 {
		rating := r.Rating
		ev.Rating = &rating
	}
	if r.UserRatingsTotal != 0 {
		total := r.UserRatingsTotal
		ev.UserRatingsTotal = &total
	}
	return ev
}

// NewCacheRow denormalises an event for storage.
func NewCacheRow(hash string, ev ComedyEvent, now time.Time, ttl time.Duration) CacheRow {
	row := CacheRow{
		ID:            uuid.New(),
		LocationHash:  hash,
		Category:      ev.Category,
		VenueName:     ev.VenueName,
		EventTitle:    ev.EventTitle,
		DistanceMiles: ev.Distance,
		Address:       ev.Address,
		PlaceID:       ev.PlaceID,
		Latitude:      ev.Latitude,
		Longitude:     ev.Longitude,
		AIReasoning:   ev.AIReasoning,
		Price:         ev.Price,
		Performers:    ev.Performers,
		EventURL:      ev.EventURL,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
	if ev.Rating != nil {
		row.Rating = *ev.Rating
	}
	if ev.UserRatingsTotal != nil {
		row.UserRatingsTotal = *ev.UserRatingsTotal
	}
	return row
}

type FindRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type FindResponse struct {
	Events []ComedyEvent `json:"events"`
	Cached bool          `json:"cached"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
