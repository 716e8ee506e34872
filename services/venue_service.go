package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"comedyFinderAPI/internal/types/comedy"
)

var ErrVenueNotFound = errors.New("venue not found")

// VenueStore keeps the venues discovered by events-mode searches.
type VenueStore interface {
	UpsertVenues(ctx context.Context, venues []comedy.ComedyVenue) error
	GetAllVenues(ctx context.Context) ([]comedy.ComedyVenue, error)
	GetVenue(ctx context.Context, placeID string) (*comedy.ComedyVenue, error)
}

type VenueService struct {
	db *pgxpool.Pool
}

func NewVenueService(db *pgxpool.Pool) *VenueService {
	return &VenueService{db: db}
}

func (s *VenueService) UpsertVenues(ctx context.Context, venues []comedy.ComedyVenue) error {
	if len(venues) == 0 {
		return nil
	}

	query := `
		INSERT INTO comedy_venues (
			place_id, name, address, latitude, longitude,
			rating, user_ratings_total, phone, website, types, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			rating = EXCLUDED.rating,
			user_ratings_total = EXCLUDED.user_ratings_total,
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), comedy_venues.phone),
			website = COALESCE(NULLIF(EXCLUDED.website, ''), comedy_venues.website),
			types = EXCLUDED.types,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, v := range venues {
		types := v.Types
		if types == nil {
			types = []string{}
		}
		batch.Queue(query,
			v.PlaceID,
			v.Name,
			v.Address,
			v.Latitude,
			v.Longitude,
			v.Rating,
			v.UserRatingsTotal,
			v.Phone,
			v.Website,
			types,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range venues {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert venue: %w", err)
		}
	}
	return nil
}

const venueColumns = `
	place_id,
	name,
	address,
	latitude,
	longitude,
	rating,
	user_ratings_total,
	COALESCE(phone, '') AS phone,
	COALESCE(website, '') AS website,
	COALESCE(types, '{}') AS types
`

func (s *VenueService) GetAllVenues(ctx context.Context) ([]comedy.ComedyVenue, error) {
	rows, err := s.db.Query(ctx, `SELECT `+venueColumns+` FROM comedy_venues ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	var venues []comedy.ComedyVenue
	for rows.Next() {
		var v comedy.ComedyVenue
		if err := scanVenue(rows, &v); err != nil {
			return nil, fmt.Errorf("failed to scan venue row: %w", err)
		}
		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return venues, nil
}

func (s *VenueService) GetVenue(ctx context.Context, placeID string) (*comedy.ComedyVenue, error) {
	var v comedy.ComedyVenue
	row := s.db.QueryRow(ctx, `SELECT `+venueColumns+` FROM comedy_venues WHERE place_id = $1`, placeID)
	if err := scanVenue(row, &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return &v, nil
}

func scanVenue(row pgx.Row, v *comedy.ComedyVenue) error {
	return row.Scan(
		&v.PlaceID,
		&v.Name,
		&v.Address,
		&v.Latitude,
		&v.Longitude,
		&v.Rating,
		&v.UserRatingsTotal,
		&v.Phone,
		&v.Website,
		&v.Types,
	)
}
