package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS comedy_events_cache (
		id                 UUID PRIMARY KEY,
		location_hash      TEXT             NOT NULL,
		category           TEXT             NOT NULL,
		venue_name         TEXT             NOT NULL,
		event_title        TEXT             NOT NULL DEFAULT '',
		description        TEXT             NOT NULL DEFAULT '',
		distance_miles     DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating             DOUBLE PRECISION NOT NULL DEFAULT 0,
		user_ratings_total INTEGER          NOT NULL DEFAULT 0,
		address            TEXT             NOT NULL DEFAULT '',
		place_id           TEXT             NOT NULL DEFAULT '',
		latitude           DOUBLE PRECISION,
		longitude          DOUBLE PRECISION,
		ai_reasoning       TEXT             NOT NULL DEFAULT '',
		price              TEXT             NOT NULL DEFAULT '',
		performers         TEXT[]           NOT NULL DEFAULT '{}',
		event_url          TEXT             NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		expires_at         TIMESTAMPTZ      NOT NULL DEFAULT NOW() + INTERVAL '24 hours'
	);

	CREATE INDEX IF NOT EXISTS idx_comedy_events_cache_hash
		ON comedy_events_cache (location_hash, expires_at);

	CREATE TABLE IF NOT EXISTS comedy_venues (
		place_id           TEXT PRIMARY KEY,
		name               TEXT             NOT NULL,
		address            TEXT             NOT NULL DEFAULT '',
		latitude           DOUBLE PRECISION NOT NULL,
		longitude          DOUBLE PRECISION NOT NULL,
		rating             DOUBLE PRECISION NOT NULL DEFAULT 0,
		user_ratings_total INTEGER          NOT NULL DEFAULT 0,
		phone              TEXT             NOT NULL DEFAULT '',
		website            TEXT             NOT NULL DEFAULT '',
		types              TEXT[]           NOT NULL DEFAULT '{}',
		updated_at         TIMESTAMPTZ      NOT NULL DEFAULT NOW()
	);
`

// Migrate creates the cache and venue tables if they do not exist.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// PurgeExpired deletes cache rows whose expiry has passed.
func PurgeExpired(ctx context.Context, db *pgxpool.Pool) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM comedy_events_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
