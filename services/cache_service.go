package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/internal/types/comedy"
)

const DefaultCacheTTL = 24 * time.Hour

// EventCache stores the per-category result set for a location hash.
// Lookup returns nil, nil on a miss.
type EventCache interface {
	Lookup(ctx context.Context, hash string) ([]comedy.ComedyEvent, error)
	Store(ctx context.Context, hash string, events []comedy.ComedyEvent) error
}

// completeSet honours a cache entry only when there is exactly one fresh row
// per category. Anything else (partial, expired, duplicated) is a miss.
func completeSet(rows []comedy.CacheRow, now time.Time) ([]comedy.ComedyEvent, bool) {
	if len(rows) != len(comedy.Categories) {
		return nil, false
	}

	byCategory := make(map[comedy.Category]comedy.CacheRow, len(rows))
	for _, row := range rows {
		if !row.ExpiresAt.After(now) {
			return nil, false
		}
		if _, ok := comedy.ParseCategory(string(row.Category)); !ok {
			return nil, false
		}
		if _, dup := byCategory[row.Category]; dup {
			return nil, false
		}
		byCategory[row.Category] = row
	}

	events := make([]comedy.ComedyEvent, 0, len(rows))
	for _, category := range comedy.Categories {
		events = append(events, byCategory[category].ToEvent())
	}
	return events, true
}

type PostgresEventCache struct {
	db  *pgxpool.Pool
	ttl time.Duration
}

func NewPostgresEventCache(db *pgxpool.Pool, ttl time.Duration) *PostgresEventCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PostgresEventCache{db: db, ttl: ttl}
}

// cacheSelectColumns is scanned with pgx.RowToStructByName, so every entry
// must resolve to exactly one db tag of comedy.CacheRow.
var cacheSelectColumns = []string{
	"id",
	"location_hash",
	"category",
	"venue_name",
	"event_title",
	"COALESCE(description, '') AS description",
	"distance_miles",
	"COALESCE(rating, 0) AS rating",
	"COALESCE(user_ratings_total, 0) AS user_ratings_total",
	"COALESCE(address, '') AS address",
	"COALESCE(place_id, '') AS place_id",
	"latitude",
	"longitude",
	"COALESCE(ai_reasoning, '') AS ai_reasoning",
	"COALESCE(price, '') AS price",
	"COALESCE(performers, '{}') AS performers",
	"COALESCE(event_url, '') AS event_url",
	"created_at",
	"expires_at",
}

// cacheInsertColumns lines up with cacheRowArgs.
var cacheInsertColumns = []string{
	"id", "location_hash", "category", "venue_name", "event_title", "description",
	"distance_miles", "rating", "user_ratings_total", "address", "place_id",
	"latitude", "longitude", "ai_reasoning", "price", "performers", "event_url",
	"created_at", "expires_at",
}

var (
	cacheLookupQuery = `
		SELECT ` + strings.Join(cacheSelectColumns, ",\n\t\t\t") + `
		FROM comedy_events_cache
		WHERE location_hash = $1
		  AND expires_at > NOW()
		ORDER BY created_at
	`

	cacheInsertQuery = `
		INSERT INTO comedy_events_cache (` + strings.Join(cacheInsertColumns, ", ") + `)
		VALUES (` + placeholders(len(cacheInsertColumns)) + `)
	`
)

func placeholders(n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return strings.Join(params, ", ")
}

func cacheRowArgs(row comedy.CacheRow) []any {
	performers := row.Performers
	if performers == nil {
		performers = []string{}
	}
	return []any{
		row.ID,
		row.LocationHash,
		string(row.Category),
		row.VenueName,
		row.EventTitle,
		row.Description,
		row.DistanceMiles,
		row.Rating,
		row.UserRatingsTotal,
		row.Address,
		row.PlaceID,
		row.Latitude,
		row.Longitude,
		row.AIReasoning,
		row.Price,
		performers,
		row.EventURL,
		row.CreatedAt,
		row.ExpiresAt,
	}
}

func (c *PostgresEventCache) Lookup(ctx context.Context, hash string) ([]comedy.ComedyEvent, error) {
	rows, err := c.db.Query(ctx, cacheLookupQuery, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	cached, err := pgx.CollectRows(rows, pgx.RowToStructByName[comedy.CacheRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache rows: %w", err)
	}

	events, ok := completeSet(cached, time.Now())
	if !ok {
		return nil, nil
	}
	return events, nil
}

func (c *PostgresEventCache) Store(ctx context.Context, hash string, events []comedy.ComedyEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, ev := range events {
		row := comedy.NewCacheRow(hash, ev, now, c.ttl)
		if _, err := tx.Exec(ctx, cacheInsertQuery, cacheRowArgs(row)...); err != nil {
			return fmt.Errorf("failed to insert cache row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("cache commit failed: %w", err)
	}
	return nil
}

func (c *PostgresEventCache) PurgeExpired(ctx context.Context) (int64, error) {
	return PurgeExpired(ctx, c.db)
}

// MemoryEventCache is the in-process cache used when no database is configured.
type MemoryEventCache struct {
	mu   sync.Mutex
	rows map[string][]comedy.CacheRow
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryEventCache(ttl time.Duration) *MemoryEventCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryEventCache{
		rows: make(map[string][]comedy.CacheRow),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *MemoryEventCache) Lookup(ctx context.Context, hash string) ([]comedy.ComedyEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stored := c.rows[hash]
	fresh := make([]comedy.CacheRow, 0, len(stored))
	for _, row := range stored {
		if row.ExpiresAt.After(now) {
			fresh = append(fresh, row)
		}
	}
	switch {
	case len(fresh) == 0:
		delete(c.rows, hash)
	case len(fresh) != len(stored):
		c.rows[hash] = fresh
	}

	events, ok := completeSet(fresh, now)
	if !ok {
		return nil, nil
	}
	return events, nil
}

func (c *MemoryEventCache) Store(ctx context.Context, hash string, events []comedy.ComedyEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, ev := range events {
		c.rows[hash] = append(c.rows[hash], comedy.NewCacheRow(hash, ev, now, c.ttl))
	}
	return nil
}

func (c *MemoryEventCache) PurgeExpired(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var purged int64
	for hash, rows := range c.rows {
		fresh := rows[:0]
		for _, row := range rows {
			if row.ExpiresAt.After(now) {
				fresh = append(fresh, row)
			} else {
				purged++
			}
		}
		if len(fresh) == 0 {
			delete(c.rows, hash)
		} else {
			c.rows[hash] = fresh
		}
	}
	return purged, nil
}

// lookupCache treats any cache failure as a miss.
func lookupCache(ctx context.Context, cache EventCache, hash string) []comedy.ComedyEvent {
	if cache == nil {
		return nil
	}

	events, err := cache.Lookup(ctx, hash)
	switch {
	case err != nil:
		cacheLookups.WithLabelValues("error").Inc()
		logger.FromContext(ctx, "cache").Warnw("cache lookup failed", "hash", hash, "error", err)
		return nil
	case events == nil:
		cacheLookups.WithLabelValues("miss").Inc()
		return nil
	default:
		cacheLookups.WithLabelValues("hit").Inc()
		return events
	}
}

// storeCache logs and swallows write failures.
func storeCache(ctx context.Context, cache EventCache, hash string, events []comedy.ComedyEvent) {
	if cache == nil || len(events) == 0 {
		return
	}
	if err := cache.Store(ctx, hash, events); err != nil {
		logger.FromContext(ctx, "cache").Warnw("cache write failed", "hash", hash, "error", err)
	}
}
