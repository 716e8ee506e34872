package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"comedyFinderAPI/internal/config"
	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/services"
)

// app holds the wired collaborators shared by the commands.
type app struct {
	cfg    *config.Config
	db     *pgxpool.Pool
	cache  services.EventCache
	venues services.VenueStore
	comedy *services.ComedyService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.GetLogger("app")

	a := &app{cfg: cfg}

	if cfg.DatabaseURL != "" {
		db, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.cache = services.NewPostgresEventCache(db, cfg.CacheTTL)
		a.venues = services.NewVenueService(db)
		log.Info("Successfully connected to database")
	} else {
		a.cache = services.NewMemoryEventCache(cfg.CacheTTL)
		log.Warn("DATABASE_URL not set, using in-memory cache")
	}

	deps := services.Dependencies{
		Cache:  a.cache,
		Venues: a.venues,
		Mode:   cfg.PipelineMode,
	}
	if cfg.GooglePlacesAPIKey != "" {
		deps.Places = services.NewGooglePlacesClient(cfg.GooglePlacesAPIKey)
	}
	if cfg.OpenAIAPIKey != "" {
		deps.Completer = services.NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.FirecrawlAPIKey != "" {
		deps.Fetcher = services.NewFirecrawlClient(cfg.FirecrawlAPIKey, cfg.FirecrawlBaseURL, cfg.ScrapeTimeout)
	}

	a.comedy = services.NewComedyService(deps)
	log.Infow("comedy service ready", "mode", a.comedy.Mode())
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		logger.GetLogger("app").Info("Closing database connection pool...")
		a.db.Close()
	}
}

func connectDB(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
