package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"comedyFinderAPI/handlers"
	"comedyFinderAPI/internal/config"
	"comedyFinderAPI/middleware"
)

type routerOptions struct {
	comedy      handlers.ComedyFinder
	venues      *handlers.VenueHandler
	health      *handlers.HealthHandler
	gatherer    prometheus.Gatherer
	limiter     *middleware.RateLimiter
	metricsUser string
	metricsPass string
}

func newRouter(opts routerOptions) http.Handler {
	comedyHandler := handlers.NewComedyHandler(opts.comedy)

	r := mux.NewRouter()
	r.Use(middleware.MonitorMiddleware)
	if opts.limiter != nil {
		r.Use(opts.limiter.Middleware)
	}

	gatherer := opts.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metrics := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	r.Handle("/metrics", middleware.BasicAuthMiddleware(opts.metricsUser, opts.metricsPass)(metrics)).Methods("GET")

	r.HandleFunc("/health", opts.health.Health).Methods("GET")

	r.HandleFunc("/find-comedy", comedyHandler.FindComedy).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/find-comedy", comedyHandler.FindComedy).Methods("POST")
	api.HandleFunc("/venues", opts.venues.GetAllVenues).Methods("GET")
	api.HandleFunc("/venues/{placeId}", opts.venues.GetVenue).Methods("GET")

	// outermost first: recover, request id + log, CORS, preflight, routing
	var h http.Handler = middleware.Preflight(r)
	h = middleware.CORS()(h)
	h = middleware.RequestLogger(h)
	return middleware.Recoverer(h)
}

func routerOptionsFor(a *app) routerOptions {
	cfg := a.cfg

	var pinger handlers.Pinger
	if a.db != nil {
		pinger = a.db
	}

	opts := routerOptions{
		comedy:      a.comedy,
		venues:      handlers.NewVenueHandler(a.venues),
		health:      handlers.NewHealthHandler(pinger, modeLabel(cfg)),
		metricsUser: cfg.MetricsUser,
		metricsPass: cfg.MetricsPass,
	}
	if cfg.RateLimitRPS > 0 {
		opts.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return opts
}

func modeLabel(cfg *config.Config) string {
	if cfg.PipelineMode == config.ModeEvents {
		return "events (v2)"
	}
	return "venues (v1)"
}
