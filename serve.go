package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"comedyFinderAPI/internal/config"
	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/internal/workers"
	"comedyFinderAPI/middleware"
	"comedyFinderAPI/services"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the cache and venue tables before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	cfg := config.Load()
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.GetLogger("server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrate && a.db != nil {
		if err := services.Migrate(ctx, a.db); err != nil {
			return err
		}
		log.Info("Schema migrated")
	}

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	services.RegisterMetrics(prometheus.DefaultRegisterer)

	opts := routerOptionsFor(a)
	if opts.limiter != nil {
		go opts.limiter.CleanupVisitors(ctx)
		log.Infow("inbound rate limit enabled", "rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	}

	if purger, ok := a.cache.(workers.Purger); ok {
		workers.StartCleanupWorker(ctx, purger, time.Hour)
	}

	server := http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("Starting server", "addr", server.Addr, "mode", cfg.PipelineMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown error", "error", err)
	}

	log.Info("Server shutdown complete")
	return nil
}
