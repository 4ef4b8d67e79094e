// Package main is the entry point for the stockscout recommendation server.
// It answers preference-based stock recommendation requests over HTTP:
// catalog, enrichment, filtering, scoring, ranking and an optional AI narrative.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/stockscout/internal/config"
	"github.com/aristath/stockscout/internal/di"
	"github.com/aristath/stockscout/internal/scheduler"
	"github.com/aristath/stockscout/internal/server"
	"github.com/aristath/stockscout/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration from environment variables (.env supported)
// 2. Initializes logging
// 3. Wires all dependencies via the DI container
// 4. Schedules maintenance jobs (cache cleanup, model warm-up)
// 5. Starts the HTTP server
// 6. Waits for a shutdown signal and shuts down gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("strategy", cfg.Pipeline.Strategy).
		Str("catalog_source", cfg.Catalog.Source).
		Msg("Starting stockscout")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	sched := scheduler.New(log)
	if err := sched.AddJob("@daily", container.Jobs.CacheCleanup); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache cleanup")
	}
	if container.Generator != nil {
		if err := sched.AddJob("@every 1m", container.Jobs.NarrativeWarmup); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule model warm-up")
		}
		// First attempt right away so the model is likely warm before the first request
		go func() {
			_ = sched.RunNow(container.Jobs.NarrativeWarmup)
		}()
	}
	sched.Start()

	var quotas []server.QuotaReporter
	if container.AlphaVantageClient != nil {
		quotas = append(quotas, container.AlphaVantageClient)
	}

	srv := server.New(server.Config{
		Log:            log,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		RequestTimeout: cfg.RequestTimeout,
		Strategy:       cfg.Pipeline.Strategy,
		CacheDB:        container.ClientDataDB,
		Jobs:           sched,
		Quotas:         quotas,
		Recommendation: container.RecommendationHandler,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
