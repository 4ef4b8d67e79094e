// Command catalog-builder refreshes the catalog snapshot: it scrapes the
// S&P 500 constituents table, fills market cap from Yahoo Finance and writes
// the JSON file read by CATALOG_SOURCE=file (or uploaded for CATALOG_SOURCE=s3).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/stockscout/internal/clients/listing"
	"github.com/aristath/stockscout/internal/clients/yahoo"
	"github.com/aristath/stockscout/internal/modules/catalog"
	"github.com/aristath/stockscout/pkg/logger"
)

func main() {
	out := flag.String("out", "catalog.json", "Output snapshot path")
	delay := flag.Duration("delay", 500*time.Millisecond, "Pause between quote lookups")
	limit := flag.Int("limit", 0, "Max constituents (0 = all)")
	level := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log := logger.New(logger.Config{Level: *level, Pretty: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := catalog.NewBuilder(listing.NewClient(nil, log), yahoo.NewClient(nil, log), *delay, log)

	rows, err := builder.Build(ctx, *limit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build catalog")
	}

	data, err := catalog.MarshalSnapshot(rows)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode catalog")
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write catalog")
	}

	log.Info().Str("path", *out).Int("stocks", len(rows)).Msg("Catalog written")
}
