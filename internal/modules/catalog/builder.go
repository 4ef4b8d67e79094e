package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/rs/zerolog"
)

// SnapshotRow is one entry of a catalog snapshot file.
type SnapshotRow struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Industry  string  `json:"industry"`
	Sector    string  `json:"sector,omitempty"`
	MarketCap float64 `json:"marketCap"`
}

// Builder assembles a snapshot from a constituent listing and a quote provider.
type Builder struct {
	lister StockLister
	quotes domain.DetailProvider
	delay  time.Duration
	log    zerolog.Logger
}

// NewBuilder creates a snapshot builder. delay spaces out quote calls.
func NewBuilder(lister StockLister, quotes domain.DetailProvider, delay time.Duration, log zerolog.Logger) *Builder {
	return &Builder{
		lister: lister,
		quotes: quotes,
		delay:  delay,
		log:    log.With().Str("component", "catalog_builder").Logger(),
	}
}

// Build lists constituents and fills market cap and classification from quotes.
// A failed quote keeps the listing row with an unknown market cap.
// limit <= 0 builds the full listing.
func (b *Builder) Build(ctx context.Context, limit int) ([]SnapshotRow, error) {
	stocks, err := b.lister.Stocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list constituents: %w", err)
	}
	if limit > 0 && len(stocks) > limit {
		stocks = stocks[:limit]
	}

	rows := make([]SnapshotRow, 0, len(stocks))
	failed := 0
	for i, s := range stocks {
		if i > 0 && b.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.delay):
			}
		}

		details, err := b.quotes.Details(ctx, s.Symbol)
		if err != nil {
			failed++
			b.log.Warn().Err(err).Str("symbol", s.Symbol).Msg("Quote lookup failed, keeping listing data")
		} else {
			s = s.Merge(details)
		}

		rows = append(rows, SnapshotRow{
			Symbol:    s.Symbol,
			Name:      s.Name,
			Industry:  s.Industry,
			Sector:    s.Sector,
			MarketCap: s.MarketCap,
		})

		if (i+1)%50 == 0 {
			b.log.Info().Int("done", i+1).Int("total", len(stocks)).Msg("Catalog build progress")
		}
	}

	b.log.Info().
		Int("stocks", len(rows)).
		Int("quote_failures", failed).
		Msg("Catalog snapshot built")

	return rows, nil
}

// MarshalSnapshot encodes rows in the format ParseSnapshot reads.
func MarshalSnapshot(rows []SnapshotRow) ([]byte, error) {
	return json.MarshalIndent(rows, "", "  ")
}
