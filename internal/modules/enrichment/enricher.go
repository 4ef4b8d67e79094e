// Package enrichment fills in financial fields for catalog stocks from upstream providers.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Enricher fans out detail lookups across stocks.
// Each stock is bounded by its own timeout and a failed stock is kept as it was.
type Enricher struct {
	providers   []domain.DetailProvider
	timeout     time.Duration
	concurrency int
	log         zerolog.Logger
}

// New creates an enricher. Providers are consulted in order; earlier providers win on conflicts.
func New(providers []domain.DetailProvider, timeout time.Duration, concurrency int, log zerolog.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		providers:   providers,
		timeout:     timeout,
		concurrency: concurrency,
		log:         log.With().Str("component", "enricher").Logger(),
	}
}

// Enrich returns a slice with the same length and order as stocks.
// Entries whose lookups all failed are returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, stocks []domain.Stock) []domain.Stock {
	out := make([]domain.Stock, len(stocks))
	copy(out, stocks)

	if len(e.providers) == 0 || len(stocks) == 0 {
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	failed := make([]bool, len(stocks))
	for i := range stocks {
		i := i
		g.Go(func() error {
			enriched, err := e.EnrichOne(ctx, stocks[i])
			if err != nil {
				failed[i] = true
				return nil
			}
			out[i] = enriched
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}
	if failures > 0 {
		e.log.Warn().
			Int("total", len(stocks)).
			Int("failed", failures).
			Msg("Some stocks could not be enriched, kept original data")
	}

	return out
}

// EnrichOne merges every provider's details into stock under the per-stock timeout.
// It returns the original stock and an error only when no provider produced anything.
func (e *Enricher) EnrichOne(ctx context.Context, stock domain.Stock) (domain.Stock, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	merged := &domain.Details{}
	var errs []error

	for _, p := range e.providers {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		details, err := p.Details(ctx, stock.Symbol)
		if err != nil {
			e.logProviderError(p.Name(), stock.Symbol, err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		merged.Merge(details)
	}

	if merged.Empty() {
		if len(errs) == 0 {
			return stock, nil
		}
		return stock, fmt.Errorf("enrich %s: %w", stock.Symbol, errors.Join(errs...))
	}

	return stock.Merge(merged), nil
}

func (e *Enricher) logProviderError(provider, symbol string, err error) {
	// Unknown symbols are common in snapshots
	level := zerolog.WarnLevel
	if errors.Is(err, domain.ErrNotFound) {
		level = zerolog.DebugLevel
	}

	e.log.WithLevel(level).
		Err(err).
		Str("provider", provider).
		Str("symbol", symbol).
		Bool("rate_limited", errors.Is(err, domain.ErrRateLimited)).
		Msg("Provider lookup failed (recoverable)")
}
