// Package catalog loads the candidate stock universe.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/stockscout/internal/config"
	"github.com/aristath/stockscout/internal/domain"
	"github.com/rs/zerolog"
)

// ErrCatalogUnavailable is returned when the primary source fails and fallback is disabled
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Loader loads the catalog from a primary source with an optional mock fallback.
type Loader struct {
	primary  domain.CatalogSource
	fallback domain.CatalogSource // nil when CATALOG_FALLBACK=fail
	log      zerolog.Logger
}

// NewLoader creates a loader. fallbackMode is config.CatalogFallbackMock or config.CatalogFallbackFail.
func NewLoader(primary domain.CatalogSource, fallbackMode string, log zerolog.Logger) *Loader {
	l := &Loader{
		primary: primary,
		log:     log.With().Str("component", "catalog").Logger(),
	}
	if fallbackMode != config.CatalogFallbackFail {
		l.fallback = NewMockSource()
	}
	return l
}

// LoadCatalog returns the candidate universe.
// An empty primary result counts as a failure.
func (l *Loader) LoadCatalog(ctx context.Context) ([]domain.Stock, error) {
	stocks, err := l.primary.Load(ctx)
	if err == nil && len(stocks) == 0 {
		err = fmt.Errorf("source %s returned no stocks", l.primary.Name())
	}
	if err == nil {
		l.log.Debug().Str("source", l.primary.Name()).Int("count", len(stocks)).Msg("Catalog loaded")
		return stocks, nil
	}

	if l.fallback == nil {
		l.log.Error().Err(err).Str("source", l.primary.Name()).Msg("Catalog load failed")
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	l.log.Warn().Err(err).Str("source", l.primary.Name()).Msg("Catalog load failed, using mock catalog")
	mock, mockErr := l.fallback.Load(ctx)
	if mockErr != nil {
		return nil, fmt.Errorf("%w: %v (fallback: %v)", ErrCatalogUnavailable, err, mockErr)
	}
	return mock, nil
}
