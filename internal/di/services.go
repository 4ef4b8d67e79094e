// Package di provides dependency injection for services.
package di

import (
	"context"
	"fmt"

	"github.com/aristath/stockscout/internal/clientdata"
	"github.com/aristath/stockscout/internal/clients/alphavantage"
	"github.com/aristath/stockscout/internal/clients/huggingface"
	"github.com/aristath/stockscout/internal/clients/listing"
	"github.com/aristath/stockscout/internal/clients/openaicompat"
	"github.com/aristath/stockscout/internal/clients/yahoo"
	"github.com/aristath/stockscout/internal/config"
	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/modules/catalog"
	"github.com/aristath/stockscout/internal/modules/enrichment"
	"github.com/aristath/stockscout/internal/modules/narrative"
	"github.com/aristath/stockscout/internal/modules/recommendation"
	recommendationhandlers "github.com/aristath/stockscout/internal/modules/recommendation/handlers"
	"github.com/aristath/stockscout/internal/modules/screening"
	"github.com/rs/zerolog"
)

// InitializeServices creates clients, pipeline stages and handlers
// Must be called after InitializeDatabases
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.ClientDataDB == nil {
		return fmt.Errorf("container databases must be initialized first")
	}

	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())

	// Upstream detail clients share the client data cache
	container.YahooClient = yahoo.NewClient(container.ClientDataRepo, log)
	if cfg.AlphaVantageAPIKey != "" {
		container.AlphaVantageClient = alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
		container.AlphaVantageClient.SetCacheRepository(container.ClientDataRepo)
	}

	providers := buildProviders(container, cfg.Enrichment.Providers, log)
	container.Enricher = enrichment.New(providers, cfg.Enrichment.Timeout, cfg.Enrichment.Concurrency, log)

	source, err := buildCatalogSource(container, cfg.Catalog, log)
	if err != nil {
		return fmt.Errorf("failed to build catalog source: %w", err)
	}
	container.CatalogLoader = catalog.NewLoader(source, cfg.Catalog.Fallback, log)

	container.Categories = screening.DefaultCategories()
	if cfg.Pipeline.CategoryMapPath != "" {
		categories, err := screening.LoadCategories(cfg.Pipeline.CategoryMapPath)
		if err != nil {
			return fmt.Errorf("failed to load category map: %w", err)
		}
		container.Categories = categories
		log.Info().
			Str("path", cfg.Pipeline.CategoryMapPath).
			Int("categories", len(categories)).
			Msg("Category map loaded")
	}

	container.Generator = buildGenerator(cfg.Narrative, log)
	container.Narrator = narrative.NewNarrator(container.Generator, cfg.Narrative.Timeout, cfg.Narrative.MaxTokens, log)

	container.RecommendationService = recommendation.NewService(
		container.CatalogLoader,
		container.Enricher,
		container.Narrator,
		container.YahooClient,
		container.Categories,
		cfg.Pipeline,
		log,
	)
	container.RecommendationHandler = recommendationhandlers.NewHandler(container.RecommendationService, cfg.RequestTimeout, log)

	log.Info().
		Str("strategy", cfg.Pipeline.Strategy).
		Str("catalog_source", source.Name()).
		Int("providers", len(providers)).
		Bool("narrative_enabled", container.Generator != nil).
		Msg("Services initialized")

	return nil
}

// buildProviders resolves provider names in configured order, skipping unconfigured ones
func buildProviders(container *Container, names []string, log zerolog.Logger) []domain.DetailProvider {
	providers := make([]domain.DetailProvider, 0, len(names))
	for _, name := range names {
		switch name {
		case "yahoo":
			providers = append(providers, container.YahooClient)
		case "alphavantage":
			if container.AlphaVantageClient == nil {
				log.Warn().Msg("Alpha Vantage provider requested but ALPHA_VANTAGE_API_KEY is not set, skipping")
				continue
			}
			providers = append(providers, container.AlphaVantageClient)
		}
	}
	return providers
}

func buildCatalogSource(container *Container, cfg config.CatalogConfig, log zerolog.Logger) (domain.CatalogSource, error) {
	switch cfg.Source {
	case config.CatalogSourceFile:
		return catalog.NewFileSource(cfg.Path), nil
	case config.CatalogSourceS3:
		downloader, err := catalog.NewS3Downloader(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return catalog.NewS3Source(downloader, cfg.S3Bucket, cfg.S3Key), nil
	case config.CatalogSourceListing:
		return catalog.NewListingSource(listing.NewClient(container.ClientDataRepo, log)), nil
	default:
		return catalog.NewEmbeddedSource(), nil
	}
}

// buildGenerator returns nil when the backend has no credentials; the narrator then
// reports upstream_error with placeholder text instead of calling out.
func buildGenerator(cfg config.NarrativeConfig, log zerolog.Logger) domain.TextGenerator {
	switch cfg.Backend {
	case config.NarrativeBackendOpenAI:
		if cfg.APIToken == "" && cfg.BaseURL == "" {
			log.Warn().Msg("Narrative backend openai has no token or base URL, narratives disabled")
			return nil
		}
		return openaicompat.NewClient(cfg.APIToken, cfg.Model, cfg.BaseURL, log)
	default:
		if cfg.APIToken == "" {
			log.Warn().Msg("MY_HF_TOKEN is not set, narratives disabled")
			return nil
		}
		return huggingface.NewClient(cfg.APIToken, cfg.Model, cfg.BaseURL, log)
	}
}
