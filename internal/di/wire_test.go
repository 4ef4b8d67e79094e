package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/stockscout/internal/clients/huggingface"
	"github.com/aristath/stockscout/internal/clients/openaicompat"
	"github.com/aristath/stockscout/internal/config"
	"github.com/aristath/stockscout/internal/modules/catalog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:        t.TempDir(),
		RequestTimeout: 10 * time.Second,
		Enrichment: config.EnrichmentConfig{
			Providers:   []string{"yahoo", "alphavantage"},
			Timeout:     4 * time.Second,
			Concurrency: 5,
		},
		Catalog: config.CatalogConfig{
			Source:   config.CatalogSourceEmbedded,
			Fallback: config.CatalogFallbackMock,
		},
		Narrative: config.NarrativeConfig{
			Backend:   config.NarrativeBackendHuggingFace,
			MaxTokens: 400,
			Timeout:   8 * time.Second,
		},
		Pipeline: config.PipelineConfig{
			Strategy:    config.StrategyScore,
			ResultLimit: 5,
		},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	assert.NotNil(t, container.ClientDataDB)
	assert.NotNil(t, container.ClientDataRepo)
	assert.NotNil(t, container.YahooClient)
	assert.NotNil(t, container.CatalogLoader)
	assert.NotNil(t, container.Enricher)
	assert.NotNil(t, container.Narrator)
	assert.NotNil(t, container.RecommendationService)
	assert.NotNil(t, container.RecommendationHandler)
	assert.NotEmpty(t, container.Categories)

	// No credentials configured
	assert.Nil(t, container.AlphaVantageClient)
	assert.Nil(t, container.Generator)

	require.NotNil(t, container.Jobs)
	assert.NotNil(t, container.Jobs.CacheCleanup)
	assert.NotNil(t, container.Jobs.NarrativeWarmup)

	assert.FileExists(t, filepath.Join(cfg.DataDir, "client_data.db"))
	assert.Equal(t, config.StrategyScore, container.RecommendationService.Strategy())
}

func TestWire_CleanupJobRunsOnFreshDatabase(t *testing.T) {
	container, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NoError(t, container.Jobs.CacheCleanup.Run())
}

func TestWire_EmbeddedCatalogLoads(t *testing.T) {
	container, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	stocks, err := container.CatalogLoader.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, stocks)
}

func TestWire_CategoryMapFromFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("biotech:\n  - biotechnology\n  - life sciences\n"), 0644))
	cfg.Pipeline.CategoryMapPath = path

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.Len(t, container.Categories, 1)
	assert.Equal(t, []string{"biotechnology", "life sciences"}, container.Categories["biotech"])
}

func TestWire_InvalidCategoryMapFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.CategoryMapPath = filepath.Join(t.TempDir(), "missing.yaml")

	container, err := Wire(cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestWire_AlphaVantageEnabledWithKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.AlphaVantageAPIKey = "demo"

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.AlphaVantageClient)
	providers := buildProviders(container, cfg.Enrichment.Providers, zerolog.Nop())
	require.Len(t, providers, 2)
	assert.Equal(t, "yahoo", providers[0].Name())
	assert.Equal(t, "alphavantage", providers[1].Name())
}

func TestBuildProviders_OrderAndSkip(t *testing.T) {
	container, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	providers := buildProviders(container, []string{"alphavantage", "yahoo"}, zerolog.Nop())
	require.Len(t, providers, 1)
	assert.Equal(t, "yahoo", providers[0].Name())
}

func TestBuildCatalogSource(t *testing.T) {
	container, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	tests := []struct {
		name   string
		cfg    config.CatalogConfig
		expect any
	}{
		{"embedded", config.CatalogConfig{Source: config.CatalogSourceEmbedded}, &catalog.EmbeddedSource{}},
		{"file", config.CatalogConfig{Source: config.CatalogSourceFile, Path: "/tmp/catalog.json"}, &catalog.FileSource{}},
		{"listing", config.CatalogConfig{Source: config.CatalogSourceListing}, &catalog.ListingSource{}},
		{"s3", config.CatalogConfig{
			Source:            config.CatalogSourceS3,
			S3Bucket:          "bucket",
			S3Key:             "catalog.json",
			S3Region:          "us-east-1",
			S3AccessKeyID:     "key",
			S3SecretAccessKey: "secret",
		}, &catalog.S3Source{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := buildCatalogSource(container, tt.cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.IsType(t, tt.expect, source)
		})
	}
}

func TestBuildGenerator(t *testing.T) {
	log := zerolog.Nop()

	assert.Nil(t, buildGenerator(config.NarrativeConfig{Backend: config.NarrativeBackendHuggingFace}, log))
	assert.Nil(t, buildGenerator(config.NarrativeConfig{Backend: config.NarrativeBackendOpenAI}, log))

	hf := buildGenerator(config.NarrativeConfig{Backend: config.NarrativeBackendHuggingFace, APIToken: "hf_x", Model: "m"}, log)
	assert.IsType(t, &huggingface.Client{}, hf)

	oa := buildGenerator(config.NarrativeConfig{Backend: config.NarrativeBackendOpenAI, BaseURL: "http://localhost:8080/v1", Model: "m"}, log)
	assert.IsType(t, &openaicompat.Client{}, oa)
}
