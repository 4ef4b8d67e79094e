// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/stockscout/internal/utils"
	"github.com/joho/godotenv"
)

// Pipeline strategies
const (
	StrategyScore  = "score"  // score-and-rank, ordered by fit score
	StrategyFilter = "filter" // filter-only, ordered by market cap
)

// Catalog sources and fallbacks
const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourceS3       = "s3"
	CatalogSourceListing  = "listing"

	CatalogFallbackMock = "mock"
	CatalogFallbackFail = "fail"
)

// Narrative backends
const (
	NarrativeBackendHuggingFace = "huggingface"
	NarrativeBackendOpenAI      = "openai"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the client data cache (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	RequestTimeout time.Duration // Deadline applied to every pipeline request

	AlphaVantageAPIKey string
	Enrichment         EnrichmentConfig
	Catalog            CatalogConfig
	Narrative          NarrativeConfig
	Pipeline           PipelineConfig
}

// EnrichmentConfig controls the detail enricher fan-out
type EnrichmentConfig struct {
	Providers   []string      // Ordered provider names (yahoo, alphavantage)
	Timeout     time.Duration // Per-stock deadline
	Concurrency int           // Max in-flight stocks
}

// CatalogConfig selects where the candidate universe comes from
type CatalogConfig struct {
	Source   string
	Path     string // JSON snapshot path for the file source
	Fallback string

	S3Bucket          string
	S3Key             string
	S3Region          string
	S3Endpoint        string // Custom endpoint for R2 or MinIO
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// NarrativeConfig configures the text-generation backend
type NarrativeConfig struct {
	Backend   string
	APIToken  string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// PipelineConfig selects the ranking strategy
type PipelineConfig struct {
	Strategy        string
	ResultLimit     int
	CategoryMapPath string // Optional YAML file replacing the built-in category map

	// NarrativeReserve is kept back from the request deadline for the narrative;
	// enrichment stops early rather than eat into it
	NarrativeReserve time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	strategy := strings.ToLower(getEnv("PIPELINE_STRATEGY", StrategyScore))

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("PORT", 3001),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),

		AlphaVantageAPIKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),

		Enrichment: EnrichmentConfig{
			Providers:   utils.ParseCSV(strings.ToLower(getEnv("ENRICH_PROVIDERS", "yahoo,alphavantage"))),
			Timeout:     getEnvAsDuration("ENRICH_TIMEOUT", 4*time.Second),
			Concurrency: getEnvAsInt("ENRICH_CONCURRENCY", 5),
		},

		Catalog: CatalogConfig{
			Source:            strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceEmbedded)),
			Path:              getEnv("CATALOG_PATH", ""),
			Fallback:          strings.ToLower(getEnv("CATALOG_FALLBACK", CatalogFallbackMock)),
			S3Bucket:          getEnv("CATALOG_S3_BUCKET", ""),
			S3Key:             getEnv("CATALOG_S3_KEY", "catalog/sp500.json"),
			S3Region:          getEnv("CATALOG_S3_REGION", "auto"),
			S3Endpoint:        getEnv("CATALOG_S3_ENDPOINT", ""),
			S3AccessKeyID:     getEnv("CATALOG_S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: getEnv("CATALOG_S3_SECRET_ACCESS_KEY", ""),
		},

		Narrative: NarrativeConfig{
			Backend:   strings.ToLower(getEnv("NARRATIVE_BACKEND", NarrativeBackendHuggingFace)),
			APIToken:  getEnv("MY_HF_TOKEN", ""),
			Model:     getEnv("NARRATIVE_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
			BaseURL:   getEnv("NARRATIVE_BASE_URL", ""),
			MaxTokens: getEnvAsInt("NARRATIVE_MAX_TOKENS", 400),
			Timeout:   getEnvAsDuration("NARRATIVE_TIMEOUT", 8*time.Second),
		},

		Pipeline: PipelineConfig{
			Strategy:        strategy,
			ResultLimit:     getEnvAsInt("RESULT_LIMIT", defaultResultLimit(strategy)),
			CategoryMapPath: getEnv("CATEGORY_MAP_PATH", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultResultLimit is 5 for score ordering and 20 for the filter-only listing
func defaultResultLimit(strategy string) int {
	if strategy == StrategyFilter {
		return 20
	}
	return 5
}

// Validate checks that enum-like settings hold known values
func (c *Config) Validate() error {
	switch c.Pipeline.Strategy {
	case StrategyScore, StrategyFilter:
	default:
		return fmt.Errorf("unknown PIPELINE_STRATEGY %q (expected %s or %s)", c.Pipeline.Strategy, StrategyScore, StrategyFilter)
	}

	switch c.Catalog.Source {
	case CatalogSourceEmbedded, CatalogSourceListing:
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=file")
		}
	case CatalogSourceS3:
		if c.Catalog.S3Bucket == "" {
			return fmt.Errorf("CATALOG_S3_BUCKET is required when CATALOG_SOURCE=s3")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	switch c.Catalog.Fallback {
	case CatalogFallbackMock, CatalogFallbackFail:
	default:
		return fmt.Errorf("unknown CATALOG_FALLBACK %q", c.Catalog.Fallback)
	}

	switch c.Narrative.Backend {
	case NarrativeBackendHuggingFace, NarrativeBackendOpenAI:
	default:
		return fmt.Errorf("unknown NARRATIVE_BACKEND %q", c.Narrative.Backend)
	}

	for _, p := range c.Enrichment.Providers {
		if p != "yahoo" && p != "alphavantage" {
			return fmt.Errorf("unknown enrichment provider %q", p)
		}
	}

	if c.Enrichment.Concurrency < 1 {
		c.Enrichment.Concurrency = 1
	}

	// Narrative must finish inside the request deadline
	if c.Narrative.Timeout > c.RequestTimeout {
		c.Narrative.Timeout = c.RequestTimeout
	}
	c.Pipeline.NarrativeReserve = c.Narrative.Timeout

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("8s") or plain milliseconds ("8000")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
