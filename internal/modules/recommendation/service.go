// Package recommendation runs the preference pipeline:
// catalog, screening, enrichment, scoring, ranking and narrative.
package recommendation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/stockscout/internal/config"
	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/modules/scoring"
	"github.com/aristath/stockscout/internal/modules/screening"
	"github.com/aristath/stockscout/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NoMatchesMessage is returned with an empty result set
const NoMatchesMessage = "No stocks match your preferences. Try a broader industry or a lower minimum market cap."

const minEnrichmentBudget = 500 * time.Millisecond

// CatalogLoader loads the candidate universe
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Stock, error)
}

// StockEnricher fills in financial fields, preserving length and order
type StockEnricher interface {
	Enrich(ctx context.Context, stocks []domain.Stock) []domain.Stock
}

// Narrator produces advisory text. Implementations never fail.
type Narrator interface {
	Narrate(ctx context.Context, prefs domain.Preferences, top []domain.Recommendation) domain.Narrative
	AnalyzeStock(ctx context.Context, prefs domain.Preferences, stock domain.Stock) domain.Narrative
}

// Result is the outcome of one pipeline run
type Result struct {
	RunID           string                  `json:"runId"`
	Strategy        string                  `json:"strategy"`
	Recommendations []domain.Recommendation `json:"recommendations"`
	Narrative       *domain.Narrative       `json:"narrative,omitempty"`
	Message         string                  `json:"message,omitempty"`
}

// StockAnalysis is the single-stock deep analysis
type StockAnalysis struct {
	Analysis  string                 `json:"analysis"`
	Status    domain.NarrativeStatus `json:"status"`
	StockData domain.Stock           `json:"stockData"`
}

// Service runs the recommendation pipeline.
type Service struct {
	catalog    CatalogLoader
	enricher   StockEnricher
	narrator   Narrator
	quotes     domain.DetailProvider
	categories screening.Categories
	strategy   string
	limit      int

	narrativeReserve time.Duration
	log              zerolog.Logger
}

// NewService creates a pipeline service.
// quotes backs the single-stock endpoints and is usually the Yahoo client.
func NewService(
	catalog CatalogLoader,
	enricher StockEnricher,
	narrator Narrator,
	quotes domain.DetailProvider,
	categories screening.Categories,
	pipeline config.PipelineConfig,
	log zerolog.Logger,
) *Service {
	if categories == nil {
		categories = screening.DefaultCategories()
	}
	return &Service{
		catalog:    catalog,
		enricher:   enricher,
		narrator:   narrator,
		quotes:     quotes,
		categories: categories,
		strategy:   pipeline.Strategy,
		limit:      pipeline.ResultLimit,

		narrativeReserve: pipeline.NarrativeReserve,
		log:              log.With().Str("service", "recommendation").Logger(),
	}
}

// Strategy returns the configured ranking strategy.
func (s *Service) Strategy() string {
	return s.strategy
}

// Recommend runs the full pipeline for prefs.
// Stocks are prescreened before enrichment, keeping unknown market caps; the market-cap
// floor is enforced afterwards, once enrichment had a chance to resolve them.
func (s *Service) Recommend(ctx context.Context, prefs domain.Preferences) (*Result, error) {
	runID := uuid.New().String()
	log := s.log.With().Str("run_id", runID).Logger()
	defer utils.OperationTimer("recommend", log)()

	result := &Result{
		RunID:           runID,
		Strategy:        s.strategy,
		Recommendations: []domain.Recommendation{},
	}

	timer := utils.NewTimer("catalog", log)
	catalog, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	timer.Stop(len(catalog))

	timer = utils.NewTimer("screening", log)
	candidates := screening.Prescreen(catalog, prefs, s.categories)
	timer.Stop(len(candidates))

	if len(candidates) == 0 {
		log.Info().Str("industry", prefs.Industry).Msg("No candidates after screening")
		result.Message = NoMatchesMessage
		return result, nil
	}

	timer = utils.NewTimer("enrichment", log)
	enrichCtx, cancel := s.enrichmentContext(ctx)
	enriched := s.enricher.Enrich(enrichCtx, candidates)
	cancel()
	enriched = screening.FilterMarketCap(enriched, prefs.MinMarketCap)
	timer.Stop(len(enriched))

	if len(enriched) == 0 {
		result.Message = NoMatchesMessage
		return result, nil
	}

	timer = utils.NewTimer("ranking", log)
	scored := scoring.ScoreAll(enriched, prefs)
	if s.strategy == config.StrategyFilter {
		result.Recommendations = scoring.RankByMarketCap(scored, s.limit)
	} else {
		result.Recommendations = scoring.Rank(scored, s.limit)
	}
	timer.Stop(len(result.Recommendations))

	timer = utils.NewTimer("narrative", log)
	narrative := s.narrator.Narrate(ctx, prefs, result.Recommendations)
	result.Narrative = &narrative
	timer.Stop(len(narrative.Fields))

	log.Info().
		Int("catalog", len(catalog)).
		Int("candidates", len(candidates)).
		Int("recommendations", len(result.Recommendations)).
		Str("narrative", string(narrative.Status)).
		Msg("Recommendation run completed")

	return result, nil
}

// enrichmentContext bounds enrichment so the narrative keeps its reserve of the request
// deadline. Enrichment always gets at least minEnrichmentBudget.
func (s *Service) enrichmentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok || s.narrativeReserve <= 0 {
		return context.WithCancel(ctx)
	}

	budget := time.Until(deadline) - s.narrativeReserve
	if budget < minEnrichmentBudget {
		budget = minEnrichmentBudget
	}
	return context.WithTimeout(ctx, budget)
}

// Financials returns the quote-level fields for one symbol.
func (s *Service) Financials(ctx context.Context, symbol string) (*domain.Stock, error) {
	symbol = utils.NormalizeSymbol(symbol)
	details, err := s.quotes.Details(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch financials for %s: %w", symbol, err)
	}

	stock := domain.Stock{Symbol: symbol}.Merge(details)
	return &stock, nil
}

// AnalyzeStock fetches fresh data for stock and asks the narrator for a deep analysis.
// Upstream data wins over the caller's name and industry; the narrative may be a placeholder.
func (s *Service) AnalyzeStock(ctx context.Context, stock domain.Stock, prefs domain.Preferences) (*StockAnalysis, error) {
	data, err := s.Financials(ctx, stock.Symbol)
	if err != nil {
		return nil, err
	}

	if data.Name == "" {
		data.Name = strings.TrimSpace(stock.Name)
	}
	if data.Name == "" {
		data.Name = data.Symbol
	}
	if data.Industry == "" {
		data.Industry = strings.TrimSpace(stock.Industry)
	}

	narrative := s.narrator.AnalyzeStock(ctx, prefs, *data)

	return &StockAnalysis{
		Analysis:  narrative.Fields["analysis"],
		Status:    narrative.Status,
		StockData: *data,
	}, nil
}
