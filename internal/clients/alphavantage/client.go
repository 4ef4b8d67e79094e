// Package alphavantage provides a client for the Alpha Vantage fundamentals API.
// The free tier allows 25 requests per day, so responses are cached in memory
// and, when a repository is attached, persistently in client_data.db.
package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/aristath/stockscout/internal/clientdata"
	"github.com/aristath/stockscout/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL    = "https://www.alphavantage.co/query"
	defaultDailyLimit = 25
)

// CacheTTL controls how long in-memory responses stay fresh.
type CacheTTL struct {
	Fundamentals time.Duration
	PriceData    time.Duration
}

// DefaultCacheTTL returns the default in-memory TTLs.
func DefaultCacheTTL() CacheTTL {
	return CacheTTL{
		Fundamentals: 24 * time.Hour,
		PriceData:    15 * time.Minute,
	}
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// Client is the Alpha Vantage API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
	cacheRepo  *clientdata.Repository

	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
	cacheTTL CacheTTL

	rateMu       sync.Mutex
	dailyLimit   int
	requestCount int
	resetAt      time.Time
}

// NewClient creates a new Alpha Vantage client.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        log.With().Str("client", "alphavantage").Logger(),
		cache:      make(map[string]cacheEntry),
		cacheTTL:   DefaultCacheTTL(),
		dailyLimit: defaultDailyLimit,
		resetAt:    nextMidnightUTC(),
	}
}

// SetCacheRepository attaches the persistent client data cache.
// A nil repository disables persistent caching.
func (c *Client) SetCacheRepository(repo *clientdata.Repository) {
	c.cacheRepo = repo
}

// Name identifies the client as a detail provider.
func (c *Client) Name() string {
	return "alphavantage"
}

// GetCompanyOverview fetches the OVERVIEW payload for symbol.
func (c *Client) GetCompanyOverview(ctx context.Context, symbol string) (*CompanyOverview, error) {
	params := map[string]string{"symbol": symbol}
	cacheKey := buildCacheKey("OVERVIEW", params)

	if cached, ok := c.getFromCache(cacheKey); ok {
		return cached.(*CompanyOverview), nil
	}

	var persisted CompanyOverview
	if c.cacheRepo != nil {
		if found, err := c.cacheRepo.GetIfFresh("alphavantage_overview", symbol, &persisted); err == nil && found {
			c.setCache(cacheKey, &persisted, c.cacheTTL.Fundamentals)
			return &persisted, nil
		}
	}

	body, err := c.doRequest(ctx, "OVERVIEW", params)
	if err != nil {
		return c.staleOverview(symbol, err)
	}

	overview, err := parseCompanyOverview(body)
	if err != nil {
		return nil, err
	}
	if overview.Symbol == "" {
		return nil, ErrSymbolNotFound{Symbol: symbol}
	}

	c.setCache(cacheKey, overview, c.cacheTTL.Fundamentals)
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("alphavantage_overview", symbol, overview, clientdata.TTLAVOverview); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist overview")
		}
	}

	return overview, nil
}

// staleOverview falls back to an expired persistent entry when the API fails.
func (c *Client) staleOverview(symbol string, apiErr error) (*CompanyOverview, error) {
	if c.cacheRepo != nil {
		var stale CompanyOverview
		if found, err := c.cacheRepo.Get("alphavantage_overview", symbol, &stale); err == nil && found {
			c.log.Warn().Err(apiErr).Str("symbol", symbol).Msg("API failed, using stale cached overview")
			return &stale, nil
		}
	}
	return nil, apiErr
}

// GetGlobalQuote fetches the GLOBAL_QUOTE payload for symbol.
func (c *Client) GetGlobalQuote(ctx context.Context, symbol string) (*GlobalQuote, error) {
	params := map[string]string{"symbol": symbol}
	cacheKey := buildCacheKey("GLOBAL_QUOTE", params)

	if cached, ok := c.getFromCache(cacheKey); ok {
		return cached.(*GlobalQuote), nil
	}

	var persisted GlobalQuote
	if c.cacheRepo != nil {
		if found, err := c.cacheRepo.GetIfFresh("alphavantage_quote", symbol, &persisted); err == nil && found {
			c.setCache(cacheKey, &persisted, c.cacheTTL.PriceData)
			return &persisted, nil
		}
	}

	body, err := c.doRequest(ctx, "GLOBAL_QUOTE", params)
	if err != nil {
		if c.cacheRepo != nil {
			if found, cacheErr := c.cacheRepo.Get("alphavantage_quote", symbol, &persisted); cacheErr == nil && found {
				c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached quote")
				return &persisted, nil
			}
		}
		return nil, err
	}

	quote, err := parseGlobalQuote(body)
	if err != nil {
		return nil, err
	}
	if quote.Symbol == "" {
		return nil, ErrSymbolNotFound{Symbol: symbol}
	}

	c.setCache(cacheKey, quote, c.cacheTTL.PriceData)
	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("alphavantage_quote", symbol, quote, clientdata.TTLAVQuote); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist quote")
		}
	}

	return quote, nil
}

// Details resolves overview and quote fields for symbol.
// Either request may fail; whatever succeeded is returned. Both failing is an error.
func (c *Client) Details(ctx context.Context, symbol string) (*domain.Details, error) {
	overview, overviewErr := c.GetCompanyOverview(ctx, symbol)

	// A spent budget will fail the quote too; skip the second call
	if errors.Is(overviewErr, domain.ErrRateLimited) {
		return nil, overviewErr
	}

	quote, quoteErr := c.GetGlobalQuote(ctx, symbol)

	if overviewErr != nil && quoteErr != nil {
		return nil, fmt.Errorf("alpha vantage details for %s: %w", symbol, overviewErr)
	}

	details := &domain.Details{}
	if overview != nil {
		details.Name = overview.Name
		details.Industry = titleCase(overview.Industry)
		details.Sector = titleCase(overview.Sector)
		if overview.MarketCapitalization > 0 {
			details.MarketCap = domain.Float(float64(overview.MarketCapitalization))
		}
		details.PERatio = overview.PERatio
		details.Beta = overview.Beta
		details.DividendYield = percent(overview.DividendYield)
		details.ROE = percent(overview.ReturnOnEquityTTM)
	}
	if quote != nil {
		if quote.Price > 0 {
			details.CurrentPrice = domain.Float(quote.Price)
		}
		details.PriceChangePercent = domain.Float(quote.ChangePercent)
	}

	return details, nil
}

// doRequest performs a rate-limited GET against the query endpoint.
func (c *Client) doRequest(ctx context.Context, function string, params map[string]string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrInvalidAPIKey{}
	}
	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("function", function)
	query.Set("apikey", c.apiKey)
	for k, v := range params {
		query.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.log.Debug().Str("function", function).Str("symbol", params["symbol"]).Msg("Alpha Vantage request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := c.checkAPIError(body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkAPIError detects the throttle and error envelopes Alpha Vantage returns with HTTP 200.
func (c *Client) checkAPIError(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		if bytes.Contains(trimmed, []byte("Thank you for using Alpha Vantage")) {
			return ErrRateLimitExceeded{Message: string(trimmed)}
		}
		return nil
	}

	var envelope struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil
	}

	switch {
	case envelope.Note != "":
		return ErrRateLimitExceeded{Message: envelope.Note}
	case envelope.Information != "":
		if strings.Contains(strings.ToLower(envelope.Information), "api key") &&
			strings.Contains(strings.ToLower(envelope.Information), "invalid") {
			return ErrInvalidAPIKey{}
		}
		return ErrRateLimitExceeded{Message: envelope.Information}
	case envelope.ErrorMessage != "":
		return ErrAPIError{Message: envelope.ErrorMessage}
	}

	return nil
}

// checkRateLimit consumes one request from the daily budget.
func (c *Client) checkRateLimit() error {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	if time.Now().After(c.resetAt) {
		c.requestCount = 0
		c.resetAt = nextMidnightUTC()
	}

	if c.requestCount >= c.dailyLimit {
		return ErrRateLimitExceeded{}
	}

	c.requestCount++
	return nil
}

// GetRemainingRequests returns how many requests are left today. /health reports it.
func (c *Client) GetRemainingRequests() int {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	if time.Now().After(c.resetAt) {
		return c.dailyLimit
	}
	return c.dailyLimit - c.requestCount
}

func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}

func (c *Client) getFromCache(key string) (interface{}, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) setCache(key string, data interface{}, ttl time.Duration) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache[key] = cacheEntry{data: data, expiresAt: time.Now().Add(ttl)}
}

// buildCacheKey renders function and params in a stable order, never including the key.
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "apikey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(function)
	for _, k := range keys {
		sb.WriteString(":")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
	}
	return sb.String()
}

// percent converts a fraction to a percentage.
func percent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v * 100)
}

// titleCase turns "ELECTRONIC COMPUTERS" into "Electronic Computers".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
