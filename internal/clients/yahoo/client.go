// Package yahoo provides a Yahoo Finance quoteSummary client.
//
// quoteSummary requires a session cookie and a matching crumb. The client picks up
// the cookie from the Finance home page, fetches a crumb once and reuses it until
// Yahoo rejects it with 401, at which point it fetches a new one and retries once.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aristath/stockscout/internal/clientdata"
	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/utils"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/"
	defaultCookieURL = "https://finance.yahoo.com"
	defaultCrumbURL  = "https://query1.finance.yahoo.com/v1/test/getcrumb"
	summaryModules   = "price,summaryDetail,financialData,balanceSheetHistory,summaryProfile"
	userAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Summary is the flattened subset of quoteSummary the recommender uses.
// Unknown values stay nil.
type Summary struct {
	Symbol             string   `msgpack:"symbol" json:"symbol"`
	Name               string   `msgpack:"name" json:"name,omitempty"`
	Industry           string   `msgpack:"industry" json:"industry,omitempty"`
	Sector             string   `msgpack:"sector" json:"sector,omitempty"`
	CurrentPrice       *float64 `msgpack:"current_price" json:"currentPrice,omitempty"`
	MarketCap          *float64 `msgpack:"market_cap" json:"marketCap,omitempty"`
	PriceChangePercent *float64 `msgpack:"price_change_pct" json:"priceChangePercent,omitempty"` // percent
	DividendYield      *float64 `msgpack:"dividend_yield" json:"dividendYield,omitempty"`        // percent
	Beta               *float64 `msgpack:"beta" json:"beta,omitempty"`
	PERatio            *float64 `msgpack:"pe_ratio" json:"peRatio,omitempty"`
	DebtToEquity       *float64 `msgpack:"debt_to_equity" json:"debtToEquity,omitempty"`
	ROE                *float64 `msgpack:"roe" json:"roe,omitempty"` // percent
	Cash               *float64 `msgpack:"cash" json:"cash,omitempty"`
	Equity             *float64 `msgpack:"equity" json:"equity,omitempty"`
}

// Client is a Yahoo Finance API client
type Client struct {
	baseURL   string
	cookieURL string
	crumbURL  string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository

	crumbMu sync.Mutex
	crumb   string
}

// NewClient creates a new Yahoo Finance client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:   defaultBaseURL,
		cookieURL: defaultCookieURL,
		crumbURL:  defaultCrumbURL,
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		log:       log.With().Str("client", "yahoo").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Name identifies the client as a detail provider.
func (c *Client) Name() string {
	return "yahoo"
}

// GetSummary fetches the summary for symbol.
// If the API fails, returns stale cached data if available (stale data > no data).
// Unknown symbols return an error matching domain.ErrNotFound and never fall back.
func (c *Client) GetSummary(ctx context.Context, symbol string) (*Summary, error) {
	yfSymbol := utils.NormalizeSymbol(symbol)

	var cached Summary
	if c.cacheRepo != nil {
		if found, err := c.cacheRepo.GetIfFresh("yahoo_summary", yfSymbol, &cached); err == nil && found {
			c.log.Debug().Str("symbol", yfSymbol).Msg("Yahoo cache hit")
			return &cached, nil
		}
	}

	summary, err := c.fetchSummary(ctx, yfSymbol)
	if err != nil {
		if c.cacheRepo != nil && !isNotFound(err) {
			if found, cacheErr := c.cacheRepo.Get("yahoo_summary", yfSymbol, &cached); cacheErr == nil && found {
				c.log.Warn().Err(err).Str("symbol", yfSymbol).Msg("API failed, using stale cached data")
				return &cached, nil
			}
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("yahoo_summary", yfSymbol, summary, clientdata.TTLYahooSummary); err != nil {
			c.log.Warn().Err(err).Str("symbol", yfSymbol).Msg("Failed to cache summary")
		}
	}

	return summary, nil
}

// Details resolves the summary into enrichment fields.
func (c *Client) Details(ctx context.Context, symbol string) (*domain.Details, error) {
	s, err := c.GetSummary(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &domain.Details{
		Name:               s.Name,
		Industry:           s.Industry,
		Sector:             s.Sector,
		MarketCap:          s.MarketCap,
		CurrentPrice:       s.CurrentPrice,
		PriceChangePercent: s.PriceChangePercent,
		Beta:               s.Beta,
		DividendYield:      s.DividendYield,
		PERatio:            s.PERatio,
		DebtToEquity:       s.DebtToEquity,
		ROE:                s.ROE,
		Cash:               s.Cash,
		Equity:             s.Equity,
	}, nil
}

// quoteSummaryResponse represents the response from the quoteSummary API
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (c *Client) fetchSummary(ctx context.Context, symbol string) (*Summary, error) {
	crumb, err := c.getCrumb(ctx, "")
	if err != nil {
		return nil, err
	}

	status, body, err := c.requestSummary(ctx, symbol, crumb)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		c.log.Debug().Str("symbol", symbol).Msg("Crumb rejected, refreshing")
		if crumb, err = c.getCrumb(ctx, crumb); err != nil {
			return nil, err
		}
		if status, body, err = c.requestSummary(ctx, symbol, crumb); err != nil {
			return nil, err
		}
	}

	if status == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo: %s: %w", symbol, domain.ErrNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", status, string(body))
	}

	return parseSummary(symbol, body)
}

func (c *Client) requestSummary(ctx context.Context, symbol, crumb string) (int, []byte, error) {
	params := url.Values{}
	params.Add("modules", summaryModules)
	params.Add("crumb", crumb)

	reqURL := c.baseURL + url.PathEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to fetch summary: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// getCrumb returns the session crumb, fetching one when none is held or when the
// held one equals rejected. Concurrent callers share a single fetch.
func (c *Client) getCrumb(ctx context.Context, rejected string) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumb != "" && c.crumb != rejected {
		return c.crumb, nil
	}
	c.crumb = ""

	// The home page sets the session cookie; its status does not matter
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cookieURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get yahoo session cookie: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.crumbURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create crumb request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Origin", c.cookieURL)
	req.Header.Set("Referer", c.cookieURL+"/")

	resp, err = c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get yahoo crumb: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read crumb: %w", err)
	}

	crumb := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || crumb == "" || strings.Contains(crumb, "<") {
		return "", fmt.Errorf("invalid yahoo crumb (status %d)", resp.StatusCode)
	}

	c.crumb = crumb
	c.log.Debug().Msg("Yahoo crumb acquired")
	return crumb, nil
}

func parseSummary(symbol string, body []byte) (*Summary, error) {
	var result quoteSummaryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if e := result.QuoteSummary.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo: %s: %w", symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Yahoo Finance API error: %s: %s", e.Code, e.Description)
	}

	if len(result.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: %s: %w", symbol, domain.ErrNotFound)
	}

	modules := result.QuoteSummary.Result[0]
	price := module(modules, "price")
	detail := module(modules, "summaryDetail")
	financial := module(modules, "financialData")
	profile := module(modules, "summaryProfile")

	summary := &Summary{
		Symbol:             symbol,
		Name:               getString(price, "longName", getString(price, "shortName", "")),
		Industry:           getString(profile, "industry", ""),
		Sector:             getString(profile, "sector", ""),
		CurrentPrice:       firstNonNil(getRaw(financial, "currentPrice"), getRaw(price, "regularMarketPrice")),
		MarketCap:          getRaw(price, "marketCap"),
		PriceChangePercent: scale(getRaw(price, "regularMarketChangePercent"), 100),
		DividendYield:      scale(getRaw(detail, "dividendYield"), 100),
		Beta:               getRaw(detail, "beta"),
		PERatio:            getRaw(detail, "trailingPE"),
		DebtToEquity:       getRaw(financial, "debtToEquity"),
		ROE:                scale(getRaw(financial, "returnOnEquity"), 100),
		Cash:               getRaw(financial, "totalCash"),
	}

	if sheets := module(modules, "balanceSheetHistory"); sheets != nil {
		if statements, ok := sheets["balanceSheetStatements"].([]interface{}); ok && len(statements) > 0 {
			if latest, ok := statements[0].(map[string]interface{}); ok {
				summary.Equity = getRaw(latest, "totalStockholderEquity")
				if summary.Cash == nil {
					summary.Cash = getRaw(latest, "cash")
				}
			}
		}
	}

	return summary, nil
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, domain.ErrNotFound)
}

// Helper functions to safely extract values from map

func module(modules map[string]json.RawMessage, name string) map[string]interface{} {
	raw, ok := modules[name]
	if !ok {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// getRaw reads {"raw": x, "fmt": "..."} values as well as bare numbers.
// Empty objects ({}) are Yahoo's way of saying unknown.
func getRaw(m map[string]interface{}, key string) *float64 {
	if m == nil {
		return nil
	}
	val, ok := m[key]
	if !ok || val == nil {
		return nil
	}
	switch v := val.(type) {
	case float64:
		return &v
	case map[string]interface{}:
		if raw, ok := v["raw"].(float64); ok {
			return &raw
		}
	}
	return nil
}

func getString(m map[string]interface{}, key string, defaultVal string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v * factor)
}
