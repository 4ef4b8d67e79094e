// Package listing scrapes the S&P 500 constituents table used as the live
// "active listings" catalog source.
package listing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aristath/stockscout/internal/clientdata"
	"github.com/aristath/stockscout/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	cacheKey   = "sp500"
	userAgent  = "stockscout/1.0 (constituents scraper)"
)

// Entry is one row of the constituents table.
type Entry struct {
	Symbol   string `msgpack:"symbol"`
	Name     string `msgpack:"name"`
	Sector   string `msgpack:"sector"`
	Industry string `msgpack:"industry"`
}

// Client fetches and parses the constituents table.
type Client struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
	cacheRepo  *clientdata.Repository
}

// NewClient creates a new listing client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		url: defaultURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:       log.With().Str("client", "listing").Logger(),
		cacheRepo: cacheRepo,
	}
}

// Constituents returns the current constituents.
// If the fetch fails, returns stale cached data if available.
func (c *Client) Constituents(ctx context.Context) ([]Entry, error) {
	var cached []Entry
	if c.cacheRepo != nil {
		if found, err := c.cacheRepo.GetIfFresh("listing", cacheKey, &cached); err == nil && found && len(cached) > 0 {
			c.log.Debug().Int("count", len(cached)).Msg("Listing cache hit")
			return cached, nil
		}
	}

	entries, err := c.fetch(ctx)
	if err != nil {
		if c.cacheRepo != nil {
			if found, cacheErr := c.cacheRepo.Get("listing", cacheKey, &cached); cacheErr == nil && found && len(cached) > 0 {
				c.log.Warn().Err(err).Msg("Listing fetch failed, using stale cached data")
				return cached, nil
			}
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("listing", cacheKey, entries, clientdata.TTLListing); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache listing")
		}
	}

	return entries, nil
}

// Stocks returns the constituents as catalog stocks with unknown market cap.
func (c *Client) Stocks(ctx context.Context) ([]domain.Stock, error) {
	entries, err := c.Constituents(ctx)
	if err != nil {
		return nil, err
	}

	stocks := make([]domain.Stock, 0, len(entries))
	for _, e := range entries {
		industry := e.Industry
		if industry == "" {
			industry = e.Sector
		}
		stocks = append(stocks, domain.Stock{
			Symbol:   e.Symbol,
			Name:     e.Name,
			Industry: industry,
			Sector:   e.Sector,
		})
	}
	return stocks, nil
}

func (c *Client) fetch(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing html: %w", err)
	}

	entries := parseConstituents(doc)
	if len(entries) == 0 {
		return nil, fmt.Errorf("listing page contained no constituents")
	}

	c.log.Info().Int("count", len(entries)).Msg("Fetched constituents")
	return entries, nil
}

// parseConstituents reads table#constituents, locating columns by header text.
func parseConstituents(doc *goquery.Document) []Entry {
	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		return nil
	}

	columns := map[string]int{}
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		columns[strings.ToLower(strings.TrimSpace(th.Text()))] = i
	})

	symbolCol, ok := columns["symbol"]
	if !ok {
		return nil
	}
	nameCol := columnIndex(columns, "security", "company", "name")
	sectorCol := columnIndex(columns, "gics sector", "sector")
	industryCol := columnIndex(columns, "gics sub-industry", "sub-industry", "industry")

	var entries []Entry
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() <= symbolCol {
			return
		}
		cell := func(i int) string {
			if i < 0 || i >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		symbol := cell(symbolCol)
		if symbol == "" {
			return
		}
		entries = append(entries, Entry{
			Symbol:   symbol,
			Name:     cell(nameCol),
			Sector:   cell(sectorCol),
			Industry: cell(industryCol),
		})
	})

	return entries
}

func columnIndex(columns map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := columns[n]; ok {
			return i
		}
	}
	return -1
}
