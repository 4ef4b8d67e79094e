package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aristath/stockscout/internal/clientdata"
	"github.com/aristath/stockscout/internal/domain"
	testingpkg "github.com/aristath/stockscout/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overviewJSON = `{
	"Symbol": "IBM",
	"AssetType": "Common Stock",
	"Name": "International Business Machines",
	"Exchange": "NYSE",
	"Currency": "USD",
	"Sector": "TECHNOLOGY",
	"Industry": "COMPUTER & OFFICE EQUIPMENT",
	"MarketCapitalization": "125000000000",
	"PERatio": "20.5",
	"EPS": "9.05",
	"DividendYield": "0.0485",
	"ReturnOnEquityTTM": "0.312",
	"52WeekHigh": "200.00",
	"52WeekLow": "120.00",
	"Beta": "0.95"
}`

const quoteJSON = `{
	"Global Quote": {
		"01. symbol": "IBM",
		"02. open": "185.00",
		"03. high": "186.50",
		"04. low": "184.50",
		"05. price": "186.20",
		"06. volume": "3456789",
		"07. latest trading day": "2024-01-15",
		"08. previous close": "185.00",
		"09. change": "1.20",
		"10. change percent": "0.65%"
	}
}`

// newTestServer serves OVERVIEW and GLOBAL_QUOTE bodies and counts requests.
func newTestServer(t *testing.T, overview, quote string, hits *atomic.Int32) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("function") {
		case "OVERVIEW":
			w.Write([]byte(overview))
		case "GLOBAL_QUOTE":
			w.Write([]byte(quote))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// TestNewClient tests client creation.
func TestNewClient(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	assert.NotNil(t, client)
	assert.Equal(t, "test-key", client.apiKey)
	assert.Equal(t, 25, client.GetRemainingRequests())
	assert.Equal(t, "alphavantage", client.Name())
}

// TestRateLimiting tests the rate limiting functionality.
func TestRateLimiting(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	for i := 0; i < 25; i++ {
		remaining := client.GetRemainingRequests()
		assert.Equal(t, 25-i, remaining)
		err := client.checkRateLimit()
		require.NoError(t, err)
	}

	// 26th request should fail
	err := client.checkRateLimit()
	assert.Error(t, err)
	assert.IsType(t, ErrRateLimitExceeded{}, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

// TestDailyBudgetResetsAfterMidnight tests that a passed reset time restores the budget.
func TestDailyBudgetResetsAfterMidnight(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	for i := 0; i < 10; i++ {
		_ = client.checkRateLimit()
	}
	assert.Equal(t, 15, client.GetRemainingRequests())

	client.resetAt = time.Now().Add(-time.Second)
	assert.Equal(t, 25, client.GetRemainingRequests())
	require.NoError(t, client.checkRateLimit())
	assert.Equal(t, 24, client.GetRemainingRequests())
}

// TestCaching tests the cache functionality.
func TestCaching(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	client.setCache("test-key", "test data", time.Hour)

	cached, ok := client.getFromCache("test-key")
	assert.True(t, ok)
	assert.Equal(t, "test data", cached)

	_, ok = client.getFromCache("non-existent")
	assert.False(t, ok)
}

// TestCacheExpiration tests cache expiration.
func TestCacheExpiration(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	client.setCache("test-key", "test data", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := client.getFromCache("test-key")
	assert.False(t, ok)
}

// TestBuildCacheKey tests cache key generation.
func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		function string
		params   map[string]string
	}{
		{
			name:     "Simple function",
			function: "OVERVIEW",
			params:   map[string]string{"symbol": "IBM"},
		},
		{
			name:     "Multiple params",
			function: "GLOBAL_QUOTE",
			params: map[string]string{
				"symbol":   "AAPL",
				"datatype": "json",
			},
		},
		{
			name:     "With apikey excluded",
			function: "OVERVIEW",
			params: map[string]string{
				"symbol": "MSFT",
				"apikey": "secret",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := buildCacheKey(tt.function, tt.params)
			assert.Contains(t, key, tt.function)
			assert.NotContains(t, key, "apikey=")
			assert.NotContains(t, key, "secret")
		})
	}

	// Parameter order must not matter
	a := buildCacheKey("X", map[string]string{"a": "1", "b": "2"})
	b := buildCacheKey("X", map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a, b)
}

// TestParseFloat64 tests float parsing.
func TestParseFloat64(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"123.45", 123.45},
		{"0", 0},
		{"None", 0},
		{"", 0},
		{"null", 0},
		{"-", 0},
		{"50.5%", 50.5},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseFloat64(tt.input))
		})
	}
}

// TestParseFloat64Ptr tests nullable float parsing.
func TestParseFloat64Ptr(t *testing.T) {
	tests := []struct {
		input    string
		isNil    bool
		expected float64
	}{
		{"123.45", false, 123.45},
		{"0", false, 0},
		{"None", true, 0},
		{"", true, 0},
		{"null", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseFloat64Ptr(tt.input)
			if tt.isNil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.Equal(t, tt.expected, *result)
			}
		})
	}
}

// TestParseInt64 tests integer parsing.
func TestParseInt64(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"12345", 12345},
		{"0", 0},
		{"None", 0},
		{"", 0},
		{"1.5E10", 15000000000},
		{"123.45", 123},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseInt64(tt.input))
		})
	}
}

// TestParseGlobalQuote tests global quote parsing.
func TestParseGlobalQuote(t *testing.T) {
	quote, err := parseGlobalQuote([]byte(quoteJSON))
	require.NoError(t, err)

	assert.Equal(t, "IBM", quote.Symbol)
	assert.Equal(t, 185.0, quote.Open)
	assert.Equal(t, 186.5, quote.High)
	assert.Equal(t, 184.5, quote.Low)
	assert.Equal(t, 186.2, quote.Price)
	assert.Equal(t, int64(3456789), quote.Volume)
	assert.Equal(t, 185.0, quote.PreviousClose)
	assert.Equal(t, 1.2, quote.Change)
	assert.Equal(t, 0.65, quote.ChangePercent)
}

// TestParseCompanyOverview tests company overview parsing.
func TestParseCompanyOverview(t *testing.T) {
	overview, err := parseCompanyOverview([]byte(overviewJSON))
	require.NoError(t, err)

	assert.Equal(t, "IBM", overview.Symbol)
	assert.Equal(t, "Common Stock", overview.AssetType)
	assert.Equal(t, "International Business Machines", overview.Name)
	assert.Equal(t, "NYSE", overview.Exchange)
	assert.Equal(t, int64(125000000000), overview.MarketCapitalization)
	require.NotNil(t, overview.PERatio)
	assert.Equal(t, 20.5, *overview.PERatio)
	require.NotNil(t, overview.Beta)
	assert.Equal(t, 0.95, *overview.Beta)
	require.NotNil(t, overview.FiftyTwoWeekHigh)
	assert.Equal(t, 200.0, *overview.FiftyTwoWeekHigh)
	assert.Nil(t, overview.ProfitMargin)
}

// TestErrorTypes tests error type implementations.
func TestErrorTypes(t *testing.T) {
	t.Run("ErrRateLimitExceeded", func(t *testing.T) {
		err := ErrRateLimitExceeded{}
		assert.Contains(t, err.Error(), "rate limit")
	})

	t.Run("ErrInvalidAPIKey", func(t *testing.T) {
		err := ErrInvalidAPIKey{}
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("ErrSymbolNotFound", func(t *testing.T) {
		err := ErrSymbolNotFound{Symbol: "XYZ"}
		assert.Contains(t, err.Error(), "XYZ")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

// TestDefaultCacheTTL tests default TTL values.
func TestDefaultCacheTTL(t *testing.T) {
	ttl := DefaultCacheTTL()

	assert.Equal(t, 24*time.Hour, ttl.Fundamentals)
	assert.Equal(t, 15*time.Minute, ttl.PriceData)

	client := NewClient("test-key", zerolog.Nop())
	assert.Equal(t, ttl, client.cacheTTL)
}

// TestAPIErrorDetection tests detection of API error responses.
func TestAPIErrorDetection(t *testing.T) {
	client := NewClient("test-key", zerolog.Nop())

	tests := []struct {
		name        string
		body        string
		expectError bool
		errorType   error
	}{
		{
			name:        "Rate limit note",
			body:        `{"Note": "API call frequency is limited"}`,
			expectError: true,
			errorType:   ErrRateLimitExceeded{},
		},
		{
			name:        "Information throttle",
			body:        `{"Information": "Our standard API rate limit is 25 requests per day."}`,
			expectError: true,
			errorType:   ErrRateLimitExceeded{},
		},
		{
			name:        "Invalid key",
			body:        `{"Information": "The **demo** API key is for demo purposes only. Please claim your free API key; the api key provided is invalid."}`,
			expectError: true,
			errorType:   ErrInvalidAPIKey{},
		},
		{
			name:        "Error message",
			body:        `{"Error Message": "Invalid symbol"}`,
			expectError: true,
			errorType:   ErrAPIError{},
		},
		{
			name:        "Thank you message",
			body:        `Thank you for using Alpha Vantage!`,
			expectError: true,
			errorType:   ErrRateLimitExceeded{},
		},
		{
			name:        "Valid response",
			body:        `{"Symbol": "IBM"}`,
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.checkAPIError([]byte(tt.body))
			if tt.expectError {
				require.Error(t, err)
				assert.IsType(t, tt.errorType, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestNextMidnightUTC tests the midnight calculation.
func TestNextMidnightUTC(t *testing.T) {
	midnight := nextMidnightUTC()

	now := time.Now().UTC()
	assert.True(t, midnight.After(now))
	assert.Equal(t, 0, midnight.Hour())
	assert.Equal(t, 0, midnight.Minute())
	assert.Equal(t, 0, midnight.Second())
}

func TestDetails(t *testing.T) {
	server := newTestServer(t, overviewJSON, quoteJSON, nil)

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL

	details, err := client.Details(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, "International Business Machines", details.Name)
	assert.Equal(t, "Computer & Office Equipment", details.Industry)
	assert.Equal(t, "Technology", details.Sector)
	require.NotNil(t, details.MarketCap)
	assert.Equal(t, 125e9, *details.MarketCap)
	require.NotNil(t, details.DividendYield)
	assert.InDelta(t, 4.85, *details.DividendYield, 1e-9)
	require.NotNil(t, details.ROE)
	assert.InDelta(t, 31.2, *details.ROE, 1e-9)
	require.NotNil(t, details.CurrentPrice)
	assert.Equal(t, 186.2, *details.CurrentPrice)
	require.NotNil(t, details.PriceChangePercent)
	assert.Equal(t, 0.65, *details.PriceChangePercent)
}

func TestDetails_UsesInMemoryCache(t *testing.T) {
	var hits atomic.Int32
	server := newTestServer(t, overviewJSON, quoteJSON, &hits)

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL

	_, err := client.Details(context.Background(), "IBM")
	require.NoError(t, err)
	_, err = client.Details(context.Background(), "IBM")
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 23, client.GetRemainingRequests())
}

func TestDetails_RateLimitNoteIsRecoverableError(t *testing.T) {
	var hits atomic.Int32
	note := `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`
	server := newTestServer(t, note, quoteJSON, &hits)

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL

	_, err := client.Details(context.Background(), "IBM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Equal(t, int32(1), hits.Load(), "quote call skipped once throttled")
}

func TestDetails_PartialWhenQuoteFails(t *testing.T) {
	server := newTestServer(t, overviewJSON, `{"Error Message": "Invalid API call"}`, nil)

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL

	details, err := client.Details(context.Background(), "IBM")
	require.NoError(t, err)
	assert.NotNil(t, details.Beta)
	assert.Nil(t, details.CurrentPrice)
}

func TestGetCompanyOverview_EmptyPayloadIsNotFound(t *testing.T) {
	server := newTestServer(t, `{}`, quoteJSON, nil)

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL

	_, err := client.GetCompanyOverview(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDoRequest_MissingKey(t *testing.T) {
	client := NewClient("", zerolog.Nop())

	_, err := client.GetCompanyOverview(context.Background(), "IBM")
	assert.IsType(t, ErrInvalidAPIKey{}, err)
}

func TestGetCompanyOverview_StaleFallback(t *testing.T) {
	repo := clientdata.NewRepository(testingpkg.NewTestDB(t, "client_data").Conn())
	require.NoError(t, repo.Store("alphavantage_overview", "IBM", &CompanyOverview{Symbol: "IBM", Name: "Cached IBM"}, -time.Hour))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", zerolog.Nop())
	client.baseURL = server.URL
	client.SetCacheRepository(repo)

	overview, err := client.GetCompanyOverview(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, "Cached IBM", overview.Name)
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ELECTRONIC COMPUTERS", "Electronic Computers"},
		{"  retail-drug stores ", "Retail-drug Stores"},
		{"ÉNERGIE RENOUVELABLE", "Énergie Renouvelable"},
		{"ölgesellschaft", "Ölgesellschaft"},
		{"", ""},
	}

	for _, tt := range tests {
		got := titleCase(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.True(t, utf8.ValidString(got), tt.in)
	}
}

// TestInterfaceImplementation verifies Client is a detail provider.
func TestInterfaceImplementation(t *testing.T) {
	var _ domain.DetailProvider = (*Client)(nil)
}
