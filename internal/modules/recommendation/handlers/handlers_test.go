package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/modules/catalog"
	"github.com/aristath/stockscout/internal/modules/recommendation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	result     *recommendation.Result
	analysis   *recommendation.StockAnalysis
	financials *domain.Stock
	err        error

	gotPrefs  domain.Preferences
	gotStock  domain.Stock
	gotSymbol string
	deadline  bool
}

func (m *mockService) Recommend(ctx context.Context, prefs domain.Preferences) (*recommendation.Result, error) {
	m.gotPrefs = prefs
	_, m.deadline = ctx.Deadline()
	return m.result, m.err
}

func (m *mockService) AnalyzeStock(ctx context.Context, stock domain.Stock, prefs domain.Preferences) (*recommendation.StockAnalysis, error) {
	m.gotStock = stock
	m.gotPrefs = prefs
	return m.analysis, m.err
}

func (m *mockService) Financials(ctx context.Context, symbol string) (*domain.Stock, error) {
	m.gotSymbol = symbol
	return m.financials, m.err
}

func setupRouter(svc Service) *chi.Mux {
	router := chi.NewRouter()
	NewHandler(svc, time.Second, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func TestRegisterRoutes(t *testing.T) {
	router := setupRouter(&mockService{err: errors.New("unused")})

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/api/recommendations"},
		{"POST", "/api/analyze-stock"},
		{"GET", "/api/stock-financials"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w, _ := do(t, router, tc.method, tc.path, "{}")
			assert.NotEqual(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestHandleRecommendations(t *testing.T) {
	svc := &mockService{result: &recommendation.Result{
		RunID:    "run-1",
		Strategy: "score",
		Recommendations: []domain.Recommendation{
			{Stock: domain.Stock{Symbol: "AAPL", MarketCap: 3e12}, Score: 150, Rank: 1},
		},
		Narrative: &domain.Narrative{Status: domain.NarrativeTimeout, Fields: map[string]string{
			"analysis": "Unable to generate analysis at this time.",
			"thesis":   "Unable to generate thesis at this time.",
		}},
	}}
	router := setupRouter(svc)

	w, body := do(t, router, "POST", "/api/recommendations",
		`{"riskTolerance":5,"desiredGrowth":10,"industry":"tech","minMarketCap":1e9,"additionalNotes":"avoid fossil fuels"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "run-1", body["runId"])
	recs := body["recommendations"].([]interface{})
	require.Len(t, recs, 1)
	assert.Equal(t, "AAPL", recs[0].(map[string]interface{})["symbol"])

	narrative := body["narrative"].(map[string]interface{})
	assert.Equal(t, "timeout", narrative["status"])
	assert.NotEmpty(t, narrative["fields"].(map[string]interface{})["thesis"])

	assert.Equal(t, "tech", svc.gotPrefs.Industry)
	assert.Equal(t, 1e9, svc.gotPrefs.MinMarketCap)
	assert.True(t, svc.deadline, "handler applies the request deadline")
}

func TestHandleRecommendations_EmptyResult(t *testing.T) {
	svc := &mockService{result: &recommendation.Result{
		RunID:           "run-2",
		Recommendations: []domain.Recommendation{},
		Message:         recommendation.NoMatchesMessage,
	}}

	w, body := do(t, setupRouter(svc), "POST", "/api/recommendations", `{"riskTolerance":5,"desiredGrowth":10}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["recommendations"])
	assert.Equal(t, recommendation.NoMatchesMessage, body["message"])
}

func TestHandleRecommendations_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"riskTolerance":`, "Invalid request body"},
		{"missing risk", `{"desiredGrowth":10}`, "riskTolerance is required"},
		{"risk out of range", `{"riskTolerance":11,"desiredGrowth":10}`, "riskTolerance must be between 1 and 10"},
		{"missing growth", `{"riskTolerance":5}`, "desiredGrowth is required"},
		{"growth out of range", `{"riskTolerance":5,"desiredGrowth":-1}`, "desiredGrowth must be between 0 and 100"},
		{"negative market cap", `{"riskTolerance":5,"desiredGrowth":10,"minMarketCap":-5}`, "minMarketCap cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, setupRouter(&mockService{}), "POST", "/api/recommendations", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestHandleRecommendations_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"catalog", fmt.Errorf("failed to load catalog: %w", catalog.ErrCatalogUnavailable), "Failed to load stock catalog"},
		{"other", errors.New("boom"), "Failed to generate recommendations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, setupRouter(&mockService{err: tt.err}), "POST", "/api/recommendations", `{"riskTolerance":5,"desiredGrowth":10}`)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tt.want, body["error"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestHandleAnalyzeStock(t *testing.T) {
	svc := &mockService{analysis: &recommendation.StockAnalysis{
		Analysis:  "AI analysis unavailable at this time.",
		Status:    domain.NarrativeTimeout,
		StockData: domain.Stock{Symbol: "KO", Name: "Coca-Cola"},
	}}

	w, body := do(t, setupRouter(svc), "POST", "/api/analyze-stock",
		`{"stock":{"ticker":"KO","name":"Coke","industry":"Beverages"},"preferences":{"riskTolerance":3,"desiredGrowth":6}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AI analysis unavailable at this time.", body["analysis"])
	assert.Equal(t, "KO", body["stockData"].(map[string]interface{})["symbol"])
	assert.Equal(t, domain.Stock{Symbol: "KO", Name: "Coke", Industry: "Beverages"}, svc.gotStock)
	assert.Equal(t, 3.0, svc.gotPrefs.Risk())
}

func TestHandleAnalyzeStock_SymbolAlias(t *testing.T) {
	svc := &mockService{analysis: &recommendation.StockAnalysis{}}
	w, _ := do(t, setupRouter(svc), "POST", "/api/analyze-stock", `{"stock":{"symbol":"MSFT"},"preferences":{}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MSFT", svc.gotStock.Symbol)
}

func TestHandleAnalyzeStock_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"missing stock", `{"preferences":{}}`, nil, http.StatusBadRequest},
		{"missing preferences", `{"stock":{"ticker":"KO"}}`, nil, http.StatusBadRequest},
		{"missing ticker", `{"stock":{"name":"Coke"},"preferences":{}}`, nil, http.StatusBadRequest},
		{"malformed", `not json`, nil, http.StatusBadRequest},
		{"upstream", `{"stock":{"ticker":"NOPE"},"preferences":{}}`, domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, setupRouter(&mockService{err: tt.err}), "POST", "/api/analyze-stock", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleStockFinancials(t *testing.T) {
	svc := &mockService{financials: &domain.Stock{Symbol: "AAPL", CurrentPrice: domain.Float(190.5)}}

	w, body := do(t, setupRouter(svc), "GET", "/api/stock-financials?symbol=aapl", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 190.5, body["currentPrice"])
	assert.Equal(t, "aapl", svc.gotSymbol)
}

func TestHandleStockFinancials_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"missing symbol", "/api/stock-financials", nil, http.StatusBadRequest},
		{"not found", "/api/stock-financials?symbol=NOPE", fmt.Errorf("yahoo: NOPE: %w", domain.ErrNotFound), http.StatusNotFound},
		{"timeout", "/api/stock-financials?symbol=AAPL", fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"upstream", "/api/stock-financials?symbol=AAPL", errors.New("502"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, setupRouter(&mockService{err: tt.err}), "GET", tt.path, "")
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}
