// Package handlers provides HTTP handlers for the recommendation API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/modules/catalog"
	"github.com/aristath/stockscout/internal/modules/recommendation"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Service is the pipeline used by the handlers
type Service interface {
	Recommend(ctx context.Context, prefs domain.Preferences) (*recommendation.Result, error)
	AnalyzeStock(ctx context.Context, stock domain.Stock, prefs domain.Preferences) (*recommendation.StockAnalysis, error)
	Financials(ctx context.Context, symbol string) (*domain.Stock, error)
}

// Handler handles recommendation HTTP requests
type Handler struct {
	service        Service
	requestTimeout time.Duration
	log            zerolog.Logger
}

// NewHandler creates a new recommendation handler
func NewHandler(service Service, requestTimeout time.Duration, log zerolog.Logger) *Handler {
	return &Handler{
		service:        service,
		requestTimeout: requestTimeout,
		log:            log.With().Str("handler", "recommendation").Logger(),
	}
}

// analyzeStockRequest accepts "ticker" or "symbol" for the stock
type analyzeStockRequest struct {
	Stock *struct {
		Ticker   string `json:"ticker"`
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Industry string `json:"industry"`
	} `json:"stock"`
	Preferences *domain.Preferences `json:"preferences"`
}

// HandleRecommendations handles POST /api/recommendations
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	var prefs domain.Preferences
	if err := decodeBody(w, r, &prefs); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if msg := validatePreferences(prefs); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg, "")
		return
	}

	ctx, cancel := h.withDeadline(r.Context())
	defer cancel()

	result, err := h.service.Recommend(ctx, prefs)
	if err != nil {
		h.log.Error().Err(err).Msg("Recommendation run failed")
		message := "Failed to generate recommendations"
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			message = "Failed to load stock catalog"
		}
		h.writeError(w, http.StatusInternalServerError, message, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleAnalyzeStock handles POST /api/analyze-stock
func (h *Handler) HandleAnalyzeStock(w http.ResponseWriter, r *http.Request) {
	var req analyzeStockRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if req.Stock == nil || req.Preferences == nil {
		h.writeError(w, http.StatusBadRequest, "Missing stock or preferences", "")
		return
	}
	symbol := strings.TrimSpace(req.Stock.Ticker)
	if symbol == "" {
		symbol = strings.TrimSpace(req.Stock.Symbol)
	}
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Missing stock or preferences", "stock.ticker is required")
		return
	}

	ctx, cancel := h.withDeadline(r.Context())
	defer cancel()

	stock := domain.Stock{Symbol: symbol, Name: req.Stock.Name, Industry: req.Stock.Industry}
	analysis, err := h.service.AnalyzeStock(ctx, stock, *req.Preferences)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Stock analysis failed")
		h.writeError(w, http.StatusNotFound, "Stock not found or Yahoo Finance error", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, analysis)
}

// HandleStockFinancials handles GET /api/stock-financials?symbol=
func (h *Handler) HandleStockFinancials(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Missing symbol parameter", "")
		return
	}

	ctx, cancel := h.withDeadline(r.Context())
	defer cancel()

	financials, err := h.service.Financials(ctx, symbol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "Stock not found", err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			h.writeError(w, http.StatusGatewayTimeout, "Timed out fetching Yahoo financials", err.Error())
		default:
			h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch financials")
			h.writeError(w, http.StatusInternalServerError, "Failed to fetch Yahoo financials", err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, financials)
}

// validatePreferences returns a message for the first invalid field, or ""
func validatePreferences(p domain.Preferences) string {
	switch {
	case p.RiskTolerance == nil:
		return "riskTolerance is required"
	case *p.RiskTolerance < 1 || *p.RiskTolerance > 10:
		return "riskTolerance must be between 1 and 10"
	case p.DesiredGrowth == nil:
		return "desiredGrowth is required"
	case *p.DesiredGrowth < 0 || *p.DesiredGrowth > 100:
		return "desiredGrowth must be between 0 and 100"
	case p.MinMarketCap < 0:
		return "minMarketCap cannot be negative"
	}
	return ""
}

func (h *Handler) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// Helper methods

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}
	h.writeJSON(w, status, body)
}
