package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the recommendation API routes.
// Paths are registered on r directly so the router's 405 handler applies to them.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/recommendations", h.HandleRecommendations)
	r.Post("/api/analyze-stock", h.HandleAnalyzeStock)
	r.Get("/api/stock-financials", h.HandleStockFinancials)
}
