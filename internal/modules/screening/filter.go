// Package screening narrows the catalog by industry and market capitalization.
package screening

import (
	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/utils"
)

// Filter returns the stocks that satisfy both the industry and market-cap predicates.
// Input order is preserved.
func Filter(stocks []domain.Stock, prefs domain.Preferences, categories Categories) []domain.Stock {
	keywords := categories.Resolve(prefs.Industry)

	out := make([]domain.Stock, 0, len(stocks))
	for _, s := range stocks {
		if !MatchesIndustry(s, keywords) {
			continue
		}
		if !MeetsMarketCap(s, prefs.MinMarketCap) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Prescreen narrows stocks before enrichment. The industry predicate applies as in Filter,
// but a stock with an unknown market cap is kept so enrichment can resolve it; a known
// cap below the floor is dropped. FilterMarketCap must run after enrichment.
func Prescreen(stocks []domain.Stock, prefs domain.Preferences, categories Categories) []domain.Stock {
	keywords := categories.Resolve(prefs.Industry)

	out := make([]domain.Stock, 0, len(stocks))
	for _, s := range stocks {
		if !MatchesIndustry(s, keywords) {
			continue
		}
		if s.MarketCap > 0 && !MeetsMarketCap(s, prefs.MinMarketCap) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterMarketCap re-applies only the market-cap predicate.
func FilterMarketCap(stocks []domain.Stock, min float64) []domain.Stock {
	out := make([]domain.Stock, 0, len(stocks))
	for _, s := range stocks {
		if MeetsMarketCap(s, min) {
			out = append(out, s)
		}
	}
	return out
}

// MatchesIndustry reports whether any keyword matches the stock's industry or sector.
// No keywords means no industry preference, which matches everything.
func MatchesIndustry(s domain.Stock, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, field := range []string{s.Industry, s.Sector} {
		f := utils.NormalizeText(field)
		if f == "" {
			continue
		}
		for _, kw := range keywords {
			if kw == "" {
				continue
			}
			if utils.ContainsWordStart(f, kw) || utils.ContainsWordStart(kw, f) {
				return true
			}
		}
	}
	return false
}

// MeetsMarketCap reports whether the stock clears min.
// An unknown market cap (0) never clears a positive floor.
func MeetsMarketCap(s domain.Stock, min float64) bool {
	if min <= 0 {
		return true
	}
	return s.MarketCap > 0 && s.MarketCap >= min
}
