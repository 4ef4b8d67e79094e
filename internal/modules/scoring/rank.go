package scoring

import (
	"sort"

	"github.com/aristath/stockscout/internal/domain"
)

// ScoreAll scores every stock, keeping input order.
func ScoreAll(stocks []domain.Stock, prefs domain.Preferences) []domain.ScoredStock {
	scored := make([]domain.ScoredStock, len(stocks))
	for i, s := range stocks {
		scored[i] = domain.ScoredStock{
			Stock:           s,
			Score:           Score(s, prefs),
			GrowthPotential: GrowthPotential(s),
			RiskLevel:       RiskLevel(s),
		}
	}
	return scored
}

// Rank orders by score descending and truncates to limit (limit <= 0 keeps everything).
// Ties keep their input order.
func Rank(scored []domain.ScoredStock, limit int) []domain.Recommendation {
	return rankBy(scored, limit, func(a, b domain.ScoredStock) bool {
		return a.Score > b.Score
	})
}

// RankByMarketCap orders by market cap descending, for the filter-only strategy.
// Ties keep their input order.
func RankByMarketCap(scored []domain.ScoredStock, limit int) []domain.Recommendation {
	return rankBy(scored, limit, func(a, b domain.ScoredStock) bool {
		return a.Stock.MarketCap > b.Stock.MarketCap
	})
}

func rankBy(scored []domain.ScoredStock, limit int, less func(a, b domain.ScoredStock) bool) []domain.Recommendation {
	sorted := make([]domain.ScoredStock, len(scored))
	copy(sorted, scored)

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]domain.Recommendation, len(sorted))
	for i, s := range sorted {
		out[i] = domain.Recommendation{
			Stock:           s.Stock,
			Score:           s.Score,
			Rank:            i + 1,
			GrowthPotential: s.GrowthPotential,
			RiskLevel:       s.RiskLevel,
		}
	}
	return out
}
