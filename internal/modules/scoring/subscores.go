package scoring

import (
	"math"

	"github.com/aristath/stockscout/internal/domain"
)

const smallCapThreshold = 10_000_000_000

// GrowthPotential estimates growth on a 0-100 scale:
// 2 points per ROE percent, +20 for a P/E under 20, +10 for a yield above 2%.
// Unknown fields contribute nothing.
func GrowthPotential(stock domain.Stock) float64 {
	score := 0.0
	if stock.ROE != nil {
		score += *stock.ROE * 2
	}
	if stock.PERatio != nil && *stock.PERatio > 0 && *stock.PERatio < 20 {
		score += 20
	}
	if stock.DividendYield != nil && *stock.DividendYield > 2 {
		score += 10
	}
	return clamp(score)
}

// RiskLevel estimates risk on a 0-100 scale:
// +30 for debt/equity above 1, +20 for a P/E above 30, +20 below a $10B market cap.
// Unknown fields contribute nothing.
func RiskLevel(stock domain.Stock) float64 {
	score := 0.0
	if stock.DebtToEquity != nil && *stock.DebtToEquity > 1 {
		score += 30
	}
	if stock.PERatio != nil && *stock.PERatio > 30 {
		score += 20
	}
	if stock.MarketCap > 0 && stock.MarketCap < smallCapThreshold {
		score += 20
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, 100))
}
