// Package scoring provides preference-fit scoring and ranking.
package scoring

import (
	"math"
	"strings"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/utils"
)

// Keyword rule weights
const (
	techBonus        = 50.0
	fossilPenalty    = -100.0
	dividendBonus    = 30.0
	dividendMinYield = 2.0 // percent
)

var (
	techIndustryKeywords   = []string{"tech", "software", "semiconductor", "internet", "it services"}
	energyIndustryKeywords = []string{"energy", "oil", "gas", "coal", "fuel"}
)

// FitScore is the result of preference-fit scoring
type FitScore struct {
	Components map[string]float64 `json:"components"`
	Score      float64            `json:"score"`
}

// Score returns the preference-fit score of stock. It is pure and unclamped.
func Score(stock domain.Stock, prefs domain.Preferences) float64 {
	return Calculate(stock, prefs).Score
}

// Calculate scores stock against prefs.
// Components:
// - risk_fit: 100 - |beta*10 - riskTolerance*10|, 0 when beta is unknown
// - growth_fit: 100 - |roe - desiredGrowth|, falling back to price change, 0 when both are unknown
// - notes: keyword bonuses and penalties from the additional notes
func Calculate(stock domain.Stock, prefs domain.Preferences) FitScore {
	riskFit := calculateRiskFit(stock, prefs)
	growthFit := calculateGrowthFit(stock, prefs)
	notes := calculateNotesAdjustment(stock, prefs)

	return FitScore{
		Score: riskFit + growthFit + notes,
		Components: map[string]float64{
			"risk_fit":   riskFit,
			"growth_fit": growthFit,
			"notes":      notes,
		},
	}
}

func calculateRiskFit(stock domain.Stock, prefs domain.Preferences) float64 {
	if stock.Beta == nil || prefs.RiskTolerance == nil {
		return 0
	}
	return 100 - math.Abs(*stock.Beta*10-prefs.Risk()*10)
}

func calculateGrowthFit(stock domain.Stock, prefs domain.Preferences) float64 {
	if prefs.DesiredGrowth == nil {
		return 0
	}
	switch {
	case stock.ROE != nil:
		return 100 - math.Abs(*stock.ROE-prefs.Growth())
	case stock.PriceChangePercent != nil:
		return 100 - math.Abs(*stock.PriceChangePercent-prefs.Growth())
	default:
		return 0
	}
}

func calculateNotesAdjustment(stock domain.Stock, prefs domain.Preferences) float64 {
	notes := prefs.Notes()
	if notes == "" {
		return 0
	}

	industry := strings.ToLower(stock.Industry + " " + stock.Sector)
	adjustment := 0.0

	if utils.ContainsWordStart(notes, "tech") && containsAny(industry, techIndustryKeywords) {
		adjustment += techBonus
	}
	if strings.Contains(notes, "avoid fossil") && containsAny(industry, energyIndustryKeywords) {
		adjustment += fossilPenalty
	}
	if strings.Contains(notes, "dividend") && stock.DividendYield != nil && *stock.DividendYield > dividendMinYield {
		adjustment += dividendBonus
	}

	return adjustment
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if utils.ContainsWordStart(s, kw) {
			return true
		}
	}
	return false
}
