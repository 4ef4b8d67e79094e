// Package domain provides core domain models and types.
package domain

import "strings"

// Stock is one tradable equity in the catalog.
// Enrichment fields are pointers: nil means unknown, never zero.
type Stock struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Industry  string  `json:"industry"`
	Sector    string  `json:"sector,omitempty"`
	MarketCap float64 `json:"marketCap"` // 0 = unknown

	CurrentPrice       *float64 `json:"currentPrice,omitempty"`
	PriceChangePercent *float64 `json:"priceChangePercent,omitempty"`
	Beta               *float64 `json:"beta,omitempty"`
	DividendYield      *float64 `json:"dividendYield,omitempty"` // percent, 0-100+
	PERatio            *float64 `json:"peRatio,omitempty"`
	DebtToEquity       *float64 `json:"debtToEquity,omitempty"`
	ROE                *float64 `json:"roe,omitempty"` // percent
	Cash               *float64 `json:"cash,omitempty"`
	Equity             *float64 `json:"equity,omitempty"`
}

// Details holds the fields a provider could resolve for one symbol.
// Only non-nil fields are merged into a Stock.
type Details struct {
	Name      string
	Industry  string
	Sector    string
	MarketCap *float64

	CurrentPrice       *float64
	PriceChangePercent *float64
	Beta               *float64
	DividendYield      *float64
	PERatio            *float64
	DebtToEquity       *float64
	ROE                *float64
	Cash               *float64
	Equity             *float64
}

// Merge returns a copy of s with every known field of d applied.
// Classification strings only fill empty fields; numeric fields overwrite.
func (s Stock) Merge(d *Details) Stock {
	if d == nil {
		return s
	}
	out := s
	if out.Name == "" && d.Name != "" {
		out.Name = d.Name
	}
	if out.Industry == "" && d.Industry != "" {
		out.Industry = d.Industry
	}
	if out.Sector == "" && d.Sector != "" {
		out.Sector = d.Sector
	}
	if d.MarketCap != nil && *d.MarketCap > 0 {
		out.MarketCap = *d.MarketCap
	}
	out.CurrentPrice = pick(d.CurrentPrice, out.CurrentPrice)
	out.PriceChangePercent = pick(d.PriceChangePercent, out.PriceChangePercent)
	out.Beta = pick(d.Beta, out.Beta)
	out.DividendYield = pick(d.DividendYield, out.DividendYield)
	out.PERatio = pick(d.PERatio, out.PERatio)
	out.DebtToEquity = pick(d.DebtToEquity, out.DebtToEquity)
	out.ROE = pick(d.ROE, out.ROE)
	out.Cash = pick(d.Cash, out.Cash)
	out.Equity = pick(d.Equity, out.Equity)
	return out
}

// Merge folds other into d, keeping fields d already knows.
func (d *Details) Merge(other *Details) {
	if other == nil {
		return
	}
	if d.Name == "" {
		d.Name = other.Name
	}
	if d.Industry == "" {
		d.Industry = other.Industry
	}
	if d.Sector == "" {
		d.Sector = other.Sector
	}
	d.MarketCap = pick(d.MarketCap, other.MarketCap)
	d.CurrentPrice = pick(d.CurrentPrice, other.CurrentPrice)
	d.PriceChangePercent = pick(d.PriceChangePercent, other.PriceChangePercent)
	d.Beta = pick(d.Beta, other.Beta)
	d.DividendYield = pick(d.DividendYield, other.DividendYield)
	d.PERatio = pick(d.PERatio, other.PERatio)
	d.DebtToEquity = pick(d.DebtToEquity, other.DebtToEquity)
	d.ROE = pick(d.ROE, other.ROE)
	d.Cash = pick(d.Cash, other.Cash)
	d.Equity = pick(d.Equity, other.Equity)
}

// Empty reports whether no field was resolved.
func (d *Details) Empty() bool {
	return d == nil || (d.Name == "" && d.Industry == "" && d.Sector == "" &&
		d.MarketCap == nil && d.CurrentPrice == nil && d.PriceChangePercent == nil &&
		d.Beta == nil && d.DividendYield == nil && d.PERatio == nil &&
		d.DebtToEquity == nil && d.ROE == nil && d.Cash == nil && d.Equity == nil)
}

func pick(preferred, fallback *float64) *float64 {
	if preferred != nil {
		return preferred
	}
	return fallback
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Preferences is the investor input for one request.
type Preferences struct {
	RiskTolerance     *float64 `json:"riskTolerance"` // 1-10
	DesiredGrowth     *float64 `json:"desiredGrowth"` // percent, 0-100
	Industry          string   `json:"industry,omitempty"`
	MinMarketCap      float64  `json:"minMarketCap,omitempty"`
	AdditionalNotes   string   `json:"additionalNotes,omitempty"`
	InvestmentHorizon string   `json:"investmentHorizon,omitempty"`
}

// Risk returns the risk tolerance, 0 when unset.
func (p Preferences) Risk() float64 {
	if p.RiskTolerance == nil {
		return 0
	}
	return *p.RiskTolerance
}

// Growth returns the desired growth, 0 when unset.
func (p Preferences) Growth() float64 {
	if p.DesiredGrowth == nil {
		return 0
	}
	return *p.DesiredGrowth
}

// Notes returns the lower-cased additional notes.
func (p Preferences) Notes() string {
	return strings.ToLower(p.AdditionalNotes)
}

// Recommendation is a ranked, scored stock.
type Recommendation struct {
	Stock
	Score           float64 `json:"score"`
	Rank            int     `json:"rank"`
	GrowthPotential float64 `json:"growthPotential"` // 0-100
	RiskLevel       float64 `json:"riskLevel"`       // 0-100
}

// ScoredStock pairs a stock with its fit score before ranking.
type ScoredStock struct {
	Stock           Stock
	Score           float64
	GrowthPotential float64
	RiskLevel       float64
}

// NarrativeStatus is the terminal state of a narrative request.
type NarrativeStatus string

const (
	NarrativeSuccess       NarrativeStatus = "success"
	NarrativeTimeout       NarrativeStatus = "timeout"
	NarrativeUpstreamError NarrativeStatus = "upstream_error"
)

// Narrative is advisory text keyed by section name.
// Every key of the requested schema holds a non-empty string.
type Narrative struct {
	Status NarrativeStatus   `json:"status"`
	Fields map[string]string `json:"fields"`
}
