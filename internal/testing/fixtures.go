package testing

import "github.com/aristath/stockscout/internal/domain"

// NewStockFixtures returns a small enriched universe spanning several categories.
func NewStockFixtures() []domain.Stock {
	return []domain.Stock{
		{
			Symbol:        "MSFT",
			Name:          "Microsoft Corporation",
			Industry:      "Systems Software",
			Sector:        "Information Technology",
			MarketCap:     3.1e12,
			CurrentPrice:  floatPtr(415.2),
			Beta:          floatPtr(0.9),
			DividendYield: floatPtr(0.7),
			PERatio:       floatPtr(35.1),
			DebtToEquity:  floatPtr(0.4),
			ROE:           floatPtr(38.5),
		},
		{
			Symbol:        "JNJ",
			Name:          "Johnson & Johnson",
			Industry:      "Pharmaceuticals",
			Sector:        "Health Care",
			MarketCap:     3.8e11,
			CurrentPrice:  floatPtr(158.4),
			Beta:          floatPtr(0.5),
			DividendYield: floatPtr(3.1),
			PERatio:       floatPtr(15.2),
			DebtToEquity:  floatPtr(0.5),
			ROE:           floatPtr(20.3),
		},
		{
			Symbol:        "XOM",
			Name:          "Exxon Mobil Corporation",
			Industry:      "Integrated Oil & Gas",
			Sector:        "Energy",
			MarketCap:     4.5e11,
			CurrentPrice:  floatPtr(112.9),
			Beta:          floatPtr(0.9),
			DividendYield: floatPtr(3.4),
			PERatio:       floatPtr(13.8),
			DebtToEquity:  floatPtr(0.2),
			ROE:           floatPtr(15.1),
		},
		{
			Symbol:       "ENPH",
			Name:         "Enphase Energy",
			Industry:     "Semiconductor Materials & Equipment",
			Sector:       "Information Technology",
			MarketCap:    8.2e9,
			CurrentPrice: floatPtr(61.0),
			Beta:         floatPtr(1.8),
			PERatio:      floatPtr(48.0),
			DebtToEquity: floatPtr(1.4),
			ROE:          floatPtr(9.5),
		},
		{
			Symbol:    "TINY",
			Name:      "Tiny Regional Bank",
			Industry:  "Regional Banks",
			Sector:    "Financials",
			MarketCap: 4.0e8,
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
