package alphavantage

// CompanyOverview is the subset of the OVERVIEW payload the recommender uses.
type CompanyOverview struct {
	Symbol               string   `msgpack:"symbol"`
	AssetType            string   `msgpack:"asset_type"`
	Name                 string   `msgpack:"name"`
	Exchange             string   `msgpack:"exchange"`
	Currency             string   `msgpack:"currency"`
	Sector               string   `msgpack:"sector"`
	Industry             string   `msgpack:"industry"`
	MarketCapitalization int64    `msgpack:"market_cap"`
	PERatio              *float64 `msgpack:"pe_ratio"`
	EPS                  *float64 `msgpack:"eps"`
	DividendYield        *float64 `msgpack:"dividend_yield"` // fraction, 0.0485 = 4.85%
	Beta                 *float64 `msgpack:"beta"`
	ReturnOnEquityTTM    *float64 `msgpack:"roe_ttm"` // fraction
	ProfitMargin         *float64 `msgpack:"profit_margin"`
	FiftyTwoWeekHigh     *float64 `msgpack:"high_52w"`
	FiftyTwoWeekLow      *float64 `msgpack:"low_52w"`
}

// GlobalQuote is the GLOBAL_QUOTE payload.
type GlobalQuote struct {
	Symbol           string  `msgpack:"symbol"`
	Open             float64 `msgpack:"open"`
	High             float64 `msgpack:"high"`
	Low              float64 `msgpack:"low"`
	Price            float64 `msgpack:"price"`
	Volume           int64   `msgpack:"volume"`
	LatestTradingDay string  `msgpack:"latest_trading_day"`
	PreviousClose    float64 `msgpack:"previous_close"`
	Change           float64 `msgpack:"change"`
	ChangePercent    float64 `msgpack:"change_percent"`
}
