package alphavantage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseFloat64 parses Alpha Vantage numeric strings; "None", "-" and garbage become 0.
func parseFloat64(s string) float64 {
	if v := parseFloat64Ptr(s); v != nil {
		return *v
	}
	return 0
}

// parseFloat64Ptr parses a numeric string, returning nil for "None", "-" and friends.
func parseFloat64Ptr(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	switch s {
	case "", "None", "null", "-", ".":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseInt64 parses integers that may arrive in float or exponent notation.
func parseInt64(s string) int64 {
	return int64(parseFloat64(s))
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok && v != nil {
		switch val := v.(type) {
		case string:
			return val
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return fmt.Sprint(val)
		}
	}
	return ""
}

func parseCompanyOverview(body []byte) (*CompanyOverview, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse overview: %w", err)
	}

	return &CompanyOverview{
		Symbol:               stringField(raw, "Symbol"),
		AssetType:            stringField(raw, "AssetType"),
		Name:                 stringField(raw, "Name"),
		Exchange:             stringField(raw, "Exchange"),
		Currency:             stringField(raw, "Currency"),
		Sector:               stringField(raw, "Sector"),
		Industry:             stringField(raw, "Industry"),
		MarketCapitalization: parseInt64(stringField(raw, "MarketCapitalization")),
		PERatio:              parseFloat64Ptr(stringField(raw, "PERatio")),
		EPS:                  parseFloat64Ptr(stringField(raw, "EPS")),
		DividendYield:        parseFloat64Ptr(stringField(raw, "DividendYield")),
		Beta:                 parseFloat64Ptr(stringField(raw, "Beta")),
		ReturnOnEquityTTM:    parseFloat64Ptr(stringField(raw, "ReturnOnEquityTTM")),
		ProfitMargin:         parseFloat64Ptr(stringField(raw, "ProfitMargin")),
		FiftyTwoWeekHigh:     parseFloat64Ptr(stringField(raw, "52WeekHigh")),
		FiftyTwoWeekLow:      parseFloat64Ptr(stringField(raw, "52WeekLow")),
	}, nil
}

func parseGlobalQuote(body []byte) (*GlobalQuote, error) {
	var raw struct {
		GlobalQuote map[string]interface{} `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse global quote: %w", err)
	}

	q := raw.GlobalQuote
	return &GlobalQuote{
		Symbol:           stringField(q, "01. symbol"),
		Open:             parseFloat64(stringField(q, "02. open")),
		High:             parseFloat64(stringField(q, "03. high")),
		Low:              parseFloat64(stringField(q, "04. low")),
		Price:            parseFloat64(stringField(q, "05. price")),
		Volume:           parseInt64(stringField(q, "06. volume")),
		LatestTradingDay: stringField(q, "07. latest trading day"),
		PreviousClose:    parseFloat64(stringField(q, "08. previous close")),
		Change:           parseFloat64(stringField(q, "09. change")),
		ChangePercent:    parseFloat64(stringField(q, "10. change percent")),
	}, nil
}
