package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/stockscout/internal/domain"
)

// PortfolioPrompt builds the recommendations prompt: investor profile then one line per stock.
func PortfolioPrompt(prefs domain.Preferences, top []domain.Recommendation) string {
	var b strings.Builder

	b.WriteString("You are an experienced investment advisor. Review these stock picks for an investor.\n\n")
	writeProfile(&b, prefs)

	b.WriteString("\nRecommended stocks:\n")
	for _, r := range top {
		fmt.Fprintf(&b, "%d. %s (%s) - Industry: %s, Market Cap: %s, Beta: %s, ROE: %s, P/E: %s, Dividend Yield: %s, Fit Score: %.1f\n",
			r.Rank, r.Name, r.Symbol, orNA(r.Industry), formatCap(r.MarketCap),
			formatNumber(r.Beta), formatPercent(r.ROE), formatNumber(r.PERatio), formatPercent(r.DividendYield), r.Score)
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString("- Explain how these picks fit the investor's risk tolerance and growth target.\n")
	b.WriteString("- Point out the main risks and how the picks balance each other.\n")
	b.WriteString("- Keep the analysis under 150 words and the thesis under 60 words.\n\n")
	writeFormat(&b, PortfolioSchema)

	return b.String()
}

// StockPrompt builds the single-stock deep analysis prompt.
func StockPrompt(prefs domain.Preferences, stock domain.Stock) string {
	var b strings.Builder

	b.WriteString("You are a long-term, value-oriented investor. Analyze the following stock for an investor with these preferences.\n\n")
	writeProfile(&b, prefs)

	b.WriteString("\nStock data:\n")
	fmt.Fprintf(&b, "- Symbol: %s\n", stock.Symbol)
	fmt.Fprintf(&b, "- Name: %s\n", orNA(stock.Name))
	fmt.Fprintf(&b, "- Industry: %s\n", orNA(stock.Industry))
	fmt.Fprintf(&b, "- Current Price: %s\n", formatDollars(stock.CurrentPrice))
	fmt.Fprintf(&b, "- Market Cap: %s\n", formatCap(stock.MarketCap))
	fmt.Fprintf(&b, "- Beta: %s\n", formatNumber(stock.Beta))
	fmt.Fprintf(&b, "- Dividend Yield: %s\n", formatPercent(stock.DividendYield))
	fmt.Fprintf(&b, "- Debt to Equity: %s\n", formatNumber(stock.DebtToEquity))
	fmt.Fprintf(&b, "- Cash: %s\n", formatDollars(stock.Cash))
	fmt.Fprintf(&b, "- Equity: %s\n", formatDollars(stock.Equity))

	b.WriteString("\nInstructions:\n")
	b.WriteString("- Give a plain-English analysis of the company's financial health, growth prospects and risks.\n")
	b.WriteString("- Focus on what matters most to a long-term investor.\n")
	b.WriteString("- Conclude whether the stock is a good fit for this investor and why.\n\n")
	writeFormat(&b, StockSchema)

	return b.String()
}

func writeProfile(b *strings.Builder, prefs domain.Preferences) {
	b.WriteString("Investor profile:\n")
	if prefs.RiskTolerance != nil {
		fmt.Fprintf(b, "- Risk Tolerance: %s/10\n", formatNumber(prefs.RiskTolerance))
	} else {
		b.WriteString("- Risk Tolerance: N/A\n")
	}
	fmt.Fprintf(b, "- Desired Annual Growth: %s\n", formatPercent(prefs.DesiredGrowth))
	if prefs.Industry != "" {
		fmt.Fprintf(b, "- Preferred Industry: %s\n", prefs.Industry)
	}
	if prefs.MinMarketCap > 0 {
		fmt.Fprintf(b, "- Minimum Market Cap: %s\n", formatCap(prefs.MinMarketCap))
	}
	if prefs.InvestmentHorizon != "" {
		fmt.Fprintf(b, "- Investment Horizon: %s\n", prefs.InvestmentHorizon)
	}
	notes := strings.TrimSpace(prefs.AdditionalNotes)
	if notes == "" {
		notes = "None"
	}
	fmt.Fprintf(b, "- Notes: %s\n", notes)
}

func writeFormat(b *strings.Builder, schema Schema) {
	b.WriteString("Format your answer with these headings:\n")
	for _, sec := range schema.Sections {
		fmt.Fprintf(b, "### %s\n", sec.Heading)
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func formatNumber(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func formatDollars(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func formatCap(v float64) string {
	if v <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("$%.2fB", v/1e9)
}
