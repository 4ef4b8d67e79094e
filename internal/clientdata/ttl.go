package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Constituent lists change a handful of times per quarter
	TTLListing = 24 * time.Hour

	// Fundamentals move with filings
	TTLAVOverview = 7 * 24 * time.Hour

	// Quote-bearing payloads go stale within the trading day
	TTLYahooSummary = 15 * time.Minute
	TTLAVQuote      = 15 * time.Minute
)
