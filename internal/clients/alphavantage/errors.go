package alphavantage

import (
	"fmt"

	"github.com/aristath/stockscout/internal/domain"
)

// ErrRateLimitExceeded is returned when the local daily budget is spent or
// Alpha Vantage answers with a Note/Information throttle message.
type ErrRateLimitExceeded struct {
	Message string
}

func (e ErrRateLimitExceeded) Error() string {
	if e.Message != "" {
		return "alpha vantage rate limit exceeded: " + e.Message
	}
	return "alpha vantage rate limit exceeded"
}

// Is lets callers match with errors.Is(err, domain.ErrRateLimited).
func (e ErrRateLimitExceeded) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// ErrInvalidAPIKey is returned when the API key is missing or rejected.
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alpha vantage api key is invalid or missing"
}

// ErrSymbolNotFound is returned when Alpha Vantage has no data for a symbol.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("alpha vantage has no data for symbol %s", e.Symbol)
}

// Is lets callers match with errors.Is(err, domain.ErrNotFound).
func (e ErrSymbolNotFound) Is(target error) bool {
	return target == domain.ErrNotFound
}

// ErrAPIError wraps an "Error Message" payload.
type ErrAPIError struct {
	Message string
}

func (e ErrAPIError) Error() string {
	return "alpha vantage error: " + e.Message
}
