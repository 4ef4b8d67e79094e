package domain

import "context"

// DetailProvider resolves financial fields for one symbol from an upstream source.
// Implementations must respect ctx cancellation so the enricher can bound each stock.
type DetailProvider interface {
	// Name identifies the provider in logs ("yahoo", "alphavantage")
	Name() string

	// Details returns the fields the provider knows for symbol.
	// A nil error with an empty Details is valid.
	Details(ctx context.Context, symbol string) (*Details, error)
}

// CatalogSource produces the candidate universe.
type CatalogSource interface {
	// Name identifies the source in logs ("embedded", "file", "s3", "listing")
	Name() string

	// Load returns the full catalog
	Load(ctx context.Context) ([]Stock, error)
}

// TextGenerator sends a prompt to a text-generation backend and returns the raw reply.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}
