// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains all files embedded in the Go binary:
//   - data/catalog.json - S&P 500 snapshot used as the default catalog
//   - data/mock_catalog.json - small fallback catalog used when the primary source fails
//
// The snapshot is regenerated with cmd/catalog-builder.
//
//go:embed data
var Files embed.FS

// Paths of the embedded catalogs within Files
const (
	CatalogPath     = "data/catalog.json"
	MockCatalogPath = "data/mock_catalog.json"
)
