/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server and scheduler at startup.
 */
package di

import (
	"github.com/aristath/stockscout/internal/clientdata"
	"github.com/aristath/stockscout/internal/clients/alphavantage"
	"github.com/aristath/stockscout/internal/clients/yahoo"
	"github.com/aristath/stockscout/internal/database"
	"github.com/aristath/stockscout/internal/domain"
	"github.com/aristath/stockscout/internal/modules/catalog"
	"github.com/aristath/stockscout/internal/modules/enrichment"
	"github.com/aristath/stockscout/internal/modules/narrative"
	"github.com/aristath/stockscout/internal/modules/recommendation"
	recommendationhandlers "github.com/aristath/stockscout/internal/modules/recommendation/handlers"
	"github.com/aristath/stockscout/internal/modules/screening"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	ClientDataDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Clients
	YahooClient        *yahoo.Client
	AlphaVantageClient *alphavantage.Client // nil when no API key is configured
	Generator          domain.TextGenerator // nil when no narrative token is configured

	// Services
	CatalogLoader         *catalog.Loader
	Enricher              *enrichment.Enricher
	Categories            screening.Categories
	Narrator              *narrative.Narrator
	RecommendationService *recommendation.Service

	// Handlers
	RecommendationHandler *recommendationhandlers.Handler

	// Jobs
	Jobs *JobInstances
}

// JobInstances holds the background jobs registered with the scheduler
type JobInstances struct {
	CacheCleanup    *clientdata.CleanupJob
	NarrativeWarmup *narrative.WarmupJob
}

// Close releases every database held by the container
func (c *Container) Close() error {
	if c.ClientDataDB != nil {
		return c.ClientDataDB.Close()
	}
	return nil
}
