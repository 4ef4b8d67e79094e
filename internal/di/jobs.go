// Package di provides dependency injection for background jobs.
package di

import (
	"fmt"

	"github.com/aristath/stockscout/internal/clientdata"
	"github.com/aristath/stockscout/internal/config"
	"github.com/aristath/stockscout/internal/modules/narrative"
	"github.com/rs/zerolog"
)

// RegisterJobs builds the maintenance jobs
// Scheduling is left to the caller so tests can run jobs directly.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.ClientDataRepo == nil {
		return nil, fmt.Errorf("container services must be initialized first")
	}

	jobs := &JobInstances{
		CacheCleanup:    clientdata.NewCleanupJob(container.ClientDataRepo, container.ClientDataDB, log),
		NarrativeWarmup: narrative.NewWarmupJob(container.Generator, cfg.Narrative.Timeout, log),
	}
	container.Jobs = jobs

	log.Info().Msg("Jobs registered")

	return jobs, nil
}
