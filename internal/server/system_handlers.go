package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/stockscout/internal/database"
	"github.com/aristath/stockscout/internal/modules/narrative"
	"github.com/aristath/stockscout/internal/scheduler"
)

// JobLister reports background job outcomes (implemented by the scheduler)
type JobLister interface {
	Statuses() []scheduler.JobStatus
}

// QuotaReporter is a rate-limited provider that knows its remaining daily budget
type QuotaReporter interface {
	Name() string
	GetRemainingRequests() int
}

// SystemHandlers serves process and host health
type SystemHandlers struct {
	log       zerolog.Logger
	cacheDB   *database.DB
	jobs      JobLister
	quotas    []QuotaReporter
	strategy  string
	startedAt time.Time
}

// NewSystemHandlers creates system handlers. cacheDB and jobs may be nil.
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB, jobs JobLister, quotas []QuotaReporter, strategy string) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		cacheDB:   cacheDB,
		jobs:      jobs,
		quotas:    quotas,
		strategy:  strategy,
		startedAt: time.Now(),
	}
}

// HealthResponse is the /health payload
type HealthResponse struct {
	Status          string                `json:"status"`
	UptimeSeconds   int64                 `json:"uptime_seconds"`
	Strategy        string                `json:"strategy"`
	NarrativeWarmed bool                  `json:"narrative_warmed"`
	CPUPercent      float64               `json:"cpu_percent"`
	RAMPercent      float64               `json:"ram_percent"`
	CacheDB         *database.Stats       `json:"cache_db,omitempty"`
	CacheDBError    string                `json:"cache_db_error,omitempty"`
	Jobs            []scheduler.JobStatus `json:"jobs,omitempty"`
	RemainingQuota  map[string]int        `json:"remaining_quota,omitempty"`
}

// HandleHealth handles GET /health
// The service is "degraded" when the cache database is unreachable; it still answers 200.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	resp := HealthResponse{
		Status:          "ok",
		UptimeSeconds:   int64(time.Since(h.startedAt).Seconds()),
		Strategy:        h.strategy,
		NarrativeWarmed: narrative.Warmed(),
		CPUPercent:      cpuPercent,
		RAMPercent:      ramPercent,
	}

	if h.cacheDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.cacheDB.QuickCheck(ctx); err != nil {
			resp.Status = "degraded"
			resp.CacheDBError = err.Error()
		} else if stats, err := h.cacheDB.GetStats(); err != nil {
			resp.CacheDBError = err.Error()
		} else {
			resp.CacheDB = stats
		}
	}

	if h.jobs != nil {
		resp.Jobs = h.jobs.Statuses()
	}

	if len(h.quotas) > 0 {
		resp.RemainingQuota = make(map[string]int, len(h.quotas))
		for _, q := range h.quotas {
			resp.RemainingQuota[q.Name()] = q.GetRemainingRequests()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the health check stays fast
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
