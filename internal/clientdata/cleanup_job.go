package clientdata

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Checkpointer truncates the write-ahead log of the cache database.
type Checkpointer interface {
	WALCheckpoint(mode string) error
}

// CleanupJob purges expired provider responses and listing snapshots, then
// truncates the WAL so the cache file does not grow between restarts.
type CleanupJob struct {
	repo *Repository
	wal  Checkpointer
	log  zerolog.Logger
}

// NewCleanupJob creates the cache maintenance job. wal may be nil.
func NewCleanupJob(repo *Repository, wal Checkpointer, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		wal:  wal,
		log:  log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name identifies the job in the scheduler and on /health.
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}

// Run deletes expired rows from every cache table and checkpoints the WAL.
// The checkpoint still runs when nothing expired.
func (j *CleanupJob) Run() error {
	purged, err := j.repo.DeleteAllExpired()
	if err != nil {
		return fmt.Errorf("cache purge failed: %w", err)
	}

	event := j.log.Info()
	var total int64
	for table, n := range purged {
		event = event.Int64(table, n)
		total += n
	}

	if j.wal != nil {
		if err := j.wal.WALCheckpoint("TRUNCATE"); err != nil {
			return err
		}
	}

	event.Int64("total_purged", total).Bool("wal_truncated", j.wal != nil).Msg("Cache cleanup finished")
	return nil
}
