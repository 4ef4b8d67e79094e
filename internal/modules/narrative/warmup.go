package narrative

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/rs/zerolog"
)

const warmupPrompt = "Hello"

// warmed is process-wide: false at start, set once the model answered, never reset.
var warmed atomic.Bool

// Warmed reports whether the text-generation model has answered a warm-up call.
func Warmed() bool {
	return warmed.Load()
}

// Warmup sends a tiny prompt to wake a cold model. It is a no-op once warmed.
func Warmup(ctx context.Context, gen domain.TextGenerator) error {
	if warmed.Load() {
		return nil
	}
	if gen == nil {
		return fmt.Errorf("no text generator configured")
	}
	if _, err := gen.Generate(ctx, warmupPrompt, 1); err != nil {
		return fmt.Errorf("warm-up failed: %w", err)
	}
	warmed.Store(true)
	return nil
}

// WarmupJob retries the warm-up on a schedule until it succeeds.
type WarmupJob struct {
	gen     domain.TextGenerator
	timeout time.Duration
	log     zerolog.Logger
}

// NewWarmupJob creates a warm-up job bounded by timeout per attempt.
func NewWarmupJob(gen domain.TextGenerator, timeout time.Duration, log zerolog.Logger) *WarmupJob {
	return &WarmupJob{
		gen:     gen,
		timeout: timeout,
		log:     log.With().Str("job", "narrative_warmup").Logger(),
	}
}

// Run attempts a warm-up call.
func (j *WarmupJob) Run() error {
	if Warmed() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := Warmup(ctx, j.gen); err != nil {
		j.log.Warn().Err(err).Msg("Model warm-up failed, will retry")
		return err
	}

	j.log.Info().Msg("Model warmed up")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *WarmupJob) Name() string {
	return "narrative_warmup"
}
