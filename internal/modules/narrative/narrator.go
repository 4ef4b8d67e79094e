// Package narrative produces advisory text for recommendations from a text-generation backend.
package narrative

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aristath/stockscout/internal/domain"
	"github.com/rs/zerolog"
)

// Narrator races each generation call against a hard timeout.
// It never returns an error: failures resolve to placeholder text.
type Narrator struct {
	gen       domain.TextGenerator // nil disables generation
	timeout   time.Duration
	maxTokens int
	log       zerolog.Logger
}

// NewNarrator creates a narrator. gen may be nil when no backend is configured.
func NewNarrator(gen domain.TextGenerator, timeout time.Duration, maxTokens int, log zerolog.Logger) *Narrator {
	return &Narrator{
		gen:       gen,
		timeout:   timeout,
		maxTokens: maxTokens,
		log:       log.With().Str("component", "narrator").Logger(),
	}
}

// Narrate comments on the ranked recommendations.
func (n *Narrator) Narrate(ctx context.Context, prefs domain.Preferences, top []domain.Recommendation) domain.Narrative {
	return n.generate(ctx, PortfolioPrompt(prefs, top), PortfolioSchema)
}

// AnalyzeStock produces the single-stock deep analysis.
func (n *Narrator) AnalyzeStock(ctx context.Context, prefs domain.Preferences, stock domain.Stock) domain.Narrative {
	return n.generate(ctx, StockPrompt(prefs, stock), StockSchema)
}

type generation struct {
	text string
	err  error
}

func (n *Narrator) generate(ctx context.Context, prompt string, schema Schema) domain.Narrative {
	if n.gen == nil {
		n.log.Debug().Msg("No text generator configured, using placeholders")
		return domain.Narrative{Status: domain.NarrativeUpstreamError, Fields: schema.Placeholders()}
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan generation, 1)
	go func() {
		text, err := n.gen.Generate(ctx, prompt, n.maxTokens)
		done <- generation{text: text, err: err}
	}()

	var result generation
	select {
	case result = <-done:
	case <-ctx.Done():
		result = generation{err: ctx.Err()}
	}

	if result.err == nil && strings.TrimSpace(result.text) == "" {
		result.err = errors.New("empty reply")
	}

	if result.err != nil {
		status := domain.NarrativeUpstreamError
		if errors.Is(result.err, context.DeadlineExceeded) {
			status = domain.NarrativeTimeout
		}
		n.log.Warn().
			Err(result.err).
			Str("status", string(status)).
			Dur("elapsed", time.Since(start)).
			Msg("Narrative generation failed, using placeholders")
		return domain.Narrative{Status: status, Fields: schema.Placeholders()}
	}

	// A reply means the model is warm
	warmed.Store(true)

	fields := Parse(result.text, schema)
	for _, sec := range schema.Sections {
		if strings.TrimSpace(fields[sec.Key]) == "" {
			fields[sec.Key] = sec.Placeholder
		}
	}
	for key := range fields {
		if !schema.has(key) {
			delete(fields, key)
		}
	}

	n.log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("reply_chars", len(result.text)).
		Msg("Narrative generated")

	return domain.Narrative{Status: domain.NarrativeSuccess, Fields: fields}
}
