package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/scrypster/lector/internal/llm"
	"github.com/scrypster/lector/pkg/types"
)

// Analyzer turns a recent-observation window into a structured analysis of
// what the reader is doing right now.
type Analyzer struct {
	client llm.ChatCompleter
}

// NewAnalyzer creates the observation analyzer stage.
func NewAnalyzer(client llm.ChatCompleter) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze consolidates the observation window (oldest first) into a single
// analysis weighted toward the most recent observation. A list reply from
// the service collapses to its last element; an empty list yields a zero
// analysis.
func (a *Analyzer) Analyze(ctx context.Context, observations []string) (types.ObservationAnalysis, error) {
	user := "Analyze these observations (most recent is last):\n" + strings.Join(observations, "\n")

	raw, err := a.client.Complete(ctx, analyzerSystemPrompt, user)
	if err != nil {
		return types.ObservationAnalysis{}, fmt.Errorf("observation analysis failed: %w", err)
	}

	var analysis types.ObservationAnalysis
	if err := llm.DecodeObject(raw, llm.TakeLast, &analysis); err != nil {
		return types.ObservationAnalysis{}, fmt.Errorf("observation analysis reply: %w", err)
	}
	return analysis, nil
}
