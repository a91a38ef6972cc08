package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/scrypster/lector/internal/llm"
	"github.com/scrypster/lector/pkg/types"
)

// Planner decides whether to intervene and with what type of help. The
// numeric "too frequently" limit is enforced by the orchestrator's gate, not
// here; the planner only receives the elapsed time as advisory context.
type Planner struct {
	client llm.ChatCompleter
}

// NewPlanner creates the intervention planner stage.
func NewPlanner(client llm.ChatCompleter) *Planner {
	return &Planner{client: client}
}

// Plan produces an intervention decision from the user state, the current
// analysis, the seconds since the last intervention (+Inf when none has
// happened yet), and the reading-metrics summary.
func (p *Planner) Plan(ctx context.Context, state types.UserState, analysis types.ObservationAnalysis, sinceLast float64, metrics types.ReadingSummary) (types.InterventionPlan, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return types.InterventionPlan{}, fmt.Errorf("failed to marshal user state: %w", err)
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return types.InterventionPlan{}, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return types.InterventionPlan{}, fmt.Errorf("failed to marshal reading metrics: %w", err)
	}

	elapsed := "no intervention yet"
	if !math.IsInf(sinceLast, 1) {
		elapsed = fmt.Sprintf("%.1f seconds", sinceLast)
	}

	user := fmt.Sprintf("User state: %s\nCurrent observations: %s\nTime since last intervention: %s\nReading metrics: %s\n\nDecide on intervention.",
		stateJSON, analysisJSON, elapsed, metricsJSON)

	raw, err := p.client.Complete(ctx, plannerSystemPrompt, user)
	if err != nil {
		return types.InterventionPlan{}, fmt.Errorf("intervention planning failed: %w", err)
	}

	var plan types.InterventionPlan
	if err := llm.DecodeObject(raw, llm.TakeLast, &plan); err != nil {
		return types.InterventionPlan{}, fmt.Errorf("intervention planning reply: %w", err)
	}
	return plan, nil
}
