package stages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/scrypster/lector/internal/llm"
	"github.com/scrypster/lector/pkg/types"
)

// Inferencer estimates the reader's cognitive and emotional state from the
// current analysis and the previous state estimate.
type Inferencer struct {
	client llm.ChatCompleter
}

// NewInferencer creates the state inferencer stage.
func NewInferencer(client llm.ChatCompleter) *Inferencer {
	return &Inferencer{client: client}
}

// Infer produces a state update from the analysis and the prior state. The
// analysis is passed through unmodified (including section_transition) so
// the service can distinguish natural pauses from confusion pauses. The
// update carries only the fields the service returned; the caller merges it
// into the live state.
func (i *Inferencer) Infer(ctx context.Context, analysis types.ObservationAnalysis, previous types.UserState) (types.StateUpdate, error) {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return types.StateUpdate{}, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	previousJSON, err := json.Marshal(previous)
	if err != nil {
		return types.StateUpdate{}, fmt.Errorf("failed to marshal previous state: %w", err)
	}

	user := fmt.Sprintf("Current observations: %s\nPrevious user state: %s\n\nInfer the user's current state.",
		analysisJSON, previousJSON)

	raw, err := i.client.Complete(ctx, inferencerSystemPrompt, user)
	if err != nil {
		return types.StateUpdate{}, fmt.Errorf("state inference failed: %w", err)
	}

	var update types.StateUpdate
	if err := llm.DecodeObject(raw, llm.TakeLast, &update); err != nil {
		return types.StateUpdate{}, fmt.Errorf("state inference reply: %w", err)
	}
	return update, nil
}
