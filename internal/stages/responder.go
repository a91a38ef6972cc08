package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scrypster/lector/internal/llm"
	"github.com/scrypster/lector/pkg/types"
)

// ResponseContext is the situational context handed to the response
// generator alongside the plan and state.
type ResponseContext struct {
	CurrentContent string               `json:"current_content"`
	PaperContext   types.PaperContext   `json:"paper_context"`
	ReadingMetrics types.ReadingSummary `json:"reading_metrics"`
}

// Responder turns an intervention decision into a user-facing message. It is
// the one stage with a local fast path: a plan that says not to intervene
// never reaches the inference service.
type Responder struct {
	client llm.ChatCompleter
}

// NewResponder creates the response generator stage.
func NewResponder(client llm.ChatCompleter) *Responder {
	return &Responder{client: client}
}

// Generate produces the assistant's message for the given plan, or an empty
// response when the plan declines to intervene. Reply normalization here
// differs from the other stages: a non-empty list collapses to its first
// element if that element is object-shaped, otherwise the element is
// coerced into a plain popup message; an empty list and a blank reply both
// yield the empty response. This is also the only stage where a scalar or
// non-JSON reply is tolerated, as a popup message.
func (r *Responder) Generate(ctx context.Context, plan types.InterventionPlan, state types.UserState, rctx ResponseContext) (types.AssistantResponse, error) {
	if !plan.ShouldIntervene {
		return types.AssistantResponse{}, nil
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return types.AssistantResponse{}, fmt.Errorf("failed to marshal plan: %w", err)
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return types.AssistantResponse{}, fmt.Errorf("failed to marshal user state: %w", err)
	}
	ctxJSON, err := json.Marshal(rctx)
	if err != nil {
		return types.AssistantResponse{}, fmt.Errorf("failed to marshal context: %w", err)
	}

	user := fmt.Sprintf("Intervention plan: %s\nUser state: %s\nContext: %s\n\nGenerate an appropriate response.",
		planJSON, stateJSON, ctxJSON)

	raw, err := r.client.Complete(ctx, responderSystemPrompt, user)
	if err != nil {
		return types.AssistantResponse{}, fmt.Errorf("response generation failed: %w", err)
	}

	return normalizeResponse(raw), nil
}

// normalizeResponse applies the responder's reply-tolerance rules.
func normalizeResponse(raw string) types.AssistantResponse {
	msg, err := llm.NormalizeObject(raw, llm.TakeFirst)
	if err != nil {
		// Non-JSON reply: use the text itself as the message.
		text := strings.TrimSpace(raw)
		if text == "" {
			return types.AssistantResponse{}
		}
		return types.AssistantResponse{Response: text, DisplayType: types.DisplayPopup}
	}
	if msg == nil {
		return types.AssistantResponse{}
	}

	if llm.IsJSONObject(msg) {
		var resp types.AssistantResponse
		if err := json.Unmarshal(msg, &resp); err == nil {
			return resp
		}
		return types.AssistantResponse{}
	}

	// Scalar reply: coerce to a plain popup message.
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		if s == "" {
			return types.AssistantResponse{}
		}
		return types.AssistantResponse{Response: s, DisplayType: types.DisplayPopup}
	}
	return types.AssistantResponse{Response: string(msg), DisplayType: types.DisplayPopup}
}
