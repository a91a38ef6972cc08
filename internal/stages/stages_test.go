package stages

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lector/pkg/types"
)

// fakeCompleter returns canned replies and records what it was asked.
type fakeCompleter struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) GetModel() string { return "fake-model" }

func TestAnalyzerParsesObjectReply(t *testing.T) {
	fake := &fakeCompleter{reply: `{
		"current_content": "the attention mechanism",
		"section_name": "Methods",
		"reading_patterns": {"is_pausing": true, "reading_speed": "slow", "section_transition": false},
		"struggle_concepts": ["attention"]
	}`}
	analyzer := NewAnalyzer(fake)

	analysis, err := analyzer.Analyze(context.Background(), []string{"obs one", "obs two"})
	require.NoError(t, err)

	assert.Equal(t, "Methods", analysis.SectionName)
	assert.True(t, analysis.ReadingPatterns.IsPausing)
	assert.Equal(t, types.ReadingSpeedSlow, analysis.ReadingPatterns.ReadingSpeed)
	assert.Equal(t, []string{"attention"}, analysis.StruggleConcepts)

	// Observations are joined oldest first, most recent last.
	assert.True(t, strings.Contains(fake.lastUser, "obs one\nobs two"), "user prompt = %q", fake.lastUser)
}

func TestAnalyzerNormalizesListReply(t *testing.T) {
	fake := &fakeCompleter{reply: `[{"section_name":"Intro"},{"section_name":"Results"}]`}
	analyzer := NewAnalyzer(fake)

	analysis, err := analyzer.Analyze(context.Background(), []string{"obs"})
	require.NoError(t, err)
	assert.Equal(t, "Results", analysis.SectionName, "list replies collapse to the last element")
}

func TestAnalyzerEmptyListReply(t *testing.T) {
	fake := &fakeCompleter{reply: `[]`}
	analyzer := NewAnalyzer(fake)

	analysis, err := analyzer.Analyze(context.Background(), []string{"obs"})
	require.NoError(t, err)
	assert.Equal(t, types.ObservationAnalysis{}, analysis)
}

func TestAnalyzerServiceError(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("connection refused")}
	analyzer := NewAnalyzer(fake)

	_, err := analyzer.Analyze(context.Background(), []string{"obs"})
	assert.Error(t, err)
}

func TestInferencerPartialUpdate(t *testing.T) {
	fake := &fakeCompleter{reply: `{"confusion_level": 0.8, "cognitive_load": "high"}`}
	inferencer := NewInferencer(fake)

	update, err := inferencer.Infer(context.Background(), types.ObservationAnalysis{}, types.DefaultUserState())
	require.NoError(t, err)

	require.NotNil(t, update.ConfusionLevel)
	assert.InDelta(t, 0.8, *update.ConfusionLevel, 1e-9)
	require.NotNil(t, update.CognitiveLoad)
	assert.Equal(t, types.CognitiveLoadHigh, *update.CognitiveLoad)
	assert.Nil(t, update.Mood, "unreturned keys stay nil so they persist on merge")
	assert.Nil(t, update.EngagementLevel)
}

func TestInferencerPassesSectionTransitionThrough(t *testing.T) {
	fake := &fakeCompleter{reply: `{}`}
	inferencer := NewInferencer(fake)

	analysis := types.ObservationAnalysis{
		ReadingPatterns: types.ReadingPatterns{SectionTransition: true},
	}
	_, err := inferencer.Infer(context.Background(), analysis, types.DefaultUserState())
	require.NoError(t, err)

	assert.Contains(t, fake.lastUser, `"section_transition":true`,
		"the service needs the transition flag to tell natural pauses from confusion")
}

func TestPlannerFormatsElapsedTime(t *testing.T) {
	fake := &fakeCompleter{reply: `{"should_intervene": false, "intervention_type": "none"}`}
	planner := NewPlanner(fake)

	_, err := planner.Plan(context.Background(), types.DefaultUserState(), types.ObservationAnalysis{}, 42.5, types.ReadingSummary{})
	require.NoError(t, err)
	assert.Contains(t, fake.lastUser, "42.5 seconds")

	_, err = planner.Plan(context.Background(), types.DefaultUserState(), types.ObservationAnalysis{}, math.Inf(1), types.ReadingSummary{})
	require.NoError(t, err)
	assert.Contains(t, fake.lastUser, "no intervention yet")
}

func TestPlannerNormalizesListReply(t *testing.T) {
	fake := &fakeCompleter{reply: `[{"should_intervene": true, "intervention_type": "concept_explanation", "urgency": "medium"}]`}
	planner := NewPlanner(fake)

	plan, err := planner.Plan(context.Background(), types.DefaultUserState(), types.ObservationAnalysis{}, 10, types.ReadingSummary{})
	require.NoError(t, err)
	assert.True(t, plan.ShouldIntervene)
	assert.Equal(t, types.InterventionConceptExplanation, plan.InterventionType)
}

func TestResponderFastPath(t *testing.T) {
	fake := &fakeCompleter{reply: `{"response": "should never be requested"}`}
	responder := NewResponder(fake)

	resp, err := responder.Generate(context.Background(),
		types.InterventionPlan{ShouldIntervene: false},
		types.DefaultUserState(), ResponseContext{})
	require.NoError(t, err)

	assert.Equal(t, types.AssistantResponse{}, resp)
	assert.Zero(t, fake.calls, "declined plans must not reach the inference service")
}

func TestResponderObjectReply(t *testing.T) {
	fake := &fakeCompleter{reply: `{"response": "Try re-reading the attention definition.", "display_type": "sidebar"}`}
	responder := NewResponder(fake)

	resp, err := responder.Generate(context.Background(),
		types.InterventionPlan{ShouldIntervene: true, InterventionType: types.InterventionConceptExplanation},
		types.DefaultUserState(), ResponseContext{})
	require.NoError(t, err)

	assert.Equal(t, "Try re-reading the attention definition.", resp.Response)
	assert.Equal(t, types.DisplaySidebar, resp.DisplayType)
	assert.True(t, resp.Intervened())
}

func TestResponderListNormalization(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  types.AssistantResponse
	}{
		{
			name:  "first object-shaped element wins",
			reply: `[{"response": "first", "display_type": "inline"}, {"response": "second"}]`,
			want:  types.AssistantResponse{Response: "first", DisplayType: types.DisplayInline},
		},
		{
			name:  "scalar element coerces to popup",
			reply: `["take a short break"]`,
			want:  types.AssistantResponse{Response: "take a short break", DisplayType: types.DisplayPopup},
		},
		{
			name:  "empty list yields empty response",
			reply: `[]`,
			want:  types.AssistantResponse{},
		},
		{
			name:  "non-JSON reply tolerated as popup",
			reply: `You seem stuck; want a summary of Methods?`,
			want:  types.AssistantResponse{Response: "You seem stuck; want a summary of Methods?", DisplayType: types.DisplayPopup},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{reply: tt.reply}
			responder := NewResponder(fake)

			resp, err := responder.Generate(context.Background(),
				types.InterventionPlan{ShouldIntervene: true},
				types.DefaultUserState(), ResponseContext{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp)
		})
	}
}
