package study

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lector/internal/assistant"
)

// queueCompleter replays canned replies in order.
type queueCompleter struct {
	mu      sync.Mutex
	replies []string
}

func (q *queueCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.replies) == 0 {
		return "{}", nil
	}
	reply := q.replies[0]
	q.replies = q.replies[1:]
	return reply, nil
}

func (q *queueCompleter) GetModel() string { return "queued" }

const (
	testAnalysis = `{"current_content": "attention", "section_name": "Methods", "reading_patterns": {"reading_speed": "slow"}}`
	testUpdate   = `{"confusion_level": 0.6, "needs_help_probability": 0.7}`
	testPlan     = `{"should_intervene": true, "intervention_type": "concept_explanation", "urgency": "medium", "specific_target": "attention", "reasoning": "stuck", "respect_reading_flow": true}`
	testResponse = `{"response": "Attention weighs input tokens by relevance.", "display_type": "popup"}`
	testQuiet    = `{"should_intervene": false, "intervention_type": "none", "urgency": "low", "specific_target": "", "reasoning": "fine", "respect_reading_flow": true}`
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewSessionGeneratesTestParticipant(t *testing.T) {
	a := assistant.New(&queueCompleter{}, assistant.DefaultConfig())
	s := NewSession(a, "", "", nil)

	assert.Equal(t, ModeTesting, s.Mode)
	assert.True(t, strings.HasPrefix(s.ParticipantID, "test_"))
	assert.Len(t, s.ParticipantID, len("test_")+8)
	assert.NotEmpty(t, s.ID)
}

func TestSessionCountsInterventionsAndFeedback(t *testing.T) {
	client := &queueCompleter{replies: []string{testAnalysis, testUpdate, testPlan, testResponse}}
	a := assistant.New(client, assistant.DefaultConfig())
	s := NewSession(a, ModeEvaluation, "p01", newTestStore(t))

	resp := s.ProcessObservation(context.Background(), "User pauses in the Methods section.")
	require.True(t, resp.Intervened())

	s.RecordFeedback(context.Background(), true)
	s.RecordFeedback(context.Background(), false)

	m := s.Metrics()
	assert.Equal(t, 1, m.ObservationsProcessed)
	assert.Equal(t, 1, m.AIInterventions)
	assert.Equal(t, 1, m.InterventionsAccepted)
	assert.Equal(t, 1, m.InterventionsRejected)
	assert.Equal(t, 1, m.PausesDetected)
	assert.InDelta(t, 0.5, m.AcceptanceRate(), 1e-9)
}

func TestSessionPersistsInteractions(t *testing.T) {
	store := newTestStore(t)
	client := &queueCompleter{replies: []string{testAnalysis, testUpdate, testQuiet}}
	a := assistant.New(client, assistant.DefaultConfig())
	s := NewSession(a, ModeTesting, "", store)

	s.ProcessObservation(context.Background(), "User re-reads the paragraph about attention.")
	s.RecordFeedback(context.Background(), true)

	log, err := store.Interactions(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "observation", log[0].Kind)
	assert.Contains(t, log[0].Observation, "re-reads")
	assert.Empty(t, log[0].Response)
	assert.Equal(t, "feedback", log[1].Kind)
	require.NotNil(t, log[1].Accepted)
	assert.True(t, *log[1].Accepted)
}

func TestSessionSaveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	client := &queueCompleter{replies: []string{testAnalysis, testUpdate, testQuiet}}
	a := assistant.New(client, assistant.DefaultConfig())
	s := NewSession(a, ModeEvaluation, "p02", store)

	s.ProcessObservation(context.Background(), "User reads the Introduction section.")
	require.NoError(t, s.Save(context.Background(), false))

	rec, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "p02", rec.ParticipantID)
	assert.Equal(t, ModeEvaluation, rec.Mode)
	assert.Nil(t, rec.EndedAt, "checkpoint saves leave the session open")
	assert.Equal(t, 1, rec.Metrics.ObservationsProcessed)

	require.NoError(t, s.Save(context.Background(), true))
	rec, err = store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.NotNil(t, rec.EndedAt)
}

func TestGetSessionNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportContainsMetricsAndSections(t *testing.T) {
	client := &queueCompleter{replies: []string{testAnalysis, testUpdate, testPlan, testResponse}}
	a := assistant.New(client, assistant.DefaultConfig())
	s := NewSession(a, ModeTesting, "p03", nil)

	s.ProcessObservation(context.Background(), "User pauses at the word 'attention' while reading --TITLE-- Attention Is All You Need.")
	s.RecordFeedback(context.Background(), true)

	report := s.Report()
	assert.Contains(t, report, "# Reading Session Report")
	assert.Contains(t, report, "p03")
	assert.Contains(t, report, "Attention Is All You Need")
	assert.Contains(t, report, "| AI interventions | 1 |")
	assert.Contains(t, report, "concept_explanation")
	assert.Contains(t, report, "- attention")
}
