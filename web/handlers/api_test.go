package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lector/internal/assistant"
	"github.com/scrypster/lector/internal/study"
	"github.com/scrypster/lector/web/handlers"
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
	analysisReply = `{"current_content": "attention", "section_name": "Methods", "reading_patterns": {"reading_speed": "slow"}}`
	updateReply   = `{"confusion_level": 0.6, "needs_help_probability": 0.7}`
	planReply     = `{"should_intervene": true, "intervention_type": "concept_explanation", "urgency": "medium", "specific_target": "attention", "reasoning": "stuck", "respect_reading_flow": true}`
	responseReply = `{"response": "Attention weighs input tokens by relevance.", "display_type": "popup"}`
	quietReply    = `{"should_intervene": false, "intervention_type": "none", "urgency": "low", "specific_target": "", "reasoning": "fine", "respect_reading_flow": true}`
)

func newTestHandlers(t *testing.T, replies ...string) *handlers.SessionHandlers {
	t.Helper()
	a := assistant.New(&queueCompleter{replies: replies}, assistant.DefaultConfig())
	session := study.NewSession(a, study.ModeTesting, "p01", nil)
	return handlers.NewSessionHandlers(session, nil)
}

func TestObserve_ReturnsIntervention(t *testing.T) {
	h := newTestHandlers(t, analysisReply, updateReply, planReply, responseReply)

	req := httptest.NewRequest("POST", "/api/observe",
		strings.NewReader(`{"observation": "User pauses in the Methods section."}`))
	w := httptest.NewRecorder()
	h.Observe(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"intervened":true`)
	assert.Contains(t, body, "Attention weighs input tokens by relevance.")
	assert.Contains(t, body, `"display_type":"popup"`)
}

func TestObserve_QuietResponse(t *testing.T) {
	h := newTestHandlers(t, analysisReply, updateReply, quietReply)

	req := httptest.NewRequest("POST", "/api/observe",
		strings.NewReader(`{"observation": "User scrolls steadily."}`))
	w := httptest.NewRecorder()
	h.Observe(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"intervened":false`)
}

func TestObserve_RejectsEmptyObservation(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest("POST", "/api/observe", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.Observe(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "observation is required")
}

func TestObserve_RejectsMalformedBody(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest("POST", "/api/observe", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	h.Observe(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestObserve_BroadcastsToHub(t *testing.T) {
	a := assistant.New(&queueCompleter{replies: []string{analysisReply, updateReply, planReply, responseReply}}, assistant.DefaultConfig())
	session := study.NewSession(a, study.ModeTesting, "p01", nil)

	hub := handlers.NewWebSocketHub(nil)
	go hub.Run()
	defer hub.Stop()

	received := make(chan []byte, 1)
	hub.Register(&handlers.MockClient{SendChan: received})
	time.Sleep(10 * time.Millisecond)

	h := handlers.NewSessionHandlers(session, hub)
	req := httptest.NewRequest("POST", "/api/observe",
		strings.NewReader(`{"observation": "User pauses in the Methods section."}`))
	w := httptest.NewRecorder()
	h.Observe(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case msg := <-received:
		assert.Contains(t, string(msg), `"type":"intervention"`)
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for intervention broadcast")
	}
}

func TestFeedbackAndState(t *testing.T) {
	h := newTestHandlers(t, analysisReply, updateReply, planReply, responseReply)

	req := httptest.NewRequest("POST", "/api/observe",
		strings.NewReader(`{"observation": "User pauses in the Methods section."}`))
	h.Observe(httptest.NewRecorder(), req)

	req = httptest.NewRequest("POST", "/api/feedback", strings.NewReader(`{"accepted": true}`))
	w := httptest.NewRecorder()
	h.Feedback(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.State(w, httptest.NewRequest("GET", "/api/state", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"participant_id":"p01"`)
	assert.Contains(t, body, `"interventions_accepted":1`)
	assert.Contains(t, body, `"ai_interventions":1`)
	assert.Contains(t, body, `"confusion_level":0.6`)
}

func TestResetClearsSessionState(t *testing.T) {
	h := newTestHandlers(t, analysisReply, updateReply, planReply, responseReply)

	req := httptest.NewRequest("POST", "/api/observe",
		strings.NewReader(`{"observation": "User pauses in the Methods section."}`))
	h.Observe(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.Reset(w, httptest.NewRequest("POST", "/api/reset", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.State(w, httptest.NewRequest("GET", "/api/state", nil))
	assert.NotContains(t, w.Body.String(), "concept_explanation")
	assert.Contains(t, w.Body.String(), `"mood":"neutral"`)
}

func TestReportRendersMarkdown(t *testing.T) {
	h := newTestHandlers(t, analysisReply, updateReply, quietReply)

	req := httptest.NewRequest("POST", "/api/observe",
		strings.NewReader(`{"observation": "User reads the Introduction section."}`))
	h.Observe(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.Report(w, httptest.NewRequest("GET", "/api/report", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Reading Session Report")
}
