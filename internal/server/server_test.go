package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lector/internal/assistant"
	"github.com/scrypster/lector/internal/config"
	"github.com/scrypster/lector/internal/study"
)

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

func startTestServer(t *testing.T, replies ...string) string {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Security: config.SecurityConfig{
			SecurityMode:    "development",
			RateLimitPerSec: 100,
			RateLimitBurst:  100,
		},
	}

	a := assistant.New(&queueCompleter{replies: replies}, assistant.DefaultConfig())
	session := study.NewSession(a, study.ModeTesting, "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		time.Sleep(50 * time.Millisecond)
	})

	addr, _ := Start(ctx, cfg, session)
	return "http://" + addr
}

func TestHealthEndpoint(t *testing.T) {
	base := startTestServer(t)

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "healthy")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestObserveEndToEnd(t *testing.T) {
	base := startTestServer(t,
		`{"current_content": "attention", "section_name": "Methods", "reading_patterns": {"reading_speed": "slow"}}`,
		`{"confusion_level": 0.6, "needs_help_probability": 0.7}`,
		`{"should_intervene": true, "intervention_type": "concept_explanation", "urgency": "medium", "specific_target": "attention", "reasoning": "stuck", "respect_reading_flow": true}`,
		`{"response": "Attention weighs input tokens by relevance.", "display_type": "popup"}`,
	)

	resp, err := http.Post(base+"/api/observe", "application/json",
		strings.NewReader(`{"observation": "User pauses in the Methods section."}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"intervened":true`)

	stateResp, err := http.Get(base + "/api/state")
	require.NoError(t, err)
	defer stateResp.Body.Close()
	stateBody, _ := io.ReadAll(stateResp.Body)
	assert.Contains(t, string(stateBody), "concept_explanation")
}

func TestMethodNotAllowed(t *testing.T) {
	base := startTestServer(t)

	resp, err := http.Get(base + "/api/observe")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
