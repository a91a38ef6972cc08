// Package study wraps the reading assistant with the bookkeeping used for
// user studies: per-participant sessions, interaction logging, aggregate
// metrics, and a human-readable evaluation report. The assistant itself is
// unaware of studies; this package observes it from outside.
package study

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/lector/internal/assistant"
	"github.com/scrypster/lector/pkg/types"
)

// Study modes. Testing sessions use generated participant IDs; evaluation
// sessions carry a real participant ID assigned by the study coordinator.
const (
	ModeTesting    = "testing"
	ModeEvaluation = "evaluation"
)

// Metrics aggregates what happened during a session.
type Metrics struct {
	TotalReadingTime      float64 `json:"total_reading_time"` // seconds
	SectionsCompleted     int     `json:"sections_completed"`
	ObservationsProcessed int     `json:"observations_processed"`
	AIInterventions       int     `json:"ai_interventions"`
	InterventionsAccepted int     `json:"interventions_accepted"`
	InterventionsRejected int     `json:"interventions_rejected"`
	PausesDetected        int     `json:"pauses_detected"`
	RereadingDetected     int     `json:"rereading_detected"`
}

// AcceptanceRate returns the fraction of rated interventions the participant
// accepted, or 0 when none were rated.
func (m Metrics) AcceptanceRate() float64 {
	rated := m.InterventionsAccepted + m.InterventionsRejected
	if rated == 0 {
		return 0
	}
	return float64(m.InterventionsAccepted) / float64(rated)
}

// Session ties one assistant instance to one study participant.
type Session struct {
	mu sync.Mutex

	ID            string
	ParticipantID string
	Mode          string
	StartedAt     time.Time

	assistant *assistant.Assistant
	store     *Store // nil disables persistence
	metrics   Metrics
}

// NewSession starts a study session around an assistant. An empty
// participantID gets a generated test identity. A nil store disables
// persistence; the session still tracks metrics in memory.
func NewSession(a *assistant.Assistant, mode, participantID string, store *Store) *Session {
	if mode == "" {
		mode = ModeTesting
	}
	if participantID == "" {
		participantID = "test_" + uuid.NewString()[:8]
	}
	return &Session{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		Mode:          mode,
		StartedAt:     time.Now(),
		assistant:     a,
		store:         store,
	}
}

// Assistant returns the wrapped assistant.
func (s *Session) Assistant() *assistant.Assistant {
	return s.assistant
}

// ProcessObservation feeds one observation to the assistant and records the
// exchange. Persistence failures are logged, never surfaced: losing a study
// log line must not break the reading session.
func (s *Session) ProcessObservation(ctx context.Context, text string) types.AssistantResponse {
	resp := s.assistant.ProcessObservation(ctx, text)

	s.mu.Lock()
	s.metrics.ObservationsProcessed++
	lower := strings.ToLower(text)
	if strings.Contains(lower, "pause") {
		s.metrics.PausesDetected++
	}
	if strings.Contains(lower, "re-read") || strings.Contains(lower, "reread") {
		s.metrics.RereadingDetected++
	}
	if resp.Intervened() {
		s.metrics.AIInterventions++
	}
	s.mu.Unlock()

	s.logInteraction(ctx, Interaction{
		Kind:        "observation",
		Observation: text,
		Response:    resp.Response,
		DisplayType: resp.DisplayType,
	})
	return resp
}

// RecordFeedback tallies the participant's verdict on the most recent
// intervention.
func (s *Session) RecordFeedback(ctx context.Context, accepted bool) {
	s.mu.Lock()
	if accepted {
		s.metrics.InterventionsAccepted++
	} else {
		s.metrics.InterventionsRejected++
	}
	s.mu.Unlock()

	s.logInteraction(ctx, Interaction{
		Kind:     "feedback",
		Accepted: &accepted,
	})
}

// Metrics returns a snapshot of the session metrics, with reading-time
// figures refreshed from the assistant.
func (s *Session) Metrics() Metrics {
	summary := s.assistant.Memory().ReadingSummary()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.TotalReadingTime = summary.TotalReadingTime
	s.metrics.SectionsCompleted = summary.SectionsCompleted
	return s.metrics
}

// Save persists the session row with current metrics. The ended timestamp is
// stamped only when final is true, so periodic checkpoints keep the session
// open.
func (s *Session) Save(ctx context.Context, final bool) error {
	if s.store == nil {
		return nil
	}
	rec := SessionRecord{
		ID:            s.ID,
		ParticipantID: s.ParticipantID,
		Mode:          s.Mode,
		StartedAt:     s.StartedAt,
		Metrics:       s.Metrics(),
	}
	if final {
		now := time.Now()
		rec.EndedAt = &now
	}
	return s.store.SaveSession(ctx, rec)
}

func (s *Session) logInteraction(ctx context.Context, it Interaction) {
	if s.store == nil {
		return
	}
	if err := s.store.AppendInteraction(ctx, s.ID, it); err != nil {
		log.Printf("Warning: failed to log study interaction: %v", err)
	}
}
