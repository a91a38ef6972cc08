// Package memory holds the mutable per-session state of the reading
// assistant: the observation log, the current user-state estimate, paper
// context, reading metrics, and the intervention history.
//
// A Memory is created fresh at session start and discarded on reset; it has
// no persistence responsibility. All methods serialize on a single mutex so
// concurrent request handlers observe a consistent session (at most one
// in-flight pipeline execution per session is assumed by the orchestrator).
package memory

import (
	"math"
	"sync"
	"time"

	"github.com/scrypster/lector/pkg/types"
)

// Memory is the only shared mutable resource of a session.
type Memory struct {
	mu sync.Mutex

	observations  []types.Observation
	userState     types.UserState
	paperContext  types.PaperContext
	metrics       *readingMetrics
	interventions []types.InterventionRecord

	lastInterventionAt time.Time // zero until the first recorded intervention
	lastAdmittedAt     time.Time // gating timestamp, zero until first admission

	now func() time.Time // injectable clock for tests
}

// New creates an empty session memory with the default user state.
func New() *Memory {
	return &Memory{
		userState: types.DefaultUserState(),
		metrics:   newReadingMetrics(),
		now:       time.Now,
	}
}

// SetClock replaces the wall clock, for tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// AddObservation appends a timestamped observation to the log. Observations
// are immutable once appended and are never reordered or deleted.
func (m *Memory) AddObservation(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, types.Observation{
		Timestamp: m.now(),
		Text:      text,
	})
}

// Recent returns the last n observations in arrival order (oldest first).
func (m *Memory) Recent(n int) []types.Observation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.observations) {
		n = len(m.observations)
	}
	return append([]types.Observation(nil), m.observations[len(m.observations)-n:]...)
}

// ObservationCount returns the number of logged observations.
func (m *Memory) ObservationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.observations)
}

// UserState returns a copy of the current user-state estimate.
func (m *Memory) UserState() types.UserState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.userState
	s.KnowledgeGaps = append([]string(nil), s.KnowledgeGaps...)
	return s
}

// ApplyStateUpdate merges a state inferencer output into the current user
// state. Only fields present in the update are overwritten.
func (m *Memory) ApplyStateUpdate(u types.StateUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userState.Apply(u)
}

// PaperContext returns a copy of the paper context.
func (m *Memory) PaperContext() types.PaperContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx := m.paperContext
	ctx.SectionsSeen = append([]string(nil), ctx.SectionsSeen...)
	return ctx
}

// UpdatePaperContext records the paper title and/or current section. A new
// section is appended to SectionsSeen (append-if-absent) and its metrics
// timer starts, implicitly closing the previous section's timer. Empty
// arguments leave the corresponding field untouched.
func (m *Memory) UpdatePaperContext(title, section string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if title != "" {
		m.paperContext.Title = title
	}
	if section == "" {
		return
	}
	m.paperContext.CurrentSection = section
	for _, seen := range m.paperContext.SectionsSeen {
		if seen == section {
			return
		}
	}
	m.paperContext.SectionsSeen = append(m.paperContext.SectionsSeen, section)
	m.metrics.startSection(section, m.now())
}

// AddStruggledConcept records a concept the reader struggled with.
func (m *Memory) AddStruggledConcept(concept string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.addStruggledConcept(concept)
}

// AddIntervention appends an intervention record and stamps the last
// intervention time to now.
func (m *Memory) AddIntervention(plan types.InterventionPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.interventions = append(m.interventions, types.InterventionRecord{
		Timestamp: now,
		Plan:      plan,
	})
	m.lastInterventionAt = now
}

// RecordInterventionOutcome logs the effectiveness delta for the most
// recent intervention, computed from before/after user-state snapshots.
func (m *Memory) RecordInterventionOutcome(interventionType string, accepted bool, before, after types.UserState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.recordOutcome(interventionType, accepted, before, after, m.now())
}

// TimeSinceLastIntervention returns elapsed seconds since the last recorded
// intervention, or +Inf if none has been recorded yet.
func (m *Memory) TimeSinceLastIntervention() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastInterventionAt.IsZero() {
		return math.Inf(1)
	}
	return m.now().Sub(m.lastInterventionAt).Seconds()
}

// TryAdmit implements the gating policy: it returns true and stamps the
// admission time when at least minInterval has elapsed since the previous
// admission (or none has happened yet). On false the caller must skip the
// pipeline for this observation; the observation itself stays in the log.
func (m *Memory) TryAdmit(minInterval time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if !m.lastAdmittedAt.IsZero() && now.Sub(m.lastAdmittedAt) < minInterval {
		return false
	}
	m.lastAdmittedAt = now
	return true
}

// InterventionHistory returns a copy of the intervention history.
func (m *Memory) InterventionHistory() []types.InterventionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.InterventionRecord(nil), m.interventions...)
}

// EffectivenessLog returns a copy of the intervention-effectiveness log.
func (m *Memory) EffectivenessLog() []types.EffectivenessRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.EffectivenessRecord(nil), m.metrics.effectiveness...)
}

// ReadingSummary returns the current reading-metrics summary.
func (m *Memory) ReadingSummary() types.ReadingSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics.summary()
}

// TimePerSection returns a copy of the closed-section timing table.
func (m *Memory) TimePerSection() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.metrics.timePerSection))
	for k, v := range m.metrics.timePerSection {
		out[k] = v
	}
	return out
}

// Snapshot returns the externally visible view of the session state.
func (m *Memory) Snapshot() types.SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx := m.paperContext
	ctx.SectionsSeen = append([]string(nil), ctx.SectionsSeen...)
	state := m.userState
	state.KnowledgeGaps = append([]string(nil), state.KnowledgeGaps...)
	return types.SessionSnapshot{
		UserState:           state,
		PaperContext:        ctx,
		ReadingMetrics:      m.metrics.summary(),
		InterventionHistory: append([]types.InterventionRecord(nil), m.interventions...),
	}
}
