// Package assistant is the orchestrator of the reading-assistant core. It
// sequences the four inference stages for each admitted observation,
// centralizes all session-memory mutation, and enforces the gating policy
// that bounds how often the pipeline (and with it the inference service)
// runs.
package assistant

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/scrypster/lector/internal/extract"
	"github.com/scrypster/lector/internal/llm"
	"github.com/scrypster/lector/internal/memory"
	"github.com/scrypster/lector/internal/stages"
	"github.com/scrypster/lector/pkg/types"
)

// Config holds the orchestrator policy knobs.
type Config struct {
	// MinInterventionGap is the minimum wall-clock interval between two
	// processed observations. Observations arriving faster are logged but
	// not run through the pipeline. Default: 2s
	MinInterventionGap time.Duration

	// RecentWindow is how many recent observations the analyzer sees per
	// cycle. Default: 5
	RecentWindow int
}

// DefaultConfig returns the reference gating policy.
func DefaultConfig() Config {
	return Config{
		MinInterventionGap: 2 * time.Second,
		RecentWindow:       5,
	}
}

// Assistant coordinates the stages and owns the session memory. All public
// methods serialize on the session: at most one pipeline execution is in
// flight per Assistant at a time. Concurrent sessions get independent
// Assistant instances.
type Assistant struct {
	mu         sync.Mutex
	mem        *memory.Memory
	analyzer   *stages.Analyzer
	inferencer *stages.Inferencer
	planner    *stages.Planner
	responder  *stages.Responder
	cfg        Config
}

// New creates an assistant with a fresh session memory on top of the given
// inference client.
func New(client llm.ChatCompleter, cfg Config) *Assistant {
	if cfg.MinInterventionGap == 0 {
		cfg.MinInterventionGap = 2 * time.Second
	}
	if cfg.RecentWindow == 0 {
		cfg.RecentWindow = 5
	}
	return &Assistant{
		mem:        memory.New(),
		analyzer:   stages.NewAnalyzer(client),
		inferencer: stages.NewInferencer(client),
		planner:    stages.NewPlanner(client),
		responder:  stages.NewResponder(client),
		cfg:        cfg,
	}
}

// Memory exposes the session memory for bookkeeping collaborators. The
// memory serializes its own access; callers must not retain internal slices.
func (a *Assistant) Memory() *memory.Memory {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mem
}

// ProcessObservation runs one observation through the decision pipeline and
// returns the assistant's response, which is empty when the assistant stays
// quiet. The observation is always recorded; the pipeline only runs when
// the gate admits it. Stage failures are logged and degrade to the empty
// response; the session survives and the next observation proceeds
// normally.
func (a *Assistant) ProcessObservation(ctx context.Context, observation string) types.AssistantResponse {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mem.AddObservation(observation)

	title, section := extract.ExtractContext(observation)
	if title != "" || section != "" {
		a.mem.UpdatePaperContext(title, section)
	}
	for _, concept := range extract.ExtractStruggleConcepts(observation) {
		a.mem.AddStruggledConcept(concept)
	}

	if !a.mem.TryAdmit(a.cfg.MinInterventionGap) {
		return types.AssistantResponse{}
	}

	recent := a.mem.Recent(a.cfg.RecentWindow)
	window := make([]string, len(recent))
	for i, obs := range recent {
		window[i] = obs.Text
	}

	analysis, err := a.analyzer.Analyze(ctx, window)
	if err != nil {
		log.Printf("Warning: skipping cycle: %v", err)
		return types.AssistantResponse{}
	}

	// The analyzer may identify context the extractor missed. The title is
	// only adopted when none is known yet; the section tracks the reader.
	analyzedTitle := analysis.PaperTitle
	if a.mem.PaperContext().Title != "" {
		analyzedTitle = ""
	}
	if analyzedTitle != "" || analysis.SectionName != "" {
		a.mem.UpdatePaperContext(analyzedTitle, analysis.SectionName)
	}

	before := a.mem.UserState()
	update, err := a.inferencer.Infer(ctx, analysis, before)
	if err != nil {
		log.Printf("Warning: skipping cycle: %v", err)
		return types.AssistantResponse{}
	}
	a.mem.ApplyStateUpdate(update)
	state := a.mem.UserState()

	plan, err := a.planner.Plan(ctx, state, analysis, a.mem.TimeSinceLastIntervention(), a.mem.ReadingSummary())
	if err != nil {
		log.Printf("Warning: skipping cycle: %v", err)
		return types.AssistantResponse{}
	}

	response, err := a.responder.Generate(ctx, plan, state, stages.ResponseContext{
		CurrentContent: analysis.CurrentContent,
		PaperContext:   a.mem.PaperContext(),
		ReadingMetrics: a.mem.ReadingSummary(),
	})
	if err != nil {
		log.Printf("Warning: skipping cycle: %v", err)
		return types.AssistantResponse{}
	}

	if response.Intervened() {
		a.mem.AddIntervention(plan)
		interventionType := plan.InterventionType
		if interventionType == "" {
			interventionType = "unknown"
		}
		// Effectiveness is logged at generation time with accepted=true;
		// confirmed user feedback is tallied separately by study
		// bookkeeping.
		a.mem.RecordInterventionOutcome(interventionType, true, before, state)
	}

	return response
}

// Snapshot returns the externally visible session state.
func (a *Assistant) Snapshot() types.SessionSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mem.Snapshot()
}

// Reset discards the session memory and starts fresh.
func (a *Assistant) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mem = memory.New()
}
