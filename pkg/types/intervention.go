package types

import "time"

// Intervention types the planner stage may choose.
const (
	InterventionConceptExplanation = "concept_explanation"
	InterventionSectionSummary     = "section_summary"
	InterventionEncouragement      = "encouragement"
	InterventionBreakSuggestion    = "break_suggestion"
	InterventionRelatedResources   = "related_resources"
	InterventionSectionTransition  = "section_transition"
	InterventionNone               = "none"
)

// IsValidInterventionType checks if an intervention type string is one of
// the recognized types.
func IsValidInterventionType(s string) bool {
	switch s {
	case InterventionConceptExplanation, InterventionSectionSummary,
		InterventionEncouragement, InterventionBreakSuggestion,
		InterventionRelatedResources, InterventionSectionTransition,
		InterventionNone:
		return true
	}
	return false
}

// Urgency levels for a planned intervention.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// IsValidUrgency checks if an urgency string is one of the recognized levels.
func IsValidUrgency(s string) bool {
	switch s {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// Display types for a generated response.
const (
	DisplayPopup   = "popup"
	DisplaySidebar = "sidebar"
	DisplayInline  = "inline"
)

// IsValidDisplayType checks if a display type string is one of the
// recognized values.
func IsValidDisplayType(s string) bool {
	switch s {
	case DisplayPopup, DisplaySidebar, DisplayInline:
		return true
	}
	return false
}

// InterventionPlan is the planner stage's decision on whether and how to
// surface help to the reader.
type InterventionPlan struct {
	ShouldIntervene    bool   `json:"should_intervene"`
	InterventionType   string `json:"intervention_type"`
	Urgency            string `json:"urgency"`
	SpecificTarget     string `json:"specific_target"`
	Reasoning          string `json:"reasoning"`
	RespectReadingFlow bool   `json:"respect_reading_flow"`
}

// AssistantResponse is the final user-facing output of a pipeline cycle.
// An empty Response means the assistant stays quiet.
type AssistantResponse struct {
	Response    string `json:"response"`
	DisplayType string `json:"display_type"` // popup, sidebar, inline
}

// Intervened reports whether the response carries a message for the reader.
func (r AssistantResponse) Intervened() bool {
	return r.Response != ""
}

// InterventionRecord is an entry in the session's intervention history,
// appended whenever a pipeline cycle generated a non-empty response.
type InterventionRecord struct {
	Timestamp time.Time        `json:"timestamp"`
	Plan      InterventionPlan `json:"intervention"`
}

// EffectivenessRecord attributes a change in confusion and engagement to a
// single intervention. It is computed from the user-state snapshots
// immediately before and after the intervention's processing cycle, so the
// effectiveness log corresponds 1:1 with the intervention history.
type EffectivenessRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	InterventionType string    `json:"type"`
	Accepted         bool      `json:"accepted"`
	ConfusionDelta   float64   `json:"confusion_delta"`
	EngagementDelta  float64   `json:"engagement_delta"`
}
