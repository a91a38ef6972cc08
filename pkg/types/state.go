package types

// Cognitive load levels reported by the state inferencer.
const (
	CognitiveLoadLow    = "low"
	CognitiveLoadMedium = "medium"
	CognitiveLoadHigh   = "high"
)

// IsValidCognitiveLoad checks if a cognitive load string is one of the
// recognized levels.
func IsValidCognitiveLoad(s string) bool {
	switch s {
	case CognitiveLoadLow, CognitiveLoadMedium, CognitiveLoadHigh:
		return true
	}
	return false
}

// UserState is the current estimate of the reader's cognitive and emotional
// state. Exactly one live instance exists per session; it is mutated only by
// applying StateUpdate values from the state inferencer.
type UserState struct {
	Mood                 string   `json:"mood"`
	ConfusionLevel       float64  `json:"confusion_level"`   // 0.0 to 1.0
	EngagementLevel      float64  `json:"engagement_level"`  // 0.0 to 1.0
	CognitiveLoad        string   `json:"cognitive_load"`    // low, medium, high
	KnowledgeGaps        []string `json:"knowledge_gaps"`
	NeedsHelpProbability float64  `json:"needs_help_probability"` // 0.0 to 1.0
	AtNaturalBreak       bool     `json:"at_natural_break"`
}

// DefaultUserState returns the user state a fresh session starts with:
// neutral mood, no confusion, middling engagement.
func DefaultUserState() UserState {
	return UserState{
		Mood:            "neutral",
		ConfusionLevel:  0.0,
		EngagementLevel: 0.5,
	}
}

// StateUpdate is the state inferencer's output. Pointer fields distinguish
// "key absent from the reply" (nil, previous value persists) from "key
// present" (overwrite). Slices follow the same rule with nil.
type StateUpdate struct {
	Mood                   *string  `json:"mood"`
	ConfusionLevel         *float64 `json:"confusion_level"`
	EngagementLevel        *float64 `json:"engagement_level"`
	CognitiveLoad          *string  `json:"cognitive_load"`
	PotentialKnowledgeGaps []string `json:"potential_knowledge_gaps"`
	NeedsHelpProbability   *float64 `json:"needs_help_probability"`
	AtNaturalBreak         *bool    `json:"at_natural_break"`
}

// Apply merges a StateUpdate into the state, overwriting only the fields the
// update carries. Fields absent from the update keep their previous values.
func (s *UserState) Apply(u StateUpdate) {
	if u.Mood != nil {
		s.Mood = *u.Mood
	}
	if u.ConfusionLevel != nil {
		s.ConfusionLevel = *u.ConfusionLevel
	}
	if u.EngagementLevel != nil {
		s.EngagementLevel = *u.EngagementLevel
	}
	if u.CognitiveLoad != nil {
		s.CognitiveLoad = *u.CognitiveLoad
	}
	if u.PotentialKnowledgeGaps != nil {
		s.KnowledgeGaps = u.PotentialKnowledgeGaps
	}
	if u.NeedsHelpProbability != nil {
		s.NeedsHelpProbability = *u.NeedsHelpProbability
	}
	if u.AtNaturalBreak != nil {
		s.AtNaturalBreak = *u.AtNaturalBreak
	}
}
