package types

import "testing"

func ptrString(s string) *string  { return &s }
func ptrFloat(f float64) *float64 { return &f }
func ptrBool(b bool) *bool        { return &b }

func TestDefaultUserState(t *testing.T) {
	s := DefaultUserState()
	if s.Mood != "neutral" {
		t.Errorf("expected neutral mood, got %q", s.Mood)
	}
	if s.ConfusionLevel != 0.0 {
		t.Errorf("expected confusion 0.0, got %f", s.ConfusionLevel)
	}
	if s.EngagementLevel != 0.5 {
		t.Errorf("expected engagement 0.5, got %f", s.EngagementLevel)
	}
}

func TestUserStateApply(t *testing.T) {
	tests := []struct {
		name   string
		update StateUpdate
		check  func(t *testing.T, s UserState)
	}{
		{
			name:   "empty update preserves all fields",
			update: StateUpdate{},
			check: func(t *testing.T, s UserState) {
				if s.Mood != "neutral" || s.EngagementLevel != 0.5 {
					t.Errorf("empty update changed state: %+v", s)
				}
			},
		},
		{
			name: "partial update overwrites only returned keys",
			update: StateUpdate{
				ConfusionLevel: ptrFloat(0.8),
				CognitiveLoad:  ptrString(CognitiveLoadHigh),
			},
			check: func(t *testing.T, s UserState) {
				if s.ConfusionLevel != 0.8 {
					t.Errorf("confusion = %f, want 0.8", s.ConfusionLevel)
				}
				if s.CognitiveLoad != CognitiveLoadHigh {
					t.Errorf("cognitive load = %q, want high", s.CognitiveLoad)
				}
				if s.Mood != "neutral" {
					t.Errorf("mood changed unexpectedly to %q", s.Mood)
				}
				if s.EngagementLevel != 0.5 {
					t.Errorf("engagement changed unexpectedly to %f", s.EngagementLevel)
				}
			},
		},
		{
			name: "explicit zero overwrites",
			update: StateUpdate{
				EngagementLevel: ptrFloat(0.0),
				AtNaturalBreak:  ptrBool(true),
			},
			check: func(t *testing.T, s UserState) {
				if s.EngagementLevel != 0.0 {
					t.Errorf("engagement = %f, want 0.0", s.EngagementLevel)
				}
				if !s.AtNaturalBreak {
					t.Error("at_natural_break not applied")
				}
			},
		},
		{
			name: "knowledge gaps replaced when present",
			update: StateUpdate{
				PotentialKnowledgeGaps: []string{"attention", "softmax"},
			},
			check: func(t *testing.T, s UserState) {
				if len(s.KnowledgeGaps) != 2 || s.KnowledgeGaps[0] != "attention" {
					t.Errorf("knowledge gaps = %v", s.KnowledgeGaps)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultUserState()
			s.Apply(tt.update)
			tt.check(t, s)
		})
	}
}

func TestValidityHelpers(t *testing.T) {
	if !IsValidInterventionType(InterventionConceptExplanation) {
		t.Error("concept_explanation should be valid")
	}
	if IsValidInterventionType("lecture") {
		t.Error("lecture should not be valid")
	}
	if !IsValidCognitiveLoad(CognitiveLoadMedium) {
		t.Error("medium should be valid")
	}
	if IsValidCognitiveLoad("extreme") {
		t.Error("extreme should not be valid")
	}
	if !IsValidUrgency(UrgencyHigh) {
		t.Error("high should be valid")
	}
	if !IsValidDisplayType(DisplaySidebar) {
		t.Error("sidebar should be valid")
	}
	if IsValidDisplayType("modal") {
		t.Error("modal should not be valid")
	}
	if !IsValidReadingSpeed(ReadingSpeedSlow) {
		t.Error("slow should be valid")
	}
}
