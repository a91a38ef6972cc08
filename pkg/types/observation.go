// Package types defines the shared domain types for lector: observations,
// user state, paper context, stage outputs, and intervention records.
package types

import "time"

// Observation is a single timestamped description of user reading behavior.
// Observations are immutable once appended to the session log.
type Observation struct {
	Timestamp time.Time `json:"timestamp"` // When the observation arrived
	Text      string    `json:"text"`      // Free-text behavior description
}

// Reading speed values reported by the observation analyzer.
const (
	ReadingSpeedFast   = "fast"
	ReadingSpeedNormal = "normal"
	ReadingSpeedSlow   = "slow"
)

// IsValidReadingSpeed checks if a reading speed string is one of the
// recognized values.
func IsValidReadingSpeed(s string) bool {
	switch s {
	case ReadingSpeedFast, ReadingSpeedNormal, ReadingSpeedSlow:
		return true
	}
	return false
}

// ReadingPatterns captures the behavioral signals the analyzer stage detects
// in the recent observation window.
type ReadingPatterns struct {
	IsPausing           bool     `json:"is_pausing"`
	IsRereading         bool     `json:"is_rereading"`
	ReadingSpeed        string   `json:"reading_speed"`       // fast, normal, slow
	ConfusionIndicators []string `json:"confusion_indicators"`
	SectionTransition   bool     `json:"section_transition"`
}

// ObservationAnalysis is the structured "what is happening now" result
// produced by the observation analyzer stage. Fields may be empty when the
// analyzer could not identify them.
type ObservationAnalysis struct {
	CurrentContent   string          `json:"current_content"`
	SectionName      string          `json:"section_name"`
	PaperTitle       string          `json:"paper_title"`
	ReadingPatterns  ReadingPatterns `json:"reading_patterns"`
	UserActions      []string        `json:"user_actions"`
	TimeOnSection    string          `json:"time_on_section"`
	StruggleConcepts []string        `json:"struggle_concepts"`
}
