package memory

import (
	"time"

	"github.com/scrypster/lector/pkg/types"
)

// readingMetrics tracks per-section timing, struggled concepts, and the
// intervention-effectiveness log. At most one section has an open timer at
// any time: starting a new section closes the previous one first.
type readingMetrics struct {
	sectionsCompleted []string
	currentSection    string
	sectionStart      map[string]time.Time
	timePerSection    map[string]float64
	struggledConcepts []string
	effectiveness     []types.EffectivenessRecord
}

func newReadingMetrics() *readingMetrics {
	return &readingMetrics{
		sectionStart:   make(map[string]time.Time),
		timePerSection: make(map[string]float64),
	}
}

// startSection opens the timer for a newly current section, closing the
// previous section's timer if one is open.
func (m *readingMetrics) startSection(name string, now time.Time) {
	if m.currentSection != "" {
		m.completeSection(m.currentSection, now)
	}
	m.currentSection = name
	m.sectionStart[name] = now
}

// completeSection closes a section's open timer and records its duration.
func (m *readingMetrics) completeSection(name string, now time.Time) {
	start, ok := m.sectionStart[name]
	if !ok {
		return
	}
	delete(m.sectionStart, name)
	m.timePerSection[name] = now.Sub(start).Seconds()
	m.sectionsCompleted = append(m.sectionsCompleted, name)
}

// addStruggledConcept records a concept the reader struggled with,
// append-if-absent.
func (m *readingMetrics) addStruggledConcept(concept string) {
	for _, c := range m.struggledConcepts {
		if c == concept {
			return
		}
	}
	m.struggledConcepts = append(m.struggledConcepts, concept)
}

// recordOutcome logs an intervention's effectiveness from the user-state
// snapshots before and after its processing cycle.
func (m *readingMetrics) recordOutcome(interventionType string, accepted bool, before, after types.UserState, now time.Time) {
	m.effectiveness = append(m.effectiveness, types.EffectivenessRecord{
		Timestamp:        now,
		InterventionType: interventionType,
		Accepted:         accepted,
		ConfusionDelta:   after.ConfusionLevel - before.ConfusionLevel,
		EngagementDelta:  after.EngagementLevel - before.EngagementLevel,
	})
}

// summary builds the reading-metrics view for the planner and collaborators.
func (m *readingMetrics) summary() types.ReadingSummary {
	var total float64
	for _, d := range m.timePerSection {
		total += d
	}
	var avg float64
	if len(m.timePerSection) > 0 {
		avg = total / float64(len(m.timePerSection))
	}
	return types.ReadingSummary{
		SectionsCompleted:     len(m.sectionsCompleted),
		TotalReadingTime:      total,
		AverageTimePerSection: avg,
		ConceptsStruggled:     append([]string(nil), m.struggledConcepts...),
		CurrentSection:        m.currentSection,
	}
}
