package study

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Report renders the session as a markdown evaluation report: identity,
// aggregate metrics, and the reading trace pulled from the assistant.
func (s *Session) Report() string {
	metrics := s.Metrics()
	snap := s.assistant.Snapshot()

	var b strings.Builder
	b.WriteString("# Reading Session Report\n\n")
	fmt.Fprintf(&b, "- **Session**: %s\n", s.ID)
	fmt.Fprintf(&b, "- **Participant**: %s\n", s.ParticipantID)
	fmt.Fprintf(&b, "- **Mode**: %s\n", s.Mode)
	fmt.Fprintf(&b, "- **Started**: %s\n", s.StartedAt.Format(time.RFC3339))
	if snap.PaperContext.Title != "" {
		fmt.Fprintf(&b, "- **Paper**: %s\n", snap.PaperContext.Title)
	}

	b.WriteString("\n## Metrics\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Observations processed | %d |\n", metrics.ObservationsProcessed)
	fmt.Fprintf(&b, "| Sections completed | %d |\n", metrics.SectionsCompleted)
	fmt.Fprintf(&b, "| Total reading time | %.0fs |\n", metrics.TotalReadingTime)
	fmt.Fprintf(&b, "| AI interventions | %d |\n", metrics.AIInterventions)
	fmt.Fprintf(&b, "| Interventions accepted | %d |\n", metrics.InterventionsAccepted)
	fmt.Fprintf(&b, "| Interventions rejected | %d |\n", metrics.InterventionsRejected)
	fmt.Fprintf(&b, "| Acceptance rate | %.0f%% |\n", metrics.AcceptanceRate()*100)
	fmt.Fprintf(&b, "| Pauses detected | %d |\n", metrics.PausesDetected)
	fmt.Fprintf(&b, "| Re-reading detected | %d |\n", metrics.RereadingDetected)

	if len(snap.ReadingMetrics.ConceptsStruggled) > 0 {
		b.WriteString("\n## Concepts Struggled With\n\n")
		for _, c := range snap.ReadingMetrics.ConceptsStruggled {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if times := s.assistant.Memory().TimePerSection(); len(times) > 0 {
		b.WriteString("\n## Time Per Section\n\n")
		names := make([]string, 0, len(times))
		for name := range times {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %.0fs\n", name, times[name])
		}
	}

	if len(snap.InterventionHistory) > 0 {
		b.WriteString("\n## Interventions\n\n")
		for _, rec := range snap.InterventionHistory {
			fmt.Fprintf(&b, "- %s: %s (%s) target: %s\n",
				rec.Timestamp.Format("15:04:05"),
				rec.Plan.InterventionType,
				rec.Plan.Urgency,
				rec.Plan.SpecificTarget)
		}
	}

	return b.String()
}
