package types

// PaperContext tracks which paper and section the reader is in.
// SectionsSeen grows monotonically; CurrentSection is last-write-wins and,
// once set, is always a member of SectionsSeen.
type PaperContext struct {
	Title          string   `json:"title"`
	CurrentSection string   `json:"current_section"`
	SectionsSeen   []string `json:"sections_seen"`
}

// ReadingSummary is the reading-metrics view handed to the intervention
// planner and to bookkeeping collaborators.
type ReadingSummary struct {
	SectionsCompleted     int      `json:"sections_completed"`
	TotalReadingTime      float64  `json:"total_reading_time"`       // seconds
	AverageTimePerSection float64  `json:"average_time_per_section"` // seconds
	ConceptsStruggled     []string `json:"concepts_struggled"`
	CurrentSection        string   `json:"current_section"`
}

// SessionSnapshot is the externally visible view of a session's memory,
// consumed by study bookkeeping and the HTTP state endpoint.
type SessionSnapshot struct {
	UserState           UserState            `json:"user_state"`
	PaperContext        PaperContext         `json:"paper_context"`
	ReadingMetrics      ReadingSummary       `json:"reading_metrics"`
	InterventionHistory []InterventionRecord `json:"intervention_history"`
}
