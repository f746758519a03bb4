package record

import "strings"

// Urgency keyword tables. Urgency is inferred from the summary text rather
// than trusted from the payload; this is a deliberate heuristic.
var (
	highUrgencyKeywords   = []string{"urgent", "critical", "severe", "acute", "emergency"}
	mediumUrgencyKeywords = []string{"moderate", "concerning", "requires", "follow-up"}
)

// InferUrgency scans the clinical summary (case-insensitive) for urgency
// keywords. High-tier keywords win over medium-tier ones; a summary with no
// matches is low urgency.
func InferUrgency(summary string) Urgency {
	text := strings.ToLower(summary)
	for _, kw := range highUrgencyKeywords {
		if strings.Contains(text, kw) {
			return UrgencyHigh
		}
	}
	for _, kw := range mediumUrgencyKeywords {
		if strings.Contains(text, kw) {
			return UrgencyMedium
		}
	}
	return UrgencyLow
}
