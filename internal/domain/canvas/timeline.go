package canvas

import (
	"sort"

	"github.com/google/uuid"

	"github.com/clinical-canvas/canvas/internal/domain/record"
)

// TimelineEvent is one dated clinical event derived from a record.
type TimelineEvent struct {
	ID          string         `json:"id"`
	Date        string         `json:"date"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Urgency     record.Urgency `json:"urgency"`
}

// BuildTimeline flattens a record's vitals and labs into a single event
// stream, newest first. An event is critical only when its source value was
// flagged critical; everything else is low so the timeline stays readable.
func BuildTimeline(rec *record.ClinicalRecord) []TimelineEvent {
	if rec == nil {
		return nil
	}
	events := make([]TimelineEvent, 0)
	for _, group := range rec.Vitals {
		for _, r := range group.Readings {
			events = append(events, TimelineEvent{
				ID:          uuid.NewString(),
				Date:        r.Date,
				Type:        "vital",
				Title:       group.Name,
				Description: r.Value + " " + r.Unit,
				Urgency:     eventUrgency(r.Flag),
			})
		}
	}
	for _, cat := range rec.Labs {
		for _, test := range cat.Tests {
			events = append(events, TimelineEvent{
				ID:          uuid.NewString(),
				Date:        test.Date,
				Type:        "lab",
				Title:       test.Name,
				Description: test.Value + " " + test.Unit,
				Urgency:     eventUrgency(test.Flag),
			})
		}
	}
	// ISO dates sort lexicographically; ties keep vital-before-lab insertion
	// order via stable sort.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date > events[j].Date
	})
	return events
}

func eventUrgency(f record.Flag) record.Urgency {
	if f == record.FlagCritical {
		return record.UrgencyCritical
	}
	return record.UrgencyLow
}
