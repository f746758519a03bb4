package canvas

import (
	"context"

	"github.com/clinical-canvas/canvas/internal/domain/record"
)

// Asker submits a free-text question about a patient. Satisfied by the
// record service.
type Asker interface {
	Ask(ctx context.Context, patientID, question string) (record.QAPair, error)
}

// AskFunc is the bound question callback handed to a question-box widget.
type AskFunc func(ctx context.Context, question string) (record.QAPair, error)

// SummaryData feeds a patientSummary widget.
type SummaryData struct {
	Patient   record.Patient `json:"patient"`
	Summary   string         `json:"summary"`
	KeyIssues []string       `json:"key_issues,omitempty"`
	Urgency   record.Urgency `json:"urgency"`
}

// VitalsChartData feeds a vitalsChart widget.
type VitalsChartData struct {
	Title  string              `json:"title"`
	Vitals []record.VitalGroup `json:"vitals"`
}

// LabResultsData feeds a labResults widget.
type LabResultsData struct {
	Categories []record.LabCategory `json:"categories"`
}

// DocumentViewerData feeds a documentViewer widget. Available is false when
// the patient has no documents.
type DocumentViewerData struct {
	Document  *record.Document `json:"document,omitempty"`
	Available bool             `json:"available"`
}

// QuestionBoxData feeds an aiQuestionBox widget: prior exchanges plus a
// callback bound to the current patient.
type QuestionBoxData struct {
	Pairs []record.QAPair `json:"pairs"`
	Ask   AskFunc         `json:"-"`
}

// TimelineData feeds a Timeline widget.
type TimelineData struct {
	Events []TimelineEvent `json:"events"`
}

// NoteGeneratorData feeds a SOAPGenerator widget. Available is false until
// a patient is loaded.
type NoteGeneratorData struct {
	Available    bool                   `json:"available"`
	Patient      record.Patient         `json:"patient"`
	ClinicalData *record.ClinicalRecord `json:"clinical_data,omitempty"`
}

// ReportData feeds the role-specific analyticsReport and systemAdmin
// widgets, which render from their stored settings rather than a record.
type ReportData struct {
	Title string `json:"title"`
	Role  string `json:"role,omitempty"`
}

// Projector derives widget payloads from a clinical record. Projection is a
// pure read: it never mutates the record or the stored node data.
type Projector struct {
	asker Asker
}

// NewProjector builds a projector. asker may be nil, in which case question
// boxes get no callback.
func NewProjector(asker Asker) *Projector {
	return &Projector{asker: asker}
}

// ProjectNodeData resolves the payload for one node. Stored node settings
// pass through untouched when there is no record to project or the node
// type carries no clinical content.
func (p *Projector) ProjectNodeData(nodeType NodeType, stored map[string]any, rec *record.ClinicalRecord) any {
	if rec == nil {
		return stored
	}
	switch nodeType {
	case NodePatientSummary:
		return SummaryData{Patient: rec.Patient, Summary: rec.ClinicalSummary, KeyIssues: rec.KeyIssues, Urgency: rec.Urgency}
	case NodeVitalsChart:
		title := "Vital Signs"
		if t, ok := stored["title"].(string); ok && t != "" {
			title = t
		}
		return VitalsChartData{Title: title, Vitals: rec.Vitals}
	case NodeLabResults:
		return LabResultsData{Categories: rec.Labs}
	case NodeDocumentViewer:
		data := DocumentViewerData{}
		if len(rec.Documents) > 0 {
			doc := rec.Documents[0]
			data.Document = &doc
			data.Available = true
		}
		return data
	case NodeAIQuestionBox:
		data := QuestionBoxData{Pairs: rec.QAPairs}
		if p.asker != nil && rec.Patient.ID != "" {
			patientID := rec.Patient.ID
			data.Ask = func(ctx context.Context, question string) (record.QAPair, error) {
				return p.asker.Ask(ctx, patientID, question)
			}
		}
		return data
	case NodeTimeline:
		return TimelineData{Events: BuildTimeline(rec)}
	case NodeSOAPGenerator:
		data := NoteGeneratorData{Patient: rec.Patient}
		if rec.Patient.ID != "" {
			data.Available = true
			data.ClinicalData = rec
		}
		return data
	case NodeAnalyticsReport, NodeSystemAdmin:
		data := ReportData{}
		if t, ok := stored["title"].(string); ok {
			data.Title = t
		}
		if r, ok := stored["role"].(string); ok {
			data.Role = r
		}
		return data
	}
	return stored
}
