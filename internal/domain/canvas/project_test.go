package canvas

import (
	"context"
	"reflect"
	"testing"

	"github.com/clinical-canvas/canvas/internal/domain/record"
)

type fakeAsker struct {
	patientID string
	question  string
}

func (f *fakeAsker) Ask(_ context.Context, patientID, question string) (record.QAPair, error) {
	f.patientID = patientID
	f.question = question
	return record.QAPair{ID: "qa-1", Question: question, Answer: "stub"}, nil
}

func projectRecord() *record.ClinicalRecord {
	return &record.ClinicalRecord{
		Patient:         record.Patient{ID: "p1", Name: "Test Patient", Age: 60},
		ClinicalSummary: "urgent findings",
		Urgency:         record.UrgencyHigh,
		Vitals:          []record.VitalGroup{{Name: "Heart Rate"}},
		Labs:            []record.LabCategory{{Name: "Renal Function"}},
		Documents:       []record.Document{{ID: "d1", Filename: "referral.pdf"}},
		QAPairs:         []record.QAPair{{ID: "qa-0"}},
	}
}

func TestProjectNodeData_NilRecordPassesStoredThrough(t *testing.T) {
	p := NewProjector(nil)
	stored := map[string]any{"title": "custom"}
	got := p.ProjectNodeData(NodeVitalsChart, stored, nil)
	if !reflect.DeepEqual(got, stored) {
		t.Errorf("got %v, want stored data unchanged", got)
	}
}

func TestProjectNodeData_Summary(t *testing.T) {
	p := NewProjector(nil)
	got, ok := p.ProjectNodeData(NodePatientSummary, nil, projectRecord()).(SummaryData)
	if !ok {
		t.Fatal("not SummaryData")
	}
	if got.Patient.Name != "Test Patient" || got.Urgency != record.UrgencyHigh {
		t.Errorf("summary = %+v", got)
	}
}

func TestProjectNodeData_VitalsChartTitle(t *testing.T) {
	p := NewProjector(nil)
	rec := projectRecord()

	got := p.ProjectNodeData(NodeVitalsChart, nil, rec).(VitalsChartData)
	if got.Title != "Vital Signs" {
		t.Errorf("default title = %q", got.Title)
	}

	got = p.ProjectNodeData(NodeVitalsChart, map[string]any{"title": "Trends"}, rec).(VitalsChartData)
	if got.Title != "Trends" {
		t.Errorf("stored title = %q", got.Title)
	}
}

func TestProjectNodeData_DocumentViewer(t *testing.T) {
	p := NewProjector(nil)
	rec := projectRecord()

	got := p.ProjectNodeData(NodeDocumentViewer, nil, rec).(DocumentViewerData)
	if !got.Available || got.Document == nil || got.Document.Filename != "referral.pdf" {
		t.Errorf("viewer = %+v", got)
	}

	rec.Documents = nil
	got = p.ProjectNodeData(NodeDocumentViewer, nil, rec).(DocumentViewerData)
	if got.Available || got.Document != nil {
		t.Errorf("viewer with no documents = %+v", got)
	}
}

func TestProjectNodeData_QuestionBoxBindsPatient(t *testing.T) {
	asker := &fakeAsker{}
	p := NewProjector(asker)

	got := p.ProjectNodeData(NodeAIQuestionBox, nil, projectRecord()).(QuestionBoxData)
	if len(got.Pairs) != 1 {
		t.Fatalf("pairs = %d, want 1", len(got.Pairs))
	}
	if got.Ask == nil {
		t.Fatal("no ask callback")
	}
	if _, err := got.Ask(context.Background(), "why?"); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if asker.patientID != "p1" || asker.question != "why?" {
		t.Errorf("asker saw %q / %q", asker.patientID, asker.question)
	}
}

func TestProjectNodeData_NoteGeneratorNeedsPatient(t *testing.T) {
	p := NewProjector(nil)

	got := p.ProjectNodeData(NodeSOAPGenerator, nil, projectRecord()).(NoteGeneratorData)
	if !got.Available || got.ClinicalData == nil {
		t.Errorf("generator = %+v", got)
	}

	got = p.ProjectNodeData(NodeSOAPGenerator, nil, &record.ClinicalRecord{}).(NoteGeneratorData)
	if got.Available {
		t.Error("generator available without a patient")
	}
}

func TestProjectNodeData_ReportWidgetsUseStoredSettings(t *testing.T) {
	p := NewProjector(nil)
	stored := map[string]any{"title": "Population Health Analytics", "role": "analyst"}
	got := p.ProjectNodeData(NodeAnalyticsReport, stored, projectRecord()).(ReportData)
	if got.Title != "Population Health Analytics" || got.Role != "analyst" {
		t.Errorf("report = %+v", got)
	}
}

func TestProjectNodeData_IsPure(t *testing.T) {
	p := NewProjector(nil)
	rec := projectRecord()
	before := *rec
	stored := map[string]any{"title": "x"}
	for _, nt := range []NodeType{NodePatientSummary, NodeVitalsChart, NodeLabResults, NodeDocumentViewer, NodeAIQuestionBox, NodeTimeline, NodeSOAPGenerator} {
		p.ProjectNodeData(nt, stored, rec)
	}
	if rec.Patient != before.Patient || rec.ClinicalSummary != before.ClinicalSummary {
		t.Error("projection mutated the record")
	}
	if len(stored) != 1 {
		t.Error("projection mutated stored node data")
	}
}
