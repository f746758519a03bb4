// Package record normalizes raw clinical payloads from the backend into the
// canonical ClinicalRecord consumed by the canvas. The classification rules
// in this package (value flagging, lab categorization, urgency inference)
// are illustrative heuristics, not validated medical decision support.
package record

import (
	"encoding/json"
	"time"
)

// Urgency is the inferred priority of a patient's presentation.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Flag classifies a single measured value against its reference range.
type Flag string

const (
	FlagNormal   Flag = "normal"
	FlagLow      Flag = "low"
	FlagHigh     Flag = "high"
	FlagCritical Flag = "critical"
)

// Patient is the identity block of a record. It is immutable once fetched
// for a session and replaced wholesale on patient switch.
type Patient struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// Document describes a source document attached to a patient.
type Document struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	DocumentType string `json:"document_type"`
	FileURL      string `json:"file_url"`
}

// QAPair is one question/answer exchange about a patient.
type QAPair struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Confidence     float64   `json:"confidence"`
	SourceDocument string    `json:"source_document"`
	SourcePage     *int      `json:"source_page,omitempty"`
	AskedAt        time.Time `json:"asked_at"`
}

// VitalReading is one dated measurement within a vital group.
type VitalReading struct {
	Date           string `json:"date"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	Flag           Flag   `json:"flag"`
}

// VitalGroup holds a vital's readings ordered by date. All readings in a
// group share a unit and a comparable reference range.
type VitalGroup struct {
	Name     string         `json:"name"`
	Readings []VitalReading `json:"readings"`
}

// LabTest is one laboratory result.
type LabTest struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	Date           string `json:"date"`
	Flag           Flag   `json:"flag"`
}

// LabCategory groups lab tests under a clinical category. Category
// assignment is a deterministic function of the test name.
type LabCategory struct {
	Name  string    `json:"name"`
	Tests []LabTest `json:"tests"`
}

// ClinicalRecord is the canonical, widget-agnostic representation of one
// patient's clinical data. A fresh record is built on every successful
// fetch; the UI never mutates it.
type ClinicalRecord struct {
	Patient         Patient         `json:"patient"`
	ClinicalSummary string          `json:"clinical_summary"`
	KeyIssues       []string        `json:"key_issues,omitempty"`
	Urgency         Urgency         `json:"urgency"`
	Confidence      float64         `json:"confidence"`
	Vitals          []VitalGroup    `json:"vitals"`
	Labs            []LabCategory   `json:"labs"`
	Documents       []Document      `json:"documents"`
	QAPairs         []QAPair        `json:"qa_pairs"`
	CanvasLayout    json.RawMessage `json:"canvas_layout,omitempty"`
}

// ClinicalEntry is the wire shape of one vital or lab entry as served by
// the backend.
type ClinicalEntry struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	Date           string `json:"date_recorded"`
}

// WireQAPair is the wire shape of a precomputed question/answer pair.
type WireQAPair struct {
	ID             string  `json:"id"`
	Question       string  `json:"question"`
	Answer         string  `json:"answer"`
	Confidence     float64 `json:"confidence_score"`
	SourceDocument string  `json:"source_document,omitempty"`
	SourcePage     *int    `json:"source_page,omitempty"`
}

// PatientDetail is the raw payload of GET /patients/{id}. The mock fixture
// server serves this shape directly.
type PatientDetail struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Age             int             `json:"age"`
	Gender          string          `json:"gender"`
	AISummary       string          `json:"ai_summary"`
	KeyIssues       []string        `json:"key_issues,omitempty"`
	ConfidenceScore float64         `json:"confidence_score"`
	VitalsData      []ClinicalEntry `json:"vitals_data"`
	LabResults      []ClinicalEntry `json:"lab_results"`
	Documents       []Document      `json:"documents"`
	QAPairs         []WireQAPair    `json:"qa_pairs"`
	CanvasLayout    json.RawMessage `json:"canvas_layout,omitempty"`
}

// AskResponse is the wire shape of POST /patients/{id}/ask.
type AskResponse struct {
	Answer          string  `json:"answer"`
	ConfidenceScore float64 `json:"confidence_score"`
	SourceDocument  string  `json:"source_document,omitempty"`
	SourcePage      *int    `json:"source_page,omitempty"`
}
