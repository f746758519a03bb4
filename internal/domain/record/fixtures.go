package record

import "encoding/json"

// Fallback fixtures: a built-in substitute for the remote source when it is
// unavailable. The set mirrors the demo roster of the original canvas
// deployment and is keyed by patient id.

const uncleTanSummary = "68-year-old male with progressive chronic kidney disease (Stage 4) requiring urgent nephrology follow-up. Recent labs show elevated creatinine (4.2 mg/dL) and declining eGFR (18 mL/min). Patient presents with fatigue, decreased appetite, and mild edema. Blood pressure moderately controlled on ACE inhibitor. Requires discussion of renal replacement therapy options and close monitoring of electrolytes and fluid status."

const mrsChenSummary = "54-year-old female with Type 2 diabetes mellitus, moderately controlled with HbA1c of 8.2%. Recent concerns include diabetic nephropathy with microalbuminuria and early retinopathy changes. Blood pressure elevated at 150/92, requiring optimization. Patient reports improved dietary compliance but struggles with medication adherence. Requires endocrinology follow-up and ophthalmology screening."

const mrKumarSummary = "61-year-old male with recent acute myocardial infarction (STEMI) 3 weeks ago, status post primary PCI with drug-eluting stent to LAD. Currently on dual antiplatelet therapy, statin, and ACE inhibitor. Echo shows mild LV dysfunction with EF 45%. Patient reports stable angina with mild exertion. Requires cardiac rehabilitation referral and close cardiology follow-up."

var uncleTanLayout = json.RawMessage(`{
  "viewport": {"x": 0, "y": 0, "zoom": 1},
  "connections": [],
  "nodes": [
    {"id": "patient-summary", "type": "patientSummary", "position": {"x": 50, "y": 50}, "size": {"width": 320, "height": 220}, "data": {}},
    {"id": "vitals-chart", "type": "vitalsChart", "position": {"x": 400, "y": 50}, "size": {"width": 320, "height": 220}, "data": {"chartType": "trend"}},
    {"id": "lab-results", "type": "labResults", "position": {"x": 50, "y": 300}, "size": {"width": 320, "height": 220}, "data": {}},
    {"id": "document-viewer", "type": "documentViewer", "position": {"x": 400, "y": 300}, "size": {"width": 320, "height": 220}, "data": {"pageCount": 3}},
    {"id": "ai-question-box", "type": "aiQuestionBox", "position": {"x": 750, "y": 50}, "size": {"width": 320, "height": 220}, "data": {}},
    {"id": "soap-generator", "type": "SOAPGenerator", "position": {"x": 750, "y": 300}, "size": {"width": 320, "height": 220}, "data": {}},
    {"id": "patient-timeline", "type": "Timeline", "position": {"x": 50, "y": 550}, "size": {"width": 680, "height": 200}, "data": {}}
  ]
}`)

var basicClinicianLayout = json.RawMessage(`{
  "viewport": {"x": 0, "y": 0, "zoom": 1},
  "connections": [],
  "nodes": [
    {"id": "patient-summary", "type": "patientSummary", "position": {"x": 50, "y": 50}, "size": {"width": 320, "height": 220}, "data": {}},
    {"id": "soap-generator", "type": "SOAPGenerator", "position": {"x": 450, "y": 50}, "size": {"width": 320, "height": 220}, "data": {}},
    {"id": "patient-timeline", "type": "Timeline", "position": {"x": 50, "y": 350}, "size": {"width": 680, "height": 200}, "data": {}}
  ]
}`)

// AnalystLayout is the role-specific layout served for analysts regardless
// of patient: a single population-analytics widget.
var AnalystLayout = json.RawMessage(`{
  "viewport": {"x": 0, "y": 0, "zoom": 1},
  "connections": [],
  "nodes": [
    {"id": "analytics-report", "type": "analyticsReport", "position": {"x": 50, "y": 50}, "size": {"width": 480, "height": 320}, "data": {"title": "Population Health Analytics", "role": "analyst"}}
  ]
}`)

// AdminLayout is the role-specific layout served for admins.
var AdminLayout = json.RawMessage(`{
  "viewport": {"x": 0, "y": 0, "zoom": 1},
  "connections": [],
  "nodes": [
    {"id": "system-admin", "type": "systemAdmin", "position": {"x": 50, "y": 50}, "size": {"width": 480, "height": 320}, "data": {"title": "System Management Dashboard"}}
  ]
}`)

func intPtr(n int) *int { return &n }

var fixtureDetails = map[string]PatientDetail{
	"uncle-tan-001": {
		ID: "uncle-tan-001", Name: "Uncle Tan", Age: 68, Gender: "Male",
		AISummary: uncleTanSummary,
		KeyIssues: []string{
			"Stage 4 chronic kidney disease, eGFR 18",
			"Secondary anemia and hyperparathyroidism",
			"Renal replacement therapy planning needed",
		},
		ConfidenceScore: 0.92,
		VitalsData: []ClinicalEntry{
			{Name: "blood_pressure_systolic", Value: "142", Unit: "mmHg", ReferenceRange: "90-140", Date: "2024-07-28"},
			{Name: "blood_pressure_diastolic", Value: "88", Unit: "mmHg", ReferenceRange: "60-90", Date: "2024-07-28"},
			{Name: "heart_rate", Value: "78", Unit: "bpm", ReferenceRange: "60-100", Date: "2024-07-28"},
			{Name: "temperature", Value: "36.8", Unit: "°C", ReferenceRange: "36.1-37.2", Date: "2024-07-28"},
			{Name: "weight", Value: "72.5", Unit: "kg", ReferenceRange: "N/A", Date: "2024-07-28"},
			{Name: "oxygen_saturation", Value: "98", Unit: "%", ReferenceRange: "95-100", Date: "2024-07-28"},
		},
		LabResults: []ClinicalEntry{
			{Name: "creatinine", Value: "4.2", Unit: "mg/dL", ReferenceRange: "0.7-1.3", Date: "2024-07-28"},
			{Name: "bun", Value: "68", Unit: "mg/dL", ReferenceRange: "6-24", Date: "2024-07-28"},
			{Name: "egfr", Value: "18", Unit: "mL/min/1.73m²", ReferenceRange: ">60", Date: "2024-07-28"},
			{Name: "potassium", Value: "4.8", Unit: "mEq/L", ReferenceRange: "3.5-5.1", Date: "2024-07-28"},
			{Name: "phosphorus", Value: "5.2", Unit: "mg/dL", ReferenceRange: "2.5-4.5", Date: "2024-07-28"},
			{Name: "hemoglobin", Value: "10.2", Unit: "g/dL", ReferenceRange: "12.0-15.5", Date: "2024-07-28"},
			{Name: "parathyroid_hormone", Value: "185", Unit: "pg/mL", ReferenceRange: "15-65", Date: "2024-07-25"},
			{Name: "albumin", Value: "3.2", Unit: "g/dL", ReferenceRange: "3.5-5.0", Date: "2024-07-28"},
		},
		Documents: []Document{
			{ID: "doc-tan-referral", Filename: "referral_nephrology_tan.pdf", DocumentType: "referral", FileURL: "/documents/uncle_tan_referral.pdf"},
		},
		QAPairs: []WireQAPair{
			{
				ID:       "qa-tan-1",
				Question: "What is the current kidney function status?",
				Answer:   "Uncle Tan has Stage 4 chronic kidney disease with severely reduced kidney function. His creatinine is elevated at 4.2 mg/dL (normal 0.7-1.3) and his estimated GFR is only 18 mL/min/1.73m² (normal >60), indicating severe reduction in kidney function.",
				Confidence: 0.95, SourceDocument: "referral_nephrology_tan.pdf", SourcePage: intPtr(1),
			},
			{
				ID:       "qa-tan-2",
				Question: "What are the main concerns with this patient?",
				Answer:   "The primary concerns are: 1) Progressive chronic kidney disease requiring urgent nephrology evaluation, 2) Elevated creatinine and very low eGFR indicating need for renal replacement therapy planning, 3) Secondary complications including anemia (Hgb 10.2) and elevated parathyroid hormone (185), 4) Risk of fluid and electrolyte imbalances.",
				Confidence: 0.92, SourceDocument: "referral_nephrology_tan.pdf", SourcePage: intPtr(1),
			},
			{
				ID:       "qa-tan-3",
				Question: "What immediate actions are needed?",
				Answer:   "Immediate actions include: 1) Urgent nephrology referral for renal replacement therapy discussion, 2) Close monitoring of electrolytes, especially potassium and phosphorus, 3) Fluid status assessment and management, 4) Blood pressure optimization, 5) Anemia management evaluation, 6) Patient education about kidney disease progression.",
				Confidence: 0.90, SourceDocument: "referral_nephrology_tan.pdf", SourcePage: intPtr(2),
			},
		},
		CanvasLayout: uncleTanLayout,
	},
	"mrs-chen-002": {
		ID: "mrs-chen-002", Name: "Mrs. Chen", Age: 54, Gender: "Female",
		AISummary:       mrsChenSummary,
		ConfidenceScore: 0.89,
		CanvasLayout:    basicClinicianLayout,
	},
	"mr-kumar-003": {
		ID: "mr-kumar-003", Name: "Mr. Kumar", Age: 61, Gender: "Male",
		AISummary:       mrKumarSummary,
		ConfidenceScore: 0.91,
		CanvasLayout:    basicClinicianLayout,
	},
}

// FixtureDetail returns a copy of the built-in payload for the given
// patient id.
func FixtureDetail(patientID string) (PatientDetail, bool) {
	d, ok := fixtureDetails[patientID]
	return d, ok
}

// FixtureRoster lists the built-in demo patients in stable order.
func FixtureRoster() []Patient {
	return []Patient{
		{ID: "mr-kumar-003", Name: "Mr. Kumar", Age: 61, Gender: "Male"},
		{ID: "mrs-chen-002", Name: "Mrs. Chen", Age: 54, Gender: "Female"},
		{ID: "uncle-tan-001", Name: "Uncle Tan", Age: 68, Gender: "Male"},
	}
}
