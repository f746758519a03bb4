package record

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinical-canvas/canvas/internal/platform/apiclient"
)

// ErrPatientNotFound reports an unknown patient id, whether from the live
// backend or the built-in fixtures.
var ErrPatientNotFound = errors.New("patient not found")

// Service fetches raw patient payloads and transforms them into canonical
// clinical records. When the backend is unreachable and fallback is enabled
// it serves the built-in fixtures instead, after a short simulated latency.
type Service struct {
	client          *apiclient.Client
	fallbackEnabled bool
	fallbackDelay   time.Duration
	logger          zerolog.Logger
}

// NewService wires a record service onto a request client. fallbackEnabled
// mirrors the MOCK_FALLBACK_ENABLED setting.
func NewService(client *apiclient.Client, fallbackEnabled bool, logger zerolog.Logger) *Service {
	return &Service{
		client:          client,
		fallbackEnabled: fallbackEnabled,
		fallbackDelay:   300 * time.Millisecond,
		logger:          logger.With().Str("component", "record").Logger(),
	}
}

// SetFallbackDelay overrides the simulated fixture latency. Used by tests.
func (s *Service) SetFallbackDelay(d time.Duration) { s.fallbackDelay = d }

// ListPatients returns the patient roster, falling back to the fixture
// roster when the backend is unavailable.
func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	res := apiclient.Do[[]Patient](ctx, s.client, "/api/patients", apiclient.Options{
		Cache: apiclient.CachePatientList,
	})
	if res.Success {
		return *res.Data, nil
	}
	if !s.fallbackEnabled {
		return nil, fmt.Errorf("list patients: %s", res.Error.Message)
	}
	s.logger.Warn().Str("reason", res.Error.Message).Msg("backend unavailable, serving fixture roster")
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	return FixtureRoster(), nil
}

// FetchClinicalRecord retrieves one patient's payload and builds a fresh
// ClinicalRecord from it. The role is passed through to the backend, which
// may shape the canvas layout hint accordingly.
func (s *Service) FetchClinicalRecord(ctx context.Context, patientID, role string) (*ClinicalRecord, error) {
	path := "/api/patients/" + patientID
	if role != "" {
		path += "?role=" + role
	}
	res := apiclient.Do[PatientDetail](ctx, s.client, path, apiclient.Options{
		Cache: apiclient.CachePatient,
	})
	if res.Success {
		return s.transform(*res.Data), nil
	}
	if res.Error.Status == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", patientID, ErrPatientNotFound)
	}
	if !s.fallbackEnabled {
		return nil, fmt.Errorf("fetch %s: %s", patientID, res.Error.Message)
	}
	s.logger.Warn().Str("patient_id", patientID).Str("reason", res.Error.Message).Msg("backend unavailable, serving fixture")
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	detail, ok := FixtureDetail(patientID)
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", patientID, ErrPatientNotFound)
	}
	if strings.EqualFold(role, "analyst") {
		detail.CanvasLayout = AnalystLayout
	} else if strings.EqualFold(role, "admin") {
		detail.CanvasLayout = AdminLayout
	}
	return s.transform(detail), nil
}

// Ask submits a free-text question about a patient and returns the exchange
// as a QAPair. The returned pair is not appended to any record; callers
// decide where it lives.
func (s *Service) Ask(ctx context.Context, patientID, question string) (QAPair, error) {
	res := apiclient.Do[AskResponse](ctx, s.client, "/api/patients/"+patientID+"/ask", apiclient.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"question": question},
	})
	if !res.Success {
		return QAPair{}, fmt.Errorf("ask %s: %s", patientID, res.Error.Message)
	}
	return qaPairFromResponse(question, *res.Data), nil
}

func qaPairFromResponse(question string, r AskResponse) QAPair {
	pair := QAPair{
		ID:             uuid.NewString(),
		Question:       question,
		Answer:         r.Answer,
		Confidence:     r.ConfidenceScore,
		SourceDocument: r.SourceDocument,
		SourcePage:     r.SourcePage,
		AskedAt:        time.Now().UTC(),
	}
	if pair.Confidence == 0 {
		pair.Confidence = 0.5
	}
	if pair.SourceDocument == "" {
		pair.SourceDocument = "unknown"
	}
	return pair
}

// transform builds a fresh ClinicalRecord from a raw payload. Every call
// allocates a new record; nothing from previous fetches is reused.
func (s *Service) transform(d PatientDetail) *ClinicalRecord {
	rec := &ClinicalRecord{
		Patient:         Patient{ID: d.ID, Name: d.Name, Age: d.Age, Gender: d.Gender},
		ClinicalSummary: d.AISummary,
		KeyIssues:       append([]string(nil), d.KeyIssues...),
		Urgency:         InferUrgency(d.AISummary),
		Confidence:      d.ConfidenceScore,
		Vitals:          groupVitals(d.VitalsData),
		Labs:            categorizeLabs(d.LabResults),
		Documents:       append([]Document(nil), d.Documents...),
		QAPairs:         make([]QAPair, 0, len(d.QAPairs)),
		CanvasLayout:    d.CanvasLayout,
	}
	for _, wp := range d.QAPairs {
		pair := QAPair{
			ID:             wp.ID,
			Question:       wp.Question,
			Answer:         wp.Answer,
			Confidence:     wp.Confidence,
			SourceDocument: wp.SourceDocument,
			SourcePage:     wp.SourcePage,
		}
		if pair.ID == "" {
			pair.ID = uuid.NewString()
		}
		if pair.SourceDocument == "" {
			pair.SourceDocument = "unknown"
		}
		rec.QAPairs = append(rec.QAPairs, pair)
	}
	return rec
}

// groupVitals buckets raw vital entries by name, preserving first-seen
// group order, and flags each reading against its reference range.
// Readings within a group are sorted oldest first; dates are ISO strings
// and compare lexicographically.
func groupVitals(entries []ClinicalEntry) []VitalGroup {
	groups := make([]VitalGroup, 0)
	index := make(map[string]int)
	for _, e := range entries {
		display := prettifyName(e.Name)
		reading := VitalReading{
			Date:           e.Date,
			Value:          e.Value,
			Unit:           e.Unit,
			ReferenceRange: e.ReferenceRange,
			Flag:           DeriveFlag(e.Value, e.ReferenceRange),
		}
		if i, ok := index[display]; ok {
			groups[i].Readings = append(groups[i].Readings, reading)
			continue
		}
		index[display] = len(groups)
		groups = append(groups, VitalGroup{Name: display, Readings: []VitalReading{reading}})
	}
	for i := range groups {
		sort.SliceStable(groups[i].Readings, func(a, b int) bool {
			return groups[i].Readings[a].Date < groups[i].Readings[b].Date
		})
	}
	return groups
}

// categorizeLabs buckets lab entries into clinical categories in the fixed
// display order, dropping categories with no tests.
func categorizeLabs(entries []ClinicalEntry) []LabCategory {
	byCategory := make(map[string][]LabTest)
	for _, e := range entries {
		test := LabTest{
			Name:           prettifyName(e.Name),
			Value:          e.Value,
			Unit:           e.Unit,
			ReferenceRange: e.ReferenceRange,
			Date:           e.Date,
			Flag:           DeriveFlag(e.Value, e.ReferenceRange),
		}
		cat := CategorizeLab(e.Name)
		byCategory[cat] = append(byCategory[cat], test)
	}
	out := make([]LabCategory, 0, len(byCategory))
	for _, cat := range LabCategoryOrder() {
		if tests, ok := byCategory[cat]; ok {
			out = append(out, LabCategory{Name: cat, Tests: tests})
		}
	}
	return out
}

// prettifyName turns a snake_case wire name into a display name, e.g.
// "blood_pressure_systolic" into "Blood Pressure Systolic".
func prettifyName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (s *Service) simulateLatency(ctx context.Context) error {
	if s.fallbackDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.fallbackDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
