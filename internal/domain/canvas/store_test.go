package canvas

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinical-canvas/canvas/internal/domain/record"
)

// stubLoader serves canned records and can hold individual fetches open so
// tests control completion order.
type stubLoader struct {
	mu      sync.Mutex
	records map[string]*record.ClinicalRecord
	err     error
	gates   map[string]chan struct{}
	calls   []string
}

func newStubLoader() *stubLoader {
	return &stubLoader{
		records: map[string]*record.ClinicalRecord{},
		gates:   map[string]chan struct{}{},
	}
}

func (l *stubLoader) gate(patientID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{})
	l.gates[patientID] = ch
	return ch
}

func (l *stubLoader) FetchClinicalRecord(_ context.Context, patientID, role string) (*record.ClinicalRecord, error) {
	l.mu.Lock()
	l.calls = append(l.calls, patientID+"/"+role)
	gate := l.gates[patientID]
	rec, err := l.records[patientID], l.err
	l.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("no record for " + patientID)
	}
	return rec, nil
}

func recordWithLayout(patientID string, layout string) *record.ClinicalRecord {
	return &record.ClinicalRecord{
		Patient:      record.Patient{ID: patientID, Name: patientID},
		CanvasLayout: []byte(layout),
	}
}

const twoNodeLayout = `{
  "viewport": {"x": 10, "y": 20, "zoom": 1.5},
  "nodes": [
    {"id": "n1", "type": "patientSummary", "position": {"x": 0, "y": 0}, "size": {"width": 100, "height": 100}},
    {"id": "n2", "type": "labResults", "position": {"x": 200, "y": 0}, "size": {"width": 100, "height": 100}}
  ],
  "connections": [{"id": "c1", "source": "n1", "target": "n2"}]
}`

func TestStore_SetPatientLoadsRecordAndAdoptsLayout(t *testing.T) {
	loader := newStubLoader()
	loader.records["p1"] = recordWithLayout("p1", twoNodeLayout)
	s := NewStore(loader, zerolog.Nop())

	s.SetPatient(context.Background(), "p1")
	if s.PatientID() != "p1" {
		t.Fatal("selection not synchronous")
	}
	s.Wait()

	if rec := s.Record(); rec == nil || rec.Patient.ID != "p1" {
		t.Fatalf("record = %+v", rec)
	}
	if nodes := s.Nodes(); len(nodes) != 2 {
		t.Fatalf("nodes = %d, want 2 from layout hint", len(nodes))
	}
	if conns := s.Connections(); len(conns) != 1 {
		t.Fatalf("connections = %d, want 1", len(conns))
	}
	if vp := s.Viewport(); vp.Zoom != 1.5 {
		t.Errorf("viewport = %+v", vp)
	}
}

func TestStore_LayoutHintDoesNotClobberLocalEdits(t *testing.T) {
	loader := newStubLoader()
	loader.records["p1"] = recordWithLayout("p1", twoNodeLayout)
	s := NewStore(loader, zerolog.Nop())

	s.SetPatient(context.Background(), "p1")
	s.Wait()
	s.MoveNode("n1", Position{X: 999, Y: 999})

	// A reload for the same patient keeps the moved node where it is.
	s.Reload(context.Background())
	s.Wait()
	for _, n := range s.Nodes() {
		if n.ID == "n1" && n.Position.X != 999 {
			t.Errorf("reload reset node position to %+v", n.Position)
		}
	}
}

func TestStore_StaleReloadDiscarded(t *testing.T) {
	loader := newStubLoader()
	loader.records["slow"] = recordWithLayout("slow", twoNodeLayout)
	loader.records["fast"] = &record.ClinicalRecord{Patient: record.Patient{ID: "fast"}}
	slowGate := loader.gate("slow")
	s := NewStore(loader, zerolog.Nop())

	// Discarded reloads never fire the callback, so the first signal marks
	// the newer fetch being applied.
	applied := make(chan struct{}, 2)
	s.OnRecord(func() { applied <- struct{}{} })

	s.SetPatient(context.Background(), "slow")
	s.SetPatient(context.Background(), "fast")

	// Let the superseded fetch finish after the newer one.
	<-applied
	close(slowGate)
	s.Wait()

	rec := s.Record()
	if rec == nil || rec.Patient.ID != "fast" {
		t.Fatalf("record = %+v, want the newer selection", rec)
	}
}

func TestStore_LoadErrorKeepsSelectionAndReportsStatus(t *testing.T) {
	loader := newStubLoader()
	loader.err = errors.New("backend down")
	s := NewStore(loader, zerolog.Nop())

	s.SetPatient(context.Background(), "p1")
	s.Wait()

	if s.PatientID() != "p1" {
		t.Error("selection lost on load failure")
	}
	if s.Record() != nil {
		t.Error("record set despite failure")
	}
	loading, err := s.Status()
	if loading || err == nil {
		t.Errorf("status = %v, %v", loading, err)
	}
}

func TestStore_RemoveNodeCascadesConnections(t *testing.T) {
	s := NewStore(nil, zerolog.Nop())
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.AddNode(LayoutNode{ID: id, Type: NodePatientSummary}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	mustConnect := func(src, dst string) {
		t.Helper()
		if _, err := s.AddConnection(Connection{Source: src, Target: dst}); err != nil {
			t.Fatalf("connect %s->%s: %v", src, dst, err)
		}
	}
	mustConnect("a", "b")
	mustConnect("b", "c")
	mustConnect("a", "c")

	s.RemoveNode("b")

	if nodes := s.Nodes(); len(nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(nodes))
	}
	conns := s.Connections()
	if len(conns) != 1 {
		t.Fatalf("connections = %d, want only a->c", len(conns))
	}
	if conns[0].Source != "a" || conns[0].Target != "c" {
		t.Errorf("surviving connection = %+v", conns[0])
	}
}

func TestStore_AddConnectionValidatesEndpoints(t *testing.T) {
	s := NewStore(nil, zerolog.Nop())
	s.AddNode(LayoutNode{ID: "a", Type: NodePatientSummary})

	if _, err := s.AddConnection(Connection{Source: "a", Target: "missing"}); err == nil {
		t.Error("dangling target accepted")
	}
	var unknown *UnknownNodeError
	_, err := s.AddConnection(Connection{Source: "missing", Target: "a"})
	if !errors.As(err, &unknown) || unknown.ID != "missing" {
		t.Errorf("err = %v", err)
	}
}

func TestStore_AddNodeRejectsUnknownType(t *testing.T) {
	s := NewStore(nil, zerolog.Nop())
	if _, err := s.AddNode(LayoutNode{Type: "holographicChart"}); err == nil {
		t.Error("unknown node type accepted")
	}
	id, err := s.AddNode(LayoutNode{Type: NodeTimeline})
	if err != nil || id == "" {
		t.Errorf("id = %q, err = %v", id, err)
	}
}

func TestStore_ViewportRejectsNonPositiveZoom(t *testing.T) {
	s := NewStore(nil, zerolog.Nop())
	s.UpdateViewport(Viewport{X: 5, Y: 5, Zoom: 0})
	if vp := s.Viewport(); vp.Zoom != 1 {
		t.Errorf("viewport = %+v, want untouched default", vp)
	}
	s.UpdateViewport(Viewport{X: 5, Y: 5, Zoom: 2})
	if vp := s.Viewport(); vp.Zoom != 2 || vp.X != 5 {
		t.Errorf("viewport = %+v", vp)
	}
}

func TestStore_Reset(t *testing.T) {
	loader := newStubLoader()
	loader.records["p1"] = recordWithLayout("p1", twoNodeLayout)
	s := NewStore(loader, zerolog.Nop())
	s.SetPatient(context.Background(), "p1")
	s.Wait()

	s.Reset()

	if s.PatientID() != "" || s.Record() != nil || len(s.Nodes()) != 0 {
		t.Error("reset left state behind")
	}
	if vp := s.Viewport(); vp.Zoom != 1 {
		t.Errorf("viewport = %+v", vp)
	}
}
