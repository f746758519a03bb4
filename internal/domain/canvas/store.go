package canvas

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinical-canvas/canvas/internal/domain/record"
)

// Loader fetches a clinical record for a patient and role. Satisfied by the
// record service.
type Loader interface {
	FetchClinicalRecord(ctx context.Context, patientID, role string) (*record.ClinicalRecord, error)
}

// Store is the local canvas state: selected patient and role, the node
// graph, the viewport, and the most recently loaded record. All mutation
// goes through the store under one mutex.
//
// Patient and role switches update selection synchronously and reload the
// record in the background. Each reload is tagged with a sequence number;
// a reload that finishes after a newer switch is discarded, so the applied
// record always matches the current selection.
type Store struct {
	mu     sync.Mutex
	loader Loader
	logger zerolog.Logger

	patientID string
	role      string

	viewport    Viewport
	nodes       []LayoutNode
	connections []Connection

	record  *record.ClinicalRecord
	loading bool
	lastErr error

	seq           uint64
	layoutPatient string
	wg            sync.WaitGroup

	// onRecord, when set, runs after each applied reload. Test hook and
	// render trigger.
	onRecord func()
}

// NewStore builds an empty store with the default viewport.
func NewStore(loader Loader, logger zerolog.Logger) *Store {
	return &Store{
		loader:   loader,
		logger:   logger.With().Str("component", "canvas").Logger(),
		viewport: Viewport{Zoom: 1},
	}
}

// OnRecord registers a callback invoked after every applied record update.
func (s *Store) OnRecord(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRecord = fn
}

// SetPatient selects a patient and kicks off a background record reload.
// The selection is visible immediately; the record arrives asynchronously.
func (s *Store) SetPatient(ctx context.Context, patientID string) {
	s.mu.Lock()
	if s.patientID == patientID {
		s.mu.Unlock()
		return
	}
	s.patientID = patientID
	s.record = nil
	s.lastErr = nil
	s.dispatchReloadLocked(ctx)
	s.mu.Unlock()
}

// SetRole changes the active role and reloads the current patient, since
// the backend shapes payloads per role.
func (s *Store) SetRole(ctx context.Context, role string) {
	s.mu.Lock()
	if s.role == role {
		s.mu.Unlock()
		return
	}
	s.role = role
	s.dispatchReloadLocked(ctx)
	s.mu.Unlock()
}

// Reload forces a fresh fetch for the current selection.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	s.dispatchReloadLocked(ctx)
	s.mu.Unlock()
}

// dispatchReloadLocked starts a background fetch tagged with the next
// sequence number. Caller holds the mutex.
func (s *Store) dispatchReloadLocked(ctx context.Context) {
	if s.patientID == "" || s.loader == nil {
		return
	}
	s.seq++
	seq := s.seq
	s.loading = true
	patientID, role := s.patientID, s.role
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rec, err := s.loader.FetchClinicalRecord(ctx, patientID, role)
		s.applyRecord(seq, rec, err)
	}()
}

// applyRecord installs a fetched record unless a newer reload has been
// dispatched since this one started.
func (s *Store) applyRecord(seq uint64, rec *record.ClinicalRecord, err error) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug().Uint64("seq", seq).Msg("stale reload discarded")
		return
	}
	s.loading = false
	s.lastErr = err
	if err == nil {
		s.setRecordLocked(rec)
	}
	cb := s.onRecord
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn().Err(err).Msg("record reload failed")
	}
	if cb != nil {
		cb()
	}
}

// SetClinicalRecord installs a record directly, bypassing the loader. Used
// when the caller already fetched one.
func (s *Store) SetClinicalRecord(rec *record.ClinicalRecord) {
	s.mu.Lock()
	s.seq++
	s.loading = false
	s.lastErr = nil
	s.setRecordLocked(rec)
	cb := s.onRecord
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// setRecordLocked stores the record and, when the record carries a layout
// hint for a patient whose layout we have not adopted yet, replaces the
// node graph with the hint. Later records for the same patient never
// clobber local arrangement edits.
func (s *Store) setRecordLocked(rec *record.ClinicalRecord) {
	s.record = rec
	if rec == nil || len(rec.CanvasLayout) == 0 {
		return
	}
	if s.layoutPatient == rec.Patient.ID {
		return
	}
	var layout Layout
	if err := json.Unmarshal(rec.CanvasLayout, &layout); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", rec.Patient.ID).Msg("layout hint unreadable, keeping current arrangement")
		return
	}
	nodes := make([]LayoutNode, 0, len(layout.Nodes))
	for _, n := range layout.Nodes {
		if !n.Type.Valid() {
			s.logger.Warn().Str("node_id", n.ID).Str("type", string(n.Type)).Msg("dropping node of unknown type")
			continue
		}
		nodes = append(nodes, n)
	}
	s.nodes = nodes
	s.connections = layout.Connections
	if layout.Viewport.Zoom > 0 {
		s.viewport = layout.Viewport
	}
	s.layoutPatient = rec.Patient.ID
}

// Wait blocks until all in-flight reloads have settled. Test helper.
func (s *Store) Wait() { s.wg.Wait() }

// UpdateViewport pans and zooms the canvas. A non-positive zoom is ignored.
func (s *Store) UpdateViewport(v Viewport) {
	if v.Zoom <= 0 {
		return
	}
	s.mu.Lock()
	s.viewport = v
	s.mu.Unlock()
}

// MoveNode repositions a node. Unknown ids are a no-op.
func (s *Store) MoveNode(nodeID string, pos Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nodes {
		if s.nodes[i].ID == nodeID {
			s.nodes[i].Position = pos
			return
		}
	}
}

// ResizeNode changes a node's extent. Unknown ids and non-positive
// dimensions are a no-op.
func (s *Store) ResizeNode(nodeID string, size Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nodes {
		if s.nodes[i].ID == nodeID {
			s.nodes[i].Size = size
			return
		}
	}
}

// AddNode places a new widget on the canvas and returns its id. An empty id
// gets a generated one; an invalid type is rejected.
func (s *Store) AddNode(node LayoutNode) (string, error) {
	if _, err := ParseNodeType(string(node.Type)); err != nil {
		return "", err
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, node)
	return node.ID, nil
}

// RemoveNode deletes a node and every connection touching it.
func (s *Store) RemoveNode(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := s.nodes[:0]
	for _, n := range s.nodes {
		if n.ID != nodeID {
			nodes = append(nodes, n)
		}
	}
	s.nodes = nodes
	conns := s.connections[:0]
	for _, c := range s.connections {
		if c.Source != nodeID && c.Target != nodeID {
			conns = append(conns, c)
		}
	}
	s.connections = conns
}

// AddConnection links two existing nodes. Both endpoints must be present.
func (s *Store) AddConnection(conn Connection) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasNodeLocked(conn.Source) {
		return "", &UnknownNodeError{ID: conn.Source}
	}
	if !s.hasNodeLocked(conn.Target) {
		return "", &UnknownNodeError{ID: conn.Target}
	}
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	s.connections = append(s.connections, conn)
	return conn.ID, nil
}

func (s *Store) hasNodeLocked(id string) bool {
	for _, n := range s.nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Reset clears the whole canvas back to its initial state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.patientID = ""
	s.role = ""
	s.record = nil
	s.loading = false
	s.lastErr = nil
	s.nodes = nil
	s.connections = nil
	s.layoutPatient = ""
	s.viewport = Viewport{Zoom: 1}
}

// UnknownNodeError reports a connection endpoint that is not on the canvas.
type UnknownNodeError struct{ ID string }

func (e *UnknownNodeError) Error() string { return "unknown node " + e.ID }

// Snapshot accessors. Each returns a copy so callers can read without
// racing mutation.

func (s *Store) PatientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patientID
}

func (s *Store) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Store) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

func (s *Store) Nodes() []LayoutNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LayoutNode(nil), s.nodes...)
}

func (s *Store) Connections() []Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Connection(nil), s.connections...)
}

// Record returns the currently applied record, which may be nil while a
// reload is in flight.
func (s *Store) Record() *record.ClinicalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Status reports whether a reload is in flight and the last reload error.
func (s *Store) Status() (loading bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading, s.lastErr
}
