// Package canvas holds the local canvas state: the node graph, the viewport,
// and the projection of clinical records into widget payloads.
package canvas

import "fmt"

// NodeType enumerates the widget kinds a canvas node may host. The set is
// closed; unknown types are rejected at the edge instead of carried around
// as free-form strings.
type NodeType string

const (
	NodePatientSummary  NodeType = "patientSummary"
	NodeVitalsChart     NodeType = "vitalsChart"
	NodeLabResults      NodeType = "labResults"
	NodeDocumentViewer  NodeType = "documentViewer"
	NodeAIQuestionBox   NodeType = "aiQuestionBox"
	NodeSOAPGenerator   NodeType = "SOAPGenerator"
	NodeTimeline        NodeType = "Timeline"
	NodeAnalyticsReport NodeType = "analyticsReport"
	NodeSystemAdmin     NodeType = "systemAdmin"
)

var validNodeTypes = map[NodeType]struct{}{
	NodePatientSummary:  {},
	NodeVitalsChart:     {},
	NodeLabResults:      {},
	NodeDocumentViewer:  {},
	NodeAIQuestionBox:   {},
	NodeSOAPGenerator:   {},
	NodeTimeline:        {},
	NodeAnalyticsReport: {},
	NodeSystemAdmin:     {},
}

// Valid reports whether t is a known widget kind.
func (t NodeType) Valid() bool {
	_, ok := validNodeTypes[t]
	return ok
}

// ParseNodeType validates a wire string against the closed widget set.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return t, nil
}

// Position is a node's top-left corner in canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's rendered extent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutNode is one widget placed on the canvas. Data carries widget-local
// settings persisted with the layout, not clinical content.
type LayoutNode struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Position Position       `json:"position"`
	Size     Size           `json:"size"`
	Data     map[string]any `json:"data,omitempty"`
}

// Connection is a directed edge between two nodes.
type Connection struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// Viewport is the visible window onto the canvas. Zoom is always positive.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Layout is the wire shape of a persisted canvas arrangement, as served in
// a patient payload's layout hint.
type Layout struct {
	Nodes       []LayoutNode `json:"nodes"`
	Connections []Connection `json:"connections"`
	Viewport    Viewport     `json:"viewport"`
}
