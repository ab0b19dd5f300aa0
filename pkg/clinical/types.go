package clinical

import (
	"strings"
)

// =============================================================================
// Node Types
// =============================================================================

// NodeType is the kind of a node in a clinical map.
type NodeType string

// Node types. Category nodes are synthetic and only produced by the layout engine.
const (
	TypeMain         NodeType = "main"
	TypeSymptom      NodeType = "symptom"
	TypeDiagnosis    NodeType = "diagnosis"
	TypeTreatment    NodeType = "treatment"
	TypeComplication NodeType = "complication"
	TypeCategory     NodeType = "category"
)

// DetailTypes lists the clinical detail types in layout emission order.
var DetailTypes = []NodeType{TypeSymptom, TypeDiagnosis, TypeTreatment, TypeComplication}

// ParseNodeType converts a keyword such as "SYMPTOM" to its NodeType.
// Matching is case-insensitive. Category is not accepted since it never
// appears in markup.
func ParseNodeType(s string) (NodeType, bool) {
	switch t := NodeType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeMain, TypeSymptom, TypeDiagnosis, TypeTreatment, TypeComplication:
		return t, true
	}
	return "", false
}

// IsDetail reports whether t is one of the four clinical detail types.
func (t NodeType) IsDetail() bool {
	switch t {
	case TypeSymptom, TypeDiagnosis, TypeTreatment, TypeComplication:
		return true
	}
	return false
}

// =============================================================================
// Node
// =============================================================================

// Node is a positioned element of a clinical map.
type Node struct {
	ID          string   `json:"id" bson:"id"`
	Label       string   `json:"label" bson:"label"`
	Type        NodeType `json:"type" bson:"type"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	X           float64  `json:"x" bson:"x"`
	Y           float64  `json:"y" bson:"y"`
}

// IsMain returns true if this is the main condition node.
func (n *Node) IsMain() bool { return n.Type == TypeMain }

// IsCategory returns true if this is a synthetic category hub.
func (n *Node) IsCategory() bool { return n.Type == TypeCategory }

// =============================================================================
// Connection
// =============================================================================

// Connection links two nodes by id. Connections are directed but displayed
// without arrowheads.
type Connection struct {
	From  string `json:"from" bson:"from"`
	To    string `json:"to" bson:"to"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
}

// Touches reports whether the connection has id as either endpoint.
func (c Connection) Touches(id string) bool {
	return id != "" && (c.From == id || c.To == id)
}

// =============================================================================
// Graph
// =============================================================================

// Graph is the parsed form of concept-map markup.
type Graph struct {
	Nodes       []Node       `json:"nodes" bson:"nodes"`
	Connections []Connection `json:"connections" bson:"connections"`
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Main returns the first main node, if any.
func (g Graph) Main() (Node, bool) {
	for _, n := range g.Nodes {
		if n.IsMain() {
			return n, true
		}
	}
	return Node{}, false
}

// CountByType returns the number of nodes of each type.
func (g Graph) CountByType() map[NodeType]int {
	counts := make(map[NodeType]int)
	for _, n := range g.Nodes {
		counts[n.Type]++
	}
	return counts
}

// IsEmpty returns true if the graph has no nodes.
func (g Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// =============================================================================
// Layout
// =============================================================================

// Layout is the display form of a clinical map: every detail node hangs under
// a category hub which in turn connects to the main node.
type Layout struct {
	DisplayNodes       []Node       `json:"nodes" bson:"nodes"`
	DisplayConnections []Connection `json:"connections" bson:"connections"`
	Width              float64      `json:"width,omitempty" bson:"width,omitempty"`
	Height             float64      `json:"height,omitempty" bson:"height,omitempty"`
}

// Index returns the display nodes keyed by id.
func (l Layout) Index() map[string]Node {
	idx := make(map[string]Node, len(l.DisplayNodes))
	for _, n := range l.DisplayNodes {
		idx[n.ID] = n
	}
	return idx
}

// Resolved returns the connections whose endpoints both exist in the layout.
// Dangling connections are dropped silently.
func (l Layout) Resolved() []Connection {
	idx := l.Index()
	out := make([]Connection, 0, len(l.DisplayConnections))
	for _, c := range l.DisplayConnections {
		if _, ok := idx[c.From]; !ok {
			continue
		}
		if _, ok := idx[c.To]; !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Neighbors returns the ids connected to id by a resolved connection.
func (l Layout) Neighbors(id string) []string {
	var out []string
	for _, c := range l.Resolved() {
		switch id {
		case c.From:
			out = append(out, c.To)
		case c.To:
			out = append(out, c.From)
		}
	}
	return out
}
