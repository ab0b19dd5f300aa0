package clinical

import "testing"

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		in     string
		want   NodeType
		wantOK bool
	}{
		{"MAIN", TypeMain, true},
		{"symptom", TypeSymptom, true},
		{"Diagnosis", TypeDiagnosis, true},
		{" treatment ", TypeTreatment, true},
		{"COMPLICATION", TypeComplication, true},
		{"category", "", false},
		{"connection", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseNodeType(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseNodeType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNodeTypeIsDetail(t *testing.T) {
	for _, typ := range DetailTypes {
		if !typ.IsDetail() {
			t.Errorf("%s should be a detail type", typ)
		}
	}
	if TypeMain.IsDetail() || TypeCategory.IsDetail() {
		t.Error("main and category are not detail types")
	}
}

func TestGraphLookups(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: "node-0", Label: "Sepsis", Type: TypeMain},
			{ID: "node-1", Label: "Fever", Type: TypeSymptom},
			{ID: "node-2", Label: "Hypotension", Type: TypeSymptom},
			{ID: "node-3", Label: "Antibiotics", Type: TypeTreatment},
		},
	}

	if n, ok := g.Node("node-2"); !ok || n.Label != "Hypotension" {
		t.Errorf("Node(node-2) = %+v, %v", n, ok)
	}
	if _, ok := g.Node("missing"); ok {
		t.Error("Node(missing) should not be found")
	}
	if m, ok := g.Main(); !ok || m.ID != "node-0" {
		t.Errorf("Main() = %+v, %v", m, ok)
	}

	counts := g.CountByType()
	if counts[TypeSymptom] != 2 || counts[TypeTreatment] != 1 || counts[TypeDiagnosis] != 0 {
		t.Errorf("CountByType() = %v", counts)
	}
}

func TestGraphMainMissing(t *testing.T) {
	g := Graph{Nodes: []Node{{ID: "node-0", Type: TypeSymptom}}}
	if _, ok := g.Main(); ok {
		t.Error("Main() should report false when no main node exists")
	}
	if g.IsEmpty() {
		t.Error("graph with one node is not empty")
	}
	if !(Graph{}).IsEmpty() {
		t.Error("zero graph should be empty")
	}
}

func TestLayoutResolved(t *testing.T) {
	l := Layout{
		DisplayNodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		DisplayConnections: []Connection{
			{From: "a", To: "b"},
			{From: "b", To: "ghost"},
			{From: "ghost", To: "c"},
			{From: "c", To: "a"},
		},
	}

	got := l.Resolved()
	if len(got) != 2 {
		t.Fatalf("Resolved() returned %d connections, want 2: %+v", len(got), got)
	}
	if got[0] != (Connection{From: "a", To: "b"}) || got[1] != (Connection{From: "c", To: "a"}) {
		t.Errorf("Resolved() = %+v", got)
	}

	nb := l.Neighbors("a")
	if len(nb) != 2 || nb[0] != "b" || nb[1] != "c" {
		t.Errorf("Neighbors(a) = %v, want [b c]", nb)
	}
}

func TestConnectionTouches(t *testing.T) {
	c := Connection{From: "x", To: "y"}
	if !c.Touches("x") || !c.Touches("y") {
		t.Error("connection should touch both endpoints")
	}
	if c.Touches("z") || c.Touches("") {
		t.Error("connection should not touch unrelated or empty ids")
	}
}
