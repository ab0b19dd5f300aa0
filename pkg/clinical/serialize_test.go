package clinical

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalGraphEmpty(t *testing.T) {
	data, err := MarshalGraph(Graph{})
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if !strings.Contains(string(data), `"nodes": []`) || !strings.Contains(string(data), `"connections": []`) {
		t.Errorf("empty graph should serialize arrays, got %s", data)
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: "node-0", Label: "Asthma", Type: TypeMain, X: 400, Y: 300},
			{ID: "node-1", Label: "Wheeze", Type: TypeSymptom, Description: "expiratory", X: 150, Y: 100},
		},
		Connections: []Connection{{From: "node-0", To: "node-1", Label: "presents with"}},
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}

	if len(got.Nodes) != 2 || got.Nodes[1].Description != "expiratory" {
		t.Errorf("nodes not preserved: %+v", got.Nodes)
	}
	if len(got.Connections) != 1 || got.Connections[0].Label != "presents with" {
		t.Errorf("connections not preserved: %+v", got.Connections)
	}
}

func TestReadGraphInvalid(t *testing.T) {
	if _, err := ReadGraph(bytes.NewReader([]byte("not json"))); err == nil {
		t.Error("ReadGraph should fail on invalid JSON")
	}
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadGraphFile should fail on a missing file")
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := Layout{
		DisplayNodes: []Node{
			{ID: "node-0", Label: "Asthma", Type: TypeMain, X: 300, Y: 200},
			{ID: "category-symptom", Label: "Symptoms", Type: TypeCategory, X: 158.58, Y: 341.42},
		},
		DisplayConnections: []Connection{{From: "node-0", To: "category-symptom"}},
		Width:              600,
		Height:             400,
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.Width != 600 || got.Height != 400 || len(got.DisplayNodes) != 2 {
		t.Errorf("layout not preserved: %+v", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("layout file missing: %v", err)
	}
}

func TestUnmarshalLayoutNilSlices(t *testing.T) {
	l, err := UnmarshalLayout([]byte(`{"width": 10}`))
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if l.DisplayNodes == nil || l.DisplayConnections == nil {
		t.Error("UnmarshalLayout should normalize nil slices")
	}
}
