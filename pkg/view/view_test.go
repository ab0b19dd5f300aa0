package view

import (
	"testing"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
)

func TestState(t *testing.T) {
	tests := []struct {
		name       string
		steps      func(s *State)
		wantActive string
		wantSel    string
	}{
		{"zero", func(s *State) {}, "", ""},
		{"hover", func(s *State) { s.Hover("a") }, "a", ""},
		{"hover then leave", func(s *State) { s.Hover("a"); s.Leave() }, "", ""},
		{"click selects", func(s *State) { s.Click("a") }, "a", "a"},
		{"click twice deselects", func(s *State) { s.Click("a"); s.Click("a") }, "", ""},
		{"click other replaces", func(s *State) { s.Click("a"); s.Click("b") }, "b", "b"},
		{"selection wins over hover", func(s *State) { s.Click("a"); s.Hover("b") }, "a", "a"},
		{"leave keeps selection", func(s *State) { s.Click("a"); s.Hover("b"); s.Leave() }, "a", "a"},
		{"reset", func(s *State) { s.Click("a"); s.Hover("b"); s.Reset() }, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			tt.steps(&s)
			if got := s.Active(); got != tt.wantActive {
				t.Errorf("Active() = %q, want %q", got, tt.wantActive)
			}
			if s.Selected != tt.wantSel {
				t.Errorf("Selected = %q, want %q", s.Selected, tt.wantSel)
			}
		})
	}
}

func TestTouches(t *testing.T) {
	c := clinical.Connection{From: "a", To: "b"}

	var s State
	if s.Touches(c) {
		t.Error("no active node should touch nothing")
	}
	s.Hover("b")
	if !s.Touches(c) {
		t.Error("hovered endpoint should touch")
	}
	s.Hover("c")
	if s.Touches(c) {
		t.Error("unrelated node should not touch")
	}
	if !s.IsActive("c") || s.IsActive("") {
		t.Error("IsActive mismatch")
	}
}

func TestActiveNodeAndPrune(t *testing.T) {
	l := clinical.Layout{DisplayNodes: []clinical.Node{
		{ID: "a", Description: "Shortness of breath"},
		{ID: "b"},
	}}

	tests := []struct {
		name   string
		state  State
		wantID string
		wantOK bool
	}{
		{"idle", State{}, "", false},
		{"hovered", State{Hovered: "a"}, "a", true},
		{"no description", State{Hovered: "b"}, "b", true},
		{"selection wins", State{Hovered: "a", Selected: "b"}, "b", true},
		{"unknown id", State{Selected: "gone"}, "", false},
	}
	for _, tt := range tests {
		n, ok := tt.state.ActiveNode(l)
		if ok != tt.wantOK || n.ID != tt.wantID {
			t.Errorf("%s: ActiveNode() = %q, %v; want %q, %v", tt.name, n.ID, ok, tt.wantID, tt.wantOK)
		}
	}
	if n, _ := (State{Hovered: "a"}).ActiveNode(l); n.Description != "Shortness of breath" {
		t.Errorf("ActiveNode().Description = %q", n.Description)
	}

	s := State{Hovered: "gone", Selected: "a"}
	s.Prune(l)
	if s.Hovered != "" || s.Selected != "a" {
		t.Errorf("Prune() = %+v", s)
	}
}
