// Package view tracks which node of a rendered map the user is pointing at
// or has selected.
//
// A selection is sticky: it survives hover changes and is cleared by clicking
// the same node again. Renderers ask [State.Active] which node to emphasise;
// the selection wins over the hover.
package view

import "github.com/vaidya-ai/clinicalmap/pkg/clinical"

// State is the interaction state of one map view. The zero value has
// nothing hovered or selected.
type State struct {
	Hovered  string `json:"hovered,omitempty"`
	Selected string `json:"selected,omitempty"`
}

// Hover marks id as hovered.
func (s *State) Hover(id string) { s.Hovered = id }

// Leave clears the hover.
func (s *State) Leave() { s.Hovered = "" }

// Click toggles the selection of id.
func (s *State) Click(id string) {
	if s.Selected == id {
		s.Selected = ""
		return
	}
	s.Selected = id
}

// Reset clears both hover and selection.
func (s *State) Reset() { *s = State{} }

// Active returns the node that should be emphasised, or "".
func (s State) Active() string {
	if s.Selected != "" {
		return s.Selected
	}
	return s.Hovered
}

// IsActive reports whether id is the emphasised node.
func (s State) IsActive(id string) bool {
	return id != "" && s.Active() == id
}

// Touches reports whether c has the active node as an endpoint.
func (s State) Touches(c clinical.Connection) bool {
	return c.Touches(s.Active())
}

// ActiveNode returns the active node in l. It reports false when nothing
// is active or the active id is not in l.
func (s State) ActiveNode(l clinical.Layout) (clinical.Node, bool) {
	id := s.Active()
	if id == "" {
		return clinical.Node{}, false
	}
	for _, n := range l.DisplayNodes {
		if n.ID == id {
			return n, true
		}
	}
	return clinical.Node{}, false
}

// Prune clears hover and selection that refer to nodes no longer in l.
func (s *State) Prune(l clinical.Layout) {
	idx := l.Index()
	if _, ok := idx[s.Hovered]; !ok {
		s.Hovered = ""
	}
	if _, ok := idx[s.Selected]; !ok {
		s.Selected = ""
	}
}
