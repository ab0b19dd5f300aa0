package layout

import (
	"sync"
	"testing"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
)

func TestMemo(t *testing.T) {
	m := NewMemo()
	g := clinical.Graph{Nodes: []clinical.Node{
		node("m", clinical.TypeMain),
		node("s", clinical.TypeSymptom),
	}}

	first, hit := m.Layout(g, Options{})
	if hit {
		t.Error("first call should miss")
	}
	second, hit := m.Layout(g, Options{})
	if !hit {
		t.Error("second call should hit")
	}
	if len(first.DisplayNodes) != len(second.DisplayNodes) {
		t.Fatal("memoized layout differs")
	}

	// Mutating a returned layout must not affect the memo.
	second.DisplayNodes[0].X = -1
	third, _ := m.Layout(g, Options{})
	if third.DisplayNodes[0].X == -1 {
		t.Error("memo returned shared slice")
	}

	g.Nodes = append(g.Nodes, node("d", clinical.TypeDiagnosis))
	if _, hit := m.Layout(g, Options{}); hit {
		t.Error("changed input should miss")
	}

	// Different options are a different input.
	if _, hit := m.Layout(g, Options{Width: 900}); hit {
		t.Error("changed options should miss")
	}

	hits, misses := m.Stats()
	if hits != 2 || misses != 3 {
		t.Errorf("stats = %d hits, %d misses; want 2, 3", hits, misses)
	}

	m.Reset()
	if _, hit := m.Layout(g, Options{}); hit {
		t.Error("call after Reset should miss")
	}
}

func TestMemoConcurrent(t *testing.T) {
	m := NewMemo()
	g := clinical.Graph{Nodes: []clinical.Node{node("m", clinical.TypeMain)}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, _ := m.Layout(g, Options{})
			if len(l.DisplayNodes) != 1 {
				t.Errorf("nodes = %d", len(l.DisplayNodes))
			}
		}()
	}
	wg.Wait()

	hits, misses := m.Stats()
	if hits+misses != 16 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
}
