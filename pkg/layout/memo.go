package layout

import (
	"slices"
	"sync"

	"github.com/vaidya-ai/clinicalmap/pkg/cache"
	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
)

// Memo remembers the most recent layout and returns it again while the
// inputs stay the same. It is safe for concurrent use. The zero value is
// ready to use.
type Memo struct {
	mu     sync.Mutex
	key    string
	result clinical.Layout
	hits   int
	misses int
}

// NewMemo returns an empty memo.
func NewMemo() *Memo {
	return &Memo{}
}

// memoKey is hashed to identify an input.
type memoKey struct {
	Nodes       []clinical.Node       `json:"nodes"`
	Connections []clinical.Connection `json:"connections"`
	Options     Options               `json:"options"`
}

// Layout returns the layout of g under opts and whether it came from the
// memo. The returned slices are copies and may be modified by the caller.
func (m *Memo) Layout(g clinical.Graph, opts Options) (clinical.Layout, bool) {
	opts = opts.WithDefaults()
	key, err := cache.HashJSON(memoKey{Nodes: g.Nodes, Connections: g.Connections, Options: opts})
	if err != nil {
		// Node fields are plain strings and floats; only NaN coordinates
		// fail to encode. Compute without memoizing.
		return Compute(g, opts), false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if key == m.key {
		m.hits++
		return cloneLayout(m.result), true
	}

	m.misses++
	m.key = key
	m.result = Compute(g, opts)
	return cloneLayout(m.result), false
}

// Stats returns the number of memo hits and misses so far.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Reset forgets the remembered layout.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = ""
	m.result = clinical.Layout{}
}

func cloneLayout(l clinical.Layout) clinical.Layout {
	l.DisplayNodes = slices.Clone(l.DisplayNodes)
	l.DisplayConnections = slices.Clone(l.DisplayConnections)
	return l
}
