package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/textfmt"
)

var (
	nodeLineRe = regexp.MustCompile(`(?i)^(MAIN|SYMPTOM|DIAGNOSIS|TREATMENT|COMPLICATION):\s*(.+?)(?:\s*\|\s*(.+))?$`)
	connLineRe = regexp.MustCompile(`(?i)^CONNECTION:\s*(.+?)\s*->\s*(.+?)(?:\s*\[(.+)\])?$`)
)

// Options configures parsing.
type Options struct {
	// CleanMarkdown strips Markdown decoration from the markup before the
	// node pass. Off by default.
	CleanMarkdown bool
}

// Stats counts how the input lines were classified.
type Stats struct {
	Lines              int // non-empty lines after trimming
	NodeLines          int // lines that produced a node
	ConnectionLines    int // lines matching the connection pattern
	DroppedConnections int // connection lines with an unresolved endpoint
	Ignored            int // lines matching neither pattern
	FromEnvelope       bool
}

// Parse converts markup (or a JSON envelope around it) into a graph.
// It never fails; see the package documentation for the fallbacks.
func Parse(text string) clinical.Graph {
	g, _ := ParseDetailed(text, Options{})
	return g
}

// ParseWithOptions is Parse with explicit options.
func ParseWithOptions(text string, opts Options) clinical.Graph {
	g, _ := ParseDetailed(text, opts)
	return g
}

// ParseDetailed parses text and also reports line classification stats.
func ParseDetailed(text string, opts Options) (clinical.Graph, Stats) {
	var stats Stats

	content := unwrap(text)
	stats.FromEnvelope = content != text
	if opts.CleanMarkdown {
		content = textfmt.CleanMarkdown(content)
	}

	lines := splitLines(content)
	stats.Lines = len(lines)

	g := clinical.Graph{
		Nodes:       []clinical.Node{},
		Connections: []clinical.Connection{},
	}

	// Pass 1: nodes.
	typeIndex := make(map[clinical.NodeType]int)
	for _, line := range lines {
		m := nodeLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		typ, _ := clinical.ParseNodeType(m[1])
		x, y := placeholder(typ, typeIndex[typ])
		typeIndex[typ]++

		g.Nodes = append(g.Nodes, clinical.Node{
			ID:          fmt.Sprintf("node-%d", len(g.Nodes)),
			Label:       strings.TrimSpace(m[2]),
			Type:        typ,
			Description: strings.TrimSpace(m[3]),
			X:           x,
			Y:           y,
		})
		stats.NodeLines++
	}

	// Pass 2: connections.
	for _, line := range lines {
		m := connLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		stats.ConnectionLines++

		from, ok := findByLabel(g.Nodes, m[1])
		if !ok {
			stats.DroppedConnections++
			continue
		}
		to, ok := findByLabel(g.Nodes, m[2])
		if !ok {
			stats.DroppedConnections++
			continue
		}
		g.Connections = append(g.Connections, clinical.Connection{
			From:  from,
			To:    to,
			Label: strings.TrimSpace(m[3]),
		})
	}

	stats.Ignored = stats.Lines - stats.NodeLines - stats.ConnectionLines
	return g, stats
}

// splitLines returns the trimmed, non-empty lines of s.
func splitLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// findByLabel returns the id of the first node whose label equals label,
// ignoring case.
func findByLabel(nodes []clinical.Node, label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, n := range nodes {
		if strings.EqualFold(n.Label, label) {
			return n.ID, true
		}
	}
	return "", false
}

// placeholder returns fallback coordinates for the i-th node of a type.
// The layout engine discards them; they only serve consumers that draw the
// parsed graph directly.
func placeholder(t clinical.NodeType, i int) (x, y float64) {
	fi := float64(i)
	switch t {
	case clinical.TypeMain:
		return 400, 300
	case clinical.TypeSymptom:
		return 150, 100 + 80*fi
	case clinical.TypeDiagnosis:
		return 650, 100 + 80*fi
	case clinical.TypeTreatment:
		return 150 + 120*fi, 500
	case clinical.TypeComplication:
		return 650 + 120*fi, 500
	}
	return 0, 0
}
