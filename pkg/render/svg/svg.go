// Package svg renders a clinical map layout as a standalone SVG document.
//
// Connections are drawn first as quadratic curves bowing to one side of the
// straight line, then nodes as labelled circles. Each node carries a
// <title> with its description so browsers show it as a tooltip.
//
// The [view.State] passed to [Render] decides the initial emphasis. With
// [Options.Interactive] the document also embeds a small script that
// reproduces the same hover and click behaviour in the browser.
package svg

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/view"
)

// Curvature is the control point offset as a fraction of edge length.
const Curvature = 0.15

// Edge styling.
const (
	EdgeWidth        = 1.5
	ActiveEdgeWidth  = 2.5
	IdleOpacity      = 0.6
	DimmedOpacity    = 0.25
	HighlightOpacity = 1.0
)

// Node radii by role.
const (
	MainRadius     = 40.0
	CategoryRadius = 30.0
	DetailRadius   = 22.0
)

// Palette maps node types to fill colours.
type Palette map[clinical.NodeType]string

// DefaultPalette is used when Options.Palette is nil.
var DefaultPalette = Palette{
	clinical.TypeMain:         "#2563eb",
	clinical.TypeCategory:     "#475569",
	clinical.TypeSymptom:      "#f59e0b",
	clinical.TypeDiagnosis:    "#8b5cf6",
	clinical.TypeTreatment:    "#10b981",
	clinical.TypeComplication: "#ef4444",
}

const (
	DefaultAccent    = "#0ea5e9"
	defaultEdgeColor = "#94a3b8"
	fallbackFill     = "#64748b"
	labelWrap        = 18
	padding          = 48.0
)

// Options configures SVG output.
type Options struct {
	Palette     Palette
	Accent      string // colour of edges touching the active node
	Interactive bool   // embed hover/click script
	Title       string // document <title>

	// Debug draws the hub ring and the ideal fan rays behind the map.
	Debug bool
}

func (o Options) withDefaults() Options {
	if o.Palette == nil {
		o.Palette = DefaultPalette
	}
	if o.Accent == "" {
		o.Accent = DefaultAccent
	}
	return o
}

// Radius returns the drawn radius of n.
func Radius(n clinical.Node) float64 {
	switch n.Type {
	case clinical.TypeMain:
		return MainRadius
	case clinical.TypeCategory:
		return CategoryRadius
	default:
		return DetailRadius
	}
}

// Render draws l with the emphasis described by st.
func Render(l clinical.Layout, st view.State, opts Options) []byte {
	opts = opts.withDefaults()
	idx := l.Index()
	active := st.Active()

	minX, minY, maxX, maxY := bounds(l)
	w, h := maxX-minX, maxY-minY

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f" font-family="system-ui, sans-serif">`+"\n",
		minX, minY, w, h, w, h)
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(opts.Title))
	}

	if opts.Debug {
		renderGuides(&buf, l)
	}

	buf.WriteString(`  <g class="connections">` + "\n")
	for _, c := range l.DisplayConnections {
		from, okF := idx[c.From]
		to, okT := idx[c.To]
		if !okF || !okT {
			continue
		}
		renderEdge(&buf, c, from, to, active, opts)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range l.DisplayNodes {
		renderNode(&buf, n, n.ID == active, opts)
	}
	buf.WriteString("  </g>\n")

	if opts.Interactive {
		renderInteraction(&buf, st, opts)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// ControlPoint returns the quadratic control point for an edge from
// (x1, y1) to (x2, y2).
func ControlPoint(x1, y1, x2, y2 float64) (cx, cy float64) {
	mx, my := (x1+x2)/2, (y1+y2)/2
	dx, dy := x2-x1, y2-y1
	return mx - dy*Curvature, my + dx*Curvature
}

// EdgeStyle returns the stroke colour, opacity and width for c.
func EdgeStyle(c clinical.Connection, active, accent string) (color string, opacity, width float64) {
	switch {
	case active == "":
		return defaultEdgeColor, IdleOpacity, EdgeWidth
	case c.Touches(active):
		return accent, HighlightOpacity, ActiveEdgeWidth
	default:
		return defaultEdgeColor, DimmedOpacity, EdgeWidth
	}
}

func renderEdge(buf *bytes.Buffer, c clinical.Connection, from, to clinical.Node, active string, opts Options) {
	cx, cy := ControlPoint(from.X, from.Y, to.X, to.Y)
	color, opacity, width := EdgeStyle(c, active, opts.Accent)

	fmt.Fprintf(buf, `    <path class="connection" data-from="%s" data-to="%s" d="M %.2f %.2f Q %.2f %.2f %.2f %.2f" fill="none" stroke="%s" stroke-opacity="%.2f" stroke-width="%.1f"/>`+"\n",
		attr(c.From), attr(c.To), from.X, from.Y, cx, cy, to.X, to.Y, color, opacity, width)

	if c.Label == "" {
		return
	}
	// Point on the curve at t=0.5.
	lx := 0.25*from.X + 0.5*cx + 0.25*to.X
	ly := 0.25*from.Y + 0.5*cy + 0.25*to.Y
	fmt.Fprintf(buf, `    <text class="connection-label" x="%.2f" y="%.2f" text-anchor="middle" font-size="10" fill="#475569">%s</text>`+"\n",
		lx, ly, html.EscapeString(c.Label))
}

func renderNode(buf *bytes.Buffer, n clinical.Node, isActive bool, opts Options) {
	r := Radius(n)
	fill, ok := opts.Palette[n.Type]
	if !ok {
		fill = fallbackFill
	}
	stroke, strokeWidth := "#ffffff", 2.0
	if isActive {
		stroke, strokeWidth = opts.Accent, 4
	}

	class := "node node-" + string(n.Type)
	if isActive {
		class += " active"
	}
	fmt.Fprintf(buf, `    <g class="%s" data-id="%s">`+"\n", class, attr(n.ID))
	if tip := tooltip(n); tip != "" {
		fmt.Fprintf(buf, "      <title>%s</title>\n", html.EscapeString(tip))
	}
	fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.0f" fill="%s" stroke="%s" stroke-width="%.0f"/>`+"\n",
		n.X, n.Y, r, fill, stroke, strokeWidth)
	renderLabel(buf, n, r)
	buf.WriteString("    </g>\n")
}

// renderLabel puts hub and main labels inside the circle and detail labels
// underneath it.
func renderLabel(buf *bytes.Buffer, n clinical.Node, r float64) {
	lines := wrap(n.Label, labelWrap)
	if len(lines) == 0 {
		return
	}

	inside := n.Type == clinical.TypeMain || n.Type == clinical.TypeCategory
	size, color, weight := 11.0, "#1e293b", "normal"
	y := n.Y + r + 14
	if inside {
		size, color, weight = 10, "#ffffff", "bold"
		if n.Type == clinical.TypeMain {
			size = 12
		}
		y = n.Y - float64(len(lines)-1)*size*0.6 + size*0.35
	}

	fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" text-anchor="middle" font-size="%.0f" font-weight="%s" fill="%s">`,
		n.X, y, size, weight, color)
	for i, line := range lines {
		dy := 0.0
		if i > 0 {
			dy = size * 1.2
		}
		fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.1f">%s</tspan>`, n.X, dy, html.EscapeString(line))
	}
	buf.WriteString("</text>\n")
}

func tooltip(n clinical.Node) string {
	if n.Description == "" {
		return n.Label
	}
	return n.Label + ": " + n.Description
}

// wrap breaks s into lines of at most width runes on word boundaries.
// Words longer than width stay whole.
func wrap(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(word)) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// bounds returns the drawing area: the layout canvas grown to include every
// node with room for its label.
func bounds(l clinical.Layout) (minX, minY, maxX, maxY float64) {
	w, h := l.Width, l.Height
	if w <= 0 {
		w = 600
	}
	if h <= 0 {
		h = 400
	}
	minX, minY, maxX, maxY = 0, 0, w, h
	for _, n := range l.DisplayNodes {
		r := Radius(n)
		minX = math.Min(minX, n.X-r-padding)
		minY = math.Min(minY, n.Y-r-padding)
		maxX = math.Max(maxX, n.X+r+padding)
		maxY = math.Max(maxY, n.Y+r+padding)
	}
	return minX, minY, maxX, maxY
}

func attr(s string) string { return html.EscapeString(s) }
