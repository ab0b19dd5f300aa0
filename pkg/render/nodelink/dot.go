package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/render/svg"
)

// Options configures DOT generation.
type Options struct {
	// Detailed appends the description to each node label.
	Detailed bool
	// Palette overrides the node fill colours.
	Palette svg.Palette
}

// pointsPerInch converts layout units, treated as points, to the inches
// Graphviz uses for node sizes.
const pointsPerInch = 72.0

// ToDOT converts a layout to Graphviz DOT with pinned node positions.
// Connections whose endpoints are missing from the layout are dropped.
func ToDOT(l clinical.Layout, opts Options) string {
	palette := opts.Palette
	if palette == nil {
		palette = svg.DefaultPalette
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=curved;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontname=\"Helvetica\", fontsize=10, fontcolor=white, color=white, penwidth=2];\n")
	buf.WriteString("  edge [color=\"#94a3b8\"];\n")
	buf.WriteString("\n")

	for _, n := range l.DisplayNodes {
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(n.ID), strings.Join(fmtAttrs(n, palette, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, c := range l.Resolved() {
		if c.Label != "" {
			fmt.Fprintf(&buf, "  %s -- %s [label=%s];\n", dotQuote(c.From), dotQuote(c.To), dotQuote(c.Label))
			continue
		}
		fmt.Fprintf(&buf, "  %s -- %s;\n", dotQuote(c.From), dotQuote(c.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n clinical.Node, palette svg.Palette, detailed bool) []string {
	label := n.Label
	if detailed && n.Description != "" {
		label += "\n" + n.Description
	}

	// Flip y: Graphviz's origin is bottom-left.
	attrs := []string{
		"label=" + dotQuote(label),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.X), fmtFloat(-n.Y)),
		fmt.Sprintf("width=%s", fmtFloat(2*svg.Radius(n)/pointsPerInch)),
	}
	if fill, ok := palette[n.Type]; ok {
		attrs = append(attrs, "fillcolor="+dotQuote(fill))
	}
	if n.Type.IsDetail() {
		attrs = append(attrs, "fontcolor=black")
	}
	if n.Description != "" {
		attrs = append(attrs, "tooltip="+dotQuote(n.Description))
	}
	return attrs
}

// dotQuote returns s as a DOT double-quoted string. Only quote and
// backslash are escaped; newlines become DOT's \n line break and other
// control characters are dropped. Everything else passes through as UTF-8.
func dotQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales in a browser.
func normalizeViewBox(out []byte) []byte {
	match := viewBoxRe.FindSubmatch(out)
	if match == nil {
		return out
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return out
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(out, []byte(root))
}
