// Package render turns a laid-out clinical map into displayable output.
//
// # Overview
//
// Rendering starts from a [clinical.Layout], which already carries final
// coordinates. Two renderers exist:
//
//   - [svg]: the interactive map, with curved connectors, per-type node
//     styling, tooltips and hover/selection emphasis
//   - [nodelink]: Graphviz DOT with pinned positions, rendered in-process
//     to SVG or PNG
//
// This package holds what both share: the output [Format] names and their
// content types.
//
//	l := layout.Compute(g, layout.Options{})
//	out := svg.Render(l, view.State{Selected: "node-0"}, svg.Options{})
//
// [svg]: github.com/vaidya-ai/clinicalmap/pkg/render/svg
// [nodelink]: github.com/vaidya-ai/clinicalmap/pkg/render/nodelink
// [clinical.Layout]: github.com/vaidya-ai/clinicalmap/pkg/clinical.Layout
package render
