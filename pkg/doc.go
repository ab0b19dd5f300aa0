// Package pkg provides the libraries behind clinicalmap, which turns
// clinical concept-map markup into radial diagrams.
//
// # Overview
//
// A concept map has one main concept (a disease or condition) and detail
// nodes grouped into four categories: symptoms, diagnoses, treatments and
// complications. Markup with one element per line is parsed into a graph,
// laid out radially around the main node with one hub per category, and
// rendered as an interactive SVG, Graphviz DOT, PNG or JSON.
//
// # Architecture
//
//	markup text or {"command":"map",...} envelope
//	         ↓
//	    [markup] (parse lines into a clinical.Graph)
//	         ↓
//	    [layout] (radial placement, category hubs)
//	         ↓
//	    [render] (SVG with hover/selection from [view], DOT, PNG, JSON)
//
// [pipeline] runs these stages with caching and is shared by the CLI and
// the HTTP API in [server]. Saved maps live in [session] stores.
//
// # Quick Start
//
//	g := markup.Parse(`MAIN: Pulmonary Embolism | Blockage of a pulmonary artery
//	SYMPTOM: Dyspnea | Shortness of breath
//	CONNECTION: Pulmonary Embolism -> Dyspnea [causes]`)
//
//	l := layout.Compute(g, layout.Options{})
//	out := svg.Render(l, view.State{Hovered: "node-1"}, svg.Options{})
//
// # Main Packages
//
// [clinical] - Node, connection, graph and layout types with JSON
// serialization.
//
// [markup] - Line parser for MAIN/SYMPTOM/DIAGNOSIS/TREATMENT/COMPLICATION
// and CONNECTION lines, including generator envelopes.
//
// [layout] - Radial layout: main node at the centre, category hubs on a
// fixed ring, children fanned around each hub.
//
// [view] - Hover and sticky selection state shared by renderers and the
// terminal viewer.
//
// [render] - Output formats. [render/svg] draws the interactive map and
// [render/nodelink] produces Graphviz output.
//
// [textfmt] - Markdown cleanup and chat-style text formatting.
//
// [apikey] - Masking of API keys and connection-string passwords.
//
// ## Infrastructure
//
// [pipeline] - Parse, layout and render with content-addressed caching.
//
// [cache] - File, Redis and null caches for layouts and artifacts.
//
// [session] - Saved maps in file, memory or MongoDB stores.
//
// [server] - HTTP API over the pipeline and session store.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for pipeline and HTTP metrics.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
package pkg
