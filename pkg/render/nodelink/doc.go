// Package nodelink renders clinical map layouts through Graphviz.
//
// # Overview
//
// The interactive SVG renderer is the primary output. This package is the
// alternative for users who want to post-process a map with Graphviz tools
// or need a raster image: [ToDOT] emits DOT source with every node pinned
// to its layout position, and [RenderSVG] and [RenderPNG] render that DOT
// in-process. The pipeline serves RenderSVG output as the "gvsvg" format so
// the pinned neato drawing can be compared with the native SVG.
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # DOT Format
//
// Positions use pos="x,y!" in points with the neato engine, so Graphviz
// keeps the radial arrangement instead of computing its own. Graphviz puts
// the y axis upwards; [ToDOT] flips it so the output matches the SVG
// renderer.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly. No system installation is required.
package nodelink
