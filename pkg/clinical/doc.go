// Package clinical provides the data model for clinical concept maps.
//
// A clinical map is a small graph built around one main condition. Detail
// nodes (symptoms, diagnoses, treatments, complications) hang off it, and the
// layout engine adds synthetic category hubs between the two levels.
//
// # Core Types
//
//   - [Graph]: parsed nodes and connections, the output of pkg/markup
//   - [Layout]: display nodes and connections, the output of pkg/layout
//   - [Node], [Connection]: shared structural types
//   - [NodeType]: the closed set of node kinds
//
// # Serialization
//
// Graphs and layouts share a simple JSON format:
//
//	{
//	  "nodes": [{"id": "node-0", "label": "Pulmonary Embolism", "type": "main", "x": 400, "y": 300}],
//	  "connections": [{"from": "node-1", "to": "node-2", "label": "causes"}]
//	}
//
// Common operations:
//
//	g, _ := clinical.ReadGraphFile("map.json")
//	clinical.WriteLayoutFile(l, "map.layout.json")
//	data, _ := clinical.MarshalLayout(l)
//
// # Concurrency
//
// Values are never mutated after construction; a new graph replaces the old
// one wholesale. Reads are safe from any goroutine.
package clinical
