// Package markup parses concept-map markup into a [clinical.Graph].
//
// The markup is line oriented:
//
//	MAIN: Pulmonary Embolism
//	SYMPTOM: Dyspnea | sudden onset
//	DIAGNOSIS: CT pulmonary angiogram
//	TREATMENT: Anticoagulation
//	COMPLICATION: Right heart strain
//	CONNECTION: Dyspnea -> CT pulmonary angiogram [prompts]
//
// Keywords are case-insensitive. The text may also arrive wrapped in the JSON
// envelope returned by the content generator:
//
//	{"command": "map", "topic": "PE", "content": "MAIN: ...", "tokens_used": 512}
//
// # Failure Model
//
// Parsing never fails. Malformed envelopes fall back to the raw text,
// unmatched lines are ignored, and connections whose endpoints do not resolve
// to a node label are dropped. The worst case is an empty graph.
//
// # Node Pass and Connection Pass
//
// Two independent scans run over the same lines. The node pass assigns ids
// node-0, node-1, ... in order of matched node lines. The connection pass
// then resolves endpoints by case-insensitive exact label match; when labels
// repeat, the first declared node wins.
package markup
