// Package layout computes the radial display layout of a clinical map.
//
// # Algorithm
//
// The main node sits at the canvas centre. Each non-empty detail category
// gets a synthetic hub node on a fixed angle:
//
//	complication  45°     diagnosis 315°
//	treatment    135°     symptom   225°
//
// Angles follow the math convention (counter-clockwise from +x) with the
// screen y axis inverted. Hubs sit [DefaultHubRadius] from the centre; the
// category's nodes fan out around their hub at [DefaultChildRadius]. For N
// children the step between neighbours is min(35°, 90°/(N-1)), centred on
// the category angle, so a single child lies exactly on it.
//
// The output replaces all caller connections with the two-level hub
// structure: main → hub → child.
//
// # Fallbacks
//
// An empty node list yields an empty layout. A graph without a main node is
// returned as is, without hubs or re-centring.
//
// # Memoization
//
// [Radial] is pure. [Memo] caches the most recent result keyed by a hash of
// the inputs so repeated renders of the same map skip the computation.
package layout
