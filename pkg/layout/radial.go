package layout

import (
	"math"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
)

// Defaults for the logical canvas and the two fan-out radii.
const (
	DefaultWidth       = 600.0
	DefaultHeight      = 400.0
	DefaultHubRadius   = 200.0
	DefaultChildRadius = 140.0
	DefaultMaxSpread   = 35.0 // degrees between neighbouring children
	DefaultFanArc      = 90.0 // degrees shared by all children of one hub
)

// Category describes the hub placed for one detail type.
type Category struct {
	Type  clinical.NodeType
	Angle float64 // degrees
	Label string
}

// Categories lists the hubs in emission order.
var Categories = []Category{
	{Type: clinical.TypeSymptom, Angle: 225, Label: "Symptoms"},
	{Type: clinical.TypeDiagnosis, Angle: 315, Label: "Diagnosis"},
	{Type: clinical.TypeTreatment, Angle: 135, Label: "Treatment"},
	{Type: clinical.TypeComplication, Angle: 45, Label: "Risk Factors"},
}

// CategoryID returns the id of the hub node for t.
func CategoryID(t clinical.NodeType) string {
	return "category-" + string(t)
}

// Options configures the layout geometry. Zero fields take defaults.
type Options struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	HubRadius   float64 `json:"hub_radius"`
	ChildRadius float64 `json:"child_radius"`
	MaxSpread   float64 `json:"max_spread"`
	FanArc      float64 `json:"fan_arc"`
}

// WithDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.HubRadius <= 0 {
		o.HubRadius = DefaultHubRadius
	}
	if o.ChildRadius <= 0 {
		o.ChildRadius = DefaultChildRadius
	}
	if o.MaxSpread <= 0 {
		o.MaxSpread = DefaultMaxSpread
	}
	if o.FanArc <= 0 {
		o.FanArc = DefaultFanArc
	}
	return o
}

// Radial lays out nodes with the default geometry and returns the display
// nodes and connections. See the package documentation for the rules.
func Radial(nodes []clinical.Node, connections []clinical.Connection) ([]clinical.Node, []clinical.Connection) {
	return radial(nodes, connections, Options{}.WithDefaults())
}

// Compute lays out g with the given options.
func Compute(g clinical.Graph, opts Options) clinical.Layout {
	opts = opts.WithDefaults()
	nodes, conns := radial(g.Nodes, g.Connections, opts)
	return clinical.Layout{
		DisplayNodes:       nodes,
		DisplayConnections: conns,
		Width:              opts.Width,
		Height:             opts.Height,
	}
}

func radial(nodes []clinical.Node, connections []clinical.Connection, opts Options) ([]clinical.Node, []clinical.Connection) {
	if len(nodes) == 0 {
		return []clinical.Node{}, []clinical.Connection{}
	}

	mainIdx := -1
	for i := range nodes {
		if nodes[i].IsMain() {
			mainIdx = i
			break
		}
	}
	if mainIdx < 0 {
		return nodes, connections
	}

	byType := make(map[clinical.NodeType][]clinical.Node)
	for _, n := range nodes {
		if n.Type.IsDetail() {
			byType[n.Type] = append(byType[n.Type], n)
		}
	}

	cx, cy := opts.Width/2, opts.Height/2
	main := nodes[mainIdx]
	main.X, main.Y = cx, cy

	outNodes := []clinical.Node{main}
	outConns := []clinical.Connection{}

	for _, cat := range Categories {
		children := byType[cat.Type]
		if len(children) == 0 {
			continue
		}

		hx, hy := polar(cx, cy, opts.HubRadius, cat.Angle)
		hub := clinical.Node{
			ID:    CategoryID(cat.Type),
			Label: cat.Label,
			Type:  clinical.TypeCategory,
			X:     hx,
			Y:     hy,
		}
		outNodes = append(outNodes, hub)
		outConns = append(outConns, clinical.Connection{From: main.ID, To: hub.ID})

		for i, offset := range fanOffsets(len(children), opts.MaxSpread, opts.FanArc) {
			child := children[i]
			child.X, child.Y = polar(hx, hy, opts.ChildRadius, cat.Angle+offset)
			outNodes = append(outNodes, child)
			outConns = append(outConns, clinical.Connection{From: hub.ID, To: child.ID})
		}
	}

	return outNodes, outConns
}

// Angles returns the angular offset in degrees of each of n children from
// their category angle, using the default spread limits.
func Angles(n int) []float64 {
	return fanOffsets(n, DefaultMaxSpread, DefaultFanArc)
}

// fanOffsets spreads n children symmetrically around 0.
func fanOffsets(n int, maxSpread, fanArc float64) []float64 {
	if n <= 0 {
		return nil
	}
	step := math.Min(maxSpread, fanArc/float64(max(n-1, 1)))
	start := -step * float64(n-1) / 2

	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// polar returns the point r units from (cx, cy) at deg degrees, with the
// screen y axis pointing down.
func polar(cx, cy, r, deg float64) (x, y float64) {
	rad := deg * math.Pi / 180
	return cx + r*math.Cos(rad), cy - r*math.Sin(rad)
}
