package svg

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/layout"
)

const guideColor = "#cbd5e1"

// renderGuides draws the ring the hubs sit on and, for each hub, the rays
// its children are fanned along. Misplaced nodes stand out against them.
func renderGuides(buf *bytes.Buffer, l clinical.Layout) {
	var main clinical.Node
	found := false
	for _, n := range l.DisplayNodes {
		if n.IsMain() {
			main, found = n, true
			break
		}
	}
	if !found {
		return
	}

	children := make(map[string][]clinical.Node)
	idx := l.Index()
	for _, c := range l.DisplayConnections {
		if to, ok := idx[c.To]; ok && to.Type.IsDetail() {
			children[c.From] = append(children[c.From], to)
		}
	}

	buf.WriteString(`  <g class="guides" fill="none" stroke="` + guideColor + `" stroke-dasharray="4 4">` + "\n")
	ringDrawn := false
	for _, hub := range l.DisplayNodes {
		if !hub.IsCategory() {
			continue
		}
		dx, dy := hub.X-main.X, hub.Y-main.Y
		if !ringDrawn {
			fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", main.X, main.Y, math.Hypot(dx, dy))
			ringDrawn = true
		}

		kids := children[hub.ID]
		if len(kids) == 0 {
			continue
		}
		// Screen y grows downwards, so the angle is measured against -dy.
		base := math.Atan2(-dy, dx) * 180 / math.Pi
		reach := math.Hypot(kids[0].X-hub.X, kids[0].Y-hub.Y)
		for _, off := range layout.Angles(len(kids)) {
			rad := (base + off) * math.Pi / 180
			fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
				hub.X, hub.Y, hub.X+reach*math.Cos(rad), hub.Y-reach*math.Sin(rad))
		}
	}
	buf.WriteString("  </g>\n")
}
