package svg

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vaidya-ai/clinicalmap/pkg/view"
)

const interactionCSS = `
    .node { cursor: pointer; }
    .node circle { transition: stroke-width 0.2s ease; }
    .connection { transition: stroke-opacity 0.2s ease, stroke-width 0.2s ease; }`

// interactionJS mirrors view.State: the selection is toggled by click and
// wins over the hover.
const interactionJS = `
    var state = %s;
    var accent = %q;
    function activeId() { return state.selected || state.hovered || ""; }
    function paint() {
      var id = activeId();
      document.querySelectorAll('.connection').forEach(function (p) {
        var touches = id !== "" && (p.dataset.from === id || p.dataset.to === id);
        p.setAttribute('stroke', touches ? accent : '%s');
        p.setAttribute('stroke-opacity', id === "" ? '%.2f' : (touches ? '%.2f' : '%.2f'));
        p.setAttribute('stroke-width', touches ? '%.1f' : '%.1f');
      });
      document.querySelectorAll('.node').forEach(function (g) {
        var c = g.querySelector('circle');
        var on = g.dataset.id === id;
        c.setAttribute('stroke', on ? accent : '#ffffff');
        c.setAttribute('stroke-width', on ? '4' : '2');
      });
    }
    document.querySelectorAll('.node').forEach(function (g) {
      g.addEventListener('mouseenter', function () { state.hovered = g.dataset.id; paint(); });
      g.addEventListener('mouseleave', function () { state.hovered = ""; paint(); });
      g.addEventListener('click', function () {
        state.selected = state.selected === g.dataset.id ? "" : g.dataset.id;
        paint();
      });
    });`

func renderInteraction(buf *bytes.Buffer, st view.State, opts Options) {
	initial, _ := json.Marshal(map[string]string{"hovered": st.Hovered, "selected": st.Selected})
	script := fmt.Sprintf(interactionJS, initial, opts.Accent, defaultEdgeColor,
		IdleOpacity, HighlightOpacity, DimmedOpacity, ActiveEdgeWidth, EdgeWidth)

	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", interactionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", script)
}
