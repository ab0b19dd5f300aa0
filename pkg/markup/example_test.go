package markup_test

import (
	"fmt"

	"github.com/vaidya-ai/clinicalmap/pkg/markup"
)

func ExampleParse() {
	g := markup.Parse(`MAIN: Pulmonary Embolism
SYMPTOM: Dyspnea | sudden onset
SYMPTOM: Chest Pain
CONNECTION: Dyspnea -> Chest Pain [pleuritic]`)

	for _, n := range g.Nodes {
		fmt.Printf("%s %s %q\n", n.ID, n.Type, n.Label)
	}
	for _, c := range g.Connections {
		fmt.Printf("%s -> %s [%s]\n", c.From, c.To, c.Label)
	}
	// Output:
	// node-0 main "Pulmonary Embolism"
	// node-1 symptom "Dyspnea"
	// node-2 symptom "Chest Pain"
	// node-1 -> node-2 [pleuritic]
}
