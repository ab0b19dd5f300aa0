package pipeline

import (
	"time"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/markup"
)

// Parse converts the markup in opts into a graph. It never fails; the
// content is not validated here.
func Parse(opts Options) (clinical.Graph, markup.Stats) {
	return markup.ParseDetailed(opts.Content, opts.ParseOptions())
}

// parseTimed parses and reports the elapsed time.
func parseTimed(opts Options) (clinical.Graph, markup.Stats, time.Duration) {
	start := time.Now()
	g, stats := Parse(opts)
	return g, stats, time.Since(start)
}
