package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/render/nodelink"
	"github.com/vaidya-ai/clinicalmap/pkg/render/svg"
	"github.com/vaidya-ai/clinicalmap/pkg/view"
)

// RenderFromLayout generates output artifacts in the requested formats.
// Formats are rendered concurrently; the first failure cancels the rest.
func RenderFromLayout(ctx context.Context, l clinical.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, l, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l clinical.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		st := view.State{Hovered: opts.Hovered, Selected: opts.Selected}
		return svg.Render(l, st, svg.Options{Interactive: opts.Interactive, Title: opts.Topic, Debug: opts.Guides}), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
	case FormatGVSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
	case FormatJSON:
		return clinical.MarshalLayout(l)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
