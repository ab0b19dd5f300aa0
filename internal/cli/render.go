package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
	"github.com/vaidya-ai/clinicalmap/pkg/render"
	"github.com/vaidya-ai/clinicalmap/pkg/view"
)

// renderOpts holds the command-line flags for the render command that are
// not pipeline options.
type renderOpts struct {
	output  string // output file (single format) or base path
	formats string // comma-separated output formats
	noCache bool
}

// renderCommand creates the render command for generating visual output.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a concept map to SVG, DOT, PNG or JSON",
		Long: `Render a concept map to SVG, DOT, PNG or JSON.

The input is markup, a graph.json file produced by 'parse', or a layout.json
file produced by 'layout', which is rendered without recomputing positions.
The map is written once per requested format. The gvsvg format is the
Graphviz rendering of the DOT output, written as <base>.gv.svg, for comparing
against the native SVG.

--hover and --selected highlight a node and its connections the way the
interactive viewer does; --interactive embeds a script so the SVG reacts to
the mouse in a browser.

Layouts and artifacts are cached for faster subsequent runs.`,
		Example: `  clinicalmap render pe.txt
  clinicalmap render -f svg,png -o out/pe pe.txt
  clinicalmap render -f svg,gvsvg pe.txt
  clinicalmap render --selected node-1 --interactive pe.graph.json
  clinicalmap render -f png pe.layout.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(ro.formats)
			if err != nil {
				return err
			}
			opts.Formats = formatStrings(formats)

			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd, input, opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), dot, png, json, gvsvg (comma-separated)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().StringVar(&opts.Topic, "topic", "", "document title for SVG output")
	cmd.Flags().BoolVar(&opts.CleanMarkdown, "clean-markdown", false, "strip Markdown decoration before parsing")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width (default from config)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height (default from config)")
	cmd.Flags().StringVar(&opts.Hovered, "hover", "", "node id to render as hovered")
	cmd.Flags().StringVar(&opts.Selected, "selected", "", "node id to render as selected")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "embed hover/click script in SVG output")
	cmd.Flags().BoolVar(&opts.Guides, "guides", false, "draw the hub ring and fan rays behind the SVG map")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include descriptions in DOT, PNG and gvsvg labels")

	return cmd
}

// runRender loads the graph, lays it out and writes every requested format.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts pipeline.Options, ro renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	c.setCLIDefaults(&opts)
	l, layoutHit, err := c.loadLayout(cmd, runner, input, opts)
	if err != nil {
		return err
	}

	st := view.State{Hovered: opts.Hovered, Selected: opts.Selected}
	st.Prune(l)
	if st.Hovered != opts.Hovered || st.Selected != opts.Selected {
		printWarning("Ignoring hover/selection ids that are not in the map")
	}
	opts.Hovered, opts.Selected = st.Hovered, st.Selected

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(artifacts)))

	paths, err := writeArtifacts(artifacts, opts.Formats, input, ro.output)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(l.DisplayNodes), len(l.DisplayConnections), layoutHit && renderHit)
	return nil
}

// writeArtifacts writes each artifact and returns the paths in format
// order. A single format is written to output as given; several formats
// share output (or the input name) as base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + render.Format(format).Ext()
		if len(formats) == 1 && output != "" {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .gv.svg, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return outputBase(input)
	}
	if strings.HasSuffix(output, render.FormatGVSVG.Ext()) {
		return strings.TrimSuffix(output, render.FormatGVSVG.Ext())
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func formatStrings(formats []render.Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
