package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing radial layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute the radial layout of a concept map",
		Long: `Compute the radial layout of a concept map.

The input is markup or a graph.json file produced by 'parse'. The main node
is placed at the centre, one hub per category on a ring around it, and the
category's members fanned out beyond each hub. The output is a layout.json
file (same format as 'render -f json').

Results are cached for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd, input, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: <input>.layout.json)`)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.CleanMarkdown, "clean-markdown", false, "strip Markdown decoration before parsing")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width (default from config)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height (default from config)")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	c.setCLIDefaults(&opts)
	g, err := c.loadGraph(cmd, runner, input, opts)
	if err != nil {
		return err
	}

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	if output == "" && (input == "" || input == stdio) {
		output = stdio
	}
	if output == stdio {
		data, err := clinical.MarshalLayout(l)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if output == "" {
		output = outputBase(input) + layoutSuffix
	}

	if err := clinical.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(l.DisplayNodes), len(l.DisplayConnections), cacheHit)
	printNewline()
	printNextStep("Browse", appName+" view "+output)
	return nil
}
