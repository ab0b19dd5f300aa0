package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
)

// parseCommand creates the parse command for converting markup to graph JSON.
func (c *CLI) parseCommand() *cobra.Command {
	var output string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse concept-map markup into a graph",
		Long: `Parse concept-map markup into a graph.

The input is markup with one element per line:

  MAIN: Pulmonary Embolism | Blockage of a pulmonary artery
  SYMPTOM: Dyspnea | Shortness of breath
  CONNECTION: Pulmonary Embolism -> Dyspnea [causes]

A JSON envelope ({"command":"map","topic":...,"content":...}) is unwrapped
first. Lines matching neither form are ignored. Reads standard input when no
file is given or the file is "-".`,
		Example: `  clinicalmap parse pe.txt
  clinicalmap parse --clean-markdown -o pe.graph.json response.json
  cat pe.txt | clinicalmap parse -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runParse(cmd, input, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: <input>.graph.json)`)
	cmd.Flags().BoolVar(&opts.CleanMarkdown, "clean-markdown", false, "strip Markdown decoration before parsing")

	return cmd
}

func (c *CLI) runParse(cmd *cobra.Command, input string, opts pipeline.Options, output string) error {
	data, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	opts.Content = string(data)
	opts.Logger = c.Logger
	if err := opts.ValidateForParse(); err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	g, stats := runner.Parse(cmd.Context(), opts)
	c.Logger.Debug("parsed", "lines", stats.Lines, "ignored", stats.Ignored, "dropped_connections", stats.DroppedConnections, "envelope", stats.FromEnvelope)

	if output == "" && (input == "" || input == stdio) {
		output = stdio
	}
	if output == stdio {
		return clinical.WriteGraph(g, cmd.OutOrStdout())
	}
	if output == "" {
		output = outputBase(input) + ".graph.json"
	}

	if err := clinical.WriteGraphFile(g, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Parsed %s", displayName(input))
	printFile(output)
	printStats(len(g.Nodes), len(g.Connections), false)
	if summary := typeSummary(g); summary != "" {
		printDetail("%s", summary)
	}
	if stats.Ignored > 0 || stats.DroppedConnections > 0 {
		printDetail("%d lines ignored, %d connections dropped", stats.Ignored, stats.DroppedConnections)
	}
	if _, ok := g.Main(); !ok {
		printWarning("No MAIN node: the layout will keep placeholder positions")
	}
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// typeSummary lists node counts per type in markup order, skipping types
// without nodes.
func typeSummary(g clinical.Graph) string {
	counts := g.CountByType()
	var parts []string
	for _, t := range append([]clinical.NodeType{clinical.TypeMain}, clinical.DetailTypes...) {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, t))
		}
	}
	return strings.Join(parts, " · ")
}

// parseMarkup is the parse step shared by commands that start from text.
func parseMarkup(ctx context.Context, runner *pipeline.Runner, content string, opts pipeline.Options) (clinical.Graph, error) {
	opts.Content = content
	if err := opts.ValidateForParse(); err != nil {
		return clinical.Graph{}, err
	}
	g, _ := runner.Parse(ctx, opts)
	return g, nil
}
