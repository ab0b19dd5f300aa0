package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
)

// viewCommand creates the view command for browsing a map in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Browse a concept map interactively in the terminal",
		Long: `Browse a concept map interactively in the terminal.

The input is markup, a graph.json file or a layout.json file written by
'layout'. Moving the cursor hovers a node, highlighting its connections and
showing its description. Enter toggles the selection, which stays highlighted
while the cursor moves. Press s to save the current view as an SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG file written when saving (default: <input>.svg)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.Topic, "topic", "", "title shown above the map")
	cmd.Flags().BoolVar(&opts.CleanMarkdown, "clean-markdown", false, "strip Markdown decoration before parsing")

	return cmd
}

func (c *CLI) runView(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	c.setCLIDefaults(&opts)
	l, _, err := c.loadLayout(cmd, runner, input, opts)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(NewMapViewModel(opts.Topic, l), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	m, ok := final.(MapViewModel)
	if !ok || !m.Save {
		return nil
	}

	opts.Formats = []string{pipeline.FormatSVG}
	opts.Interactive = true
	opts.Hovered, opts.Selected = m.State.Hovered, m.State.Selected
	artifacts, err := runner.Render(ctx, l, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = outputBase(input) + ".svg"
	}
	if err := os.WriteFile(output, artifacts[pipeline.FormatSVG], 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Saved view")
	printFile(output)
	return nil
}
