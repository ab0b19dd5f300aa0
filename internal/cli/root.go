package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the clinicalmap CLI and returns an error if any command fails.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
func Execute(ctx context.Context) error {
	return newRoot(New(os.Stderr, LogInfo)).ExecuteContext(ctx)
}

// newRoot adds the --verbose flag to the root command of c.
func newRoot(c *CLI) *cobra.Command {
	var verbose bool

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			originalPreRun(cmd, args)
		}
	}
	return root
}
