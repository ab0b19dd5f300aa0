package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vaidya-ai/clinicalmap/pkg/buildinfo"
	"github.com/vaidya-ai/clinicalmap/pkg/cache"
	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/config"
	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
	"github.com/vaidya-ai/clinicalmap/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and cache key prefixes.
const appName = config.AppName

// stdio names standard input or output in place of a file path.
const stdio = "-"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "clinicalmap lays out and renders clinical concept maps",
		Long: `clinicalmap turns concept-map markup (MAIN/SYMPTOM/DIAGNOSIS/TREATMENT/COMPLICATION
lines) into a radial map grouped by category, renders it as SVG, DOT, PNG or JSON,
and serves the same pipeline over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/clinicalmap/config.toml)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(ch, nil, c.Logger)
	runner.TTL = cfg.Cache.TTL.Std()
	return runner, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := cache.Options{
		Backend: cfg.Cache.Backend,
		Redis: cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   appName + ":",
		},
	}
	if opts.Backend == cache.BackendFile {
		dir, err := cfg.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	return cache.Open(ctx, opts)
}

// openStore opens the configured session store.
func (c *CLI) openStore(ctx context.Context) (session.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	opts := session.Options{
		Backend: cfg.Sessions.Backend,
		Mongo: session.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		},
	}
	if opts.Backend == session.BackendFile {
		if opts.Dir, err = cfg.SessionsDir(); err != nil {
			return nil, err
		}
	}
	return session.Open(ctx, opts)
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies CLI-specific defaults on top of pipeline defaults.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	if cfg, err := c.config(); err == nil {
		if opts.Width <= 0 {
			opts.Width = cfg.Layout.Width
		}
		if opts.Height <= 0 {
			opts.Height = cfg.Layout.Height
		}
	}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Logger = c.Logger
}

// =============================================================================
// Input and Output
// =============================================================================

// readInput reads path, or standard input when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == stdio {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// isGraphJSON reports whether data is a graph written by the parse
// command rather than markup or a generator envelope.
func isGraphJSON(data []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	_, hasNodes := fields["nodes"]
	_, hasContent := fields["content"]
	return hasNodes && !hasContent
}

// loadGraph reads a graph from a graph JSON file or parses markup.
func (c *CLI) loadGraph(cmd *cobra.Command, runner *pipeline.Runner, path string, opts pipeline.Options) (clinical.Graph, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return clinical.Graph{}, err
	}
	if isGraphJSON(data) {
		g, err := clinical.ReadGraph(bytes.NewReader(data))
		if err != nil {
			return clinical.Graph{}, fmt.Errorf("load graph %s: %w", displayName(path), err)
		}
		return g, nil
	}

	return parseMarkup(cmd.Context(), runner, string(data), opts)
}

// layoutSuffix ends the default output name of the layout command.
const layoutSuffix = ".layout.json"

// loadLayout returns the laid-out map for path. Files written by the layout
// command are used as is and reported as cached; anything else goes through
// loadGraph and the runner.
func (c *CLI) loadLayout(cmd *cobra.Command, runner *pipeline.Runner, path string, opts pipeline.Options) (clinical.Layout, bool, error) {
	if strings.HasSuffix(path, layoutSuffix) {
		l, err := clinical.ReadLayoutFile(path)
		if err != nil {
			return clinical.Layout{}, false, fmt.Errorf("load layout: %w", err)
		}
		return l, true, nil
	}

	g, err := c.loadGraph(cmd, runner, path, opts)
	if err != nil {
		return clinical.Layout{}, false, err
	}
	l, hit, err := runner.LayoutWithCacheInfo(cmd.Context(), g, opts)
	if err != nil {
		return clinical.Layout{}, false, fmt.Errorf("compute layout: %w", err)
	}
	return l, hit, nil
}

// outputBase derives the base path for generated files from the input.
func outputBase(input string) string {
	if input == "" || input == stdio {
		return "clinicalmap"
	}
	if strings.HasSuffix(input, layoutSuffix) {
		return strings.TrimSuffix(input, layoutSuffix)
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".graph")
}

func displayName(path string) string {
	if path == "" || path == stdio {
		return "stdin"
	}
	return path
}
