package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vaidya-ai/clinicalmap/pkg/apikey"
	"github.com/vaidya-ai/clinicalmap/pkg/cache"
	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
	"github.com/vaidya-ai/clinicalmap/pkg/server"
	"github.com/vaidya-ai/clinicalmap/pkg/session"
)

// cleanupInterval is how often the server purges expired sessions.
const cleanupInterval = time.Hour

// serverKeyPrefix keeps server cache entries apart from CLI runs that share
// the same redis database.
const serverKeyPrefix = "api:"

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

The server previews and saves concept maps and renders saved maps on demand.
Saved maps go to the configured session store (file, memory or mongo) and
layouts and artifacts to the configured cache (file, redis or none). The
server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, addr string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, serverKeyPrefix)

	store, err := c.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	fields := []any{"cache", cfg.Cache.Backend, "sessions", cfg.Sessions.Backend}
	if cfg.Cache.Backend == cache.BackendRedis {
		fields = append(fields, "redis", cfg.Redis.Addr)
		if cfg.Redis.Password != "" {
			fields = append(fields, "redis_password", apikey.Mask(cfg.Redis.Password))
		}
	}
	if cfg.Sessions.Backend == session.BackendMongo {
		fields = append(fields, "mongo", apikey.MaskURL(cfg.Mongo.URI))
	}
	logger.Info("starting server", fields...)

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep(ctx, store, runner, logger)
			}
		}
	}()

	srv := server.New(runner, store, logger, server.Options{
		Addr:           addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		SessionTTL:     cfg.Sessions.TTL.Std(),
		Width:          cfg.Layout.Width,
		Height:         cfg.Layout.Height,
	})
	return srv.Run(ctx)
}

// sweep purges expired sessions and reports layout memo use at debug level.
func sweep(ctx context.Context, store session.Store, runner *pipeline.Runner, logger *log.Logger) {
	if err := store.Cleanup(ctx); err != nil {
		logger.Warn("session cleanup failed", "error", err)
	}
	hits, misses := runner.MemoStats()
	logger.Debug("layout memo", "hits", hits, "misses", misses)
}
