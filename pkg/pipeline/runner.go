package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vaidya-ai/clinicalmap/pkg/cache"
	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/layout"
	"github.com/vaidya-ai/clinicalmap/pkg/markup"
	"github.com/vaidya-ai/clinicalmap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// Apart from the cache and the layout memo the Runner keeps no state, so
// multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache TTLs when positive.
	TTL time.Duration

	memo *layout.Memo
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		memo:   layout.NewMemo(),
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Parse
	g, stats := r.Parse(ctx, opts)
	result.Graph = g
	result.Stats.Parse = stats.Stats
	result.Stats.ParseTime = stats.Duration
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.ConnectionCount = len(g.Connections)
	result.GraphHash = graphHash(g)

	opts.Logger.Info("parsed markup",
		"nodes", len(g.Nodes),
		"connections", len(g.Connections),
		"ignored", stats.Ignored,
		"duration", stats.Duration)
	if _, ok := g.Main(); !ok && !g.IsEmpty() {
		opts.Logger.Warn("no MAIN node, layout keeps placeholder positions")
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.DisplayNodeCount = len(l.DisplayNodes)
	result.Stats.DisplayConnCount = len(l.DisplayConnections)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"nodes", len(l.DisplayNodes),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseStats is markup.Stats plus the time spent parsing.
type ParseStats struct {
	markup.Stats
	Duration time.Duration
}

// Parse converts opts.Content into a graph and reports observability hooks.
// Parsing is cheap and never fails, so it is not cached.
func (r *Runner) Parse(ctx context.Context, opts Options) (clinical.Graph, ParseStats) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, len(opts.Content))

	g, stats, d := parseTimed(opts)

	hooks.OnParseComplete(ctx, len(g.Nodes), len(g.Connections), d)
	return g, ParseStats{Stats: stats, Duration: d}
}

// LayoutWithCacheInfo computes the layout of g and reports whether it was
// served from the in-process memo or the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g clinical.Graph, opts Options) (clinical.Layout, bool, error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(g.Nodes))
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(graphHash(g), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := clinical.UnmarshalLayout(data); err == nil {
				hooks.OnLayoutComplete(ctx, len(cached.DisplayNodes), time.Since(start))
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Warn("layout cache read failed", "error", err)
		}
	}

	l, memoHit := r.memo.Layout(g, opts.LayoutOptions())
	if opts.Refresh {
		memoHit = false
	}

	if data, err := clinical.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err != nil {
			opts.Logger.Warn("layout cache write failed", "error", err)
		}
	}

	hooks.OnLayoutComplete(ctx, len(l.DisplayNodes), time.Since(start))
	return l, memoHit, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g clinical.Graph, opts Options) (clinical.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l clinical.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	// Compute cache key from layout data
	layoutData, err := clinical.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts = make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := RenderFromLayout(ctx, l, renderOpts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err != nil {
			opts.Logger.Warn("artifact cache write failed", "format", format, "error", err)
		}
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l clinical.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// MemoStats reports in-process layout memo hits and misses.
func (r *Runner) MemoStats() (hits, misses int) {
	return r.memo.Stats()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// graphHash identifies a graph for layout cache keys. Node and connection
// order matter to the layout, so the ordered JSON form is hashed.
func graphHash(g clinical.Graph) string {
	data, err := json.Marshal(struct {
		Nodes       []clinical.Node       `json:"nodes"`
		Connections []clinical.Connection `json:"connections"`
	}{nonNil(g.Nodes), nonNil(g.Connections)})
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
