// Package pipeline runs the markup → graph → layout → artifacts pipeline.
//
// This package is shared by the CLI and the HTTP server so both produce the
// same maps with the same caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: turn concept-map markup (or a JSON envelope) into a graph
//  2. Layout: place the graph radially around its main node
//  3. Render: produce SVG, DOT, PNG or JSON output
//
// Each stage can be run on its own. Layouts are memoized in-process and,
// like artifacts, stored in the [cache.Cache] given to the [Runner] so other
// processes sharing the cache reuse them.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Content: markup,
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vaidya-ai/clinicalmap/pkg/cache"
	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/errors"
	"github.com/vaidya-ai/clinicalmap/pkg/layout"
	"github.com/vaidya-ai/clinicalmap/pkg/markup"
	"github.com/vaidya-ai/clinicalmap/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = layout.DefaultWidth

	// DefaultHeight is the default canvas height.
	DefaultHeight = layout.DefaultHeight
)

// Format constants for output formats.
const (
	FormatSVG  = string(render.FormatSVG)
	FormatDOT  = string(render.FormatDOT)
	FormatPNG  = string(render.FormatPNG)
	FormatJSON = string(render.FormatJSON)
	// FormatGVSVG is Graphviz SVG rendered from the DOT output.
	FormatGVSVG = string(render.FormatGVSVG)
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Content       string `json:"content"`
	Topic         string `json:"topic,omitempty"`
	CleanMarkdown bool   `json:"clean_markdown,omitempty"`

	// Layout options
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Hovered     string   `json:"hovered,omitempty"`
	Selected    string   `json:"selected,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`    // descriptions in DOT, PNG and gvsvg labels
	Interactive bool     `json:"interactive,omitempty"` // hover/click script in SVG
	Guides      bool     `json:"guides,omitempty"`      // hub ring and fan rays in SVG

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the parsed graph with placeholder positions.
	Graph clinical.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout is the radial display layout.
	Layout clinical.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Parse            markup.Stats
	NodeCount        int
	ConnectionCount  int
	DisplayNodeCount int
	DisplayConnCount int
	ParseTime        time.Duration
	LayoutTime       time.Duration
	RenderTime       time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from the memo or cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if _, err := render.ParseFormat(format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format %q", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForParse checks the content and topic.
func (o *Options) ValidateForParse() error {
	if err := errors.ValidateContent(o.Content); err != nil {
		return err
	}
	if err := errors.ValidateTopic(o.Topic); err != nil {
		return err
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	o.setLogger()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults validates every stage's options and applies
// defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ParseOptions returns the markup parser options.
func (o *Options) ParseOptions() markup.Options {
	return markup.Options{CleanMarkdown: o.CleanMarkdown}
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{Width: o.Width, Height: o.Height}
}

// GraphKeyOpts returns cache key options for parsing.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{CleanMarkdown: o.CleanMarkdown}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Width: o.Width, Height: o.Height}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Hovered, k.Selected = o.Hovered, o.Selected
		if o.Interactive {
			k.Format += "+interactive"
		}
		if o.Guides {
			k.Format += "+guides"
		}
		if o.Topic != "" {
			k.Format += "+title:" + o.Topic
		}
	case FormatDOT, FormatPNG, FormatGVSVG:
		if o.Detailed {
			k.Format += "+detailed"
		}
	}
	return k
}

// String summarises the options for logging.
func (o Options) String() string {
	return fmt.Sprintf("content=%dB topic=%q size=%.0fx%.0f formats=%v", len(o.Content), o.Topic, o.Width, o.Height, o.Formats)
}
