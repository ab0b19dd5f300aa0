package render

import (
	"fmt"
	"slices"
	"strings"
)

// Format names an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatDOT  Format = "dot"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
	// FormatGVSVG is the Graphviz rendering of the DOT output, as opposed
	// to the native interactive SVG.
	FormatGVSVG Format = "gvsvg"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatDOT, FormatPNG, FormatJSON, FormatGVSVG}

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown format %q (want one of svg, dot, png, json, gvsvg)", s)
	}
	return f, nil
}

// ParseFormats parses a comma-separated list, dropping duplicates.
// An empty list yields [FormatSVG].
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []Format{FormatSVG}
	}
	return out, nil
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatGVSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Ext returns the file extension for f, including the dot. Graphviz SVG
// gets ".gv.svg" so it opens as an image and does not clash with the
// native SVG.
func (f Format) Ext() string {
	if f == FormatGVSVG {
		return ".gv.svg"
	}
	return "." + string(f)
}
