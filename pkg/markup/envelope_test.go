package markup

import (
	"encoding/json"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	body, _ := json.Marshal(map[string]any{
		"command":     "map",
		"topic":       "Pulmonary Embolism",
		"content":     peMarkup,
		"tokens_used": 321,
	})

	env, ok := ParseEnvelope(string(body))
	if !ok {
		t.Fatal("valid envelope should decode")
	}
	if env.Command != "map" || env.Topic != "Pulmonary Embolism" || env.TokensUsed != 321 || env.Repaired {
		t.Errorf("envelope = %+v", env)
	}
	if env.Content != peMarkup {
		t.Errorf("content = %q", env.Content)
	}

	g, stats := ParseDetailed(string(body), Options{})
	if !stats.FromEnvelope {
		t.Error("stats should report envelope input")
	}
	if len(g.Nodes) != 3 || len(g.Connections) != 1 {
		t.Errorf("envelope content not parsed: %+v", g)
	}
}

func TestParseEnvelopeLeadingWhitespace(t *testing.T) {
	if _, ok := ParseEnvelope("  \n{\"content\": \"MAIN: A\"}"); !ok {
		t.Error("leading whitespace before { should still be treated as an envelope")
	}
}

func TestParseEnvelopeRepair(t *testing.T) {
	// A trailing comma is a common generator mistake.
	in := `{"topic": "Gout", "content": "MAIN: Gout\nSYMPTOM: Podagra",}`

	env, ok := ParseEnvelope(in)
	if !ok {
		t.Fatal("repairable envelope should decode")
	}
	if !env.Repaired || env.Topic != "Gout" {
		t.Errorf("envelope = %+v", env)
	}
	if g := Parse(in); len(g.Nodes) != 2 {
		t.Errorf("repaired content not parsed: %+v", g.Nodes)
	}
}

func TestParseEnvelopeFallback(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", "MAIN: A"},
		{"no content field", `{"topic": "A"}`},
		{"content not a string", `{"content": 42}`},
		{"empty content", `{"content": "   "}`},
		{"array", `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ParseEnvelope(tt.in); ok {
				t.Errorf("ParseEnvelope(%q) should report false", tt.in)
			}
		})
	}
}

func TestParseMalformedEnvelopeUsesRawText(t *testing.T) {
	// Starts with { but carries node lines; the raw text is parsed as markup.
	in := "{ not an envelope\nMAIN: Asthma\nSYMPTOM: Wheeze"
	g := Parse(in)
	if len(g.Nodes) != 2 {
		t.Errorf("raw text fallback should parse nodes, got %+v", g.Nodes)
	}
}
