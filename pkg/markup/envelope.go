package markup

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Envelope is the JSON wrapper the content generator puts around markup.
type Envelope struct {
	Command    string `json:"command,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Content    string `json:"content"`
	TokensUsed int    `json:"tokens_used,omitempty"`

	// Repaired is true when the envelope only decoded after JSON repair.
	Repaired bool `json:"-"`
}

// ParseEnvelope decodes text as a generator envelope. It reports false when
// text does not start with "{", cannot be decoded even after repair, or
// carries no string content.
func ParseEnvelope(text string) (Envelope, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return Envelope{}, false
	}

	if env, ok := decodeEnvelope(trimmed); ok {
		return env, true
	}

	repaired, err := jsonrepair.JSONRepair(trimmed)
	if err != nil {
		return Envelope{}, false
	}
	env, ok := decodeEnvelope(repaired)
	if !ok {
		return Envelope{}, false
	}
	env.Repaired = true
	return env, true
}

// decodeEnvelope reads the known fields leniently: a non-numeric
// tokens_used or a missing command does not invalidate the envelope.
func decodeEnvelope(data string) (Envelope, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return Envelope{}, false
	}

	content, ok := raw["content"].(string)
	if !ok || strings.TrimSpace(content) == "" {
		return Envelope{}, false
	}

	env := Envelope{Content: content}
	env.Command, _ = raw["command"].(string)
	env.Topic, _ = raw["topic"].(string)
	if n, ok := raw["tokens_used"].(float64); ok {
		env.TokensUsed = int(n)
	}
	return env, true
}

// unwrap returns the markup carried by text: the envelope content when text
// is a valid envelope, otherwise text itself.
func unwrap(text string) string {
	if env, ok := ParseEnvelope(text); ok {
		return env.Content
	}
	return text
}
