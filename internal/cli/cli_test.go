package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/config"
	"github.com/vaidya-ai/clinicalmap/pkg/markup"
	"github.com/vaidya-ai/clinicalmap/pkg/session"
)

func TestIsGraphJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"graph", `{"nodes":[],"connections":[]}`, true},
		{"envelope", `{"command":"map","topic":"PE","content":"MAIN: PE","nodes":[]}`, false},
		{"markup", "MAIN: Pulmonary Embolism", false},
		{"array", `[{"nodes":[]}]`, false},
		{"empty object", `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGraphJSON([]byte(tt.data)); got != tt.want {
				t.Errorf("isGraphJSON(%s) = %v, want %v", tt.data, got, tt.want)
			}
		})
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", "clinicalmap"},
		{"-", "clinicalmap"},
		{"pe.txt", "pe"},
		{"maps/pe.graph.json", "maps/pe"},
		{"maps/pe.layout.json", "maps/pe"},
		{"notes", "notes"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.input); got != tt.want {
			t.Errorf("outputBase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "pe.txt", "pe"},
		{"out/pe.svg", "pe.txt", "out/pe"},
		{"out/pe.gv.svg", "pe.txt", "out/pe"},
		{"out/pe.PNG", "pe.txt", "out/pe"},
		{"out/pe", "pe.txt", "out/pe"},
		{"out/pe.v2", "pe.txt", "out/pe.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"svg": []byte("<svg/>"),
		"dot": []byte("graph G {}"),
	}

	t.Run("single format uses output verbatim", func(t *testing.T) {
		out := filepath.Join(dir, "single", "map.image")
		paths, err := writeArtifacts(artifacts, []string{"svg"}, "pe.txt", out)
		if err != nil {
			t.Fatal(err)
		}
		if len(paths) != 1 || paths[0] != out {
			t.Fatalf("paths = %v, want [%s]", paths, out)
		}
		data, err := os.ReadFile(out)
		if err != nil || string(data) != "<svg/>" {
			t.Errorf("content = %q, %v", data, err)
		}
	})

	t.Run("several formats share a base", func(t *testing.T) {
		base := filepath.Join(dir, "multi", "pe")
		paths, err := writeArtifacts(artifacts, []string{"svg", "dot"}, "pe.txt", base+".svg")
		if err != nil {
			t.Fatal(err)
		}
		want := []string{base + ".svg", base + ".dot"}
		if !slices.Equal(paths, want) {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
		if data, _ := os.ReadFile(base + ".dot"); string(data) != "graph G {}" {
			t.Errorf("dot content = %q", data)
		}
	})

	t.Run("graphviz svg does not clash with svg", func(t *testing.T) {
		artifacts := map[string][]byte{"svg": []byte("<svg/>"), "gvsvg": []byte("<svg gv/>")}
		base := filepath.Join(dir, "gv", "pe")
		paths, err := writeArtifacts(artifacts, []string{"svg", "gvsvg"}, "pe.txt", base)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{base + ".svg", base + ".gv.svg"}
		if !slices.Equal(paths, want) {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
		if data, _ := os.ReadFile(base + ".gv.svg"); string(data) != "<svg gv/>" {
			t.Errorf("gvsvg content = %q", data)
		}
	})
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "Feb 8, 2026"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Password = "hunter2-secret"
	cfg.Mongo.URI = "mongodb://admin:topsecret@db:27017"

	got := redact(cfg)
	if got.Redis.Password != "****cret" {
		t.Errorf("redis password = %q", got.Redis.Password)
	}
	if got.Mongo.URI != "mongodb://admin:****cret@db:27017" {
		t.Errorf("mongo uri = %q", got.Mongo.URI)
	}
	if cfg.Redis.Password != "hunter2-secret" {
		t.Error("redact modified its argument")
	}

	empty := redact(config.Default())
	if empty.Redis.Password != "" {
		t.Errorf("empty password masked as %q", empty.Redis.Password)
	}
}

func TestSessionTable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	out := sessionTable([]session.Summary{
		{ID: "a1b2c3", Topic: "Pulmonary Embolism", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "d4e5f6", CreatedAt: now},
	}, now)

	for _, want := range []string{"ID", "Topic", "Created", "a1b2c3", "Pulmonary Embolism", "2h ago", "d4e5f6", "just now"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "pe.txt")
	if err := os.WriteFile(path, []byte(sampleMarkup), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)

	out, err := runCLI(t, cfg, "", "parse", "-o", "-", input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var g struct {
		Nodes []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"nodes"`
		Connections []struct {
			From, To string
		} `json:"connections"`
	}
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(g.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(g.Nodes))
	}
	if g.Nodes[0].ID != "node-0" || g.Nodes[0].Type != "main" {
		t.Errorf("first node = %+v", g.Nodes[0])
	}
	if len(g.Connections) != 1 {
		t.Errorf("connections = %d, want 1", len(g.Connections))
	}
}

func TestTypeSummary(t *testing.T) {
	tests := []struct {
		content, want string
	}{
		{sampleMarkup, "1 main · 1 symptom · 1 diagnosis · 1 treatment"},
		{"SYMPTOM: Fever\nSYMPTOM: Chills\nCOMPLICATION: Sepsis", "2 symptom · 1 complication"},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		if got := typeSummary(markup.Parse(tt.content)); got != tt.want {
			t.Errorf("typeSummary(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestParseCommandStdin(t *testing.T) {
	cfg, _ := writeConfig(t)

	out, err := runCLI(t, cfg, sampleMarkup, "parse")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !isGraphJSON([]byte(out)) {
		t.Errorf("stdout is not graph JSON: %s", out)
	}
}

func TestParseCommandRejectsEmptyInput(t *testing.T) {
	cfg, _ := writeConfig(t)
	if _, err := runCLI(t, cfg, "   \n", "parse"); err == nil {
		t.Error("expected an error for blank input")
	}
}

func TestLayoutCommand(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)

	out, err := runCLI(t, cfg, "", "layout", "-o", "-", "--width", "800", input)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	var l struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Width float64 `json:"width"`
	}
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if l.Width != 800 {
		t.Errorf("width = %v, want 800", l.Width)
	}
	// main, three hubs and three members
	if len(l.Nodes) != 7 {
		t.Fatalf("display nodes = %d, want 7", len(l.Nodes))
	}
	if l.Nodes[0].ID != "node-0" || l.Nodes[1].ID != "category-symptom" {
		t.Errorf("unexpected order: %s, %s", l.Nodes[0].ID, l.Nodes[1].ID)
	}
}

func TestRenderCommandFromLayoutJSON(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)

	if _, err := runCLI(t, cfg, "", "layout", "--width", "800", input); err != nil {
		t.Fatalf("layout: %v", err)
	}
	layoutFile := filepath.Join(dir, "pe.layout.json")
	want, err := clinical.ReadLayoutFile(layoutFile)
	if err != nil {
		t.Fatal(err)
	}

	// Positions come from the file, not a fresh 600-wide layout.
	output := filepath.Join(dir, "rendered.json")
	if _, err := runCLI(t, cfg, "", "render", "-f", "json", "-o", output, layoutFile); err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := clinical.ReadLayoutFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 800 || len(got.DisplayNodes) != len(want.DisplayNodes) {
		t.Fatalf("rendered layout width=%v nodes=%d, want 800 and %d", got.Width, len(got.DisplayNodes), len(want.DisplayNodes))
	}
	for i, n := range got.DisplayNodes {
		if n != want.DisplayNodes[i] {
			t.Errorf("node %d = %+v, want %+v", i, n, want.DisplayNodes[i])
		}
	}
}

func TestRenderCommand(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)
	output := filepath.Join(dir, "out", "pe.svg")

	if _, err := runCLI(t, cfg, "", "render", "--no-cache", "--selected", "node-1", "-o", output, input); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.HasPrefix(svg, "<svg ") {
		t.Errorf("output is not SVG: %.80s", svg)
	}
	if !strings.Contains(svg, "active") {
		t.Error("selected node not rendered as active")
	}
}

func TestRenderCommandGraphvizSVG(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)
	base := filepath.Join(dir, "out", "pe")

	if _, err := runCLI(t, cfg, "", "render", "--no-cache", "-f", "svg,gvsvg", "-o", base, input); err != nil {
		t.Fatalf("render: %v", err)
	}
	native, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	gv, err := os.ReadFile(base + ".gv.svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gv), `viewBox="0 0 `) || !strings.Contains(string(gv), "Dyspnea") {
		t.Errorf("gvsvg output = %.200s", gv)
	}
	if string(native) == string(gv) {
		t.Error("gvsvg should come from Graphviz, not the native renderer")
	}
}

func TestRenderCommandFromGraphJSON(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)
	graph := filepath.Join(dir, "pe.graph.json")

	if _, err := runCLI(t, cfg, "", "parse", "-o", graph, input); err != nil {
		t.Fatalf("parse: %v", err)
	}
	output := filepath.Join(dir, "pe.json")
	if _, err := runCLI(t, cfg, "", "render", "-f", "json", "-o", output, graph); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "category-symptom") {
		t.Errorf("layout JSON missing category hub: %s", data)
	}
}

func TestRenderCommandBadFormat(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)
	if _, err := runCLI(t, cfg, "", "render", "-f", "gif", input); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestSessionsLifecycle(t *testing.T) {
	cfg, dir := writeConfig(t)
	input := writeSample(t, dir)

	if _, err := runCLI(t, cfg, "", "sessions", "save", "--topic", "PE", input); err != nil {
		t.Fatalf("save: %v", err)
	}

	store, err := session.NewFileStore(filepath.Join(dir, "sessions"))
	if err != nil {
		t.Fatal(err)
	}
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Topic != "PE" {
		t.Fatalf("stored sessions = %+v", list)
	}
	id := list[0].ID

	out, err := runCLI(t, cfg, "", "sessions", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("list output missing %s:\n%s", id, out)
	}

	out, err = runCLI(t, cfg, "", "__complete", "sessions", "show", "")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, id+"\tPE") {
		t.Errorf("completion missing %s:\n%s", id, out)
	}

	out, err = runCLI(t, cfg, "", "sessions", "show", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if out != sampleMarkup {
		t.Errorf("show = %q, want the saved markup", out)
	}

	if _, err := runCLI(t, cfg, "", "sessions", "delete", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := runCLI(t, cfg, "", "sessions", "show", id); err == nil {
		t.Error("show after delete succeeded")
	}
}

func TestSessionsShowInvalidID(t *testing.T) {
	cfg, _ := writeConfig(t)
	if _, err := runCLI(t, cfg, "", "sessions", "show", "../etc/passwd"); err == nil {
		t.Error("expected an error for an invalid id")
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `[redis]
password = "hunter2-secret"

[mongo]
uri = "mongodb://admin:topsecret@db:27017"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, path, "", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "hunter2") || strings.Contains(out, "topsecret") {
		t.Errorf("secrets leaked:\n%s", out)
	}
	if !strings.Contains(out, "****cret") {
		t.Errorf("masked password missing:\n%s", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	cfg, _ := writeConfig(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := runCLI(t, cfg, "", "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, "clinicalmap") {
			t.Errorf("completion %s does not mention the command", shell)
		}
	}
	if _, err := runCLI(t, cfg, "", "completion", "tcsh"); err == nil {
		t.Error("expected an error for an unsupported shell")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if _, err := runCLI(t, path, "", "config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Server.Addr != config.Default().Server.Addr {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}

	if _, err := runCLI(t, path, "", "config", "init"); err == nil {
		t.Error("second init without --force succeeded")
	}
	if _, err := runCLI(t, path, "", "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}
