package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testTree = `{"name":"app","version":"1.0.0","children":[
	{"name":"react","version":"18.2.0","children":[{"name":"loose-envify","version":"1.4.0"}]},
	{"name":"lodash","version":"4.17.21"}
]}`

// captureStdout redirects command output to w until the returned function
// is called.
func captureStdout(w io.Writer) func() {
	prev := stdout
	stdout = w
	return func() { stdout = prev }
}

// isolate points the config and cache directories at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	restore := captureStdout(&out)
	defer restore()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"layout", "render", "explore", "serve", "metadata", "config", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "tree.json", testTree)
	output := filepath.Join(dir, "out.json")

	if _, err := runCLI(t, "layout", input, "-o", output); err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Root     string   `json:"root"`
		Expanded []string `json:"expanded"`
		Nodes    []struct {
			ID string  `json:"id"`
			X  float64 `json:"x"`
			Y  float64 `json:"y"`
		} `json:"nodes"`
		Edges []struct{ From, To string } `json:"edges"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode layout: %v", err)
	}

	if doc.Root != "app" {
		t.Errorf("root = %q, want app", doc.Root)
	}
	if len(doc.Expanded) != 1 || doc.Expanded[0] != "app" {
		t.Errorf("expanded = %v, want [app]", doc.Expanded)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Fatalf("got %d nodes and %d edges, want 3 and 2", len(doc.Nodes), len(doc.Edges))
	}
	if n := doc.Nodes[0]; n.ID != "app" || n.X != 400 || n.Y != 50 {
		t.Errorf("root node = %+v, want app at (400, 50)", n)
	}
}

func TestLayoutCommandStdout(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "tree.json", testTree)

	out, err := runCLI(t, "layout", input, "-o", "-", "--expand-all")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, `"loose-envify"`) {
		t.Errorf("expanded layout should include loose-envify:\n%s", out)
	}
}

func TestLayoutCommandMissingFile(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "layout", "does-not-exist.json"); err == nil {
		t.Error("expected an error for a missing tree file")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
		format string
		single bool
		want   string
	}{
		{"derived from input", "deps/tree.json", "", "svg", true, "deps/tree.svg"},
		{"explicit single", "tree.json", "frame.svg", "svg", true, "frame.svg"},
		{"base for multiple", "tree.json", "out/frame", "png", false, "out/frame.png"},
		{"stdout", "tree.json", "-", "svg", true, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.input, tt.output, tt.format, tt.single); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)

	if _, err := runCLI(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runCLI(t, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}

	out, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"[layout]", "node_width = 180.0", "[server]", `addr = "127.0.0.1:8080"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigRejectsInvalidFile(t *testing.T) {
	dir := isolate(t)
	cfg := writeFile(t, dir, "bad.toml", "[viewport]\nzoom_min = 3.0\nzoom_max = 1.0\n")

	if _, err := runCLI(t, "--config", cfg, "config", "show"); err == nil {
		t.Error("expected a validation error")
	}
}

func TestMetadataShow(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, dir, "tree.json", testTree)
	details := writeFile(t, dir, "details.json", `{"lodash":{"size":1400000,"license":"MIT"}}`)
	cfg := writeFile(t, dir, "config.toml", "[metadata]\nbackend = \"file\"\nfile = \""+filepath.ToSlash(details)+"\"\n")

	out, err := runCLI(t, "--config", cfg, "metadata", "show", "lodash", "--tree", input)
	if err != nil {
		t.Fatalf("metadata show: %v", err)
	}
	for _, want := range []string{"4.17.21", "1.4 MB", "MIT", "none"} {
		if !strings.Contains(out, want) {
			t.Errorf("metadata show missing %q:\n%s", want, out)
		}
	}
}

func TestMetadataImportNeedsWritableBackend(t *testing.T) {
	dir := isolate(t)
	details := writeFile(t, dir, "details.json", `{"lodash":{"license":"MIT"}}`)
	cfg := writeFile(t, dir, "config.toml", "[metadata]\nbackend = \"file\"\nfile = \""+filepath.ToSlash(details)+"\"\n")

	_, err := runCLI(t, "--config", cfg, "metadata", "import", details)
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Errorf("err = %v, want read-only backend error", err)
	}
}
