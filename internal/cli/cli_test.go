package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	pio "github.com/matzehuels/parsimony/pkg/io"
)

const quartet = `4
ACG->4
ACT->4
4->5
GCT->5
GGT->5
`

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.WarnLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// isolate points every XDG directory at a fresh temporary directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, env := range []string{"XDG_CACHE_HOME", "XDG_CONFIG_HOME", "XDG_DATA_HOME"} {
		t.Setenv(env, filepath.Join(dir, strings.ToLower(env)))
	}
	return dir
}

func TestScoreCommand(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "quartet.txt")
	if err := os.WriteFile(input, []byte(quartet), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "score", input)
	if err != nil {
		t.Fatalf("score error = %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("score output = %q, want 3", out)
	}

	out, err = execute(t, "score", input, "--labels")
	if err != nil {
		t.Fatalf("score --labels error = %v", err)
	}
	if !strings.HasPrefix(out, "3\n") || !strings.Contains(out, pio.Separator) {
		t.Errorf("score --labels output = %q", out)
	}
}

func TestGenerateSearchVerifyRender(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "tree.txt")
	result := filepath.Join(dir, "result.txt")
	other := filepath.Join(dir, "other.json")

	if _, err := execute(t, "generate", "--leaves", "6", "--length", "8", "--seed", "3", "-o", input); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	if _, err := execute(t, "search", input, "-q", "-w", "1", "-o", result); err != nil {
		t.Fatalf("search error = %v", err)
	}
	if _, err := execute(t, "search", input, "-q", "-w", "4", "--no-cache", "-f", "json", "-o", other); err != nil {
		t.Fatalf("search --format json error = %v", err)
	}
	if _, err := execute(t, "verify", input, result, "--against", other); err != nil {
		t.Fatalf("verify error = %v", err)
	}

	out, err := execute(t, "render", result, "-f", "newick")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	res, err := pio.ReadResultFile(result)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != len(res.Topologies) {
		t.Errorf("render produced %d newick lines, want %d", len(lines), len(res.Topologies))
	}

	if _, err := execute(t, "render", other, "-f", "txt,dot", "-o", filepath.Join(dir, "rendered")); err != nil {
		t.Fatalf("render multiple error = %v", err)
	}
	for _, name := range []string{"rendered.txt", "rendered.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("render did not write %s: %v", name, err)
		}
	}
}

func TestSearchUsesCache(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "quartet.txt")
	if err := os.WriteFile(input, []byte(quartet), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := execute(t, "search", input, "-q")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	second, err := execute(t, "search", input, "-q")
	if err != nil {
		t.Fatalf("cached search error = %v", err)
	}
	if first != second {
		t.Errorf("cached output differs:\n%s\nvs\n%s", first, second)
	}

	cache, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(cache)
	if len(entries) == 0 {
		t.Errorf("cache dir %s is empty after search", cache)
	}

	out, err := execute(t, "cache", "path")
	if err != nil || strings.TrimSpace(out) != cache {
		t.Errorf("cache path = %q, %v, want %q", out, err, cache)
	}
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
}

func TestVerifyRejectsTamperedResult(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "quartet.txt")
	result := filepath.Join(dir, "result.txt")
	if err := os.WriteFile(input, []byte(quartet), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "search", input, "-q", "-o", result); err != nil {
		t.Fatalf("search error = %v", err)
	}
	data, err := os.ReadFile(result)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), "3\n", "2\n", 1)
	if err := os.WriteFile(result, []byte(tampered), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "verify", input, result); err == nil {
		t.Error("verify accepted a result with a wrong score")
	}
}

func TestSearchErrors(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "quartet.txt")
	if err := os.WriteFile(input, []byte(quartet), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"search", filepath.Join(dir, "missing.txt")}},
		{"bad format", []string{"search", input, "-f", "pdf"}},
		{"negative workers", []string{"search", input, "-w", "-1"}},
		{"no args", []string{"search"}},
		{"bad config", []string{"--config", filepath.Join(dir, "missing.toml"), "search", input}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("%v: error = nil", tt.args)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		if err != nil {
			t.Errorf("completion %s error = %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("completion %s output does not mention %s", shell, appName)
		}
	}
}
