package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/parsimony/pkg/search"
	"github.com/matzehuels/parsimony/pkg/tree"
)

func quartet(t *testing.T) *search.Topology {
	t.Helper()
	tr, err := tree.New(4, [][]int{{4}, {4}, {5}, {5}, {0, 1, 5}, {2, 3, 4}})
	if err != nil {
		t.Fatalf("tree.New() error = %v", err)
	}
	return &search.Topology{Tree: tr, Labels: []string{"AC", "AG", "TT", "TA", "AC", "TA"}, Score: 3}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(quartet(t), Options{})
	for _, want := range []string{
		"graph G {",
		`label="score 3"`,
		`0 [label="AC", shape=box`,
		`4 [label="4", style=filled, fillcolor=lightgrey, shape=circle]`,
		"  4 -- 5;\n",
		"  0 -- 4;\n",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "->") {
		t.Error("ToDOT() should produce an undirected graph")
	}
	if got := strings.Count(dot, " -- "); got != 5 {
		t.Errorf("ToDOT() has %d edges, want 5", got)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(quartet(t), Options{Detailed: true})
	for _, want := range []string{
		`4 [label="4\nAC"`,
		`  0 -- 4 [label="0"];`,
		`  1 -- 4 [label="1"];`,
		`  4 -- 5 [label="2"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestShorten(t *testing.T) {
	long := strings.Repeat("A", MaxLabelWidth+5)
	if got := shorten(long); len(got) != MaxLabelWidth || !strings.HasSuffix(got, "...") {
		t.Errorf("shorten() = %q", got)
	}
	if got := shorten("ACGT"); got != "ACGT" {
		t.Errorf("shorten(%q) = %q", "ACGT", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`width="10" height="20"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg/>")); string(got) != "<svg/>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(quartet(t), Options{Detailed: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("RenderSVG() output is not SVG: %.80s", svg)
	}
}
