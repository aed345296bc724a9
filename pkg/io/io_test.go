package io

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/generate"
	"github.com/matzehuels/parsimony/pkg/search"
	"github.com/matzehuels/parsimony/pkg/tree"
)

const quartetInput = `4
ACG->4
ACT->4
4->5
GCT->5
GGT->5
`

// canonical returns a key that identifies a labeled topology regardless of
// how its leaves and internal nodes are numbered.
func canonical(t *testing.T, tr *tree.Unrooted, labels []string) string {
	t.Helper()
	order := make([]int, tr.Leaves)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return labels[order[i]] < labels[order[j]] })
	rank := make([]int, tr.N())
	for r, v := range order {
		rank[v] = r
	}
	for v := tr.Leaves; v < tr.N(); v++ {
		rank[v] = v
	}
	adj := make([][]int, tr.N())
	for v := 0; v < tr.N(); v++ {
		for _, u := range tr.Adj(v) {
			adj[rank[v]] = append(adj[rank[v]], rank[u])
		}
	}
	out, err := tree.New(tr.Leaves, adj)
	if err != nil {
		t.Fatalf("tree.New() error = %v", err)
	}
	return out.Key()
}

func TestReadAdjacency(t *testing.T) {
	in, err := ReadAdjacency(strings.NewReader(quartetInput))
	if err != nil {
		t.Fatalf("ReadAdjacency() error = %v", err)
	}
	if want := []string{"GGT", "GCT", "ACT", "ACG"}; !slices.Equal(in.Labels, want) {
		t.Errorf("Labels = %v, want %v", in.Labels, want)
	}
	want, _ := tree.New(4, [][]int{{5}, {5}, {4}, {4}, {3, 2, 5}, {4, 1, 0}})
	if !in.Tree.Equal(want) {
		t.Errorf("Tree = %v, want %v", in.Tree, want)
	}
	m, err := in.Matrix()
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	if m.Columns != 3 {
		t.Errorf("Columns = %d, want 3", m.Columns)
	}
}

func TestReadAdjacencyBothDirections(t *testing.T) {
	both := `4

ACG->4
4->ACG
ACT->4
4->ACT
4->5
5->4
GCT->5
5->GCT
GGT->5
5->GGT
`
	a, err := ReadAdjacency(strings.NewReader(quartetInput))
	if err != nil {
		t.Fatalf("ReadAdjacency() error = %v", err)
	}
	b, err := ReadAdjacency(strings.NewReader(both))
	if err != nil {
		t.Fatalf("ReadAdjacency() error = %v", err)
	}
	if !a.Tree.Equal(b.Tree) || !slices.Equal(a.Labels, b.Labels) {
		t.Errorf("duplicate reverse edges changed the parse: %v vs %v", a.Tree, b.Tree)
	}
}

func TestReadAdjacencyErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidFormat},
		{"bad leaf count", "four\n", errors.ErrCodeInvalidFormat},
		{"leaf count too small", "1\n", errors.ErrCodeInvalidFormat},
		{"missing separator", "4\nACG 4\n", errors.ErrCodeInvalidFormat},
		{"empty endpoint", "4\n->4\n", errors.ErrCodeInvalidFormat},
		{"internal id in leaf range", "4\nACG->2\n", errors.ErrCodeMalformedTopology},
		{"internal id too large", "4\nACG->6\n", errors.ErrCodeMalformedTopology},
		{"too many labels", "2\nA->C\nC->G\n", errors.ErrCodeMalformedTopology},
		{"too few labels", "4\nACG->4\nACT->4\n4->5\nGCT->5\n", errors.ErrCodeMalformedTopology},
		{"self loop", "4\n4->4\n", errors.ErrCodeMalformedTopology},
		{"invalid symbol", "4\nACG->4\nACX->4\n4->5\nGCT->5\nGGT->5\n", errors.ErrCodeInvalidSymbol},
		{"ragged labels", "4\nACG->4\nAC->4\n4->5\nGCT->5\nGGT->5\n", errors.ErrCodeInconsistentColumnCount},
		{"internal degree", "4\nACG->4\nACT->4\nGCT->5\nGGT->5\nACG->5\n", errors.ErrCodeMalformedTopology},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAdjacency(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadAdjacency() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWriteAdjacencyRoundTrip(t *testing.T) {
	for _, shape := range []string{generate.ShapeBalanced, generate.ShapeRandom} {
		d, err := generate.Generate(generate.Options{Leaves: 11, Length: 7, Seed: 3, Shape: shape})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		var buf bytes.Buffer
		if err := WriteAdjacency(&buf, d.Tree, d.Labels); err != nil {
			t.Fatalf("WriteAdjacency() error = %v", err)
		}
		in, err := ReadAdjacency(&buf)
		if err != nil {
			t.Fatalf("ReadAdjacency() error = %v", err)
		}
		if canonical(t, in.Tree, in.Labels) != canonical(t, d.Tree, d.Labels) {
			t.Errorf("%s: round trip changed the topology", shape)
		}
	}
}

func quartetResult(t *testing.T) *search.Result {
	t.Helper()
	in, err := ReadAdjacency(strings.NewReader(quartetInput))
	if err != nil {
		t.Fatalf("ReadAdjacency() error = %v", err)
	}
	m, err := in.Matrix()
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	res, err := search.New(m, search.Options{Workers: 1}).Run(context.Background(), in.Tree)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return res
}

func TestWriteResult(t *testing.T) {
	res := quartetResult(t)
	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// score + 10 slots + 6 labels + separator per topology
	if want := 18 * len(res.Topologies); len(lines) != want {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), want, buf.String())
	}
	if lines[0] != "3" {
		t.Errorf("score line = %q, want %q", lines[0], "3")
	}
	if lines[17] != Separator {
		t.Errorf("last line = %q, want %q", lines[17], Separator)
	}
	if lines[11] != "0->GGT" {
		t.Errorf("first label line = %q, want %q", lines[11], "0->GGT")
	}
}

func TestResultRoundTrip(t *testing.T) {
	res := quartetResult(t)
	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}
	got, err := ReadResults(&buf)
	if err != nil {
		t.Fatalf("ReadResults() error = %v", err)
	}
	if got.Score != res.Score || got.Leaves != res.Leaves || got.Columns != res.Columns {
		t.Errorf("ReadResults() = score %d leaves %d columns %d, want %d %d %d",
			got.Score, got.Leaves, got.Columns, res.Score, res.Leaves, res.Columns)
	}
	if len(got.Topologies) != len(res.Topologies) {
		t.Fatalf("ReadResults() returned %d topologies, want %d", len(got.Topologies), len(res.Topologies))
	}
	for i := range res.Topologies {
		a, b := res.Topologies[i], got.Topologies[i]
		if !a.Tree.SameAdjacency(b.Tree) {
			t.Errorf("topology %d adjacency differs after round trip", i)
		}
		if !slices.Equal(a.Labels, b.Labels) {
			t.Errorf("topology %d labels = %v, want %v", i, b.Labels, a.Labels)
		}
	}
}

func TestReadResultsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"unterminated", "2\n0->1\n1->0\n0->A\n1->C\n"},
		{"bad score", "x\n0->1\n1->0\n0->A\n1->C\n-----\n"},
		{"missing label", "1\n0->1\n1->0\n0->A\n-----\n"},
		{"overflowing id", "0\n0->99999999999999999999\n-----\n"},
		{"id out of range", "1\n0->1\n1->5000000\n0->A\n1->C\n-----\n"},
		{"negative id", "1\n-1->0\n0->-1\n0->A\n1->C\n-----\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadResults(strings.NewReader(tt.input)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ReadResults() error = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	res := quartetResult(t)
	data, err := MarshalResult(res)
	if err != nil {
		t.Fatalf("MarshalResult() error = %v", err)
	}
	got, err := UnmarshalResult(data)
	if err != nil {
		t.Fatalf("UnmarshalResult() error = %v", err)
	}
	if got.Score != res.Score || got.Stats.Iterations != res.Stats.Iterations ||
		!slices.Equal(got.Stats.History, res.Stats.History) {
		t.Errorf("UnmarshalResult() = %+v, want %+v", got, res)
	}
	for i := range res.Topologies {
		if !got.Topologies[i].Tree.Equal(res.Topologies[i].Tree) {
			t.Errorf("topology %d differs after JSON round trip", i)
		}
	}
}

func TestReadJSONRejectsInvalidTree(t *testing.T) {
	bad := `{"score":1,"leaves":4,"columns":1,"topologies":[{"score":1,"index":[0,1,2,3,4,7,10],"neighbors":[4,4,5,5,0,1,2,2,3,4],"labels":["A","C","A","C","A","C"]}]}`
	if _, err := ReadJSON(strings.NewReader(bad)); !errors.Is(err, errors.ErrCodeMalformedTopology) {
		t.Errorf("ReadJSON() error = %v, want %s", err, errors.ErrCodeMalformedTopology)
	}
	if _, err := ReadJSON(strings.NewReader("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ReadJSON() error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestReadJSONRejectsShrinkingIndex(t *testing.T) {
	// node 4 ends before it starts
	bad := `{"score":1,"leaves":4,"columns":1,"topologies":[{"score":1,"index":[0,1,2,3,4,3,10],"neighbors":[4,4,5,5,0,1,5,2,3,4],"labels":["A","C","A","C","A","C"]}]}`
	if _, err := ReadJSON(strings.NewReader(bad)); !errors.Is(err, errors.ErrCodeMalformedTopology) {
		t.Errorf("ReadJSON() error = %v, want %s", err, errors.ErrCodeMalformedTopology)
	}
}

func TestNewickRoundTrip(t *testing.T) {
	res := quartetResult(t)
	for _, topo := range res.Topologies {
		s := Newick(topo, true)
		if !strings.HasSuffix(s, ";") {
			t.Errorf("Newick() = %q, want trailing ';'", s)
		}
		in, err := ReadNewick(strings.NewReader(s))
		if err != nil {
			t.Fatalf("ReadNewick(%q) error = %v", s, err)
		}
		leafLabels := topo.Labels[:topo.Tree.Leaves]
		if canonical(t, in.Tree, in.Labels) != canonical(t, topo.Tree, leafLabels) {
			t.Errorf("Newick round trip of %q changed the topology", s)
		}
	}
}

func TestReadNewickRooted(t *testing.T) {
	in, err := ReadNewick(strings.NewReader("((AC,AG),(TT,TA));"))
	if err != nil {
		t.Fatalf("ReadNewick() error = %v", err)
	}
	if in.Tree.Leaves != 4 || in.Tree.N() != 6 {
		t.Errorf("ReadNewick() = %d leaves, %d nodes, want 4, 6", in.Tree.Leaves, in.Tree.N())
	}
	if _, err := ReadNewick(strings.NewReader("((AC,AG),(TT,AC));")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate labels error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}
