package tree

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestInternalEdgesQuartet(t *testing.T) {
	got := quartet(t).InternalEdges()
	if want := []Edge{{A: 4, B: 5}}; !slices.Equal(got, want) {
		t.Errorf("InternalEdges() = %v, want %v", got, want)
	}
}

func TestMovesQuartet(t *testing.T) {
	tr := quartet(t)
	got := tr.Moves()
	want := []Move{
		{A: 4, B: 5, AChild: 0, BChild: 2},
		{A: 4, B: 5, AChild: 0, BChild: 3},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Moves() = %v, want %v", got, want)
	}

	next := tr.Interchange(got[0])
	wantNeighbors := []int{5, 4, 4, 5, 2, 1, 5, 0, 3, 4}
	if !slices.Equal(next.Neighbors, wantNeighbors) {
		t.Errorf("Interchange() neighbors = %v, want %v", next.Neighbors, wantNeighbors)
	}
	if err := next.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestMovesAChildSkipsB(t *testing.T) {
	// Node 4 lists 5 first, so its first non-5 neighbor is 0.
	tr, err := New(4, [][]int{
		{4}, {4}, {5}, {5},
		{5, 0, 1},
		{4, 2, 3},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := []Move{
		{A: 4, B: 5, AChild: 0, BChild: 2},
		{A: 4, B: 5, AChild: 0, BChild: 3},
	}
	if got := tr.Moves(); !slices.Equal(got, want) {
		t.Errorf("Moves() = %v, want %v", got, want)
	}
}

func TestMovesProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for leaves := 2; leaves <= 30; leaves++ {
		tr := randomTree(t, rng, leaves)
		before := tr.Clone()

		edges := tr.InternalEdges()
		if want := max(leaves-3, 0); len(edges) != want {
			t.Fatalf("L=%d: %d internal edges, want %d", leaves, len(edges), want)
		}
		seen := map[[2]int]bool{}
		for _, e := range edges {
			if tr.IsLeaf(e.A) || tr.IsLeaf(e.B) {
				t.Errorf("L=%d: edge %v touches a leaf", leaves, e)
			}
			if !slices.Contains(tr.Adj(e.A), e.B) {
				t.Errorf("L=%d: %v is not an edge", leaves, e)
			}
			k := [2]int{min(e.A, e.B), max(e.A, e.B)}
			if seen[k] {
				t.Errorf("L=%d: edge %v emitted twice", leaves, e)
			}
			seen[k] = true
		}

		moves := tr.Moves()
		if len(moves) != 2*len(edges) {
			t.Fatalf("L=%d: %d moves, want %d", leaves, len(moves), 2*len(edges))
		}
		key := tr.Key()
		for _, m := range moves {
			next := tr.Interchange(m)
			if err := next.Validate(); err != nil {
				t.Fatalf("L=%d: %v produced invalid tree: %v", leaves, m, err)
			}
			if _, err := Orient(next); err != nil {
				t.Fatalf("L=%d: %v produced unorientable tree: %v", leaves, m, err)
			}
			if next.Key() == key {
				t.Errorf("L=%d: %v did not change the topology", leaves, m)
			}
			// Applying the same move again means undoing it: m no longer fits next, Inverse does.
			back := next.Interchange(m.Inverse())
			if !back.Equal(tr) {
				t.Errorf("L=%d: %v then its inverse = %v, want %v", leaves, m, back, tr)
			}
		}
		if !tr.Equal(before) {
			t.Errorf("L=%d: Interchange mutated its receiver", leaves)
		}
	}
}

func TestMovesOfEdgeAreDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	tr := randomTree(t, rng, 12)
	moves := tr.Moves()
	for i := 0; i < len(moves); i += 2 {
		a, b := tr.Interchange(moves[i]), tr.Interchange(moves[i+1])
		if a.Key() == b.Key() {
			t.Errorf("moves %v and %v yield the same topology", moves[i], moves[i+1])
		}
	}
}

func TestInterchangeIntoReusesBuffer(t *testing.T) {
	tr := quartet(t)
	buf := make([]int, 0, len(tr.Neighbors))
	m := tr.Moves()[1]
	out := tr.InterchangeInto(buf, m)
	if &out[0] != &buf[:1][0] {
		t.Error("InterchangeInto() allocated despite sufficient capacity")
	}
	if !slices.Equal(out, tr.Interchange(m).Neighbors) {
		t.Errorf("InterchangeInto() = %v, want %v", out, tr.Interchange(m).Neighbors)
	}
}

func TestInterchangePanicsOnForeignMove(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Interchange() did not panic")
		}
	}()
	quartet(t).Interchange(Move{A: 4, B: 5, AChild: 2, BChild: 3})
}

func TestKey(t *testing.T) {
	a := quartet(t)

	// Same topology with internal nodes renumbered and slots permuted.
	b, err := New(4, [][]int{
		{5}, {5}, {4}, {4},
		{3, 5, 2},
		{4, 1, 0},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Key() != b.Key() {
		t.Error("Key() differs for isomorphic trees")
	}

	c := a.Interchange(a.Moves()[0])
	if a.Key() == c.Key() {
		t.Error("Key() equal for different topologies")
	}
}
