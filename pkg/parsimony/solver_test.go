package parsimony

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/generate"
	"github.com/matzehuels/parsimony/pkg/tree"
)

func quartet(t *testing.T) *tree.Unrooted {
	t.Helper()
	tr, err := tree.New(4, [][]int{{4}, {4}, {5}, {5}, {0, 1, 5}, {2, 3, 4}})
	if err != nil {
		t.Fatalf("tree.New() error = %v", err)
	}
	return tr
}

func mustMatrix(t *testing.T, labels ...string) *Matrix {
	t.Helper()
	m, err := NewMatrix(labels)
	if err != nil {
		t.Fatalf("NewMatrix() error = %v", err)
	}
	return m
}

func TestEvaluateQuartet(t *testing.T) {
	tests := []struct {
		name   string
		leaves []string
		score  int
		labels []string
	}{
		{
			// Four distinct states need at least three substitutions.
			name:   "four distinct symbols",
			leaves: []string{"A", "C", "G", "T"},
			score:  3,
			labels: []string{"A", "C", "G", "T", "A", "A"},
		},
		{
			name:   "pairs split across cherries",
			leaves: []string{"A", "C", "A", "C"},
			score:  2,
			labels: []string{"A", "C", "A", "C", "A", "A"},
		},
		{
			name:   "pairs on cherries",
			leaves: []string{"A", "A", "C", "C"},
			score:  1,
			labels: []string{"A", "A", "C", "C", "A", "C"},
		},
		{
			name:   "multi column",
			leaves: []string{"AAG", "ACG", "GCT", "GCT"},
			score:  3,
			labels: []string{"AAG", "ACG", "GCT", "GCT", "ACG", "GCT"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSolver()
			score, flat, err := s.Evaluate(quartet(t), mustMatrix(t, tt.leaves...), nil)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if score != tt.score {
				t.Errorf("score = %d, want %d", score, tt.score)
			}
			if got := Labels(flat, len(tt.leaves[0])); !slices.Equal(got, tt.labels) {
				t.Errorf("labels = %v, want %v", got, tt.labels)
			}
		})
	}
}

func TestEvaluateIdenticalLeaves(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	s := NewSolver()
	for _, leaves := range []int{2, 3, 5, 17} {
		tr, err := generate.RandomTopology(rng, leaves)
		if err != nil {
			t.Fatalf("RandomTopology() error = %v", err)
		}
		labels := make([]string, leaves)
		for i := range labels {
			labels[i] = "GATTACA"
		}
		score, flat, err := s.Evaluate(tr, mustMatrix(t, labels...), nil)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if score != 0 {
			t.Errorf("L=%d: score = %d, want 0", leaves, score)
		}
		for v, l := range Labels(flat, 7) {
			if l != "GATTACA" {
				t.Errorf("L=%d: node %d label = %q, want GATTACA", leaves, v, l)
			}
		}
	}
}

func TestEvaluateLeafMismatch(t *testing.T) {
	_, _, err := NewSolver().Evaluate(quartet(t), mustMatrix(t, "A", "C", "G"), nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Evaluate() error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

// randomCase draws a random topology and random leaf labels.
func randomCase(t *testing.T, rng *rand.Rand, leaves, cols int) (*tree.Unrooted, *Matrix) {
	t.Helper()
	tr, err := generate.RandomTopology(rng, leaves)
	if err != nil {
		t.Fatalf("RandomTopology() error = %v", err)
	}
	labels := make([]string, leaves)
	for v := range labels {
		b := make([]byte, cols)
		for k := range b {
			b[k] = Alphabet[rng.IntN(Symbols)]
		}
		labels[v] = string(b)
	}
	return tr, mustMatrix(t, labels...)
}

func TestScoreMatchesEdgeDistances(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 34))
	s := NewSolver()
	for i := 0; i < 50; i++ {
		tr, m := randomCase(t, rng, 2+rng.IntN(30), 1+rng.IntN(12))
		score, flat, err := s.Evaluate(tr, m, nil)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		labels := Labels(flat, m.Columns)
		for v := 0; v < tr.Leaves; v++ {
			if labels[v] != m.Label(v) {
				t.Fatalf("leaf %d relabeled from %q to %q", v, m.Label(v), labels[v])
			}
		}
		sum := 0
		for _, e := range tr.Edges() {
			sum += Hamming(labels[e[0]], labels[e[1]])
		}
		if sum != score {
			t.Errorf("case %d: edge distance sum = %d, score = %d", i, sum, score)
		}
	}
}

func TestScoreSymmetricUnderChildSwap(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 3))
	s := NewSolver()
	for i := 0; i < 30; i++ {
		tr, m := randomCase(t, rng, 3+rng.IntN(25), 1+rng.IntN(8))
		r, err := tree.Orient(tr)
		if err != nil {
			t.Fatalf("Orient() error = %v", err)
		}
		want, _ := s.Solve(r, m, nil)

		swapped := &tree.Rooted{
			Leaves:   r.Leaves,
			Offset:   slices.Clone(r.Offset),
			Children: slices.Clone(r.Children),
			Order:    slices.Clone(r.Order),
		}
		for v := range swapped.Offset {
			if !swapped.IsLeaf(v) && rng.IntN(2) == 0 {
				o := swapped.Offset[v]
				swapped.Children[o], swapped.Children[o+1] = swapped.Children[o+1], swapped.Children[o]
			}
		}
		if got, _ := s.Solve(swapped, m, nil); got != want {
			t.Errorf("case %d: score after swapping children = %d, want %d", i, got, want)
		}
	}
}

// ripeScan resolves column k by repeatedly scanning for an unresolved node
// whose children are resolved, then backtracks breadth-first from the root.
func ripeScan(r *tree.Rooted, m *Matrix, k int) (int, []uint8) {
	size := r.Size()
	cost := make([][Symbols]int, size)
	back := make([][Symbols][2]uint8, size)
	resolved := make([]bool, size)
	last := -1
	for done := 0; done < size; {
		for v := 0; v < size; v++ {
			if resolved[v] {
				continue
			}
			if r.IsLeaf(v) {
				for x := range cost[v] {
					cost[v][x] = Infinity
				}
				cost[v][m.At(k, v)] = 0
			} else {
				d, o := r.Left(v), r.Right(v)
				if !resolved[d] || !resolved[o] {
					continue
				}
				for x := 0; x < Symbols; x++ {
					bd, cd := cheapest(cost[d][:], x)
					bo, co := cheapest(cost[o][:], x)
					cost[v][x] = cd + co
					back[v][x] = [2]uint8{bd, bo}
				}
			}
			resolved[v] = true
			last = v
			done++
		}
	}
	best := uint8(0)
	for x := 1; x < Symbols; x++ {
		if cost[last][x] < cost[last][best] {
			best = uint8(x)
		}
	}
	sym := make([]uint8, size)
	sym[last] = best
	queue := []int{last}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if r.IsLeaf(v) {
			continue
		}
		sym[r.Left(v)] = back[v][sym[v]][0]
		sym[r.Right(v)] = back[v][sym[v]][1]
		queue = append(queue, r.Left(v), r.Right(v))
	}
	return cost[last][best], sym
}

// postOrder scores column k by plain recursion.
func postOrder(r *tree.Rooted, m *Matrix, k, v int) [Symbols]int {
	var c [Symbols]int
	if r.IsLeaf(v) {
		for x := range c {
			c[x] = Infinity
		}
		c[m.At(k, v)] = 0
		return c
	}
	dc, oc := postOrder(r, m, k, r.Left(v)), postOrder(r, m, k, r.Right(v))
	for x := 0; x < Symbols; x++ {
		_, cd := cheapest(dc[:], x)
		_, co := cheapest(oc[:], x)
		c[x] = cd + co
	}
	return c
}

func TestColumnMatchesReferenceOrders(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))
	s := NewSolver()
	for i := 0; i < 40; i++ {
		tr, m := randomCase(t, rng, 2+rng.IntN(30), 4)
		r, err := tree.Orient(tr)
		if err != nil {
			t.Fatalf("Orient() error = %v", err)
		}
		for k := 0; k < m.Columns; k++ {
			got := s.Column(r, m, k)

			want, sym := ripeScan(r, m, k)
			if got != want {
				t.Fatalf("case %d col %d: Column() = %d, ripe scan = %d", i, k, got, want)
			}
			for v := range sym {
				if s.Symbol(v) != sym[v] {
					t.Errorf("case %d col %d: node %d symbol = %d, ripe scan = %d", i, k, v, s.Symbol(v), sym[v])
				}
			}

			rc := postOrder(r, m, k, r.Root())
			if lo := slices.Min(rc[:]); lo != got {
				t.Errorf("case %d col %d: Column() = %d, post-order = %d", i, k, got, lo)
			}
		}
	}
}

func TestSolverReuse(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	shared := NewSolver()
	var buf []byte
	for i := 0; i < 20; i++ {
		tr, m := randomCase(t, rng, 2+rng.IntN(40), 1+rng.IntN(6))
		got, flat, err := shared.Evaluate(tr, m, buf)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		buf = flat
		want, wantFlat, _ := NewSolver().Evaluate(tr, m, nil)
		if got != want || !slices.Equal(flat, wantFlat) {
			t.Errorf("case %d: reused solver = %d, fresh solver = %d", i, got, want)
		}
	}
}
