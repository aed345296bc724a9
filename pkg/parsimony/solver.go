package parsimony

import (
	"math"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/tree"
)

// Infinity is the cost of assigning a leaf any symbol but its own. It is a
// finite sentinel so that sums of costs cannot overflow.
const Infinity = 100_000_000

// Solver runs the small parsimony dynamic program. Its tables are sized on
// first use and grown as needed.
type Solver struct {
	cost []int   // cost[v*Symbols+k]: best subtree cost with v labeled k
	back []uint8 // back[v*2*Symbols+2k+side]: chosen child symbol for parent symbol k
	sym  []uint8 // backtracked symbol per node for the current column

	orienter tree.Orienter
	rooted   *tree.Rooted
}

// NewSolver returns a Solver with empty scratch.
func NewSolver() *Solver {
	return &Solver{}
}

func (s *Solver) grow(size int) {
	if cap(s.cost) < size*Symbols {
		s.cost = make([]int, size*Symbols)
		s.back = make([]uint8, size*2*Symbols)
		s.sym = make([]uint8, size)
	}
	s.cost = s.cost[:size*Symbols]
	s.back = s.back[:size*2*Symbols]
	s.sym = s.sym[:size]
}

// Column scores column k of m on r and leaves the backtracked symbol of
// every node in s. It returns the column score.
//
// Nodes are resolved children-first by walking r.Order backwards. For each
// parent symbol the first minimizing child symbol (in alphabet order) is
// recorded, and the root takes the first minimizing symbol.
func (s *Solver) Column(r *tree.Rooted, m *Matrix, k int) int {
	s.grow(r.Size())
	for i := len(r.Order) - 1; i >= 0; i-- {
		v := r.Order[i]
		c := s.cost[v*Symbols : (v+1)*Symbols]
		if r.IsLeaf(v) {
			x := m.At(k, v)
			for j := range c {
				c[j] = Infinity
			}
			c[x] = 0
			continue
		}
		d, o := r.Left(v), r.Right(v)
		dc := s.cost[d*Symbols : (d+1)*Symbols]
		oc := s.cost[o*Symbols : (o+1)*Symbols]
		b := s.back[v*2*Symbols : (v+1)*2*Symbols]
		for x := 0; x < Symbols; x++ {
			bd, cd := cheapest(dc, x)
			bo, co := cheapest(oc, x)
			c[x] = cd + co
			b[2*x], b[2*x+1] = bd, bo
		}
	}

	root := r.Root()
	rc := s.cost[root*Symbols : (root+1)*Symbols]
	best, score := uint8(0), rc[0]
	for x := 1; x < Symbols; x++ {
		if rc[x] < score {
			best, score = uint8(x), rc[x]
		}
	}

	s.sym[root] = best
	for _, v := range r.Order {
		if r.IsLeaf(v) {
			s.sym[v] = m.At(k, v)
			continue
		}
		b := s.back[v*2*Symbols : (v+1)*2*Symbols]
		x := s.sym[v]
		s.sym[r.Left(v)] = b[2*x]
		s.sym[r.Right(v)] = b[2*x+1]
	}
	return score
}

// cheapest returns the first child symbol minimizing cost plus a unit
// mismatch penalty against parent symbol x.
func cheapest(c []int, x int) (uint8, int) {
	best, lo := uint8(0), math.MaxInt
	for j := 0; j < Symbols; j++ {
		v := c[j]
		if j != x {
			v++
		}
		if v < lo {
			best, lo = uint8(j), v
		}
	}
	return best, lo
}

// Symbol returns the symbol assigned to v by the last call to Column.
func (s *Solver) Symbol(v int) uint8 { return s.sym[v] }

// Solve scores every column of m on r and writes the letter of node v in
// column k to labels[v*K+k] for the N original nodes. labels is grown if
// needed and returned.
func (s *Solver) Solve(r *tree.Rooted, m *Matrix, labels []byte) (int, []byte) {
	n, cols := r.Size()-1, m.Columns
	if cap(labels) < n*cols {
		labels = make([]byte, n*cols)
	}
	labels = labels[:n*cols]
	total := 0
	for k := 0; k < cols; k++ {
		total += s.Column(r, m, k)
		for v := 0; v < n; v++ {
			labels[v*cols+k] = Decode(s.sym[v])
		}
	}
	return total, labels
}

// Evaluate orients t with the solver's own orienter and solves it. The
// returned labels alias buf when it has enough capacity.
func (s *Solver) Evaluate(t *tree.Unrooted, m *Matrix, buf []byte) (int, []byte, error) {
	if t.Leaves != m.Leaves {
		return 0, nil, errors.New(errors.ErrCodeInvalidInput,
			"tree has %d leaves but matrix has %d", t.Leaves, m.Leaves)
	}
	r, err := s.orienter.Orient(t, s.rooted)
	if err != nil {
		return 0, nil, err
	}
	s.rooted = r
	score, labels := s.Solve(r, m, buf)
	return score, labels, nil
}

// Labels splits a flat label buffer into one string per node.
func Labels(flat []byte, cols int) []string {
	if cols == 0 {
		return nil
	}
	out := make([]string, len(flat)/cols)
	for v := range out {
		out[v] = string(flat[v*cols : (v+1)*cols])
	}
	return out
}
