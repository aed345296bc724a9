package tree

import (
	"fmt"
	"slices"

	"github.com/matzehuels/parsimony/pkg/errors"
)

// Degrees of leaves and internal nodes in a full binary unrooted tree.
const (
	LeafDegree     = 1
	InternalDegree = 3
)

// Unrooted is an undirected full binary tree in compact adjacency form.
//
// Index has N+1 entries: the slots of node v are
// Neighbors[Index[v]:Index[v+1]]. Index depends only on N and L, so trees
// derived from one another by [Unrooted.Interchange] share it read-only.
type Unrooted struct {
	Leaves    int   // L: leaves are 0..L-1
	Index     []int // node -> first slot, plus a trailing end offset
	Neighbors []int // flat neighbor slots, 2(N-1) entries
}

// New builds an unrooted tree from per-node neighbor lists. adj[v] lists the
// neighbors of node v in slot order. The result is validated.
func New(leaves int, adj [][]int) (*Unrooted, error) {
	n := len(adj)
	index := make([]int, n+1)
	total := 0
	for v, nb := range adj {
		index[v] = total
		total += len(nb)
	}
	index[n] = total
	flat := make([]int, 0, total)
	for _, nb := range adj {
		flat = append(flat, nb...)
	}
	t := &Unrooted{Leaves: leaves, Index: index, Neighbors: flat}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Layout returns the index table for a tree with n nodes of which leaves
// are leaves.
func Layout(n, leaves int) []int {
	index := make([]int, n+1)
	off := 0
	for v := 0; v < n; v++ {
		index[v] = off
		if v < leaves {
			off += LeafDegree
		} else {
			off += InternalDegree
		}
	}
	index[n] = off
	return index
}

// N returns the number of nodes.
func (t *Unrooted) N() int { return len(t.Index) - 1 }

// Internal returns the number of internal nodes.
func (t *Unrooted) Internal() int { return t.N() - t.Leaves }

// IsLeaf reports whether v is a leaf.
func (t *Unrooted) IsLeaf(v int) bool { return v < t.Leaves }

// Adj returns the neighbor slots of v. The slice aliases the tree.
func (t *Unrooted) Adj(v int) []int {
	return t.Neighbors[t.Index[v]:t.Index[v+1]]
}

// Edges returns every undirected edge once, as (u, v) with u < v, ordered by u.
func (t *Unrooted) Edges() [][2]int {
	edges := make([][2]int, 0, t.N()-1)
	for u := 0; u < t.N(); u++ {
		for _, v := range t.Adj(u) {
			if u < v {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	return edges
}

// Clone returns a deep copy.
func (t *Unrooted) Clone() *Unrooted {
	return &Unrooted{
		Leaves:    t.Leaves,
		Index:     slices.Clone(t.Index),
		Neighbors: slices.Clone(t.Neighbors),
	}
}

// Equal reports whether both trees have identical slot arrays.
func (t *Unrooted) Equal(o *Unrooted) bool {
	return t.Leaves == o.Leaves &&
		slices.Equal(t.Index, o.Index) &&
		slices.Equal(t.Neighbors, o.Neighbors)
}

// SameAdjacency reports whether both trees have the same neighbor set at
// every node, ignoring slot order.
func (t *Unrooted) SameAdjacency(o *Unrooted) bool {
	if t.Leaves != o.Leaves || t.N() != o.N() {
		return false
	}
	for v := 0; v < t.N(); v++ {
		a, b := slices.Clone(t.Adj(v)), slices.Clone(o.Adj(v))
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}

// Validate checks the degree and symmetry invariants of a full binary
// unrooted tree. Connectivity is checked by [Orient].
func (t *Unrooted) Validate() error {
	n := t.N()
	if n < 2 || t.Leaves < 2 {
		return errors.New(errors.ErrCodeMalformedTopology,
			"tree needs at least 2 leaves, got %d nodes and %d leaves", n, t.Leaves)
	}
	if t.Leaves > n {
		return errors.New(errors.ErrCodeMalformedTopology,
			"leaf count %d exceeds node count %d", t.Leaves, n)
	}
	if n != 2*t.Leaves-2 {
		return errors.New(errors.ErrCodeMalformedTopology,
			"a binary tree with %d leaves has %d nodes, got %d", t.Leaves, 2*t.Leaves-2, n)
	}
	if t.Index[0] != 0 || t.Index[n] != len(t.Neighbors) {
		return errors.New(errors.ErrCodeMalformedTopology, "index table does not cover the neighbor array")
	}
	if len(t.Neighbors) != 2*(n-1) {
		return errors.New(errors.ErrCodeMalformedTopology,
			"tree with %d nodes needs %d edges, got %d", n, n-1, len(t.Neighbors)/2)
	}
	// Every degree is checked before any Adj call so a bad index table
	// cannot slice out of range.
	for v := 0; v < n; v++ {
		want := InternalDegree
		if t.IsLeaf(v) {
			want = LeafDegree
		}
		if got := t.Index[v+1] - t.Index[v]; got != want {
			return errors.New(errors.ErrCodeMalformedTopology,
				"node %d has %d neighbors, want %d", v, got, want)
		}
	}
	for v := 0; v < n; v++ {
		for i, u := range t.Adj(v) {
			if u < 0 || u >= n || u == v {
				return errors.New(errors.ErrCodeMalformedTopology,
					"node %d has invalid neighbor %d", v, u)
			}
			if slices.Contains(t.Adj(v)[:i], u) {
				return errors.New(errors.ErrCodeMalformedTopology,
					"node %d lists neighbor %d twice", v, u)
			}
			if !slices.Contains(t.Adj(u), v) {
				return errors.New(errors.ErrCodeMalformedTopology,
					"edge %d-%d is not symmetric", v, u)
			}
		}
	}
	return nil
}

// String renders the adjacency as "v:[a b c]" groups, mainly for tests and
// debug logs.
func (t *Unrooted) String() string {
	s := ""
	for v := 0; v < t.N(); v++ {
		if v > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d:%v", v, t.Adj(v))
	}
	return s
}
