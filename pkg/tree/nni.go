package tree

import "fmt"

// Edge is an internal edge (A, B) where both endpoints are internal nodes.
type Edge struct {
	A, B int
}

// Move is a nearest-neighbor interchange across the internal edge (A, B):
// AChild, a neighbor of A other than B, swaps places with BChild, a neighbor
// of B other than A.
type Move struct {
	A, B           int
	AChild, BChild int
}

// Inverse returns the move that undoes m once m has been applied.
func (m Move) Inverse() Move {
	return Move{A: m.A, B: m.B, AChild: m.BChild, BChild: m.AChild}
}

func (m Move) String() string {
	return fmt.Sprintf("%d-%d swap %d<->%d", m.A, m.B, m.AChild, m.BChild)
}

// InternalEdges enumerates every internal edge exactly once. Internal nodes
// are visited in ascending order and (a, b) is emitted only while b has not
// yet been visited as an a.
func (t *Unrooted) InternalEdges() []Edge {
	n := t.N()
	edges := make([]Edge, 0, max(t.Leaves-3, 0))
	visited := make([]bool, n)
	for a := t.Leaves; a < n; a++ {
		visited[a] = true
		for _, b := range t.Adj(a) {
			if b >= t.Leaves && !visited[b] {
				edges = append(edges, Edge{A: a, B: b})
			}
		}
	}
	return edges
}

// Moves returns the two interchanges admitted by every internal edge, in
// edge order.
func (t *Unrooted) Moves() []Move {
	return t.AppendMoves(nil)
}

// AppendMoves appends the moves of t to dst and returns the extended slice.
//
// For edge (a, b), AChild is the first neighbor of a unless that is b, in
// which case it is the second. The two BChild candidates are the first
// neighbor of b other than a scanning forward and scanning backward.
func (t *Unrooted) AppendMoves(dst []Move) []Move {
	for _, e := range t.InternalEdges() {
		adjA := t.Adj(e.A)
		aChild := adjA[0]
		if aChild == e.B {
			aChild = adjA[1]
		}
		adjB := t.Adj(e.B)
		for i := 0; i < len(adjB); i++ {
			if adjB[i] != e.A {
				dst = append(dst, Move{A: e.A, B: e.B, AChild: aChild, BChild: adjB[i]})
				break
			}
		}
		for i := len(adjB) - 1; i >= 0; i-- {
			if adjB[i] != e.A {
				dst = append(dst, Move{A: e.A, B: e.B, AChild: aChild, BChild: adjB[i]})
				break
			}
		}
	}
	return dst
}

// Interchange returns a new tree with m applied. t is not modified and the
// result shares only the immutable Index table with it.
func (t *Unrooted) Interchange(m Move) *Unrooted {
	out := &Unrooted{Leaves: t.Leaves, Index: t.Index}
	out.Neighbors = t.InterchangeInto(nil, m)
	return out
}

// InterchangeInto copies the neighbor array of t into dst, applies m to the
// copy and returns it. dst is grown if needed.
//
// Four slots change: A's slot for AChild now holds BChild, B's slot for
// BChild now holds AChild, AChild's slot for A now holds B, and BChild's
// slot for B now holds A. It panics if m does not describe an edge of t.
func (t *Unrooted) InterchangeInto(dst []int, m Move) []int {
	dst = append(dst[:0], t.Neighbors...)
	replace(t, dst, m.A, m.AChild, m.BChild)
	replace(t, dst, m.B, m.BChild, m.AChild)
	replace(t, dst, m.AChild, m.A, m.B)
	replace(t, dst, m.BChild, m.B, m.A)
	return dst
}

func replace(t *Unrooted, flat []int, v, old, repl int) {
	for i := t.Index[v]; i < t.Index[v+1]; i++ {
		if flat[i] == old {
			flat[i] = repl
			return
		}
	}
	panic(fmt.Sprintf("tree: node %d has no neighbor %d", v, old))
}
