package tree

import "github.com/matzehuels/parsimony/pkg/errors"

// NoChildren marks a leaf in [Rooted.Offset].
const NoChildren = -1

// Rooted is a directed binary tree derived from an [Unrooted] one. It has
// N+1 nodes: the N original nodes plus a synthetic root with index N.
type Rooted struct {
	Leaves int
	// Offset[v] is NoChildren for leaves, otherwise the position of v's two
	// children in Children.
	Offset   []int
	Children []int
	// Order lists every node parents-before-children, starting at the root.
	// Reversed, it is a valid bottom-up evaluation order.
	Order []int
}

// Root returns the index of the synthetic root.
func (r *Rooted) Root() int { return len(r.Offset) - 1 }

// Size returns N+1, the number of nodes including the synthetic root.
func (r *Rooted) Size() int { return len(r.Offset) }

// IsLeaf reports whether v has no children.
func (r *Rooted) IsLeaf(v int) bool { return r.Offset[v] == NoChildren }

// Left returns the first child of an internal node.
func (r *Rooted) Left(v int) int { return r.Children[r.Offset[v]] }

// Right returns the second child of an internal node.
func (r *Rooted) Right(v int) int { return r.Children[r.Offset[v]+1] }

// Parents returns the parent of every node; the root's entry is -1.
func (r *Rooted) Parents() []int {
	parent := make([]int, r.Size())
	for i := range parent {
		parent[i] = -1
	}
	for _, v := range r.Order {
		if r.IsLeaf(v) {
			continue
		}
		parent[r.Left(v)] = v
		parent[r.Right(v)] = v
	}
	return parent
}

// Orienter roots unrooted trees. It owns its scratch buffers, so one
// Orienter must not be shared between goroutines.
type Orienter struct {
	visited []bool
}

// Orient roots t with a fresh Orienter.
func Orient(t *Unrooted) (*Rooted, error) {
	var o Orienter
	return o.Orient(t, nil)
}

// Orient roots t at the edge between node N-1 and its first neighbor and
// walks outward breadth-first. The unvisited neighbors of each internal node
// become its children in slot order. Leaves are never expanded.
//
// If dst is non-nil its buffers are reused and dst is returned.
//
// An internal node that does not yield exactly two unvisited neighbors fails
// with MALFORMED_TOPOLOGY. A node left unvisited fails with
// UNRESOLVABLE_ROOT.
func (o *Orienter) Orient(t *Unrooted, dst *Rooted) (*Rooted, error) {
	n := t.N()
	if n < 2 {
		return nil, errors.New(errors.ErrCodeUnresolvableRoot, "cannot root a tree with %d nodes", n)
	}
	if dst == nil {
		dst = &Rooted{}
	}
	dst.Leaves = t.Leaves
	dst.Offset = resize(dst.Offset, n+1)
	dst.Children = dst.Children[:0]
	dst.Order = dst.Order[:0]
	for i := range dst.Offset {
		dst.Offset[i] = NoChildren
	}
	if cap(o.visited) < n+1 {
		o.visited = make([]bool, n+1)
	}
	visited := o.visited[:n+1]
	clear(visited)

	root, left := n, n-1
	if len(t.Adj(left)) == 0 {
		return nil, errors.New(errors.ErrCodeUnresolvableRoot, "node %d has no neighbor to root on", left)
	}
	right := t.Adj(left)[0]
	dst.Offset[root] = len(dst.Children)
	dst.Children = append(dst.Children, left, right)
	visited[root], visited[left], visited[right] = true, true, true
	dst.Order = append(dst.Order, root, left, right)

	// Order doubles as the BFS queue.
	for head := 1; head < len(dst.Order); head++ {
		v := dst.Order[head]
		if t.IsLeaf(v) {
			continue
		}
		start := len(dst.Children)
		for _, u := range t.Adj(v) {
			if visited[u] {
				continue
			}
			if len(dst.Children)-start == 2 {
				return nil, errors.New(errors.ErrCodeMalformedTopology,
					"node %d has more than two unvisited neighbors", v)
			}
			visited[u] = true
			dst.Children = append(dst.Children, u)
			dst.Order = append(dst.Order, u)
		}
		if got := len(dst.Children) - start; got != 2 {
			return nil, errors.New(errors.ErrCodeMalformedTopology,
				"internal node %d has %d children, want 2", v, got)
		}
		dst.Offset[v] = start
	}

	if len(dst.Order) != n+1 {
		for v := 0; v < n; v++ {
			if !visited[v] {
				return nil, errors.New(errors.ErrCodeUnresolvableRoot,
					"node %d is not reachable from the root edge", v)
			}
		}
	}
	return dst, nil
}

func resize(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}
