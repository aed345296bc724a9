// Package generate builds random parsimony datasets: a full binary unrooted
// topology and one random DNA string per leaf.
//
// Topologies are grown breadth-first. Starting from a single edge between
// two leaves, the oldest leaf is repeatedly split into an internal node with
// two new leaves until the requested leaf count is reached. Nodes are then
// renumbered so leaves occupy 0..L-1.
//
// All randomness comes from a seeded PCG source, so a given [Options] value
// always yields the same dataset.
package generate

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/tree"
)

// Defaults used when Options fields are zero.
const (
	DefaultLeaves = 10
	DefaultLength = 50
	DefaultShape  = ShapeBalanced
)

// Topology shapes.
const (
	// ShapeBalanced splits leaves breadth-first.
	ShapeBalanced = "balanced"
	// ShapeRandom attaches each new leaf to a uniformly chosen edge.
	ShapeRandom = "random"
)

const alphabet = "ACGT"

// maxLabelAttempts bounds the retries spent drawing a label not yet in use.
const maxLabelAttempts = 1000

// Options configures dataset generation.
type Options struct {
	Leaves int    // number of leaves (>= 2)
	Length int    // characters per leaf label (>= 1)
	Seed   uint64 // PRNG seed
	Shape  string // ShapeBalanced or ShapeRandom
}

// ValidateAndSetDefaults fills zero fields and checks bounds.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Leaves == 0 {
		o.Leaves = DefaultLeaves
	}
	if o.Length == 0 {
		o.Length = DefaultLength
	}
	if o.Shape == "" {
		o.Shape = DefaultShape
	}
	if o.Shape != ShapeBalanced && o.Shape != ShapeRandom {
		return errors.New(errors.ErrCodeInvalidInput, "unknown shape %q (want %s or %s)", o.Shape, ShapeBalanced, ShapeRandom)
	}
	if o.Leaves < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "leaves must be at least 2, got %d", o.Leaves)
	}
	if o.Length < 1 || o.Length > errors.MaxLabelLength {
		return errors.New(errors.ErrCodeInvalidInput, "length must be in [1, %d], got %d", errors.MaxLabelLength, o.Length)
	}
	// Leaf labels double as identities, so there must be enough distinct strings.
	if o.Length < 32 {
		if distinct := uint64(1) << (2 * o.Length); uint64(o.Leaves) > distinct {
			return errors.New(errors.ErrCodeInvalidInput,
				"%d leaves need distinct labels but length %d allows only %d", o.Leaves, o.Length, distinct)
		}
	}
	return nil
}

// Dataset is a generated topology with its leaf labels.
type Dataset struct {
	Tree   *tree.Unrooted
	Labels []string // Labels[v] for leaf v
}

// Generate builds a dataset from opts.
func Generate(opts Options) (*Dataset, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	var (
		t   *tree.Unrooted
		err error
	)
	if opts.Shape == ShapeRandom {
		t, err = RandomTopology(rng, opts.Leaves)
	} else {
		t, err = Topology(opts.Leaves)
	}
	if err != nil {
		return nil, err
	}
	labels, err := Labels(rng, opts.Leaves, opts.Length)
	if err != nil {
		return nil, err
	}
	return &Dataset{Tree: t, Labels: labels}, nil
}

// Topology returns the breadth-first grown tree with the given leaf count.
// The shape depends only on the leaf count.
func Topology(leaves int) (*tree.Unrooted, error) {
	if leaves < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "leaves must be at least 2, got %d", leaves)
	}
	n := 2*leaves - 2
	adj := make([][]int, 2, n)
	adj[0], adj[1] = []int{1}, []int{0}
	queue := []int{0, 1}
	for len(queue) < leaves {
		top := queue[0]
		queue = queue[1:]
		l1, l2 := len(adj), len(adj)+1
		adj[top] = append(adj[top], l1, l2)
		adj = append(adj, []int{top}, []int{top})
		queue = append(queue, l1, l2)
	}
	return renumber(leaves, adj)
}

// RandomTopology grows a tree by attaching each new leaf to an edge drawn
// uniformly from the current tree.
func RandomTopology(rng *rand.Rand, leaves int) (*tree.Unrooted, error) {
	if leaves < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "leaves must be at least 2, got %d", leaves)
	}
	adj := [][]int{{1}, {0}}
	type edge struct{ u, v int }
	edges := []edge{{0, 1}}
	for l := 2; l < leaves; l++ {
		i := rng.IntN(len(edges))
		e := edges[i]
		w, leaf := len(adj), len(adj)+1
		adj[e.u][slices.Index(adj[e.u], e.v)] = w
		adj[e.v][slices.Index(adj[e.v], e.u)] = w
		adj = append(adj, []int{e.u, e.v, leaf}, []int{w})
		edges[i] = edge{e.u, w}
		edges = append(edges, edge{w, e.v}, edge{w, leaf})
	}
	return renumber(leaves, adj)
}

// renumber maps leaves to 0..L-1 and internal nodes to L..N-1, each group in
// creation order.
func renumber(leaves int, adj [][]int) (*tree.Unrooted, error) {
	remap := make([]int, len(adj))
	next := 0
	for v, nb := range adj {
		if len(nb) == 1 {
			remap[v] = next
			next++
		}
	}
	for v, nb := range adj {
		if len(nb) != 1 {
			remap[v] = next
			next++
		}
	}
	out := make([][]int, len(adj))
	for v, nb := range adj {
		mapped := make([]int, len(nb))
		for i, u := range nb {
			mapped[i] = remap[u]
		}
		out[remap[v]] = mapped
	}
	return tree.New(leaves, out)
}

// Labels draws count distinct random strings of the given length.
func Labels(rng *rand.Rand, count, length int) ([]string, error) {
	labels := make([]string, 0, count)
	seen := make(map[string]bool, count)
	buf := make([]byte, length)
	for len(labels) < count {
		var label string
		for attempt := 0; ; attempt++ {
			if attempt == maxLabelAttempts {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"could not draw %d distinct labels of length %d", count, length)
			}
			for i := range buf {
				buf[i] = alphabet[rng.IntN(len(alphabet))]
			}
			label = string(buf)
			if !seen[label] {
				break
			}
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels, nil
}
