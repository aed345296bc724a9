package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/parsimony"
	"github.com/matzehuels/parsimony/pkg/tree"
)

// EdgeSeparator separates the endpoints of an edge line.
const EdgeSeparator = "->"

// Input is a parsed problem: a topology and the label of every leaf.
type Input struct {
	Tree   *tree.Unrooted
	Labels []string // Labels[v] for leaf v
}

// Matrix encodes the leaf labels.
func (in *Input) Matrix() (*parsimony.Matrix, error) {
	return parsimony.NewMatrix(in.Labels)
}

// ReadAdjacencyFile opens path and parses it with [ReadAdjacency].
func ReadAdjacencyFile(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadAdjacency(f)
}

// ReadAdjacency parses the adjacency input format.
//
// Label problems are reported as INVALID_INPUT, INVALID_SYMBOL or
// INCONSISTENT_COLUMN_COUNT; topology problems as MALFORMED_TOPOLOGY.
// Syntax errors are INVALID_FORMAT and name the offending line.
func ReadAdjacency(r io.Reader) (*Input, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*errors.MaxLabelLength)

	lineNo := 0
	leaves := -1
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"line %d: leaf count must be an integer >= 2, got %q", lineNo, line)
		}
		leaves = n
		break
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if leaves < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty input")
	}

	b := newBuilder(leaves)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		from, to, ok := strings.Cut(line, EdgeSeparator)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"line %d: expected A%sB, got %q", lineNo, EdgeSeparator, line)
		}
		u, err := b.node(lineNo, strings.TrimSpace(from))
		if err != nil {
			return nil, err
		}
		v, err := b.node(lineNo, strings.TrimSpace(to))
		if err != nil {
			return nil, err
		}
		if u == v {
			return nil, errors.New(errors.ErrCodeMalformedTopology, "line %d: self loop on node %d", lineNo, u)
		}
		b.connect(u, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return b.build()
}

// builder accumulates nodes and edges while parsing.
type builder struct {
	leaves   int
	nextLeaf int
	labels   map[string]int
	adj      map[int][]int
}

func newBuilder(leaves int) *builder {
	return &builder{
		leaves:   leaves,
		nextLeaf: leaves - 1,
		labels:   make(map[string]int, leaves),
		adj:      make(map[int][]int, 2*leaves),
	}
}

// node resolves an endpoint to a node index, assigning leaf indices on
// first sight.
func (b *builder) node(lineNo int, s string) (int, error) {
	if s == "" {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "line %d: empty endpoint", lineNo)
	}
	if isNumber(s) {
		id, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: node id %q", lineNo, s)
		}
		if id < b.leaves || id >= 2*b.leaves-2 {
			return 0, errors.New(errors.ErrCodeMalformedTopology,
				"line %d: internal node id %d outside %d..%d", lineNo, id, b.leaves, 2*b.leaves-3)
		}
		return id, nil
	}
	if id, ok := b.labels[s]; ok {
		return id, nil
	}
	if b.nextLeaf < 0 {
		return 0, errors.New(errors.ErrCodeMalformedTopology,
			"line %d: more than %d distinct leaf labels (at %q)", lineNo, b.leaves, s)
	}
	id := b.nextLeaf
	b.nextLeaf--
	b.labels[s] = id
	return id, nil
}

func (b *builder) connect(u, v int) {
	if !slices.Contains(b.adj[u], v) {
		b.adj[u] = append(b.adj[u], v)
	}
	if !slices.Contains(b.adj[v], u) {
		b.adj[v] = append(b.adj[v], u)
	}
}

func (b *builder) build() (*Input, error) {
	if len(b.labels) != b.leaves {
		return nil, errors.New(errors.ErrCodeMalformedTopology,
			"declared %d leaves but found %d distinct leaf labels", b.leaves, len(b.labels))
	}
	n := 2*b.leaves - 2
	if len(b.adj) != n {
		return nil, errors.New(errors.ErrCodeMalformedTopology,
			"a binary tree with %d leaves has %d nodes, found %d", b.leaves, n, len(b.adj))
	}
	adj := make([][]int, n)
	for id, nb := range b.adj {
		adj[id] = nb
	}

	labels := make([]string, b.leaves)
	for l, id := range b.labels {
		labels[id] = l
	}
	if _, err := errors.ValidateLeafLabels(labels); err != nil {
		return nil, err
	}

	t, err := tree.New(b.leaves, adj)
	if err != nil {
		return nil, err
	}
	return &Input{Tree: t, Labels: labels}, nil
}

// WriteAdjacency writes t in the adjacency input format, listing every edge
// in both directions and replacing leaves by their labels.
func WriteAdjacency(w io.Writer, t *tree.Unrooted, labels []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", t.Leaves)
	name := func(v int) string {
		if t.IsLeaf(v) {
			return labels[v]
		}
		return strconv.Itoa(v)
	}
	for v := 0; v < t.N(); v++ {
		for _, u := range t.Adj(v) {
			fmt.Fprintf(bw, "%s%s%s\n", name(v), EdgeSeparator, name(u))
		}
	}
	return bw.Flush()
}

// WriteAdjacencyFile writes the input format to path.
func WriteAdjacencyFile(path string, t *tree.Unrooted, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteAdjacency(f, t, labels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isNumber(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
