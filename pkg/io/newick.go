package io

import (
	"fmt"
	"io"

	"github.com/evolbioinfo/gotree/io/newick"
	gotree "github.com/evolbioinfo/gotree/tree"

	"github.com/matzehuels/parsimony/pkg/errors"
	"github.com/matzehuels/parsimony/pkg/parsimony"
	"github.com/matzehuels/parsimony/pkg/search"
	"github.com/matzehuels/parsimony/pkg/tree"
)

// Newick renders topo as an unrooted Newick string. Leaves are named by
// their labels. With lengths set, every branch carries the Hamming
// distance between its endpoint labels.
func Newick(topo *search.Topology, lengths bool) string {
	t := topo.Tree
	gt := gotree.NewTree()
	nodes := make([]*gotree.Node, t.N())
	for v := range nodes {
		nodes[v] = gt.NewNode()
		if t.IsLeaf(v) {
			nodes[v].SetName(topo.Labels[v])
		}
	}
	for _, e := range t.Edges() {
		edge := gt.ConnectNodes(nodes[e[0]], nodes[e[1]])
		if lengths {
			edge.SetLength(float64(parsimony.Hamming(topo.Labels[e[0]], topo.Labels[e[1]])))
		}
	}
	// Root the serialization at an internal node so the output is a
	// trifurcation rather than an arbitrary rooting.
	gt.SetRoot(nodes[t.N()-1])
	return gt.Newick()
}

// WriteNewick writes one Newick line per topology of res.
func WriteNewick(w io.Writer, res *search.Result, lengths bool) error {
	for _, topo := range res.Topologies {
		if _, err := fmt.Fprintln(w, Newick(topo, lengths)); err != nil {
			return err
		}
	}
	return nil
}

// ReadNewick parses a Newick tree whose tip names are the leaf labels. A
// rooted tree is unrooted first. Leaves are numbered in tip order and
// internal nodes after them.
func ReadNewick(r io.Reader) (*Input, error) {
	gt, err := newick.NewParser(r).Parse()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse newick")
	}
	gt.UnRoot()

	all := gt.Nodes()
	id := make(map[*gotree.Node]int, len(all))
	var labels []string
	for _, n := range all {
		if n.Tip() {
			id[n] = len(labels)
			labels = append(labels, n.Name())
		}
	}
	next := len(labels)
	for _, n := range all {
		if !n.Tip() {
			id[n] = next
			next++
		}
	}
	adj := make([][]int, len(all))
	for _, n := range all {
		for _, m := range n.Neigh() {
			adj[id[n]] = append(adj[id[n]], id[m])
		}
	}
	if _, err := errors.ValidateLeafLabels(labels); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate leaf label %q", l)
		}
		seen[l] = true
	}
	t, err := tree.New(len(labels), adj)
	if err != nil {
		return nil, err
	}
	return &Input{Tree: t, Labels: labels}, nil
}
