// Package verify checks search results for internal consistency.
//
// A topology is consistent when every node label has the same length and
// its score equals the sum of Hamming distances along its edges. A result
// is consistent when every topology is, all of them share the result score,
// and all of them carry the same leaf labels. [Compare] checks two results
// for the same problem against each other.
package verify

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/parsimony/pkg/parsimony"
	"github.com/matzehuels/parsimony/pkg/search"
	"github.com/matzehuels/parsimony/pkg/tree"
)

var (
	// ErrEmptyResult is returned for a result without topologies.
	ErrEmptyResult = errors.New("result has no topologies")

	// ErrLengthMismatch is returned when node labels differ in length.
	ErrLengthMismatch = errors.New("label length mismatch")

	// ErrScoreMismatch is returned when a score does not match the edge sum
	// of its labeling or the score of another topology.
	ErrScoreMismatch = errors.New("score mismatch")

	// ErrLeafMismatch is returned when two topologies carry different leaf
	// label sets.
	ErrLeafMismatch = errors.New("leaf label mismatch")
)

// EdgeSum returns the sum of Hamming distances between the labels of
// adjacent nodes.
func EdgeSum(t *tree.Unrooted, labels []string) int {
	sum := 0
	for _, e := range t.Edges() {
		sum += parsimony.Hamming(labels[e[0]], labels[e[1]])
	}
	return sum
}

// Topology checks a single labeled topology.
func Topology(topo *search.Topology) error {
	t := topo.Tree
	if err := t.Validate(); err != nil {
		return err
	}
	if len(topo.Labels) != t.N() {
		return fmt.Errorf("%w: %d labels for %d nodes", ErrLengthMismatch, len(topo.Labels), t.N())
	}
	width := len(topo.Labels[0])
	for v, l := range topo.Labels {
		if len(l) != width {
			return fmt.Errorf("%w: node %d has %d characters, node 0 has %d", ErrLengthMismatch, v, len(l), width)
		}
	}
	if sum := EdgeSum(t, topo.Labels); sum != topo.Score {
		return fmt.Errorf("%w: reported %d, edges sum to %d", ErrScoreMismatch, topo.Score, sum)
	}
	return nil
}

// Result checks every topology of res, that all of them share res.Score,
// and that they carry the same leaf labels. When leaves is non-nil the leaf
// labels must also match it.
func Result(res *search.Result, leaves []string) error {
	if len(res.Topologies) == 0 {
		return ErrEmptyResult
	}
	want := leafSet(leaves)
	for i, topo := range res.Topologies {
		if err := Topology(topo); err != nil {
			return fmt.Errorf("topology %d: %w", i, err)
		}
		if topo.Score != res.Score {
			return fmt.Errorf("topology %d: %w: %d, result score %d", i, ErrScoreMismatch, topo.Score, res.Score)
		}
		got := LeafLabels(topo)
		if want == nil {
			want = got
			continue
		}
		if !slices.Equal(got, want) {
			return fmt.Errorf("topology %d: %w", i, ErrLeafMismatch)
		}
	}
	return nil
}

// Compare checks that a and b are consistent and agree on the score and
// leaf labels.
func Compare(a, b *search.Result) error {
	if err := Result(a, nil); err != nil {
		return fmt.Errorf("first result: %w", err)
	}
	if err := Result(b, LeafLabels(a.Topologies[0])); err != nil {
		return fmt.Errorf("second result: %w", err)
	}
	if a.Score != b.Score {
		return fmt.Errorf("%w: %d vs %d", ErrScoreMismatch, a.Score, b.Score)
	}
	return nil
}

// LeafLabels returns the sorted labels of the leaves of topo.
func LeafLabels(topo *search.Topology) []string {
	out := slices.Clone(topo.Labels[:topo.Tree.Leaves])
	slices.Sort(out)
	return out
}

func leafSet(labels []string) []string {
	if labels == nil {
		return nil
	}
	out := slices.Clone(labels)
	slices.Sort(out)
	return out
}
