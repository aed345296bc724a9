// Package tree provides the unrooted and rooted binary tree representations
// used by the parsimony solver and search.
//
// # Overview
//
// An [Unrooted] tree has N nodes. Leaves occupy indices 0..L-1 and internal
// nodes L..N-1. Adjacency is stored compactly: [Unrooted.Index] maps a node to
// the start of its slots in the flat [Unrooted.Neighbors] array. Every leaf
// owns exactly one slot and every internal node exactly three.
//
// A [Rooted] tree is derived from an Unrooted one by [Orient]. It adds a
// synthetic root with index N whose two children are node N-1 and that
// node's first neighbor. Rooted trees are ephemeral: they are recomputed from
// the unrooted topology whenever a topology is scored.
//
// # Moves
//
// [Unrooted.InternalEdges] enumerates the edges whose endpoints are both
// internal, and [Unrooted.Moves] lists the two nearest-neighbor interchanges
// each such edge admits:
//
//	for _, m := range t.Moves() {
//	    next := t.Interchange(m)   // t is left untouched
//	    ...
//	}
//
// [Move.Inverse] undoes a move.
//
// # Identity
//
// [Unrooted.Key] returns a canonical key built from the leaf bipartitions of
// the tree. Two topologies have equal keys exactly when they describe the
// same unrooted tree over the same leaves, regardless of how internal nodes
// are numbered.
package tree
