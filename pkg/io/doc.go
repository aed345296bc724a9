// Package io reads and writes parsimony inputs and results.
//
// # Adjacency Input
//
// The input format is line oriented. The first line holds the leaf count L;
// every further line is an edge "A->B". Integer endpoints are internal
// nodes, any other endpoint is a leaf whose name is also its character
// string:
//
//	4
//	ACG->4
//	ACT->4
//	4->5
//	GCT->5
//	GGT->5
//
// Distinct leaf labels get indices counting down from L-1 in order of first
// appearance. Edges may be listed in one or both directions. A node's slot
// order is the order in which its neighbors first appear.
//
// # Result Output
//
// Results are written as one block per co-optimal topology: the score, an
// "i->j" line for every adjacency slot, an "i->LABEL" line for every node,
// and a "-----" separator. [ReadResults] parses the same format.
//
// # Other Formats
//
//   - JSON ([WriteJSON], [ReadJSON]) is used for caching, the HTTP API and
//     --format json.
//   - Newick ([Newick], [ReadNewick]) goes through gotree. Exported branch
//     lengths are the Hamming distances between endpoint labels.
package io
