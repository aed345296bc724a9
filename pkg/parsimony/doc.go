// Package parsimony solves the small parsimony problem on a fixed topology.
//
// Leaf labels are strings over {A, C, G, T}; each string position is an
// independent character column. For every column the [Solver] runs a Sankoff
// dynamic program with unit mismatch cost over a [tree.Rooted] tree and then
// backtracks an optimal symbol for every internal node. The topology score
// is the sum of the column scores.
//
//	m, _ := parsimony.NewMatrix([]string{"ACG", "ACT", "GCT", "GGT"})
//	s := parsimony.NewSolver()
//	score, labels, _ := s.Evaluate(t, m, nil)
//
// A Solver owns its dynamic programming tables and is reused across many
// topologies. It is not safe for concurrent use; give each goroutine its
// own.
package parsimony
