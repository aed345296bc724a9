// Package search implements the large parsimony search: a hill climb over
// nearest-neighbor interchanges with plateau preservation.
//
// # Algorithm
//
// The search keeps a frontier of topologies that share the best score found
// so far. Every iteration scores all NNI neighbors of every frontier member
// and keeps those scoring at most best-1, reduced to the lowest score among
// them. If any survive they become the new frontier; otherwise the search
// stops and returns the frontier it just expanded. The result therefore
// trails the expanded frontier by one iteration, and the last expansion only
// confirms that no neighbor improves on it.
//
// The best-1 threshold means only strictly better neighbors are accepted.
// Ties with the current best never extend the frontier.
//
// # Parallelism
//
// Candidate scoring runs on a [Pool]. Each worker owns its orienter, solver
// tables and buffers, so scoring needs no locks. The frontier is merged on
// the calling goroutine after the whole batch has finished, in candidate
// order, so the result does not depend on the worker count.
//
// # Usage
//
//	s := search.New(matrix, search.Options{Workers: 8, Logger: logger})
//	res, err := s.Run(ctx, initial)
//	fmt.Println(res.Score, len(res.Topologies))
package search
