// Package pkg provides the libraries behind the parsimony command.
//
// # Overview
//
// Parsimony finds the unrooted binary trees that explain a set of DNA
// strings with the fewest character changes. The pkg directory is organized
// into three areas:
//
//  1. Core: [tree], [parsimony] and [search] hold the algorithms
//  2. Formats: [io] reads and writes inputs and results, [render] draws them
//  3. Infrastructure: [pipeline], [cache], [store] and [observability]
//
// # Architecture
//
// The data flow through a search:
//
//	adjacency or Newick input
//	         ↓
//	    [io] package (parse into a tree and leaf labels)
//	         ↓
//	    [search] package (NNI hill-climb, candidates scored in parallel)
//	         ↓
//	    [parsimony] package (Sankoff small parsimony on an oriented [tree])
//	         ↓
//	    txt / json / newick / dot / svg / png output
//
// # Quick Start
//
//	in, _ := io.ReadAdjacencyFile("tree.txt")
//	m, _ := in.Matrix()
//	res, _ := search.New(m, search.Options{Workers: 4}).Run(ctx, in.Tree)
//	_ = io.WriteResult(os.Stdout, res)
//
// # Main Packages
//
// [tree] - Unrooted binary trees in compact adjacency form, rooted
// orientation, canonical keys and nearest-neighbor interchange.
//
// [parsimony] - Character matrices and the Sankoff dynamic program that
// labels internal nodes with minimum total Hamming cost.
//
// [search] - The large parsimony hill-climb and its worker pool.
//
// [io] - The adjacency input format, the text and JSON result formats and
// Newick.
//
// [verify] - Consistency checks for result files.
//
// [generate] - Random datasets for testing and benchmarking.
//
// [render/nodelink] - Graphviz DOT, SVG and PNG drawings of result trees.
//
// [pipeline] - Parse, search and render with caching, shared by the CLI and
// the HTTP server.
//
// [cache] - File, Redis and null caches keyed by content hash.
//
// [store] - Run records for the HTTP server in memory, files or MongoDB.
//
// [observability] - Hooks for metrics with a Prometheus implementation.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/search/...   # Specific package
//	go test -run Example ./... # Examples only
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/tree
// [parsimony]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/parsimony
// [search]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/search
// [io]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/io
// [verify]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/verify
// [generate]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/generate
// [render]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/parsimony/pkg/errors
package pkg
