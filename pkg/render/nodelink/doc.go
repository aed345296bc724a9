// Package nodelink renders phylogenetic topologies as node-link diagrams.
//
// # Overview
//
// A topology is unrooted, so the diagram is an undirected Graphviz graph.
// Leaves appear as rounded boxes named by their character strings; internal
// nodes appear as small circles named by their ids.
//
// # Usage
//
// Convert a topology to DOT, then render it:
//
//	dot := nodelink.ToDOT(topo, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: internal nodes also show their assigned labels and every
//     edge is annotated with the Hamming distance between its endpoints.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering, so no Graphviz installation is needed.
package nodelink
