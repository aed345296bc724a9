// Package render turns search results into pictures.
//
// The [nodelink] subpackage draws a topology as an undirected node-link
// diagram through Graphviz. Leaves are shown with their character strings
// and internal nodes with their ids, optionally together with the labels
// the solver assigned them.
//
//	dot := nodelink.ToDOT(topo, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/parsimony/pkg/render/nodelink
package render
