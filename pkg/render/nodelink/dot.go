package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/parsimony/pkg/parsimony"
	"github.com/matzehuels/parsimony/pkg/search"
)

// MaxLabelWidth is the number of characters of a label shown in a node
// before it is shortened with an ellipsis.
const MaxLabelWidth = 24

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed shows internal node labels and edge distances.
	// When false, internal nodes only show their id.
	Detailed bool
}

// ToDOT converts a labeled topology to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(topo *search.Topology, opts Options) string {
	t := topo.Tree
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("score %d", topo.Score))
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  node [fontname=\"monospace\", fontsize=14];\n")
	buf.WriteString("  edge [fontsize=12, fontcolor=grey40];\n")
	buf.WriteString("\n")

	for v := 0; v < t.N(); v++ {
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(fmtAttrs(topo, v, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges() {
		if opts.Detailed && len(topo.Labels) == t.N() {
			d := parsimony.Hamming(topo.Labels[e[0]], topo.Labels[e[1]])
			fmt.Fprintf(&buf, "  %d -- %d [label=\"%d\"];\n", e[0], e[1], d)
			continue
		}
		fmt.Fprintf(&buf, "  %d -- %d;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(topo *search.Topology, v int, detailed bool) []string {
	if topo.Tree.IsLeaf(v) {
		return []string{
			fmt.Sprintf("label=%q", shorten(topo.Labels[v])),
			"shape=box", "style=\"rounded,filled\"", "fillcolor=white",
		}
	}
	label := strconv.Itoa(v)
	if detailed && v < len(topo.Labels) {
		label += "\n" + shorten(topo.Labels[v])
	}
	attrs := []string{fmt.Sprintf("label=%q", label), "style=filled", "fillcolor=lightgrey"}
	if !detailed {
		attrs = append(attrs, "shape=circle")
	}
	return attrs
}

func shorten(label string) string {
	if len(label) <= MaxLabelWidth {
		return label
	}
	return label[:MaxLabelWidth-3] + "..."
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
