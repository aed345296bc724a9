package pipeline

import (
	"bytes"
	"context"
	"fmt"

	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/render/nodelink"
	"github.com/matzehuels/parsimony/pkg/search"
)

// Render writes res in every requested format.
func Render(ctx context.Context, res *search.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, res, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat writes res in a single format. Text formats cover every
// topology; svg and png draw the topology at opts.Index.
func RenderFormat(ctx context.Context, res *search.Result, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTxt:
		if err := pio.WriteResult(&buf, res); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := pio.WriteJSON(&buf, res); err != nil {
			return nil, err
		}
	case FormatNewick:
		if err := pio.WriteNewick(&buf, res, opts.Lengths); err != nil {
			return nil, err
		}
	case FormatDOT:
		for _, topo := range res.Topologies {
			buf.WriteString(nodelink.ToDOT(topo, nodelink.Options{Detailed: opts.Detailed}))
		}
	case FormatSVG, FormatPNG:
		topo, err := Pick(res, opts.Index)
		if err != nil {
			return nil, err
		}
		dot := nodelink.ToDOT(topo, nodelink.Options{Detailed: opts.Detailed})
		if format == FormatSVG {
			return nodelink.RenderSVG(ctx, dot)
		}
		return nodelink.RenderPNG(ctx, dot)
	default:
		return nil, ValidateFormat(format)
	}
	return buf.Bytes(), nil
}

// Pick returns the topology at index i.
func Pick(res *search.Result, i int) (*search.Topology, error) {
	if i < 0 || i >= len(res.Topologies) {
		return nil, fmt.Errorf("topology index %d out of range (result has %d)", i, len(res.Topologies))
	}
	return res.Topologies[i], nil
}
