package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parsimony/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated output formats
	detailed bool   // internal labels and edge distances in diagrams
	lengths  bool   // branch lengths in Newick output
	index    int    // topology drawn by svg and png
	noCache  bool   // disable the artifact cache
}

// renderCommand creates the render command, which converts a result file
// into other formats.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{formats: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <result>",
		Short: "Render a result file as Newick, DOT, SVG or PNG",
		Long: `Render reads a result file written by search (text or JSON) and writes it in
the requested formats. Text formats include every tree; svg and png draw
the tree selected by --index.`,
		Example: `  parsimony render result.txt --format svg -o tree.svg
  parsimony render result.json --format newick --lengths
  parsimony render result.txt --format dot,svg,png --detailed --index 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	f.StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s), comma-separated: "+sortedFormats())
	f.BoolVar(&opts.detailed, "detailed", false, "label internal nodes and edges in dot/svg/png")
	f.BoolVar(&opts.lengths, "lengths", false, "write branch lengths in Newick output")
	f.IntVar(&opts.index, "index", 0, "topology drawn by svg and png")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, path string, opts renderOpts) error {
	res, err := readResult(path)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Info("loaded result", "topologies", len(res.Topologies), "score", res.Score)

	popts := pipeline.Options{
		Formats:  parseFormats(opts.formats),
		Detailed: opts.detailed,
		Lengths:  opts.lengths,
		Index:    opts.index,
		Logger:   loggerFromContext(ctx),
	}
	if err := popts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	artifacts, _, _, err := runner.RenderWithCacheInfo(ctx, res, popts)
	if err != nil {
		return err
	}
	return writeArtifacts(stdout, artifacts, popts.Formats, opts.output, path)
}
