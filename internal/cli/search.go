package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parsimony/pkg/pipeline"
)

// tableWidth bounds the Newick column of the result table.
const tableWidth = 72

// searchOpts holds the command-line flags for the search command.
type searchOpts struct {
	output        string // output file (single format) or base path (multiple)
	formats       string // comma-separated output formats
	syntax        string // input syntax: adjacency, newick or empty to detect
	workers       int    // scoring goroutines (0 = config or NumCPU)
	maxFrontier   int    // frontier size limit (0 = config or unlimited)
	maxIterations int    // iteration limit (0 = config or unlimited)
	noCache       bool   // disable the result cache
	refresh       bool   // ignore cached results but store the fresh one
	detailed      bool   // internal labels and edge distances in diagrams
	lengths       bool   // branch lengths in Newick output
	index         int    // topology drawn by svg and png
	quiet         bool   // suppress the summary
}

// searchCommand creates the search command, which runs the large parsimony
// search on an input topology.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search <input>",
		Short: "Find the most parsimonious trees reachable from an input tree",
		Long: `Search scores the input tree, then repeatedly applies every nearest-neighbor
interchange to the best trees found so far until no move improves the
score. All trees sharing the final score are written.

The input is either an adjacency file (a leaf count, then "u->v" edges with
DNA strings as leaf endpoints) or a Newick tree whose leaf names are DNA
strings.`,
		Example: `  parsimony search tree.txt
  parsimony search tree.txt --format txt,newick,svg -o out/tree
  parsimony search tree.txt --workers 8 --max-frontier 1000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s), comma-separated: "+sortedFormats()+" (default txt)")
	f.StringVar(&opts.syntax, "syntax", "", "input syntax: adjacency or newick (default: detect)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "scoring goroutines (default: number of CPUs)")
	f.IntVar(&opts.maxFrontier, "max-frontier", 0, "fail when more than N co-optimal trees are held (0 = unlimited)")
	f.IntVar(&opts.maxIterations, "max-iterations", 0, "stop after N iterations (0 = unlimited)")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached results and search again")
	f.BoolVar(&opts.detailed, "detailed", false, "label internal nodes and edges in dot/svg/png")
	f.BoolVar(&opts.lengths, "lengths", false, "write branch lengths in Newick output")
	f.IntVar(&opts.index, "index", 0, "topology drawn by svg and png")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the summary")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, stdout io.Writer, input string, opts searchOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Input:         input,
		Syntax:        opts.syntax,
		Workers:       firstNonZero(opts.workers, c.Config.Workers),
		MaxFrontier:   firstNonZero(opts.maxFrontier, c.Config.MaxFrontier),
		MaxIterations: firstNonZero(opts.maxIterations, c.Config.MaxIterations),
		Refresh:       opts.refresh,
		Formats:       parseFormats(opts.formats),
		Detailed:      opts.detailed,
		Lengths:       opts.lengths,
		Index:         opts.index,
		Logger:        loggerFromContext(ctx),
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Reading %s...", input))
	restore := trackSearch(spinner)
	if !opts.quiet {
		spinner.Start()
	}
	result, err := runner.Execute(ctx, popts)
	restore()
	spinner.Stop()
	if err != nil {
		return err
	}

	if !opts.quiet {
		res := result.Search
		printSuccess("Found %d %s with score %d", len(res.Topologies), plural(len(res.Topologies), "tree", "trees"), res.Score)
		printStats(result.Stats.Leaves, result.Stats.Columns, result.CacheInfo.SearchHit)
		printSummary(res)
		fmt.Fprintln(statusOut, resultTable(res, tableWidth))
	}
	return writeArtifacts(stdout, result.Artifacts, popts.Formats, opts.output, input)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
