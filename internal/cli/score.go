package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/pipeline"
)

// scoreCommand creates the score command, which labels the input tree with
// Sankoff's algorithm without searching.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		syntax string
		labels bool
	)

	cmd := &cobra.Command{
		Use:   "score <input>",
		Short: "Score the input tree without searching",
		Long: `Score runs the small parsimony algorithm on the input tree and prints the
minimum number of character changes it needs. With --labels the labeled
tree is written in the result format instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScore(cmd.Context(), cmd.OutOrStdout(), args[0], syntax, labels)
		},
	}

	cmd.Flags().StringVar(&syntax, "syntax", "", "input syntax: adjacency or newick (default: detect)")
	cmd.Flags().BoolVar(&labels, "labels", false, "write the labeled tree instead of the score")

	return cmd
}

func (c *CLI) runScore(ctx context.Context, stdout io.Writer, input, syntax string, labels bool) error {
	prog := newProgress(loggerFromContext(ctx))
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	in, topo, err := runner.Score(ctx, pipeline.Options{Input: input, Syntax: syntax})
	if err != nil {
		return err
	}
	prog.done("scored input", "leaves", in.Tree.Leaves, "columns", len(in.Labels[0]), "score", topo.Score)

	if labels {
		return pio.WriteTopology(stdout, topo)
	}
	_, err = fmt.Fprintln(stdout, topo.Score)
	return err
}
