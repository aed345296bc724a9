package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parsimony/pkg/pipeline"
	"github.com/matzehuels/parsimony/pkg/verify"
)

// verifyCommand creates the verify command, which checks a result file
// against the input it was computed from.
func (c *CLI) verifyCommand() *cobra.Command {
	var against string

	cmd := &cobra.Command{
		Use:   "verify <input> <result>",
		Short: "Check a result file for consistency with its input",
		Long: `Verify checks that every tree in a result file is a valid binary tree whose
score equals the sum of Hamming distances along its edges, that all trees
share the reported score, and that their leaves are exactly the input's
leaves. With --against a second result for the same input must agree on
the score.`,
		Example: `  parsimony verify tree.txt result.txt
  parsimony verify tree.txt result.txt --against reference.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd.Context(), args[0], args[1], against)
		},
	}

	cmd.Flags().StringVar(&against, "against", "", "second result file that must agree on the score")

	return cmd
}

func (c *CLI) runVerify(ctx context.Context, input, resultPath, against string) error {
	in, err := pipeline.Parse(ctx, pipeline.Options{Input: input})
	if err != nil {
		return err
	}
	leaves := in.Labels[:in.Tree.Leaves]

	res, err := readResult(resultPath)
	if err != nil {
		return err
	}
	if err := verify.Result(res, leaves); err != nil {
		return fmt.Errorf("%s: %w", resultPath, err)
	}
	printSuccess("%s: %d %s with score %d", resultPath, len(res.Topologies), plural(len(res.Topologies), "tree", "trees"), res.Score)

	if against == "" {
		return nil
	}
	other, err := readResult(against)
	if err != nil {
		return err
	}
	if err := verify.Result(other, leaves); err != nil {
		return fmt.Errorf("%s: %w", against, err)
	}
	if err := verify.Compare(res, other); err != nil {
		return err
	}
	printSuccess("%s agrees (score %d)", against, other.Score)
	return nil
}
