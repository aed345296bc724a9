package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parsimony/pkg/pipeline"
)

// File extensions offered when completing positional arguments.
var (
	inputExts  = []string{"txt", "nwk", "newick", "tree"}
	resultExts = []string{"txt", "json"}
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Completion writes a completion script for bash, zsh, fish or powershell.
Besides commands and flags, the scripts complete --format lists, --syntax
values, input trees for search and score, and result files for render,
browse and verify.`,
		Example: `  source <(parsimony completion bash)
  parsimony completion zsh > "${fpath[1]}/_parsimony"
  parsimony completion fish > ~/.config/fish/completions/parsimony.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	return cmd
}

// registerCompletions attaches argument and flag completions to the
// commands of root.
func registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		switch cmd.Name() {
		case "search", "score":
			cmd.ValidArgsFunction = completeFiles(1, inputExts)
		case "render", "browse":
			cmd.ValidArgsFunction = completeFiles(1, resultExts)
		case "verify":
			cmd.ValidArgsFunction = completeVerifyArgs
		}
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		}
		if cmd.Flags().Lookup("syntax") != nil {
			_ = cmd.RegisterFlagCompletionFunc("syntax", cobra.FixedCompletions(
				[]string{pipeline.SyntaxAdjacency, pipeline.SyntaxNewick}, cobra.ShellCompDirectiveNoFileComp))
		}
		if cmd.Flags().Lookup("against") != nil {
			_ = cmd.RegisterFlagCompletionFunc("against", completeFiles(-1, resultExts))
		}
	}
}

// completeFiles completes files with the given extensions while fewer than
// n arguments are present. A negative n never stops.
func completeFiles(n int, exts []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if n >= 0 && len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeVerifyArgs offers input trees first, then result files.
func completeVerifyArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return inputExts, cobra.ShellCompDirectiveFilterFileExt
	case 1:
		return resultExts, cobra.ShellCompDirectiveFilterFileExt
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes the last element of a comma-separated format
// list, skipping formats already listed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, last = toComplete[:i+1], toComplete[i+1:]
	}
	used := strings.Split(prefix, ",")

	var out []string
	for f := range pipeline.ValidFormats {
		if strings.HasPrefix(f, last) && !slices.Contains(used, f) {
			out = append(out, prefix+f)
		}
	}
	slices.Sort(out)
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
