package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphedit/pkg/graph"
)

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell. Node and edge ids are
completed from the saved graph.

  $ source <(` + appName + ` completion bash)
  $ ` + appName + ` completion zsh > "${fpath[1]}/_` + appName + `"
  $ ` + appName + ` completion fish > ~/.config/fish/completions/` + appName + `.fish
  PS> ` + appName + ` completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// =============================================================================
// Graph id completion
// =============================================================================

// savedGraph loads the graph completions are drawn from. Errors yield an
// empty graph so that a broken config never breaks the shell.
func (c *CLI) savedGraph(cmd *cobra.Command) graph.Graph {
	s, err := c.openSession(cmd)
	if err != nil {
		return graph.Graph{}
	}
	defer s.Close()
	g, _ := s.editor.Snapshot()
	return g
}

// nodeCandidates lists "id<TAB>label" for every node not in exclude.
func nodeCandidates(g graph.Graph, exclude []string) []string {
	var out []string
	for _, n := range g.Nodes {
		if !slices.Contains(exclude, n.ID) {
			out = append(out, n.ID+"\t"+n.DisplayLabel())
		}
	}
	return out
}

// edgeCandidates lists "id<TAB>source → target label" for every edge not
// in exclude.
func edgeCandidates(g graph.Graph, exclude []string) []string {
	var out []string
	for _, e := range g.Edges {
		if !slices.Contains(exclude, e.ID) {
			out = append(out, e.ID+"\t"+describeEdge(e)+" "+e.Label)
		}
	}
	return out
}

// completeNodeArgs completes the first n positional arguments with node ids.
func (c *CLI) completeNodeArgs(n int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return nodeCandidates(c.savedGraph(cmd), nil), cobra.ShellCompDirectiveNoFileComp
	}
}

// completeLabelArgs completes "label node|edge <id>".
func (c *CLI) completeLabelArgs(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return []string{"node", "edge"}, cobra.ShellCompDirectiveNoFileComp
	case 1:
		g := c.savedGraph(cmd)
		if args[0] == "edge" {
			return edgeCandidates(g, nil), cobra.ShellCompDirectiveNoFileComp
		}
		return nodeCandidates(g, nil), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerSelectionCompletion completes the repeatable --node and --edge
// flags, skipping ids already given.
func (c *CLI) registerSelectionCompletion(cmd *cobra.Command, nodeIDs, edgeIDs *[]string) {
	_ = cmd.RegisterFlagCompletionFunc("node", func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nodeCandidates(c.savedGraph(cmd), *nodeIDs), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("edge", func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return edgeCandidates(c.savedGraph(cmd), *edgeIDs), cobra.ShellCompDirectiveNoFileComp
	})
}
