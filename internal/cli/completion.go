package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowtower/pkg/flow/layering"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/identity"
)

// completionCommand prints a completion script for the given shell.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Print a shell completion script",
		Long: `Print a shell completion script for flowtower.

  source <(flowtower completion bash)
  flowtower completion zsh > "${fpath[1]}/_flowtower"
  flowtower completion fish > ~/.config/fish/completions/flowtower.fish
  flowtower completion powershell | Out-String | Invoke-Expression

Completion covers commands, flags, and the values of --layout, --mode,
--direction and --format.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return root.GenBashCompletionV2(out, true)
			}
		},
	}
}

// completeValues registers a fixed value list for each flag that cmd has.
func completeValues(cmd *cobra.Command, values map[string][]string) {
	for flag, vals := range values {
		if cmd.Flags().Lookup(flag) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(vals, cobra.ShellCompDirectiveNoFileComp))
	}
}

// flowFlagValues lists the completions shared by the flow commands.
func flowFlagValues() map[string][]string {
	strategies := make([]string, 0, 3)
	for _, s := range layering.Strategies() {
		strategies = append(strategies, s.String())
	}
	return map[string][]string{
		"layout":    strategies,
		"mode":      {identity.ModeAccount.String(), identity.ModeEntity.String()},
		"direction": {graph.DirectionTopDown, graph.DirectionLeftRight},
		"format":    {"svg", "png", "dot", "json"},
	}
}
