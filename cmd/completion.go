package cmd

import (
	"github.com/spf13/cobra"

	"github.com/derickschaefer/pitwall/internal/model"
)

// completionCmd wraps Cobra's built-in shell completion generator.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for pitwall.

  # bash
  source <(pitwall completion bash)

  # zsh
  source <(pitwall completion zsh)

  # fish
  pitwall completion fish | source

Dimension names after --set complete as well.`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		default:
			return cmd.Help()
		}
	},
}

// completeSetFlag offers "dimension=" prefixes for --set.
func completeSetFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(model.AllDimensions))
	for _, d := range model.AllDimensions {
		out = append(out, string(d)+"=")
	}
	return out, cobra.ShellCompDirectiveNoSpace
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
