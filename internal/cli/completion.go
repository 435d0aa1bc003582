package cli

import "github.com/spf13/cobra"

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cyclesearch.

The script is written to stdout. To load it in the current shell:

  bash:       source <(cyclesearch completion bash)
  zsh:        source <(cyclesearch completion zsh)
  fish:       cyclesearch completion fish | source
  powershell: cyclesearch completion powershell | Out-String | Invoke-Expression

To load it in every session, save the output to your shell's completion
directory, e.g. ~/.config/fish/completions/cyclesearch.fish.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(output)
			case "zsh":
				return cmd.Root().GenZshCompletion(output)
			case "fish":
				return cmd.Root().GenFishCompletion(output, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(output)
			}
			return nil
		},
	}

	return cmd
}
