package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/opencode-sdk/cmd/ocsdk/cmdutil"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for ocsdk.

To load completions:

Bash:
  # Linux:
  $ ocsdk completion bash > /etc/bash_completion.d/ocsdk
  # macOS:
  $ ocsdk completion bash > $(brew --prefix)/etc/bash_completion.d/ocsdk

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ ocsdk completion zsh > "${fpath[1]}/_ocsdk"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ ocsdk completion fish > ~/.config/fish/completions/ocsdk.fish

PowerShell:
  PS> ocsdk completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	cmdutil.SkipConfig(completionCmd)
}
