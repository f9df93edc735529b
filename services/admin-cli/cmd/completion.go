package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Генерировать скрипт автодополнения",
		Long: `Генерирует скрипт автодополнения для указанной оболочки.

Bash:
  $ source <(storybox completion bash)
  $ storybox completion bash > ~/.local/share/bash-completion/completions/storybox

Zsh:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ storybox completion zsh > "${fpath[1]}/_storybox"

Fish:
  $ storybox completion fish > ~/.config/fish/completions/storybox.fish

PowerShell:
  PS> storybox completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
