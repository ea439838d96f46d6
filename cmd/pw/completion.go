package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script for your shell",
	Long: `To load completions:

Bash:
  $ source <(pw completion bash)

  # To load for each session (Linux):
  $ pw completion bash > ~/.local/share/bash-completion/completions/pw

  # To load for each session (macOS with Homebrew):
  $ pw completion bash > $(brew --prefix)/etc/bash_completion.d/pw

Zsh:
  # Ensure completion is enabled:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # Generate completion:
  $ pw completion zsh > ~/.zsh/completions/_pw
  # (create ~/.zsh/completions if needed, add to fpath in .zshrc)

Fish:
  $ pw completion fish > ~/.config/fish/completions/pw.fish

PowerShell:
  PS> pw completion powershell >> $PROFILE

Dynamic completion (keys and users):
  Keys of unencrypted databases are always completed. For encrypted
  databases set PW_COMPLETION_ENABLED=1; GPG files are then decrypted
  through gpg-agent and sealed files need PW_PASSPHRASE.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	// Register dynamic completion functions for commands
	registerCompletionFunctions()
}
