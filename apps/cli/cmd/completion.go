package cmd

import (
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/parser"
	"github.com/abdul-hamid-achik/hitmatch/packages/output"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a completion script for hitmatch and print it to stdout.

  $ source <(hitmatch completion bash)
  $ hitmatch completion zsh > "${fpath[1]}/_hitmatch"
  $ hitmatch completion fish > ~/.config/fish/completions/hitmatch.fish
  PS> hitmatch completion powershell | Out-String | Invoke-Expression

Besides commands and flags, the scripts complete --output formats and
suite file names for run, list and validate.`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args: func(c *cobra.Command, args []string) error {
		if err := cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)(c, args); err != nil {
			return usageError(err)
		}
		return nil
	},
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

// completeSuiteFiles offers directories and files with a suite file
// extension. Shells filter on the last extension only.
func completeSuiteFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	exts := make([]string, len(parser.Extensions))
	for i, ext := range parser.Extensions {
		exts[i] = strings.TrimPrefix(filepath.Ext(ext), ".")
	}
	return exts, cobra.ShellCompDirectiveFilterFileExt
}

func completeOutputFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var formats []string
	for _, name := range output.Names {
		if strings.HasPrefix(name, toComplete) {
			formats = append(formats, name)
		}
	}
	return formats, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(completionCmd)

	runCmd.ValidArgsFunction = completeSuiteFiles
	listCmd.ValidArgsFunction = completeSuiteFiles
	validateCmd.ValidArgsFunction = completeSuiteFiles
}
