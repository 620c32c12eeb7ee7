package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/builtin"
	"github.com/abdul-hamid-achik/hitmatch/packages/matcher"
	"github.com/spf13/cobra"
)

var matchersCmd = &cobra.Command{
	Use:   "matchers",
	Short: "List the registered matchers",
	Long: `List the matchers a suite can name in "assert", in the order the
registry tries them (highest priority first), followed by the functions
available in {{$name(args)}} placeholders.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-8s %s\n", "NAME", "PRIORITY", "ARGUMENTS")
		for _, m := range matcher.Default().ByPriority() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-8d %s\n", m.Name(), m.Priority(), matcherUsage[m.Name()])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nPlaceholder functions: %s\n", strings.Join(builtin.NewRegistry().Names(), ", "))
	},
}

var matcherUsage = map[string]string{
	matcher.HaveJSONKeyWithValueName: "<key.path> <expected value>",
	matcher.HaveJSONKeyName:          "<key.path>",
	matcher.BeValidJSONName:          "(none)",
	matcher.RangeBetweenName:         "<min> <max>",
}
