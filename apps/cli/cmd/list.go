package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/parser"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List all cases in suite files",
	Long: `List all cases defined in *.hitmatch.yaml suite files.

Examples:
  hitmatch list users.hitmatch.yaml
  hitmatch list ./suites/`,
	Args: minimumArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return usageError(err)
	}

	if len(files) == 0 {
		return usageError(noFilesError())
	}

	parseErrors := 0
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			parseErrors++
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, c := range f.Cases {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", c.DisplayName())

			assertion := c.Assert
			if c.Negate {
				assertion = "not " + assertion
			}
			fmt.Fprintf(cmd.OutOrStdout(), "    assert: %s (%s subject, %d args)\n", assertion, c.Subject.Kind, len(c.Args))
			if len(c.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %s\n", strings.Join(c.Tags, ", "))
			}
			if c.Skip != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    skip: %s\n", c.Skip)
			}
			if c.Only {
				fmt.Fprintf(cmd.OutOrStdout(), "    only\n")
			}
		}
	}

	if parseErrors > 0 {
		return &ExitError{Code: ExitParseError}
	}
	return nil
}
