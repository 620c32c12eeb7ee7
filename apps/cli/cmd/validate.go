package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/parser"
	"github.com/abdul-hamid-achik/hitmatch/packages/matcher"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate suite files without evaluating them",
	Long: `Validate suite files for syntax errors and unknown assertions
without evaluating any case.

Examples:
  hitmatch validate users.hitmatch.yaml
  hitmatch validate ./suites/`,
	Args: minimumArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return usageError(err)
	}

	if len(files) == 0 {
		return usageError(noFilesError())
	}

	registry := matcher.Default()

	hasErrors := false
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}

		problems := checkCases(registry, f)
		for _, p := range problems {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s\n", p)
		}
		if len(problems) > 0 {
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if hasErrors {
		return &ExitError{Code: ExitParseError, Err: errors.New("validation failed")}
	}

	return nil
}

// checkCases reports cases no registered matcher can evaluate. Argument
// checks are skipped while an argument still holds a {{placeholder}},
// since its value is only known at run time.
func checkCases(registry *matcher.Registry, f *parser.File) []string {
	known := make(map[string]bool)
	for _, name := range registry.Names() {
		known[name] = true
	}

	var problems []string
	for _, c := range f.Cases {
		where := fmt.Sprintf("%s:%d", f.Path, c.Line)
		if !known[c.Assert] {
			problems = append(problems, fmt.Sprintf("%s: unknown assertion %q", where, c.Assert))
			continue
		}
		if hasPlaceholder(c.Args) {
			continue
		}
		if _, err := registry.Find(matcher.Invocation{Name: c.Assert, Args: c.Args}); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", where, err))
		}
	}
	return problems
}

func hasPlaceholder(args []any) bool {
	for _, a := range args {
		if s, ok := a.(string); ok && strings.Contains(s, "{{") {
			return true
		}
	}
	return false
}
