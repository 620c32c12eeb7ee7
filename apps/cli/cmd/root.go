package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "hitmatch",
	Short: "Named assertion matchers, checked from plain YAML suites.",
	Long: `hitmatch evaluates assertion cases written in YAML suite files.
Each case names a matcher such as haveJsonKeyWithValue or rangeBetween,
a subject (a literal, a JSON file or a database query) and the matcher's
arguments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(execute(rootCmd))
}

// execute runs c and maps the returned error to an exit code.
func execute(c *cobra.Command) int {
	err := c.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(c.ErrOrStderr(), "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(c.ErrOrStderr(), "Error: %v\n", err)
	return ExitTestFailure
}

func init() {
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError(fmt.Errorf("%w\n\n%s", err, c.UsageString()))
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(matchersCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
