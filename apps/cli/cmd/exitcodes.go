package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

// Exit codes for hitmatch CLI
const (
	// ExitSuccess indicates all cases passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more cases failed
	ExitTestFailure = 1

	// ExitParseError indicates a suite file parsing error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code for a failed command. A nil Err
// exits without printing anything.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsageError, Err: err}
}

func configError(err error) error {
	return &ExitError{Code: ExitConfigError, Err: err}
}

// minimumArgs is cobra.MinimumNArgs reporting a usage error.
func minimumArgs(n int) cobra.PositionalArgs {
	return func(c *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(c, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
