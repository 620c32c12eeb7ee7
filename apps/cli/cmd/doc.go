// Package cmd implements the hitmatch CLI commands using Cobra.
//
// Available commands:
//   - run: Evaluate the cases of suite files
//   - validate: Check suite files without evaluating them
//   - list: Display all cases defined in files
//   - matchers: Show the registered matchers
//   - init: Create a new hitmatch project with example files
//   - version: Show hitmatch version information
//
// The CLI supports flags for filtering, output formatting, parallel
// evaluation, and watch mode for development workflows.
package cmd
