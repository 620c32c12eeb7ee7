// Package runner executes hitmatch suite files.
//
// It provides functionality for:
//   - Running individual suite files
//   - Resolving subjects from literals, files and database queries
//   - Filtering cases by name, tag, skip and only markers
//   - Parallel evaluation with configurable concurrency
//   - Variable resolution
//
// Each case is dispatched to the matcher registry, which picks the
// matcher by assertion name and argument count.
package runner
