// Package output provides formatters for displaying case results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output with a run id and timings
//   - JUnit: JUnit XML format for CI integration
//   - TAP: Test Anything Protocol format
//   - HTML: Standalone report page
//
// Each formatter implements the Formatter interface and can optionally
// implement Flushable for formats that accumulate results before output,
// and MetricsSink to receive evaluation timings.
package output
