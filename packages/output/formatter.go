package output

import (
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/matcher"
	"github.com/abdul-hamid-achik/hitmatch/packages/metrics"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// MetricsSink is implemented by formatters that report evaluation timings.
type MetricsSink interface {
	SetMetrics(summary *metrics.Summary)
}

// Options are shared by every formatter built through New.
type Options struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
}

// Names lists the formats accepted by New.
var Names = []string{"console", "json", "junit", "tap", "html"}

// New builds the formatter for a format name.
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "", "console":
		consoleOpts := []ConsoleOption{WithVerbose(opts.Verbose), WithNoColor(opts.NoColor)}
		if opts.Writer != nil {
			consoleOpts = append(consoleOpts, WithWriter(opts.Writer))
		}
		return NewConsoleFormatter(consoleOpts...), nil
	case "json":
		var jsonOpts []JSONOption
		if opts.Writer != nil {
			jsonOpts = append(jsonOpts, JSONWithWriter(opts.Writer))
		}
		return NewJSONFormatter(jsonOpts...), nil
	case "junit":
		var junitOpts []JUnitOption
		if opts.Writer != nil {
			junitOpts = append(junitOpts, JUnitWithWriter(opts.Writer))
		}
		return NewJUnitFormatter(junitOpts...), nil
	case "tap":
		var tapOpts []TAPOption
		if opts.Writer != nil {
			tapOpts = append(tapOpts, TAPWithWriter(opts.Writer))
		}
		return NewTAPFormatter(tapOpts...), nil
	case "html":
		var htmlOpts []HTMLOption
		if opts.Writer != nil {
			htmlOpts = append(htmlOpts, HTMLWithWriter(opts.Writer))
		}
		return NewHTMLFormatter(htmlOpts...), nil
	}
	return nil, fmt.Errorf("unknown output format %q (use console, json, junit, tap or html)", format)
}

// formatValue renders a subject or argument for display, truncated to maxLen.
func formatValue(v any, maxLen int) string {
	str := matcher.Format(v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

// assertion renders a case as it was written, e.g. "not rangeBetween(1, 5)".
func assertion(r *runner.CaseResult) string {
	s := r.Matcher + "("
	for i, a := range r.Args {
		if i > 0 {
			s += ", "
		}
		s += formatValue(a, 40)
	}
	s += ")"
	if r.Negated {
		return "not " + s
	}
	return s
}

// failureText is the message shown for a failed or errored case.
func failureText(r *runner.CaseResult) string {
	if r.Error != nil {
		return r.Error.Error()
	}
	return r.Message
}
