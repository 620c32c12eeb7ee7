package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/matcher"
	"github.com/abdul-hamid-achik/hitmatch/packages/metrics"
	"github.com/google/uuid"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID    string           `json:"runId"`
	Summary  JSONSummary      `json:"summary"`
	Tests    []JSONTest       `json:"tests"`
	Metrics  *metrics.Summary `json:"metrics,omitempty"`
	Duration float64          `json:"duration"`
	Time     string           `json:"time"`
}

// JSONSummary represents the test summary
type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONTest represents a single case result
type JSONTest struct {
	Name       string  `json:"name"`
	File       string  `json:"file"`
	Line       int     `json:"line,omitempty"`
	Matcher    string  `json:"matcher"`
	Negated    bool    `json:"negated,omitempty"`
	Passed     bool    `json:"passed"`
	Skipped    bool    `json:"skipped,omitempty"`
	SkipReason string  `json:"skipReason,omitempty"`
	Duration   float64 `json:"duration"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
	Subject    string  `json:"subject,omitempty"`
	Args       []any   `json:"args,omitempty"`
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer  io.Writer
	runID   string
	results []JSONTest
	metrics *metrics.Summary
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		runID:   uuid.NewString(),
		results: make([]JSONTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithRunID replaces the generated run id.
func JSONWithRunID(id string) JSONOption {
	return func(f *JSONFormatter) {
		f.runID = id
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		test := JSONTest{
			Name:     r.Name,
			File:     result.File,
			Line:     r.Line,
			Matcher:  r.Matcher,
			Negated:  r.Negated,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: float64(r.Duration.Microseconds()) / 1000,
			Message:  r.Message,
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			test.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			test.Error = r.Error.Error()
		}

		if !r.Skipped {
			test.Subject = matcher.Format(r.Subject)
			if len(r.Args) > 0 {
				test.Args = make([]any, len(r.Args))
				for i, a := range r.Args {
					test.Args[i] = jsonValue(a)
				}
			}
		}

		f.results = append(f.results, test)
	}
}

// jsonValue keeps scalars as they are and renders anything encoding/json
// cannot handle as text.
func jsonValue(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return matcher.Format(v)
	}
	return v
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual test results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

func (f *JSONFormatter) SetMetrics(summary *metrics.Summary) {
	f.metrics = summary
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		if t.Skipped {
			skipped++
		} else if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	output := JSONOutput{
		RunID: f.runID,
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Tests:    f.results,
		Metrics:  f.metrics,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
