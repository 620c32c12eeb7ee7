package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
)

// TAPFormatter writes TAP version 13. Failed and errored cases carry a
// YAML diagnostic block.
type TAPFormatter struct {
	writer io.Writer
	points []tapPoint
}

type tapPoint struct {
	name       string
	passed     bool
	skipReason string
	skipped    bool
	diag       *tapDiagnostic
}

type tapDiagnostic struct {
	Message  string `yaml:"message"`
	Severity string `yaml:"severity"`
	Assert   string `yaml:"assert,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	At       string `yaml:"at"`
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		p := tapPoint{
			name:       r.Name,
			passed:     r.Passed,
			skipped:    r.Skipped,
			skipReason: r.SkipReason,
		}

		at := fmt.Sprintf("%s:%d", result.File, r.Line)
		switch {
		case r.Skipped:
		case r.Error != nil:
			p.diag = &tapDiagnostic{
				Message:  r.Error.Error(),
				Severity: "error",
				At:       at,
			}
		case !r.Passed:
			p.diag = &tapDiagnostic{
				Message:  r.Message,
				Severity: "fail",
				Assert:   assertion(r),
				Subject:  formatValue(r.Subject, 200),
				At:       at,
			}
		}

		f.points = append(f.points, p)
	}
}

func (f *TAPFormatter) FormatError(err error) {}

func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the plan and every test point.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	var b strings.Builder
	b.WriteString("TAP version 13\n")
	fmt.Fprintf(&b, "1..%d\n", len(f.points))

	for i, p := range f.points {
		n := i + 1
		switch {
		case p.skipped:
			reason := p.skipReason
			if reason == "" || reason == "filtered out" {
				reason = "SKIP"
			}
			fmt.Fprintf(&b, "ok %d - %s # SKIP %s\n", n, p.name, reason)
		case p.passed:
			fmt.Fprintf(&b, "ok %d - %s\n", n, p.name)
		default:
			fmt.Fprintf(&b, "not ok %d - %s\n", n, p.name)
			if p.diag != nil {
				if err := writeDiagnostic(&b, p.diag); err != nil {
					return err
				}
			}
		}
	}
	fmt.Fprintf(&b, "# time %s\n", totalDuration.Round(time.Millisecond))

	_, err := io.WriteString(f.writer, b.String())
	return err
}

// writeDiagnostic writes d as an indented YAML block between --- and ...
func writeDiagnostic(b *strings.Builder, d *tapDiagnostic) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding TAP diagnostic: %w", err)
	}
	b.WriteString("  ---\n")
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("  ...\n")
	return nil
}
