package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/metrics"
)

// JUnitReport is the <testsuites> root. Each suite file becomes one
// <testsuite> and each case one <testcase>.
type JUnitReport struct {
	XMLName    xml.Name        `xml:"testsuites"`
	Name       string          `xml:"name,attr,omitempty"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestSuites []JUnitSuite    `xml:"testsuite"`
}

type JUnitSuite struct {
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Errors    int         `xml:"errors,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      float64     `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitCase `xml:"testcase"`
}

type JUnitCase struct {
	Name       string          `xml:"name,attr"`
	ClassName  string          `xml:"classname,attr"`
	Time       float64         `xml:"time,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	Failure    *JUnitProblem   `xml:"failure,omitempty"`
	Error      *JUnitProblem   `xml:"error,omitempty"`
	Skipped    *JUnitProblem   `xml:"skipped,omitempty"`
}

// JUnitProblem is the body of a <failure>, <error> or <skipped> element.
type JUnitProblem struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitFormatter collects suites and writes one JUnit XML document on Flush.
type JUnitFormatter struct {
	writer  io.Writer
	suites  []JUnitSuite
	metrics *metrics.Summary
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	suite := JUnitSuite{
		Name:      result.File,
		Tests:     len(result.Results),
		Failures:  result.Failed,
		Skipped:   result.Skipped,
		Time:      result.Duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
		TestCases: make([]JUnitCase, 0, len(result.Results)),
	}

	class := className(result.File)
	for _, r := range result.Results {
		tc := JUnitCase{
			Name:      r.Name,
			ClassName: class,
			Time:      r.Duration.Seconds(),
			Properties: []JUnitProperty{
				{Name: "matcher", Value: r.Matcher},
				{Name: "negated", Value: strconv.FormatBool(r.Negated)},
				{Name: "line", Value: strconv.Itoa(r.Line)},
			},
		}

		switch {
		case r.Skipped:
			tc.Skipped = &JUnitProblem{Message: r.SkipReason}
		case r.Error != nil:
			suite.Errors++
			tc.Error = &JUnitProblem{
				Message: r.Error.Error(),
				Type:    "Error",
				Content: assertion(r),
			}
		case !r.Passed:
			tc.Failure = &JUnitProblem{
				Message: r.Message,
				Type:    "AssertionError",
				Content: fmt.Sprintf("%s\nsubject: %s\n", assertion(r), formatValue(r.Subject, 200)),
			}
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	f.suites = append(f.suites, suite)
}

// FormatError is a no-op; errors are reported on their test case.
func (f *JUnitFormatter) FormatError(err error) {}

func (f *JUnitFormatter) FormatHeader(version string) {}

// SetMetrics adds per-matcher p95 timings as report properties.
func (f *JUnitFormatter) SetMetrics(summary *metrics.Summary) {
	f.metrics = summary
}

func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	report := JUnitReport{
		Name:       "hitmatch",
		Time:       totalDuration.Seconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
		TestSuites: f.suites,
	}
	for _, s := range f.suites {
		report.Tests += s.Tests
		report.Failures += s.Failures
		report.Errors += s.Errors
		report.Skipped += s.Skipped
	}
	if f.metrics != nil {
		for _, s := range f.metrics.ByMatcher {
			report.Properties = append(report.Properties, JUnitProperty{
				Name:  "p95." + s.Name,
				Value: s.P95.String(),
			})
		}
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return err
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}

// className turns a suite path into a dotted JUnit class name:
// tests/api/users.hitmatch.yaml becomes tests.api.users.
func className(path string) string {
	path = filepath.ToSlash(filepath.Clean(path))
	base := filepath.Base(path)
	for _, ext := range []string{".hitmatch.yaml", ".hitmatch.yml", ".yaml", ".yml"} {
		if strings.HasSuffix(base, ext) {
			path = strings.TrimSuffix(path, ext)
			break
		}
	}
	path = strings.TrimPrefix(path, "./")
	return strings.ReplaceAll(path, "/", ".")
}
