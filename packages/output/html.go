package output

import (
	"html/template"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/metrics"
)

// HTMLReport is the data rendered by the report template.
type HTMLReport struct {
	Version   string
	Generated string
	Duration  time.Duration
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	Suites    []HTMLSuite
	Metrics   *metrics.Summary
}

type HTMLSuite struct {
	File  string
	Cases []HTMLCase
}

type HTMLCase struct {
	Name       string
	Line       int
	Assertion  string
	Subject    string
	Status     string
	SkipReason string
	Message    string
	Duration   time.Duration
}

// HTMLFormatter renders a standalone HTML page on Flush.
type HTMLFormatter struct {
	writer io.Writer
	report HTMLReport
}

type HTMLOption func(*HTMLFormatter)

func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{writer: os.Stdout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	suite := HTMLSuite{File: result.File}
	for _, r := range result.Results {
		c := HTMLCase{
			Name:      r.Name,
			Line:      r.Line,
			Assertion: assertion(r),
			Duration:  r.Duration,
		}

		switch {
		case r.Skipped:
			c.Status = "skipped"
			f.report.Skipped++
			if r.SkipReason != "filtered out" {
				c.SkipReason = r.SkipReason
			}
		case r.Passed:
			c.Status = "passed"
			f.report.Passed++
			c.Subject = formatValue(r.Subject, 300)
		default:
			c.Status = "failed"
			f.report.Failed++
			c.Subject = formatValue(r.Subject, 300)
			c.Message = failureText(r)
		}

		suite.Cases = append(suite.Cases, c)
	}
	f.report.Total += len(result.Results)
	f.report.Suites = append(f.report.Suites, suite)
}

func (f *HTMLFormatter) FormatError(err error) {}

func (f *HTMLFormatter) FormatHeader(version string) {
	f.report.Version = version
}

func (f *HTMLFormatter) SetMetrics(summary *metrics.Summary) {
	f.report.Metrics = summary
}

func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	f.report.Duration = totalDuration
	f.report.Generated = time.Now().Format("2006-01-02 15:04:05")
	return htmlReport.Execute(f.writer, f.report)
}

// percent is n as a share of total, for the status bar widths.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration": formatDuration,
	"percent":  percent,
}).Parse(htmlTemplate))

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>hitmatch report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; color: #1f2328; }
.bar { display: flex; height: 8px; border-radius: 4px; overflow: hidden; margin: 1rem 0; }
.bar .passed { background: #2da44e; } .bar .failed { background: #cf222e; } .bar .skipped { background: #bf8700; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #d0d7de; vertical-align: top; }
tr.passed td:first-child { border-left: 4px solid #2da44e; }
tr.failed td:first-child { border-left: 4px solid #cf222e; }
tr.skipped td:first-child { border-left: 4px solid #bf8700; }
code { font-size: .85em; word-break: break-all; }
.message { color: #cf222e; }
</style>
</head>
<body>
<h1>hitmatch {{.Version}}</h1>
<p>{{.Total}} cases: {{.Passed}} passed, {{.Failed}} failed, {{.Skipped}} skipped in {{duration .Duration}} ({{.Generated}})</p>
<div class="bar">
<div class="passed" style="width: {{printf "%.1f" (percent .Passed .Total)}}%"></div>
<div class="failed" style="width: {{printf "%.1f" (percent .Failed .Total)}}%"></div>
<div class="skipped" style="width: {{printf "%.1f" (percent .Skipped .Total)}}%"></div>
</div>
{{range .Suites}}{{$file := .File}}
<h2>{{.File}}</h2>
<table>
<thead><tr><th>Case</th><th>Assertion</th><th>Subject</th><th>Time</th></tr></thead>
<tbody>
{{range .Cases}}<tr class="{{.Status}}">
<td>{{.Name}}{{if .Line}}<br><small>{{$file}}:{{.Line}}</small>{{end}}</td>
<td><code>{{.Assertion}}</code>{{if .Message}}<div class="message">{{.Message}}</div>{{end}}{{if .SkipReason}}<div>skipped: {{.SkipReason}}</div>{{end}}</td>
<td><code>{{.Subject}}</code></td>
<td>{{duration .Duration}}</td>
</tr>
{{end}}</tbody>
</table>
{{end}}
{{with .Metrics}}{{if .Overall.Count}}
<h2>Evaluation timings</h2>
<table>
<thead><tr><th>Matcher</th><th>Count</th><th>p50</th><th>p95</th><th>p99</th><th>Max</th></tr></thead>
<tbody>
<tr><td>all</td><td>{{.Overall.Count}}</td><td>{{duration .Overall.P50}}</td><td>{{duration .Overall.P95}}</td><td>{{duration .Overall.P99}}</td><td>{{duration .Overall.Max}}</td></tr>
{{range .ByMatcher}}<tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{duration .P50}}</td><td>{{duration .P95}}</td><td>{{duration .P99}}</td><td>{{duration .Max}}</td></tr>
{{end}}</tbody>
</table>
{{end}}{{end}}
</body>
</html>
`
