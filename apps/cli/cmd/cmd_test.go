package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default so tests do not leak
// state through the package-level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Name == "var" {
			varFlags = nil
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	code = execute(rootCmd)
	return out.String(), errOut.String(), code
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const passingSuite = `
variables:
  name: Ann
cases:
  - name: user name
    tags: [smoke]
    assert: haveJsonKeyWithValue
    subject: '{"user":{"name":"Ann"}}'
    args: [user.name, "{{name}}"]
  - name: in range
    assert: rangeBetween
    subject: 5
    args: [1, 10]
`

const failingSuite = `
cases:
  - name: out of range
    assert: rangeBetween
    subject: 50
    args: [1, 10]
`

func TestVersionCommand(t *testing.T) {
	out, _, code := runCLI(t, "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "hitmatch version dev")
}

func TestMatchersCommand(t *testing.T) {
	out, _, code := runCLI(t, "matchers")
	assert.Equal(t, ExitSuccess, code)
	for _, name := range []string{"haveJsonKeyWithValue", "haveJsonKey", "beValidJson", "rangeBetween"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "<min> <max>")
	assert.Contains(t, out, "Placeholder functions: base64, date,")
}

func TestRunCommand_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	passing := writeFile(t, dir, "pass.hitmatch.yaml", passingSuite)
	failing := writeFile(t, dir, "fail.hitmatch.yaml", failingSuite)
	broken := writeFile(t, dir, "broken.hitmatch.yaml", "cases:\n  - name: no assertion\n")
	badConfig := writeFile(t, dir, "bad.json", `{"concurrency": -2}`)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"all pass", []string{"run", "--no-color", passing}, ExitSuccess},
		{"failure", []string{"run", "--no-color", failing}, ExitTestFailure},
		{"parse error", []string{"run", "--no-color", broken}, ExitParseError},
		{"config error", []string{"run", "--config", badConfig, passing}, ExitConfigError},
		{"missing path", []string{"run", filepath.Join(dir, "nope")}, ExitUsageError},
		{"no args", []string{"run"}, ExitUsageError},
		{"unknown flag", []string{"run", "--frobnicate", passing}, ExitUsageError},
		{"unknown format", []string{"run", "-o", "xml", passing}, ExitUsageError},
		{"bad var", []string{"run", "--var", "novalue", passing}, ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, code := runCLI(t, tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRunCommand_ConsoleOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pass.hitmatch.yaml", passingSuite)
	writeFile(t, dir, "fail.hitmatch.yaml", failingSuite)
	writeFile(t, dir, "ignored.yaml", "not a suite")

	out, _, code := runCLI(t, "run", "--no-color", dir)
	assert.Equal(t, ExitTestFailure, code)
	assert.Contains(t, out, "hitmatch dev")
	assert.Contains(t, out, "✗ out of range")
	assert.Contains(t, out, "the return value 50 should be in range 1-10")
	assert.Contains(t, out, "2 passed")
	assert.NotContains(t, out, "ignored.yaml")
}

func TestRunCommand_Filters(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pass.hitmatch.yaml", passingSuite)

	out, _, code := runCLI(t, "run", "--no-color", "--tags", "smoke", path)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "1 passed, 1 skipped")

	out, _, code = runCLI(t, "run", "--no-color", "-n", "in*", path)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "1 passed, 1 skipped")
}

func TestRunCommand_VarOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pass.hitmatch.yaml", passingSuite)

	out, _, code := runCLI(t, "run", "--no-color", "--var", "name=Bob", path)
	assert.Equal(t, ExitTestFailure, code)
	assert.Contains(t, out, `the return value should contain value "Bob" but got "Ann"`)
}

func TestRunCommand_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pass.hitmatch.yaml", passingSuite)
	envFile := writeFile(t, dir, ".env", "name=Zed\n")

	_, _, code := runCLI(t, "run", "--no-color", "--env-file", envFile, path)
	assert.Equal(t, ExitTestFailure, code)

	_, _, code = runCLI(t, "run", "--env-file", filepath.Join(dir, "missing.env"), path)
	assert.Equal(t, ExitConfigError, code)
}

func TestRunCommand_JSONOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pass.hitmatch.yaml", passingSuite)
	report := filepath.Join(dir, "report.json")

	_, _, code := runCLI(t, "run", "-o", "json", "--output-file", report, "--parallel", path)
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(report)
	require.NoError(t, err)

	var parsed struct {
		RunID   string `json:"runId"`
		Summary struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
		} `json:"summary"`
		Metrics struct {
			Overall struct {
				Count int `json:"count"`
			} `json:"overall"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.NotEmpty(t, parsed.RunID)
	assert.Equal(t, 2, parsed.Summary.Total)
	assert.Equal(t, 2, parsed.Summary.Passed)
	assert.Equal(t, 2, parsed.Metrics.Overall.Count)
}

func TestRunCommand_ConfigReporters(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pass.hitmatch.yaml", passingSuite)
	reports := filepath.Join(dir, "reports")
	cfg := writeFile(t, dir, "cfg.json", `{"reporters":["console","junit","tap"],"outputDir":"`+filepath.ToSlash(reports)+`"}`)

	out, _, code := runCLI(t, "run", "--no-color", "--config", cfg, path)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "2 passed")

	junit, err := os.ReadFile(filepath.Join(reports, "hitmatch-report.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(junit), `<testsuites name="hitmatch"`)

	tap, err := os.ReadFile(filepath.Join(reports, "hitmatch-report.tap"))
	require.NoError(t, err)
	assert.Contains(t, string(tap), "1..2")
}

func TestRunCommand_QuietAndDryRun(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fail.hitmatch.yaml", failingSuite)

	out, _, code := runCLI(t, "run", "-q", path)
	assert.Equal(t, ExitTestFailure, code)
	assert.Empty(t, out)

	out, _, code = runCLI(t, "run", "--dry-run", path)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Would run: "+path+" (1 cases)")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.hitmatch.yaml", passingSuite)
	bad := writeFile(t, dir, "bad.hitmatch.yaml", `
cases:
  - assert: beAwesome
    subject: 1
  - assert: rangeBetween
    subject: 1
    args: [a, b]
  - assert: rangeBetween
    subject: 1
    args: ["{{lo}}", "{{hi}}"]
`)

	out, _, code := runCLI(t, "validate", good)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Valid: "+good)

	_, errOut, code := runCLI(t, "validate", bad)
	assert.Equal(t, ExitParseError, code)
	assert.Contains(t, errOut, `unknown assertion "beAwesome"`)
	assert.Contains(t, errOut, "no matcher found for rangeBetween with 2 arguments")
	assert.NotContains(t, errOut, ":9:")
}

func TestListCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pass.hitmatch.yaml", passingSuite)

	out, _, code := runCLI(t, "list", path)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "  - user name\n")
	assert.Contains(t, out, "assert: haveJsonKeyWithValue (literal subject, 2 args)")
	assert.Contains(t, out, "tags: smoke")
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	out, _, code := runCLI(t, "init", dir)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "hitmatch project initialized!")

	_, _, code = runCLI(t, "init", dir)
	assert.Equal(t, ExitTestFailure, code, "refuses to overwrite without --force")

	_, _, code = runCLI(t, "init", "--force", dir)
	assert.Equal(t, ExitSuccess, code)

	out, _, code = runCLI(t, "run", "--no-color", filepath.Join(dir, "example.hitmatch.yaml"))
	assert.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "4 passed")
}

func TestCompletionCommand(t *testing.T) {
	out, _, code := runCLI(t, "completion", "bash")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "hitmatch")

	_, _, code = runCLI(t, "completion", "tcsh")
	assert.Equal(t, ExitUsageError, code)
}

func TestCompleteOutputFormats(t *testing.T) {
	formats, directive := completeOutputFormats(runCmd, nil, "j")
	assert.Equal(t, []string{"json", "junit"}, formats)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	exts, _ := completeSuiteFiles(runCmd, nil, "")
	assert.Equal(t, []string{"yaml", "yml"}, exts)
}
