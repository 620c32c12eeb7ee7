package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/config"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/env"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/parser"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/runner"
	"github.com/abdul-hamid-achik/hitmatch/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run assertion cases from suite files",
	Long: `Run assertion cases defined in *.hitmatch.yaml suite files.

Examples:
  hitmatch run users.hitmatch.yaml
  hitmatch run ./suites/ --tags smoke
  hitmatch run ./suites/ --name "user*" -o junit --output-file report.xml
  hitmatch run ./suites/ --db sqlite://./fixtures.db --var limit=10
  hitmatch run ./suites/ --watch`,
	Args: minimumArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFileFlag      string
	configFlag       string
	nameFlag         string
	tagsFlag         string
	verboseFlag      int
	quietFlag        bool
	bailFlag         bool
	noColorFlag      bool
	dryRunFlag       bool
	outputFlag       string
	outputFileFlag   string
	parallelFlag     bool
	concurrencyFlag  int
	watchFlag        bool
	dbFlag           string
	queryTimeoutFlag string
	varFlags         []string
)

func init() {
	// Core flags
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HITMATCH_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITMATCH_ENV_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HITMATCH_CONFIG", ""), "Path to config file (env: HITMATCH_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only cases matching name pattern (supports * prefix/suffix)")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("HITMATCH_TAGS", ""), "Run only cases with specified tags (comma-separated) (env: HITMATCH_TAGS)")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Set a variable (name=value), may be repeated")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("HITMATCH_QUIET", false), "Suppress all output except errors (env: HITMATCH_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITMATCH_NO_COLOR", false), "Disable colored output (env: HITMATCH_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HITMATCH_OUTPUT", "console"), "Output format: console, json, junit, tap, html (env: HITMATCH_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("HITMATCH_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HITMATCH_OUTPUT_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HITMATCH_BAIL", false), "Stop on first failure (env: HITMATCH_BAIL)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without evaluating")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("HITMATCH_PARALLEL", false), "Evaluate cases in parallel (env: HITMATCH_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("HITMATCH_CONCURRENCY", runner.DefaultConcurrency), "Number of concurrent cases when running in parallel (env: HITMATCH_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run cases")

	// Subject sources
	runCmd.Flags().StringVar(&dbFlag, "db", getEnvString("HITMATCH_DB", ""), "Default database for query subjects, e.g. sqlite://./app.db (env: HITMATCH_DB)")
	runCmd.Flags().StringVar(&queryTimeoutFlag, "query-timeout", getEnvString("HITMATCH_QUERY_TIMEOUT", "30s"), "Timeout for each subject query (env: HITMATCH_QUERY_TIMEOUT)")

	_ = runCmd.RegisterFlagCompletionFunc("output", completeOutputFormats)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// flagSet reports whether a flag was given on the command line or through
// its environment variable.
func flagSet(cmd *cobra.Command, name, envKey string) bool {
	if cmd.Flags().Changed(name) {
		return true
	}
	return envKey != "" && os.Getenv(envKey) != ""
}

// loadRunConfig merges the config file with the flags that were set.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, configError(fmt.Errorf("loading config: %w", err))
	}

	cli := &config.Config{}
	if flagSet(cmd, "output", "HITMATCH_OUTPUT") {
		format := strings.ToLower(outputFlag)
		if !slices.Contains(output.Names, format) {
			return nil, usageError(fmt.Errorf("unknown output format %q (use %s)", outputFlag, strings.Join(output.Names, ", ")))
		}
		cli.Reporters = []string{format}
	}
	if flagSet(cmd, "parallel", "HITMATCH_PARALLEL") {
		cli.Parallel = config.BoolPtr(parallelFlag)
	}
	if flagSet(cmd, "concurrency", "HITMATCH_CONCURRENCY") {
		if concurrencyFlag <= 0 {
			return nil, usageError(fmt.Errorf("--concurrency must be positive, got %d", concurrencyFlag))
		}
		cli.Concurrency = concurrencyFlag
	}
	if flagSet(cmd, "bail", "HITMATCH_BAIL") {
		cli.Bail = config.BoolPtr(bailFlag)
	}
	if verboseFlag > 0 {
		cli.Verbose = config.BoolPtr(true)
	}
	if flagSet(cmd, "no-color", "HITMATCH_NO_COLOR") {
		cli.NoColor = config.BoolPtr(noColorFlag)
	}
	if dbFlag != "" {
		cli.DB = dbFlag
	}
	if envFileFlag != "" {
		cli.EnvFile = envFileFlag
	}
	if flagSet(cmd, "query-timeout", "HITMATCH_QUERY_TIMEOUT") {
		d, err := time.ParseDuration(queryTimeoutFlag)
		if err != nil || d <= 0 {
			return nil, usageError(fmt.Errorf("invalid query timeout %q (use format like 30s, 1m, 500ms)", queryTimeoutFlag))
		}
		cli.QueryTimeout = int(d.Milliseconds())
	}

	merged := fileConfig.Merge(cli)
	if err := merged.Validate(); err != nil {
		return nil, configError(err)
	}
	return merged, nil
}

// overrideVariables collects variables that win over suite variables:
// the env file, HITMATCH_VAR_* and --var, in increasing precedence.
func overrideVariables(envFile string) (map[string]any, error) {
	var fromFile map[string]any
	if envFile != "" {
		vars, err := env.LoadDotEnv(envFile)
		if err != nil {
			return nil, configError(fmt.Errorf("loading env file: %w", err))
		}
		fromFile = vars
	}

	fromFlags := make(map[string]any, len(varFlags))
	for _, kv := range varFlags {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, usageError(fmt.Errorf("invalid --var %q (use name=value)", kv))
		}
		fromFlags[strings.TrimSpace(name)] = value
	}

	return env.MergeVariables(fromFile, env.LoadSystemEnv(env.VarPrefix), fromFlags), nil
}

func parseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// reportSet is the formatters of one run plus the files they write to.
type reportSet struct {
	formatters []output.Formatter
	files      []*os.File
}

var reportExtensions = map[string]string{
	"json":  ".json",
	"junit": ".xml",
	"tap":   ".tap",
	"html":  ".html",
}

// newReportSet builds one formatter per reporter. A single reporter writes
// to --output-file when given; with an output dir, file reporters write
// hitmatch-report.<ext> there. Everything else goes to stdout.
func newReportSet(cmd *cobra.Command, cfg *config.Config) (*reportSet, error) {
	rs := &reportSet{}

	reporters := cfg.Reporters
	if len(reporters) == 0 {
		reporters = []string{"console"}
	}

	for _, name := range reporters {
		var w io.Writer = cmd.OutOrStdout()

		switch {
		case outputFileFlag != "" && len(reporters) == 1:
			f, err := os.Create(outputFileFlag)
			if err != nil {
				rs.Close()
				return nil, fmt.Errorf("cannot create output file: %w", err)
			}
			rs.files = append(rs.files, f)
			w = f
		case cfg.OutputDir != "" && name != "console":
			if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
				rs.Close()
				return nil, fmt.Errorf("cannot create output dir: %w", err)
			}
			f, err := os.Create(filepath.Join(cfg.OutputDir, "hitmatch-report"+reportExtensions[name]))
			if err != nil {
				rs.Close()
				return nil, fmt.Errorf("cannot create output file: %w", err)
			}
			rs.files = append(rs.files, f)
			w = f
		case quietFlag && name == "console":
			w = io.Discard
		}

		formatter, err := output.New(name, output.Options{
			Writer:  w,
			Verbose: cfg.GetVerbose(),
			NoColor: cfg.GetNoColor() || quietFlag || outputFileFlag != "",
		})
		if err != nil {
			rs.Close()
			return nil, usageError(err)
		}
		rs.formatters = append(rs.formatters, formatter)
	}

	return rs, nil
}

func (rs *reportSet) header(v string) {
	for _, f := range rs.formatters {
		f.FormatHeader(v)
	}
}

func (rs *reportSet) result(r *runner.RunResult) {
	for _, f := range rs.formatters {
		f.FormatResult(r)
	}
}

func (rs *reportSet) reportError(err error) {
	for _, f := range rs.formatters {
		f.FormatError(err)
	}
}

func (rs *reportSet) flush(r *runner.Runner, total time.Duration) error {
	summary := r.Metrics().Summary()
	var errs []error
	for _, f := range rs.formatters {
		if sink, ok := f.(output.MetricsSink); ok {
			sink.SetMetrics(summary)
		}
		if flushable, ok := f.(output.Flushable); ok {
			if err := flushable.Flush(total); err != nil {
				errs = append(errs, fmt.Errorf("error writing output: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

func (rs *reportSet) Close() {
	for _, f := range rs.files {
		_ = f.Close()
	}
	rs.files = nil
}

// runTotals sums up one pass over all files.
type runTotals struct {
	passed      int
	failed      int
	skipped     int
	parseErrors int
	duration    time.Duration
}

func (t runTotals) exitError() error {
	switch {
	case t.parseErrors > 0:
		return &ExitError{Code: ExitParseError}
	case t.failed > 0:
		return &ExitError{Code: ExitTestFailure}
	}
	return nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	overrides, err := overrideVariables(cfg.EnvFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.NewRunner(&runner.Config{
		Verbose:      cfg.GetVerbose(),
		Bail:         cfg.GetBail(),
		NameFilter:   nameFlag,
		TagsFilter:   parseTags(tagsFlag),
		Parallel:     cfg.GetParallel(),
		Concurrency:  cfg.Concurrency,
		DB:           cfg.DB,
		QueryTimeout: time.Duration(cfg.QueryTimeout) * time.Millisecond,
		Variables:    cfg.Variables,
		Overrides:    overrides,
		WarnFunc: func(format string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
		},
	})
	defer r.Close()

	totals, err := runOnce(ctx, cmd, cfg, r, args)
	if err != nil {
		return err
	}

	if !watchFlag {
		return totals.exitError()
	}

	return watch(ctx, cmd, cfg, r, args)
}

// runOnce collects the files named by args and evaluates them all.
func runOnce(ctx context.Context, cmd *cobra.Command, cfg *config.Config, r *runner.Runner, args []string) (runTotals, error) {
	var totals runTotals

	rs, err := newReportSet(cmd, cfg)
	if err != nil {
		return totals, err
	}
	defer rs.Close()

	rs.header(version)

	files, err := collectFiles(args)
	if err != nil {
		rs.reportError(err)
		return totals, usageError(err)
	}
	if len(files) == 0 {
		return totals, usageError(noFilesError())
	}

	r.Metrics().Reset()
	start := time.Now()

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		if dryRunFlag {
			f, err := parser.ParseFile(file)
			if err != nil {
				reportParseError(cmd, rs, err)
				totals.parseErrors++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s (%d cases)\n", file, len(f.Cases))
			continue
		}

		result, err := r.RunFile(ctx, file)
		if err != nil {
			reportParseError(cmd, rs, err)
			totals.parseErrors++
			if cfg.GetBail() {
				break
			}
			continue
		}

		rs.result(result)
		totals.passed += result.Passed
		totals.failed += result.Failed
		totals.skipped += result.Skipped

		if cfg.GetBail() && result.Failed > 0 {
			break
		}
	}

	totals.duration = time.Since(start)
	if err := rs.flush(r, totals.duration); err != nil {
		return totals, err
	}
	return totals, nil
}

func reportParseError(cmd *cobra.Command, rs *reportSet, err error) {
	rs.reportError(err)
	if quietFlag {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
}

// isWatchedFile reports whether a change to path should trigger a re-run:
// suite files and the JSON documents subjects read from.
func isWatchedFile(path string) bool {
	return parser.IsSuiteFile(path) || strings.EqualFold(filepath.Ext(path), ".json")
}

func watch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, r *runner.Runner, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	addDir := func(dir string) {
		if watchedDirs[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to watch %s: %v\n", dir, err)
		}
		watchedDirs[dir] = true
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			addDir(filepath.Dir(arg))
			continue
		}
		_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				addDir(path)
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce: only the last event of a burst triggers a run.
	rerun := make(chan string, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isWatchedFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running cases...\n\n", name)
			if _, err := runOnce(ctx, cmd, cfg, r, args); err != nil {
				var exitErr *ExitError
				if !errors.As(err, &exitErr) || exitErr.Code == ExitUsageError {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}
