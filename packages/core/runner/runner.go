package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/env"
	"github.com/abdul-hamid-achik/hitmatch/packages/core/parser"
	"github.com/abdul-hamid-achik/hitmatch/packages/db"
	"github.com/abdul-hamid-achik/hitmatch/packages/matcher"
	"github.com/abdul-hamid-achik/hitmatch/packages/metrics"
)

const (
	// DefaultConcurrency is the default number of concurrent cases in parallel mode
	DefaultConcurrency = 5
)

type Runner struct {
	registry *matcher.Registry
	resolver *env.Resolver
	config   *Config
	metrics  *metrics.Recorder

	mu      sync.Mutex
	clients map[string]*db.Client
}

type Config struct {
	Verbose     bool
	Bail        bool
	NameFilter  string
	TagsFilter  []string
	Parallel    bool
	Concurrency int

	// Registry defaults to matcher.Default().
	Registry *matcher.Registry
	// DB is the connection used by query subjects that name none and
	// whose suite has no db entry.
	DB           string
	QueryTimeout time.Duration

	// Variables are visible to every suite; suite variables win over them.
	Variables map[string]any
	// Overrides win over suite variables (env file, HITMATCH_VAR_*).
	Overrides map[string]any

	WarnFunc env.WarnFunc
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}

	registry := cfg.Registry
	if registry == nil {
		registry = matcher.Default()
	}

	resolver := env.NewResolver()
	if cfg.WarnFunc != nil {
		resolver.SetWarnFunc(cfg.WarnFunc)
	} else {
		resolver.SetWarnFunc(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		})
	}
	resolver.SetVariables(cfg.Variables)

	return &Runner{
		registry: registry,
		resolver: resolver,
		config:   cfg,
		metrics:  metrics.NewRecorder(),
		clients:  make(map[string]*db.Client),
	}
}

// Metrics returns the recorder holding timings of every case run so far.
func (r *Runner) Metrics() *metrics.Recorder {
	return r.metrics
}

// Close releases database connections opened for query subjects.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for conn, client := range r.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", conn, err))
		}
	}
	r.clients = make(map[string]*db.Client)
	return errors.Join(errs...)
}

type RunResult struct {
	File     string
	Results  []*CaseResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
}

type CaseResult struct {
	Name       string
	Matcher    string
	Negated    bool
	Passed     bool
	Skipped    bool
	SkipReason string
	Message    string
	Subject    any
	Args       []any
	Duration   time.Duration
	Error      error
	Line       int
}

func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	file, err := parser.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return r.RunSuite(ctx, file)
}

// RunSuite evaluates every case of file. Results keep the order of the
// cases in the file.
func (r *Runner) RunSuite(ctx context.Context, file *parser.File) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		File:    file.Path,
		Results: make([]*CaseResult, len(file.Cases)),
	}

	resolver := r.resolver.Clone()
	resolver.SetVariables(file.Variables)
	resolver.SetVariables(r.config.Overrides)

	s := &suite{
		file:     file,
		baseDir:  filepath.Dir(file.Path),
		resolver: resolver,
	}

	hasOnly := false
	for _, c := range file.Cases {
		if c.Only {
			hasOnly = true
			break
		}
	}

	var pending []int
	for i, c := range file.Cases {
		if !r.shouldRun(c, hasOnly) {
			result.Results[i] = skipped(c, "filtered out")
			continue
		}
		if c.Skip != "" {
			result.Results[i] = skipped(c, c.Skip)
			continue
		}
		pending = append(pending, i)
	}

	if r.config.Parallel {
		r.runParallel(ctx, s, pending, result.Results)
	} else {
		for n, idx := range pending {
			if err := ctx.Err(); err != nil {
				for _, rest := range pending[n:] {
					result.Results[rest] = skipped(file.Cases[rest], "cancelled")
				}
				break
			}

			cr := r.runCase(ctx, s, file.Cases[idx])
			result.Results[idx] = cr

			if !cr.Passed && r.config.Bail {
				for _, rest := range pending[n+1:] {
					result.Results[rest] = skipped(file.Cases[rest], "bail: previous case failed")
				}
				break
			}
		}
	}

	for _, cr := range result.Results {
		switch {
		case cr.Skipped:
			result.Skipped++
		case cr.Passed:
			result.Passed++
		default:
			result.Failed++
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runParallel(ctx context.Context, s *suite, pending []int, results []*CaseResult) {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for _, idx := range pending {
		wg.Add(1)
		sem <- struct{}{} // acquire semaphore

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }() // release semaphore

			results[idx] = r.runCase(ctx, s, s.file.Cases[idx])
		}(idx)
	}

	wg.Wait()
}

func (r *Runner) shouldRun(c *parser.Case, hasOnly bool) bool {
	if hasOnly && !c.Only {
		return false
	}

	if r.config.NameFilter != "" {
		if c.Name == "" || !matchesPattern(c.Name, r.config.NameFilter) {
			return false
		}
	}

	if len(r.config.TagsFilter) > 0 {
		if !hasAnyTag(c.Tags, r.config.TagsFilter) {
			return false
		}
	}

	return true
}

func skipped(c *parser.Case, reason string) *CaseResult {
	return &CaseResult{
		Name:       c.DisplayName(),
		Matcher:    c.Assert,
		Negated:    c.Negate,
		Skipped:    true,
		SkipReason: reason,
		Line:       c.Line,
	}
}

func (r *Runner) runCase(ctx context.Context, s *suite, c *parser.Case) *CaseResult {
	result := &CaseResult{
		Name:    c.DisplayName(),
		Matcher: c.Assert,
		Negated: c.Negate,
		Line:    c.Line,
	}

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		outcome := metrics.Passed
		switch {
		case result.Error != nil:
			outcome = metrics.Errored
		case !result.Passed:
			outcome = metrics.Failed
		}
		r.metrics.Record(c.Assert, result.Duration, outcome)
	}()

	subject, err := r.resolveSubject(ctx, s, c.Subject)
	if err != nil {
		result.Error = fmt.Errorf("resolving subject: %w", err)
		return result
	}
	result.Subject = subject

	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		args[i] = s.resolver.ResolveValue(a)
	}
	result.Args = args

	polarity := matcher.Positive
	if c.Negate {
		polarity = matcher.Negative
	}

	res, err := r.registry.Match(matcher.Invocation{
		Name:    c.Assert,
		Subject: subject,
		Args:    args,
	}, polarity)
	if err != nil {
		result.Error = err
		return result
	}

	result.Passed = res.Passed
	result.Message = res.Message
	return result
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if pattern[0] == '*' && pattern[len(pattern)-1] == '*' && len(pattern) > 1 {
		substr := pattern[1 : len(pattern)-1]
		for i := 0; i <= len(name)-len(substr); i++ {
			if name[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}

	if pattern[0] == '*' {
		suffix := pattern[1:]
		return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
	}

	if pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}

	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
