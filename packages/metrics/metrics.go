// Package metrics records how long assertion cases take to evaluate.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minTrackableUs = 1
	maxTrackableUs = 60_000_000
	sigFigs        = 3
)

// Outcome classifies a recorded case.
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Errored
)

// Recorder aggregates case timings overall and per matcher. It is safe for
// concurrent use.
type Recorder struct {
	mu        sync.Mutex
	overall   *bucket
	byMatcher map[string]*bucket
}

type bucket struct {
	histogram *hdrhistogram.Histogram
	passed    int64
	failed    int64
	errored   int64
}

func newBucket() *bucket {
	return &bucket{histogram: hdrhistogram.New(minTrackableUs, maxTrackableUs, sigFigs)}
}

func (b *bucket) record(us int64, outcome Outcome) {
	_ = b.histogram.RecordValue(us)
	switch outcome {
	case Passed:
		b.passed++
	case Failed:
		b.failed++
	default:
		b.errored++
	}
}

func NewRecorder() *Recorder {
	return &Recorder{
		overall:   newBucket(),
		byMatcher: make(map[string]*bucket),
	}
}

// Record adds one evaluated case. An empty matcher name is only counted in
// the overall totals.
func (r *Recorder) Record(matcher string, d time.Duration, outcome Outcome) {
	us := d.Microseconds()
	if us < minTrackableUs {
		us = minTrackableUs
	}
	if us > maxTrackableUs {
		us = maxTrackableUs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.overall.record(us, outcome)
	if matcher == "" {
		return
	}
	b, ok := r.byMatcher[matcher]
	if !ok {
		b = newBucket()
		r.byMatcher[matcher] = b
	}
	b.record(us, outcome)
}

// Stats is a point-in-time view of one bucket.
type Stats struct {
	Name    string        `json:"name,omitempty"`
	Count   int64         `json:"count"`
	Passed  int64         `json:"passed"`
	Failed  int64         `json:"failed"`
	Errored int64         `json:"errored"`
	P50     time.Duration `json:"p50"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
	Max     time.Duration `json:"max"`
	Mean    time.Duration `json:"mean"`
}

// Summary holds the overall stats and per-matcher stats sorted by name.
type Summary struct {
	Overall   Stats   `json:"overall"`
	ByMatcher []Stats `json:"byMatcher,omitempty"`
}

func (b *bucket) stats(name string) Stats {
	h := b.histogram
	s := Stats{
		Name:    name,
		Count:   h.TotalCount(),
		Passed:  b.passed,
		Failed:  b.failed,
		Errored: b.errored,
	}
	if s.Count == 0 {
		return s
	}
	s.P50 = time.Duration(h.ValueAtQuantile(50)) * time.Microsecond
	s.P95 = time.Duration(h.ValueAtQuantile(95)) * time.Microsecond
	s.P99 = time.Duration(h.ValueAtQuantile(99)) * time.Microsecond
	s.Max = time.Duration(h.Max()) * time.Microsecond
	s.Mean = time.Duration(h.Mean()) * time.Microsecond
	return s
}

func (r *Recorder) Summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := &Summary{Overall: r.overall.stats("")}
	for name, b := range r.byMatcher {
		summary.ByMatcher = append(summary.ByMatcher, b.stats(name))
	}
	sort.Slice(summary.ByMatcher, func(i, j int) bool {
		return summary.ByMatcher[i].Name < summary.ByMatcher[j].Name
	})
	return summary
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overall = newBucket()
	r.byMatcher = make(map[string]*bucket)
}
