package matcher

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNoMatcher is returned when no registered matcher supports an invocation.
var ErrNoMatcher = errors.New("no matcher found")

// NoMatcherError describes the invocation nothing could handle.
type NoMatcherError struct {
	Name string
	Args int
}

func (e *NoMatcherError) Error() string {
	return fmt.Sprintf("no matcher found for %s with %d arguments", e.Name, e.Args)
}

func (e *NoMatcherError) Unwrap() error {
	return ErrNoMatcher
}

// Registry holds matchers in registration order. It is safe for concurrent
// use.
type Registry struct {
	mu       sync.RWMutex
	matchers []Matcher
}

// NewRegistry creates a registry holding ms in the given order.
func NewRegistry(ms ...Matcher) *Registry {
	r := &Registry{}
	for _, m := range ms {
		r.Register(m)
	}
	return r
}

// Default returns a registry with all built-in matchers.
func Default() *Registry {
	return NewRegistry(
		HaveJSONKeyWithValue{},
		HaveJSONKey{},
		BeValidJSON{},
		RangeBetween{},
	)
}

// Register appends m. Matchers registered earlier win priority ties.
func (r *Registry) Register(m Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = append(r.matchers, m)
}

// Matchers returns the registered matchers in registration order.
func (r *Registry) Matchers() []Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Matcher, len(r.matchers))
	copy(out, r.matchers)
	return out
}

// ByPriority returns the matchers in the order Find tries them: highest
// priority first, registration order among equals.
func (r *Registry) ByPriority() []Matcher {
	ms := r.Matchers()
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Priority() > ms[j].Priority()
	})
	return ms
}

// Names returns the distinct assertion names, sorted.
func (r *Registry) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range r.Matchers() {
		if !seen[m.Name()] {
			seen[m.Name()] = true
			names = append(names, m.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Find returns the matcher for inv: among the matchers whose Supports
// accepts it, the one with the highest priority, earliest registered first.
func (r *Registry) Find(inv Invocation) (Matcher, error) {
	for _, m := range r.ByPriority() {
		if m.Supports(inv) {
			return m, nil
		}
	}
	return nil, &NoMatcherError{Name: inv.Name, Args: len(inv.Args)}
}

// Match finds the matcher for inv and runs it with the given polarity.
func (r *Registry) Match(inv Invocation, p Polarity) (Result, error) {
	m, err := r.Find(inv)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(m, inv, p), nil
}
