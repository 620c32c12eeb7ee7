package matcher

import "fmt"

// Invocation is one named assertion call as handed over by the host.
type Invocation struct {
	Name    string
	Subject any
	Args    []any
}

// Result is the outcome of a single match.
type Result struct {
	Passed  bool
	Message string
}

// Pass returns a passing result.
func Pass() Result {
	return Result{Passed: true}
}

// Fail returns a failing result with a formatted message.
func Fail(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Polarity selects between the "should" and "should not" form of an assertion.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func (p Polarity) String() string {
	if p == Negative {
		return "negative"
	}
	return "positive"
}

// Matcher decides pass/fail for the assertions it supports. Implementations
// hold no mutable state and may be called concurrently.
type Matcher interface {
	// Name is the assertion name the matcher answers to.
	Name() string
	// Supports reports whether the matcher can evaluate inv.
	Supports(inv Invocation) bool
	PositiveMatch(inv Invocation) Result
	NegativeMatch(inv Invocation) Result
	// Priority orders candidates when several support the same invocation.
	// Higher values are tried first.
	Priority() int
}

// Evaluate runs the match selected by polarity.
func Evaluate(m Matcher, inv Invocation, p Polarity) Result {
	if p == Negative {
		return m.NegativeMatch(inv)
	}
	return m.PositiveMatch(inv)
}
