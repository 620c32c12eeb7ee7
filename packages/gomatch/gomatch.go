// Package gomatch exposes the registered matchers as gomega matchers:
//
//	g := gomega.NewWithT(t)
//	g.Expect(body).To(gomatch.HaveJSONKeyWithValue("user.name", "Ann"))
//	g.Expect(count).NotTo(gomatch.RangeBetween(1, 10))
//
// When a subject fails in both polarities (for instance a JSON matcher given
// text that is not JSON), Match returns an error so that To and NotTo both
// fail.
package gomatch

import (
	"errors"

	"github.com/abdul-hamid-achik/hitmatch/packages/matcher"
	"github.com/onsi/gomega/types"
)

var defaultRegistry = matcher.Default()

type namedMatcher struct {
	registry *matcher.Registry
	name     string
	args     []any
}

// Named returns a gomega matcher for any assertion in the default registry.
func Named(name string, args ...any) types.GomegaMatcher {
	return NamedIn(defaultRegistry, name, args...)
}

// NamedIn is Named against a caller-supplied registry.
func NamedIn(r *matcher.Registry, name string, args ...any) types.GomegaMatcher {
	return &namedMatcher{registry: r, name: name, args: args}
}

// HaveJSONKeyWithValue succeeds when the JSON text holds value at the dotted path.
func HaveJSONKeyWithValue(path string, value any) types.GomegaMatcher {
	return Named(matcher.HaveJSONKeyWithValueName, path, value)
}

// HaveJSONKey succeeds when the JSON text contains the dotted key path.
func HaveJSONKey(path string) types.GomegaMatcher {
	return Named(matcher.HaveJSONKeyName, path)
}

// BeValidJSON succeeds when the actual value is valid JSON text.
func BeValidJSON() types.GomegaMatcher {
	return Named(matcher.BeValidJSONName)
}

// RangeBetween succeeds when the actual number lies in [lower, upper].
func RangeBetween(lower, upper any) types.GomegaMatcher {
	return Named(matcher.RangeBetweenName, lower, upper)
}

func (n *namedMatcher) invocation(actual any) matcher.Invocation {
	return matcher.Invocation{Name: n.name, Subject: actual, Args: n.args}
}

func (n *namedMatcher) Match(actual any) (bool, error) {
	inv := n.invocation(actual)
	m, err := n.registry.Find(inv)
	if err != nil {
		return false, err
	}

	pos := m.PositiveMatch(inv)
	if pos.Passed {
		return true, nil
	}
	if neg := m.NegativeMatch(inv); !neg.Passed {
		return false, errors.New(neg.Message)
	}
	return false, nil
}

func (n *namedMatcher) FailureMessage(actual any) string {
	return n.message(actual, matcher.Positive)
}

func (n *namedMatcher) NegatedFailureMessage(actual any) string {
	return n.message(actual, matcher.Negative)
}

func (n *namedMatcher) message(actual any, p matcher.Polarity) string {
	result, err := n.registry.Match(n.invocation(actual), p)
	if err != nil {
		return err.Error()
	}
	return result.Message
}
