package matcher

import (
	"strings"

	"github.com/abdul-hamid-achik/hitmatch/packages/jsonutil"
)

const (
	HaveJSONKeyWithValueName = "haveJsonKeyWithValue"
	HaveJSONKeyName          = "haveJsonKey"
	BeValidJSONName          = "beValidJson"
)

const msgInvalidJSON = "the return value should be valid json"

// decodeSubject returns the decoded subject, or false when the subject is not
// JSON text. It is the single validity rule for both polarities.
func decodeSubject(subject any) (any, bool) {
	text, ok := jsonutil.Text(subject)
	if !ok || !jsonutil.IsValid(text) {
		return nil, false
	}
	doc, err := jsonutil.Decode(text)
	if err != nil {
		return nil, false
	}
	return doc, true
}

func isJSONSubject(subject any) bool {
	_, ok := decodeSubject(subject)
	return ok
}

// keyPath renders the first argument as a dotted key path.
func keyPath(args []any) string {
	return Format(args[0])
}

// walkPath descends doc one mapping level per path segment. Levels are
// 1-based. A segment fails when the current value is not a mapping or does
// not hold the key; numeric segments are plain keys, never list indexes.
func walkPath(doc any, path string) (any, Result) {
	current := doc
	for i, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, missingKey(key, i+1)
		}
		next, exists := m[key]
		if !exists {
			return nil, missingKey(key, i+1)
		}
		current = next
	}
	return current, Pass()
}

func missingKey(key string, level int) Result {
	return Fail(`the return value should contain key "%s" at level %d`, key, level)
}

// HaveJSONKeyWithValue checks that a JSON subject holds an exact value at a
// dotted key path. Args: key path, expected value.
type HaveJSONKeyWithValue struct{}

func (HaveJSONKeyWithValue) Name() string { return HaveJSONKeyWithValueName }

func (HaveJSONKeyWithValue) Priority() int { return 0 }

func (HaveJSONKeyWithValue) Supports(inv Invocation) bool {
	return inv.Name == HaveJSONKeyWithValueName && len(inv.Args) >= 2
}

func (HaveJSONKeyWithValue) PositiveMatch(inv Invocation) Result {
	doc, ok := decodeSubject(inv.Subject)
	if !ok {
		return Fail(msgInvalidJSON)
	}

	actual, res := walkPath(doc, keyPath(inv.Args))
	if !res.Passed {
		return res
	}

	expected := inv.Args[1]
	if !Equal(actual, expected) {
		return Fail(`the return value should contain value "%s" but got "%s"`, Format(expected), Format(actual))
	}
	return Pass()
}

func (m HaveJSONKeyWithValue) NegativeMatch(inv Invocation) Result {
	if !isJSONSubject(inv.Subject) {
		return Fail(msgInvalidJSON)
	}
	if !m.PositiveMatch(inv).Passed {
		return Pass()
	}
	return Fail(`the return value should not contain key "%s" with value "%s"`, keyPath(inv.Args), Format(inv.Args[1]))
}

// HaveJSONKey checks that a JSON subject contains a dotted key path.
// Args: key path.
type HaveJSONKey struct{}

func (HaveJSONKey) Name() string { return HaveJSONKeyName }

func (HaveJSONKey) Priority() int { return 0 }

func (HaveJSONKey) Supports(inv Invocation) bool {
	return inv.Name == HaveJSONKeyName && len(inv.Args) >= 1
}

func (HaveJSONKey) PositiveMatch(inv Invocation) Result {
	doc, ok := decodeSubject(inv.Subject)
	if !ok {
		return Fail(msgInvalidJSON)
	}
	_, res := walkPath(doc, keyPath(inv.Args))
	return res
}

func (m HaveJSONKey) NegativeMatch(inv Invocation) Result {
	if !isJSONSubject(inv.Subject) {
		return Fail(msgInvalidJSON)
	}
	if !m.PositiveMatch(inv).Passed {
		return Pass()
	}
	return Fail(`the return value should not contain key "%s"`, keyPath(inv.Args))
}

// BeValidJSON checks that the subject is syntactically valid JSON text.
type BeValidJSON struct{}

func (BeValidJSON) Name() string { return BeValidJSONName }

func (BeValidJSON) Priority() int { return 0 }

func (BeValidJSON) Supports(inv Invocation) bool {
	return inv.Name == BeValidJSONName && len(inv.Args) == 0
}

func (BeValidJSON) PositiveMatch(inv Invocation) Result {
	if !isJSONSubject(inv.Subject) {
		return Fail(msgInvalidJSON)
	}
	return Pass()
}

func (BeValidJSON) NegativeMatch(inv Invocation) Result {
	if isJSONSubject(inv.Subject) {
		return Fail("the return value should not be valid json")
	}
	return Pass()
}
