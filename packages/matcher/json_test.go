package matcher

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func jsonKeyInvocation(subject any, args ...any) Invocation {
	return Invocation{Name: HaveJSONKeyWithValueName, Subject: subject, Args: args}
}

func TestHaveJSONKeyWithValue_Supports(t *testing.T) {
	m := HaveJSONKeyWithValue{}

	assert.True(t, m.Supports(jsonKeyInvocation(`{}`, "a", 1)))
	assert.True(t, m.Supports(jsonKeyInvocation(`{}`, "a", 1, "extra")))
	assert.False(t, m.Supports(jsonKeyInvocation(`{}`, "a")))
	assert.False(t, m.Supports(jsonKeyInvocation(`{}`)))
	assert.False(t, m.Supports(Invocation{Name: "haveJsonKey", Subject: `{}`, Args: []any{"a", 1}}))
	assert.Equal(t, 0, m.Priority())
}

func TestHaveJSONKeyWithValue_PositiveMatch(t *testing.T) {
	subject := `{"user":{"name":"Ann","age":30,"score":9.5,"active":true,"nick":null,"tags":["a","b"],"0":"zero"}}`

	tests := []struct {
		name    string
		subject any
		path    any
		value   any
		passed  bool
		message string
	}{
		{
			name:    "nested string",
			subject: subject,
			path:    "user.name",
			value:   "Ann",
			passed:  true,
		},
		{
			name:    "missing key at level 2",
			subject: subject,
			path:    "user.email",
			value:   "x",
			message: `the return value should contain key "email" at level 2`,
		},
		{
			name:    "missing key at level 1",
			subject: subject,
			path:    "account.id",
			value:   1,
			message: `the return value should contain key "account" at level 1`,
		},
		{
			name:    "integer",
			subject: subject,
			path:    "user.age",
			value:   30,
			passed:  true,
		},
		{
			name:    "integer does not equal numeric string",
			subject: subject,
			path:    "user.age",
			value:   "30",
			message: `the return value should contain value "30" but got "30"`,
		},
		{
			name:    "integer does not equal float",
			subject: subject,
			path:    "user.age",
			value:   30.0,
			message: `the return value should contain value "30" but got "30"`,
		},
		{
			name:    "float",
			subject: subject,
			path:    "user.score",
			value:   9.5,
			passed:  true,
		},
		{
			name:    "bool",
			subject: subject,
			path:    "user.active",
			value:   true,
			passed:  true,
		},
		{
			name:    "null",
			subject: subject,
			path:    "user.nick",
			value:   nil,
			passed:  true,
		},
		{
			name:    "list value",
			subject: subject,
			path:    "user.tags",
			value:   []string{"a", "b"},
			passed:  true,
		},
		{
			name:    "list value in different order",
			subject: subject,
			path:    "user.tags",
			value:   []any{"b", "a"},
			message: `the return value should contain value "["b","a"]" but got "["a","b"]"`,
		},
		{
			name:    "numeric key is a mapping key",
			subject: subject,
			path:    "user.0",
			value:   "zero",
			passed:  true,
		},
		{
			name:    "list is not traversed",
			subject: subject,
			path:    "user.tags.0",
			value:   "a",
			message: `the return value should contain key "0" at level 3`,
		},
		{
			name:    "scalar is not traversed",
			subject: subject,
			path:    "user.name.first",
			value:   "Ann",
			message: `the return value should contain key "first" at level 3`,
		},
		{
			name:    "wrong value",
			subject: subject,
			path:    "user.name",
			value:   "Bob",
			message: `the return value should contain value "Bob" but got "Ann"`,
		},
		{
			name:    "object value",
			subject: `{"a":{"b":{"c":1}}}`,
			path:    "a.b",
			value:   map[string]any{"c": 1},
			passed:  true,
		},
		{
			name:    "non-string path is formatted",
			subject: `{"5":"five"}`,
			path:    5,
			value:   "five",
			passed:  true,
		},
		{
			name:    "bytes subject",
			subject: []byte(`{"a":1}`),
			path:    "a",
			value:   1,
			passed:  true,
		},
		{
			name:    "raw message subject",
			subject: json.RawMessage(`{"a":"b"}`),
			path:    "a",
			value:   "b",
			passed:  true,
		},
		{
			name:    "invalid json",
			subject: "not json",
			path:    "a",
			value:   1,
			message: "the return value should be valid json",
		},
		{
			name:    "non-text subject",
			subject: 42,
			path:    "a",
			value:   1,
			message: "the return value should be valid json",
		},
		{
			name:    "top-level list",
			subject: `[1,2]`,
			path:    "0",
			value:   1,
			message: `the return value should contain key "0" at level 1`,
		},
	}

	m := HaveJSONKeyWithValue{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.PositiveMatch(jsonKeyInvocation(tt.subject, tt.path, tt.value))
			assert.Equal(t, tt.passed, result.Passed, "Message: %s", result.Message)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}

func TestHaveJSONKeyWithValue_NegativeMatch(t *testing.T) {
	subject := `{"user":{"name":"Ann"}}`
	m := HaveJSONKeyWithValue{}

	t.Run("present value fails", func(t *testing.T) {
		result := m.NegativeMatch(jsonKeyInvocation(subject, "user.name", "Ann"))
		assert.False(t, result.Passed)
		assert.Equal(t, `the return value should not contain key "user.name" with value "Ann"`, result.Message)
	})

	t.Run("other value passes", func(t *testing.T) {
		result := m.NegativeMatch(jsonKeyInvocation(subject, "user.name", "Bob"))
		assert.True(t, result.Passed)
		assert.Empty(t, result.Message)
	})

	t.Run("missing key passes", func(t *testing.T) {
		result := m.NegativeMatch(jsonKeyInvocation(subject, "user.age", 30))
		assert.True(t, result.Passed)
	})

	t.Run("invalid json fails", func(t *testing.T) {
		result := m.NegativeMatch(jsonKeyInvocation("not json", "a", 1))
		assert.False(t, result.Passed)
		assert.Equal(t, "the return value should be valid json", result.Message)
	})
}

func TestHaveJSONKey(t *testing.T) {
	m := HaveJSONKey{}
	subject := `{"user":{"name":"Ann"}}`

	assert.True(t, m.Supports(Invocation{Name: HaveJSONKeyName, Args: []any{"user"}}))
	assert.False(t, m.Supports(Invocation{Name: HaveJSONKeyName}))

	assert.True(t, m.PositiveMatch(Invocation{Name: HaveJSONKeyName, Subject: subject, Args: []any{"user.name"}}).Passed)

	result := m.PositiveMatch(Invocation{Name: HaveJSONKeyName, Subject: subject, Args: []any{"user.age"}})
	assert.Equal(t, `the return value should contain key "age" at level 2`, result.Message)

	result = m.NegativeMatch(Invocation{Name: HaveJSONKeyName, Subject: subject, Args: []any{"user.name"}})
	assert.Equal(t, `the return value should not contain key "user.name"`, result.Message)

	assert.True(t, m.NegativeMatch(Invocation{Name: HaveJSONKeyName, Subject: subject, Args: []any{"user.age"}}).Passed)
	assert.False(t, m.NegativeMatch(Invocation{Name: HaveJSONKeyName, Subject: "{", Args: []any{"a"}}).Passed)
}

func TestBeValidJSON(t *testing.T) {
	m := BeValidJSON{}

	assert.True(t, m.Supports(Invocation{Name: BeValidJSONName}))
	assert.False(t, m.Supports(Invocation{Name: BeValidJSONName, Args: []any{"x"}}))

	assert.True(t, m.PositiveMatch(Invocation{Subject: `{"a":1}`}).Passed)
	assert.Equal(t, "the return value should be valid json", m.PositiveMatch(Invocation{Subject: "{"}).Message)

	assert.True(t, m.NegativeMatch(Invocation{Subject: "{"}).Passed)
	assert.Equal(t, "the return value should not be valid json", m.NegativeMatch(Invocation{Subject: `[]`}).Message)
}

// deeplyNested returns {"a":{"a":...1...}} nested depth levels deep, beyond
// what the decoder accepts.
func deeplyNested(depth int) string {
	return strings.Repeat(`{"a":`, depth) + "1" + strings.Repeat("}", depth)
}

func TestJSONMatchers_UndecodableSubjectFailsBothPolarities(t *testing.T) {
	subjects := map[string]string{
		"nested beyond decoder limit": deeplyNested(10001),
		"invalid utf-8 in string":     "{\"a\":\"\xff\"}",
		"invalid utf-8 in key":        "{\"\xff\":1}",
	}

	for name, subject := range subjects {
		t.Run(name, func(t *testing.T) {
			for _, m := range []Matcher{HaveJSONKeyWithValue{}, HaveJSONKey{}} {
				inv := Invocation{Name: m.Name(), Subject: subject, Args: []any{"a", 1}}

				pos := m.PositiveMatch(inv)
				assert.False(t, pos.Passed, m.Name())
				assert.Equal(t, msgInvalidJSON, pos.Message, m.Name())

				neg := m.NegativeMatch(inv)
				assert.False(t, neg.Passed, m.Name())
				assert.Equal(t, msgInvalidJSON, neg.Message, m.Name())
			}

			valid := BeValidJSON{}
			assert.Equal(t, msgInvalidJSON, valid.PositiveMatch(Invocation{Subject: subject}).Message)
			assert.True(t, valid.NegativeMatch(Invocation{Subject: subject}).Passed)
		})
	}
}
