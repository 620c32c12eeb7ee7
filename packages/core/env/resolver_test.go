package env

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve(t *testing.T) {
	t.Setenv("HITMATCH_TEST_HOST", "example.com")

	r := NewResolver()
	r.SetVariables(map[string]any{"name": "Ann", "limit": 10})

	tests := []struct {
		input string
		want  string
	}{
		{"hello {{name}}", "hello Ann"},
		{"{{ name }}", "Ann"},
		{"limit={{limit}}", "limit=10"},
		{"https://{{$HITMATCH_TEST_HOST}}/x", "https://example.com/x"},
		{"{{missing}}", "{{missing}}"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Resolve(tt.input), tt.input)
	}
}

func TestResolver_ResolveValueKeepsType(t *testing.T) {
	r := NewResolver()
	r.SetVariables(map[string]any{"limit": 10, "ratio": 0.5, "name": "Ann"})

	assert.Equal(t, 10, r.ResolveValue("{{limit}}"))
	assert.Equal(t, 0.5, r.ResolveValue("{{ ratio }}"))
	assert.Equal(t, "max 10", r.ResolveValue("max {{limit}}"))
	assert.Equal(t, "{{nope}}", r.ResolveValue("{{nope}}"))
	assert.Equal(t, 42, r.ResolveValue(42))
	assert.Equal(t,
		[]any{10, "Ann", map[string]any{"n": "Ann"}},
		r.ResolveValue([]any{"{{limit}}", "{{name}}", map[string]any{"n": "{{name}}"}}),
	)
}

func TestResolver_Warnings(t *testing.T) {
	r := NewResolver()
	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	r.Resolve("{{a}} and {{b}}")
	assert.Equal(t, []string{"unresolved variable: a", "unresolved variable: b"}, warnings)
}

func TestResolver_Unresolved(t *testing.T) {
	r := NewResolver()
	r.SetVariable("foo", "bar")

	assert.Empty(t, r.Unresolved("{{foo}}"))
	assert.Equal(t, []string{"bar", "$HITMATCH_SURELY_UNSET"}, r.Unresolved("{{foo}} {{bar}} {{$HITMATCH_SURELY_UNSET}}"))
}

func TestResolver_Clone(t *testing.T) {
	r := NewResolver()
	r.SetVariable("a", 1)

	clone := r.Clone()
	clone.SetVariable("a", 2)

	v, _ := r.GetVariable("a")
	assert.Equal(t, 1, v)
	v, _ = clone.GetVariable("a")
	assert.Equal(t, 2, v)
}

func TestResolver_ConcurrentAccess(t *testing.T) {
	r := NewResolver()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.SetVariable(fmt.Sprintf("v%d", i), i)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Resolve("{{v1}}")
		}()
	}
	wg.Wait()

	v, ok := r.GetVariable("v9")
	assert.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestResolver_BuiltinFunctions(t *testing.T) {
	r := NewResolver()
	var warnings []string
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	assert.Equal(t, 4, r.ResolveValue("{{$random(4, 4)}}"))
	assert.Equal(t, "token aGk=", r.Resolve("token {{$base64(hi)}}"))
	assert.IsType(t, int64(0), r.ResolveValue("{{ $timestamp() }}"))
	assert.Empty(t, warnings)

	assert.Equal(t, "{{$random(9, 1)}}", r.ResolveValue("{{$random(9, 1)}}"))
	assert.Equal(t, []string{"random(): max 1 is below min 9"}, warnings)

	warnings = nil
	assert.Equal(t, "{{$nosuch()}}", r.Resolve("{{$nosuch()}}"))
	assert.Equal(t, []string{"unresolved variable: $nosuch()"}, warnings)
}
