package builtin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRegistry() *Registry {
	r := NewRegistry()
	r.now = func() time.Time { return time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC) }
	return r
}

func TestRegistry_Call(t *testing.T) {
	r := fixedRegistry()

	tests := []struct {
		expr string
		want any
	}{
		{"now()", "2024-03-05T10:30:00Z"},
		{"date()", "2024-03-05"},
		{"date('02/01/2006')", "05/03/2024"},
		{"timestamp()", int64(1709634600)},
		{"timestampMs()", int64(1709634600000)},
		{"base64(hello)", "aGVsbG8="},
		{"md5('')", "d41d8cd98f00b204e9800998ecf8427e"},
		{"sha256(abc)", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"upper(\"a, b\")", "A, B"},
		{"lower(ABC)", "abc"},
		{"len(héllo)", 5},
		{"random(3, 3)", 3},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok, err := r.Call(tt.expr)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_CallUUID(t *testing.T) {
	v, ok, err := NewRegistry().Call("uuid()")
	require.NoError(t, err)
	require.True(t, ok)
	_, parseErr := uuid.Parse(v.(string))
	assert.NoError(t, parseErr)
}

func TestRegistry_CallErrors(t *testing.T) {
	r := NewRegistry()

	_, ok, err := r.Call("nope()")
	assert.False(t, ok)
	assert.NoError(t, err)

	_, ok, err = r.Call("not a call")
	assert.False(t, ok)
	assert.NoError(t, err)

	_, ok, err = r.Call("random(a, 2)")
	assert.True(t, ok)
	assert.EqualError(t, err, `random(): min argument "a" is not a valid integer`)

	_, _, err = r.Call("random(5, 1)")
	assert.EqualError(t, err, "random(): max 1 is below min 5")

	_, _, err = r.Call("base64()")
	assert.EqualError(t, err, "base64(): expects 1 argument, got 0")
}

func TestRandomInRange(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 100; i++ {
		v, _, err := r.Call("random(1, 6)")
		require.NoError(t, err)
		n := v.(int)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 6)
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("answer", func([]string) (any, error) { return 42, nil })
	v, ok, err := r.Call("answer()")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Contains(t, r.Names(), "answer")
}

func TestIsCall(t *testing.T) {
	assert.True(t, IsCall("uuid()"))
	assert.True(t, IsCall(" random(1, 2) "))
	assert.False(t, IsCall("HOME"))
}
