package matcher

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rangeInvocation(subject any, args ...any) Invocation {
	return Invocation{Name: RangeBetweenName, Subject: subject, Args: args}
}

func TestRangeBetween_Supports(t *testing.T) {
	m := RangeBetween{}

	tests := []struct {
		name string
		inv  Invocation
		want bool
	}{
		{"ints", rangeInvocation(5, 1, 10), true},
		{"floats", rangeInvocation(5, 1.5, 9.5), true},
		{"numeric strings", rangeInvocation(5, "1", " 1e1 "), true},
		{"json numbers", rangeInvocation(5, json.Number("1"), json.Number("10")), true},
		{"unsigned", rangeInvocation(5, uint8(1), uint64(10)), true},
		{"non-numeric lower bound", rangeInvocation(5, "one", 10), false},
		{"non-numeric upper bound", rangeInvocation(5, 1, "ten"), false},
		{"bool bound", rangeInvocation(5, true, 10), false},
		{"nil bound", rangeInvocation(5, nil, 10), false},
		{"one argument", rangeInvocation(5, 1), false},
		{"three arguments", rangeInvocation(5, 1, 10, 20), false},
		{"other name", Invocation{Name: "between", Subject: 5, Args: []any{1, 10}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Supports(tt.inv))
		})
	}
}

func TestRangeBetween_Match(t *testing.T) {
	tests := []struct {
		name     string
		subject  any
		lower    any
		upper    any
		inRange  bool
		positive string
		negative string
	}{
		{
			name:     "inside",
			subject:  5,
			lower:    1,
			upper:    10,
			inRange:  true,
			negative: "the return value 5 should not be in range 1-10",
		},
		{
			name:     "lower edge",
			subject:  1,
			lower:    1,
			upper:    10,
			inRange:  true,
			negative: "the return value 1 should not be in range 1-10",
		},
		{
			name:     "upper edge",
			subject:  10,
			lower:    1,
			upper:    10,
			inRange:  true,
			negative: "the return value 10 should not be in range 1-10",
		},
		{
			name:     "above",
			subject:  15,
			lower:    1,
			upper:    10,
			positive: "the return value 15 should be in range 1-10",
		},
		{
			name:     "below",
			subject:  0,
			lower:    1,
			upper:    10,
			positive: "the return value 0 should be in range 1-10",
		},
		{
			name:     "float subject",
			subject:  2.5,
			lower:    1,
			upper:    3,
			inRange:  true,
			negative: "the return value 2.5 should not be in range 1-3",
		},
		{
			name:     "float just above",
			subject:  10.01,
			lower:    1,
			upper:    10,
			positive: "the return value 10.01 should be in range 1-10",
		},
		{
			name:     "numeric string subject",
			subject:  "7",
			lower:    "5",
			upper:    9.5,
			inRange:  true,
			negative: "the return value 7 should not be in range 5-9.5",
		},
		{
			name:     "reversed bounds match nothing",
			subject:  5,
			lower:    10,
			upper:    1,
			positive: "the return value 5 should be in range 10-1",
		},
		{
			name:     "non-numeric subject",
			subject:  "abc",
			lower:    1,
			upper:    10,
			positive: "the return value abc should be in range 1-10",
		},
		{
			name:     "large integers",
			subject:  int64(9007199254740993),
			lower:    int64(9007199254740993),
			upper:    int64(9007199254740993),
			inRange:  true,
			negative: "the return value 9007199254740993 should not be in range 9007199254740993-9007199254740993",
		},
		{
			name:     "padded numeric string bounds",
			subject:  15,
			lower:    " 1 ",
			upper:    "\t10\n",
			positive: "the return value 15 should be in range 1-10",
		},
		{
			name:     "unsigned beyond int64",
			subject:  uint64(1<<63 + 1),
			lower:    uint64(1 << 63),
			upper:    json.Number("18446744073709551615"),
			inRange:  true,
			negative: "the return value 9223372036854775809 should not be in range 9223372036854775808-18446744073709551615",
		},
		{
			name:     "unsigned just above int64 bound",
			subject:  uint64(1 << 63),
			lower:    0,
			upper:    int64(math.MaxInt64),
			positive: "the return value 9223372036854775808 should be in range 0-9223372036854775807",
		},
	}

	m := RangeBetween{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := rangeInvocation(tt.subject, tt.lower, tt.upper)

			pos := m.PositiveMatch(inv)
			neg := m.NegativeMatch(inv)

			assert.Equal(t, tt.inRange, pos.Passed)
			assert.Equal(t, !tt.inRange, neg.Passed)
			assert.Equal(t, tt.positive, pos.Message)
			assert.Equal(t, tt.negative, neg.Message)
		})
	}
}
