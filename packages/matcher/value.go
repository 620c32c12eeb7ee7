package matcher

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// numericString is the decimal grammar accepted for numeric strings:
// optional sign, digits with an optional fraction, optional exponent,
// surrounding whitespace allowed.
var numericString = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)

// number is an integer or a float. Integers that do not fit int64 keep
// their canonical decimal digits in big, with f as an approximation.
type number struct {
	i     int64
	f     float64
	isInt bool
	big   string
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func (n number) isInteger() bool {
	return n.isInt || n.big != ""
}

func (n number) bigInt() *big.Int {
	if n.isInt {
		return big.NewInt(n.i)
	}
	b, _ := new(big.Int).SetString(n.big, 10)
	return b
}

func bigNumber(b *big.Int) number {
	f, _ := new(big.Float).SetInt(b).Float64()
	return number{f: f, big: b.String()}
}

func (n number) compare(o number) int {
	if n.isInt && o.isInt {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	if n.isInteger() && o.isInteger() {
		return n.bigInt().Cmp(o.bigInt())
	}
	a, b := n.float(), o.float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (n number) String() string {
	switch {
	case n.isInt:
		return strconv.FormatInt(n.i, 10)
	case n.big != "":
		return n.big
	}
	return formatFloat(n.f)
}

func parseNumber(s string) (number, bool) {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{i: i, isInt: true}, true
		}
		if b, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10); ok {
			return bigNumber(b), true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeErr(err) {
		return number{}, false
	}
	return number{f: f}, true
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// toNumber converts v to a number. Go integer and float kinds, json.Number
// and numeric strings are accepted; bools, nil and everything else are not.
func toNumber(v any) (number, bool) {
	switch t := v.(type) {
	case json.Number:
		return parseNumber(t.String())
	case string:
		if !numericString.MatchString(t) {
			return number{}, false
		}
		return parseNumber(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{i: rv.Int(), isInt: true}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return bigNumber(new(big.Int).SetUint64(u)), true
		}
		return number{i: int64(u), isInt: true}, true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return number{}, false
		}
		return number{f: f}, true
	}
	return number{}, false
}

// IsNumeric reports whether v is accepted by toNumber.
func IsNumeric(v any) bool {
	_, ok := toNumber(v)
	return ok
}

// normalize maps v onto nil, bool, number, string, []any or map[string]any.
// Numeric strings stay strings. Values of other types are round-tripped
// through encoding/json when possible.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool, string:
		return t
	case json.Number:
		if n, ok := parseNumber(t.String()); ok {
			return n
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	}

	if n, ok := toNumber(v); ok {
		return n
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return v
	}
	return normalize(decoded)
}

// Equal reports strict equality: both values must have the same kind
// (null, bool, integer, float, string, list or map) and the same content.
// An integer never equals a float and a number never equals a string.
func Equal(a, b any) bool {
	return equalNormalized(normalize(a), normalize(b))
}

func equalNormalized(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case number:
		y, ok := b.(number)
		if !ok || x.isInteger() != y.isInteger() {
			return false
		}
		if x.isInteger() {
			return x.compare(y) == 0
		}
		return x.f == y.f
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalNormalized(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, exists := y[k]
			if !exists || !equalNormalized(xv, yv) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Format renders v for failure messages. Strings are printed raw, numbers in
// their shortest form, structures as compact JSON.
func Format(v any) string {
	return formatNormalized(normalize(v))
}

// formatNumeric is Format with surrounding whitespace trimmed from numeric
// strings, for messages that print values as numbers.
func formatNumeric(v any) string {
	if s, ok := v.(string); ok && numericString.MatchString(s) {
		return strings.TrimSpace(s)
	}
	return Format(v)
}

func formatNormalized(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	case number:
		return t.String()
	case []any, map[string]any:
		data, err := json.Marshal(toPlain(t))
		if err != nil {
			break
		}
		return string(data)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return reflect.TypeOf(v).String()
	}
	return string(data)
}

// toPlain swaps number values for json.Number so structures marshal with
// the same digits Format prints for scalars.
func toPlain(v any) any {
	switch t := v.(type) {
	case number:
		return json.Number(t.String())
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toPlain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = toPlain(item)
		}
		return out
	}
	return v
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
