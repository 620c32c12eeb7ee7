package jsonutil

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// Text returns the JSON text held by v. Only string, []byte and
// json.RawMessage carry JSON text; anything else reports false.
func Text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case json.RawMessage:
		return string(t), true
	default:
		return "", false
	}
}

// IsValid reports whether text is syntactically valid JSON. Text that is not
// valid UTF-8 is rejected.
func IsValid(text string) bool {
	return utf8.ValidString(text) && gjson.Valid(text)
}

// Decode decodes valid JSON text into maps, slices and scalars. Numbers are
// returned as json.Number so callers can tell 30 from 30.0.
func Decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decoding json: unexpected data after top-level value")
	}
	return v, nil
}

// Lookup extracts the value at a dotted path from JSON text. Bracket indexes
// such as items[0].id are accepted. An empty path returns the whole document.
func Lookup(text, path string) (any, bool) {
	if !IsValid(text) {
		return nil, false
	}
	path = gjsonPath(path)
	if path == "" {
		return gjson.Parse(text).Value(), true
	}
	result := gjson.Get(text, path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// LookupRaw is like Lookup but returns the JSON text of the value found,
// so objects and arrays stay documents and numbers keep their digits.
func LookupRaw(text, path string) (string, bool) {
	if !IsValid(text) {
		return "", false
	}
	path = gjsonPath(path)
	if path == "" {
		return strings.TrimSpace(text), true
	}
	result := gjson.Get(text, path)
	if !result.Exists() {
		return "", false
	}
	return result.Raw, true
}

// gjsonPath rewrites items[0].id as items.0.id.
func gjsonPath(path string) string {
	return strings.TrimPrefix(bracketIndex.ReplaceAllString(path, ".$1"), ".")
}
