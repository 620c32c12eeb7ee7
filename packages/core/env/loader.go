package env

import (
	"os"
	"strings"
)

// VarPrefix marks process environment variables that become suite variables.
const VarPrefix = "HITMATCH_VAR_"

// MergeVariables merges sources left to right; later sources win.
func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// LoadSystemEnv returns the process environment variables starting with
// prefix, keyed without it.
func LoadSystemEnv(prefix string) map[string]any {
	result := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, found := strings.Cut(e, "=")
		if !found || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		result[strings.TrimPrefix(key, prefix)] = value
	}
	return result
}
