package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/hitmatch/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{name}}, {{$ENV}} and {{$func(args)}} placeholders.
// It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	warnFunc  WarnFunc
	funcs     *builtin.Registry
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		funcs:     builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called for unresolved placeholders.
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// lookup resolves one placeholder expression. The error is set only when
// a builtin function call fails.
func (r *Resolver) lookup(expr string) (any, bool, error) {
	if name, ok := strings.CutPrefix(expr, "$"); ok {
		if builtin.IsCall(name) {
			return r.funcs.Call(name)
		}
		val, ok := os.LookupEnv(name)
		return val, ok, nil
	}
	val, ok := r.GetVariable(expr)
	return val, ok, nil
}

// resolveExpr looks expr up and reports a miss through the warn func.
func (r *Resolver) resolveExpr(expr string) (any, bool) {
	val, ok, err := r.lookup(expr)
	switch {
	case err != nil:
		r.warn("%v", err)
		return nil, false
	case !ok:
		r.warn("unresolved variable: %s", expr)
	}
	return val, ok
}

// Resolve substitutes every placeholder in input. Unknown placeholders are
// left in place and reported through the warn func.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if val, ok := r.resolveExpr(expr); ok {
			return fmt.Sprintf("%v", val)
		}
		return match
	})
}

// ResolveValue resolves placeholders inside v. A string that is exactly one
// placeholder is replaced by the variable itself, keeping its type, so
// "{{limit}}" can stand for the number 10. Lists and mappings are resolved
// element by element.
func (r *Resolver) ResolveValue(v any) any {
	switch t := v.(type) {
	case string:
		if m := variablePattern.FindStringSubmatchIndex(t); m != nil && m[0] == 0 && m[1] == len(t) {
			expr := strings.TrimSpace(t[m[2]:m[3]])
			if val, ok := r.resolveExpr(expr); ok {
				return val
			}
			return t
		}
		return r.Resolve(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = r.ResolveValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = r.ResolveValue(item)
		}
		return out
	default:
		return v
	}
}

// Unresolved returns the placeholders in input that have no value.
func (r *Resolver) Unresolved(input string) []string {
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if _, ok, err := r.lookup(expr); !ok || err != nil {
			names = append(names, expr)
		}
	}
	return names
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	clone.warnFunc = r.warnFunc
	clone.funcs = r.funcs
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	return clone
}
