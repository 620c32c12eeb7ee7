package builtin

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func computes a placeholder value from its literal arguments.
type Func func(args []string) (any, error)

// Registry maps function names to implementations. It is read-only after
// construction unless Register is called, and Register is not safe to call
// concurrently with Call.
type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = r.funcNow
	r.funcs["date"] = r.funcDate
	r.funcs["timestamp"] = r.funcTimestamp
	r.funcs["timestampMs"] = r.funcTimestampMs
	r.funcs["uuid"] = funcUUID
	r.funcs["random"] = funcRandom
	r.funcs["base64"] = oneArg(func(s string) any { return base64.StdEncoding.EncodeToString([]byte(s)) })
	r.funcs["md5"] = oneArg(func(s string) any {
		sum := md5.Sum([]byte(s))
		return hex.EncodeToString(sum[:])
	})
	r.funcs["sha256"] = oneArg(func(s string) any {
		sum := sha256.Sum256([]byte(s))
		return hex.EncodeToString(sum[:])
	})
	r.funcs["upper"] = oneArg(func(s string) any { return strings.ToUpper(s) })
	r.funcs["lower"] = oneArg(func(s string) any { return strings.ToLower(s) })
	r.funcs["len"] = oneArg(func(s string) any { return len([]rune(s)) })
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// IsCall reports whether expr has the name(args) shape.
func IsCall(expr string) bool {
	return funcCallPattern.MatchString(strings.TrimSpace(expr))
}

// Call evaluates expr, e.g. random(1, 6). The bool is false when expr is
// not a call of a registered function.
func (r *Registry) Call(expr string) (any, bool, error) {
	matches := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if matches == nil {
		return nil, false, nil
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return nil, false, nil
	}

	var args []string
	if strings.TrimSpace(matches[2]) != "" {
		args = parseArgs(matches[2])
	}

	v, err := fn(args)
	if err != nil {
		return nil, true, fmt.Errorf("%s(): %w", matches[1], err)
	}
	return v, true, nil
}

// parseArgs splits a comma separated argument list. Single or double
// quotes protect commas and are removed.
func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	return append(args, strings.TrimSpace(current.String()))
}

func oneArg(fn func(string) any) Func {
	return func(args []string) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expects 1 argument, got %d", len(args))
		}
		return fn(args[0]), nil
	}
}

func (r *Registry) funcNow(_ []string) (any, error) {
	return r.now().UTC().Format(time.RFC3339), nil
}

func (r *Registry) funcDate(args []string) (any, error) {
	format := "2006-01-02"
	if len(args) >= 1 && args[0] != "" {
		format = args[0]
	}
	return r.now().UTC().Format(format), nil
}

func (r *Registry) funcTimestamp(_ []string) (any, error) {
	return r.now().Unix(), nil
}

func (r *Registry) funcTimestampMs(_ []string) (any, error) {
	return r.now().UnixMilli(), nil
}

func funcUUID(_ []string) (any, error) {
	return uuid.NewString(), nil
}

func funcRandom(args []string) (any, error) {
	lower, upper := 0, 100
	if len(args) != 0 && len(args) != 2 {
		return nil, fmt.Errorf("expects 0 or 2 arguments, got %d", len(args))
	}
	if len(args) == 2 {
		var err error
		if lower, err = strconv.Atoi(args[0]); err != nil {
			return nil, fmt.Errorf("min argument %q is not a valid integer", args[0])
		}
		if upper, err = strconv.Atoi(args[1]); err != nil {
			return nil, fmt.Errorf("max argument %q is not a valid integer", args[1])
		}
	}
	if upper < lower {
		return nil, fmt.Errorf("max %d is below min %d", upper, lower)
	}
	return rand.Intn(upper-lower+1) + lower, nil
}
