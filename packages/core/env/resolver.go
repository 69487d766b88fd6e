package env

import (
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{...}} templates. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	funcs     map[string]Func
	lookupEnv func(string) (string, bool)
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return newResolver(time.Now)
}

func newResolver(clock func() time.Time) *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		funcs:     defaultFuncs(clock),
		lookupEnv: os.LookupEnv,
	}
}

// SetWarnFunc sets a function to be called for templates that cannot be resolved
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

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// Resolve expands every template in input. Unresolved templates are left as-is.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if val, ok := r.lookup(expr); ok {
			return val
		}
		return match
	})
}

func (r *Resolver) lookup(expr string) (string, bool) {
	if name, ok := strings.CutPrefix(expr, "$"); ok {
		if val, found := r.lookupEnv(name); found {
			return val, true
		}
		r.warn("unresolved environment variable: $%s", name)
		return "", false
	}

	if name, args, ok := parseCall(expr); ok {
		r.mu.RLock()
		fn, found := r.funcs[name]
		r.mu.RUnlock()
		if !found {
			r.warn("unknown function: %s", name)
			return "", false
		}
		val, err := fn(args)
		if err != nil {
			r.warn("%s: %v", expr, err)
			return "", false
		}
		return val, true
	}

	if val, ok := r.GetVariable(expr); ok {
		return val, true
	}
	r.warn("unresolved variable: %s", expr)
	return "", false
}

// ResolveAll resolves every value of the map into a new map
func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// HasUnresolved reports whether input still contains a template after resolution
func (r *Resolver) HasUnresolved(input string) bool {
	return variablePattern.MatchString(r.Resolve(input))
}
