// Package helpers holds the named-callable registry exposed to templates
// and to the project's extension script.
package helpers

import (
	"fmt"
	"html/template"
	"sort"
)

// Helper is a named callable usable from layout templates. The variadic
// any signature is the one html/template accepts for FuncMap entries with
// an error result.
type Helper func(args ...any) (any, error)

// Registry maps helper names to callables. The registry has stable
// identity for the lifetime of a project: re-registering a name replaces
// the callable in place, so anything holding the registry observes the
// update without rebinding.
type Registry struct {
	funcs map[string]Helper
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Helper)}
}

// Register adds fn under name, overwriting any previous registration.
func (r *Registry) Register(name string, fn Helper) {
	r.funcs[name] = fn
}

// Get returns the helper registered under name, or nil when absent.
func (r *Registry) Get(name string) Helper {
	return r.funcs[name]
}

// Len returns the number of registered helpers.
func (r *Registry) Len() int { return len(r.funcs) }

// Names returns registered helper names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes the helper registered under name.
func (r *Registry) Call(name string, args ...any) (any, error) {
	fn := r.funcs[name]
	if fn == nil {
		return nil, fmt.Errorf("helper %q is not registered", name)
	}
	return fn(args...)
}

// FuncMap returns a snapshot of the registry as a template FuncMap.
// Built per render so template execution sees the current registrations.
func (r *Registry) FuncMap() template.FuncMap {
	fm := make(template.FuncMap, len(r.funcs))
	for name, fn := range r.funcs {
		fm[name] = fn
	}
	return fm
}
