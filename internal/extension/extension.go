// Package extension defines the registration contract extensions use to plug
// domain-specific functions (always, succeeded, variables, ...) into the
// language without the core knowing anything about the domain.
package extension

import (
	"fmt"
	"strings"

	"github.com/flowci/condexpr/internal/value"
)

// Context is everything an extension's body gets at evaluation time: the
// caller-supplied opaque state and the trace sink, mirroring the core's own
// EvaluationContext without introducing a dependency on the public package.
type Context struct {
	State interface{}
	Trace value.TraceSink
	Depth int
}

// Func is the callable body an extension factory produces. It receives its
// already-evaluated arguments.
type Func func(ctx Context, args []value.Value) (value.Value, error)

// Registration describes one registered extension.
type Registration struct {
	Name    string
	Min     int
	Max     int
	Factory func() Func
}

const Unbounded = -1

// Registry is the case-insensitive set of extension names the lexer and
// parser consult; duplicate names are rejected.
type Registry struct {
	byName map[string]Registration
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Registration{}}
}

// Register adds an extension. Name matching is case-insensitive; registering
// the same name twice is an error.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return fmt.Errorf("extension name must not be empty")
	}
	key := strings.ToLower(reg.Name)
	if _, exists := r.byName[key]; exists {
		return fmt.Errorf("extension %q already registered", reg.Name)
	}
	if reg.Max != Unbounded && reg.Max < reg.Min {
		return fmt.Errorf("extension %q has max arity %d below min arity %d", reg.Name, reg.Max, reg.Min)
	}
	r.byName[key] = reg
	return nil
}

// Lookup resolves a case-folded name to its registration.
func (r *Registry) Lookup(lowerName string) (Registration, bool) {
	if r == nil {
		return Registration{}, false
	}
	reg, ok := r.byName[lowerName]
	return reg, ok
}

// Names returns the case-insensitive set of registered names, as the lexer
// needs it to classify keyword tokens. A nil Registry has no names.
func (r *Registry) Names() map[string]struct{} {
	if r == nil {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(r.byName))
	for name := range r.byName {
		out[name] = struct{}{}
	}
	return out
}
