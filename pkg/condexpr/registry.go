package condexpr

import (
	"github.com/flowci/condexpr/internal/extension"
	"github.com/flowci/condexpr/internal/extfuncs"
	"github.com/flowci/condexpr/internal/value"
)

// Unbounded marks an extension's max arity as having no upper bound.
const Unbounded = extension.Unbounded

// ExtensionFunc is the callable body an extension factory produces; it
// receives its already-evaluated arguments.
type ExtensionFunc func(ctx EvaluationContext, args []Value) (Value, error)

// Registry is the case-insensitive set of extension functions a Parse call
// recognizes beyond the built-ins. The zero value is not usable; create one
// with NewRegistry.
type Registry struct {
	inner *extension.Registry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{inner: extension.NewRegistry()}
}

// registry returns the underlying internal registry, or nil if r is nil.
// Parse treats a nil Registry as "no extensions".
func (r *Registry) registry() *extension.Registry {
	if r == nil {
		return nil
	}
	return r.inner
}

// Register adds name to the registry with the given arity bounds. factory is
// called once per parsed occurrence of name, producing the closure that
// runs at evaluation time. Registering the same name twice (case-
// insensitively) is an error.
func (r *Registry) Register(name string, min, max int, factory func() ExtensionFunc) error {
	return r.inner.Register(extension.Registration{
		Name: name,
		Min:  min,
		Max:  max,
		Factory: func() extension.Func {
			body := factory()
			return func(ctx extension.Context, args []value.Value) (value.Value, error) {
				var tw TraceWriter
				if ctx.Trace != nil {
					tw, _ = ctx.Trace.(TraceWriter)
				}
				return body(EvaluationContext{Trace: tw, State: ctx.State, Depth: ctx.Depth}, args)
			}
		},
	})
}

// JobStatus and State describe the reference job-status/variable-bag
// extensions RegisterReferenceExtensions installs.
type (
	JobStatus = extfuncs.JobStatus
	State     = extfuncs.State
)

const (
	StatusSucceeded = extfuncs.StatusSucceeded
	StatusFailed    = extfuncs.StatusFailed
	StatusCanceled  = extfuncs.StatusCanceled
)

// RegisterReferenceExtensions installs always/succeeded/failed/canceled/
// variables/testData, the reference job-status and variable-bag extension
// pack.
func RegisterReferenceExtensions(r *Registry) error {
	return extfuncs.Register(r.inner)
}
