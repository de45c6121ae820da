// Package extfuncs is a reference extension pack mirroring the job-status
// and variable-bag functions the host agent exposes: always, succeeded,
// failed, canceled, variables and testData. It demonstrates the
// extension.Registry contract; embedders are free to register their own set
// instead.
package extfuncs

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/flowci/condexpr/internal/extension"
	"github.com/flowci/condexpr/internal/value"
)

// JobStatus is the closed set of outcomes a step/job can have reached by the
// time a condition is evaluated.
type JobStatus string

const (
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
	StatusCanceled  JobStatus = "canceled"
)

// State is the opaque value condexpr.EvaluationContext.State is expected to
// hold for this pack's functions to resolve anything beyond "always".
// Variables and Data are both nilable; with a nil Data, testData() returns
// Null.
type State struct {
	Status    JobStatus
	Variables map[string]interface{}
	Data      interface{}
}

// Register adds this pack's six functions to reg. It fails if any name
// collides with one already registered.
func Register(reg *extension.Registry) error {
	fns := []extension.Registration{
		{Name: "always", Min: 0, Max: 0, Factory: alwaysFunc},
		{Name: "succeeded", Min: 0, Max: 0, Factory: statusFunc(StatusSucceeded)},
		{Name: "failed", Min: 0, Max: 0, Factory: statusFunc(StatusFailed)},
		{Name: "canceled", Min: 0, Max: 0, Factory: statusFunc(StatusCanceled)},
		{Name: "variables", Min: 1, Max: 1, Factory: variablesFunc},
		{Name: "testData", Min: 0, Max: 0, Factory: testDataFunc},
	}
	for _, fn := range fns {
		if err := reg.Register(fn); err != nil {
			return err
		}
	}
	return nil
}

func stateOf(raw interface{}) (State, bool) {
	s, ok := raw.(State)
	if ok {
		return s, true
	}
	p, ok := raw.(*State)
	if ok && p != nil {
		return *p, true
	}
	if raw != nil {
		logrus.WithField("type", fmt.Sprintf("%T", raw)).Debug("condition state is not an extfuncs.State")
	}
	return State{}, false
}

func alwaysFunc() extension.Func {
	return func(ctx extension.Context, args []value.Value) (value.Value, error) {
		return value.NewBoolean(true), nil
	}
}

// statusFunc builds succeeded/failed/canceled: each reports whether the
// state's Status matches want. An unresolvable state (wrong type, or no
// state at all) reports false rather than failing the expression.
func statusFunc(want JobStatus) func() extension.Func {
	return func() extension.Func {
		return func(ctx extension.Context, args []value.Value) (value.Value, error) {
			s, ok := stateOf(ctx.State)
			if !ok {
				return value.NewBoolean(false), nil
			}
			return value.NewBoolean(s.Status == want), nil
		}
	}
}

func variablesFunc() extension.Func {
	return func(ctx extension.Context, args []value.Value) (value.Value, error) {
		name, ok := value.ToString(args[0], ctx.Trace, ctx.Depth)
		if !ok {
			return value.Value{}, &value.ConvertError{Value: args[0], From: args[0].Kind(), To: value.String}
		}
		s, ok := stateOf(ctx.State)
		if !ok {
			return value.NewNull(), nil
		}
		raw, ok := lookupFold(s.Variables, name)
		if !ok {
			return value.NewNull(), nil
		}
		return value.FromRaw(raw), nil
	}
}

// lookupFold looks name up in bag ASCII-fold case-insensitively, trying the
// exact key first since that is the common case and needs no scan.
func lookupFold(bag map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := bag[name]; ok {
		return v, true
	}
	for k, v := range bag {
		if value.FoldEqual(k, name) {
			return v, true
		}
	}
	return nil, false
}

func testDataFunc() extension.Func {
	return func(ctx extension.Context, args []value.Value) (value.Value, error) {
		s, ok := stateOf(ctx.State)
		if !ok || s.Data == nil {
			return value.NewNull(), nil
		}
		return value.FromRaw(s.Data), nil
	}
}
