package extfuncs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowci/condexpr/internal/eval"
	"github.com/flowci/condexpr/internal/extension"
	"github.com/flowci/condexpr/internal/parser"
	"github.com/flowci/condexpr/internal/value"
)

func newRegistry(t *testing.T) *extension.Registry {
	t.Helper()
	reg := extension.NewRegistry()
	assert.NoError(t, Register(reg))
	return reg
}

func run(t *testing.T, expr string, state interface{}) value.Value {
	t.Helper()
	reg := newRegistry(t)
	root, err := parser.Parse(expr, nil, reg)
	assert.NoError(t, err)
	v, err := eval.Evaluate(root, &eval.Context{State: state}, 0)
	assert.NoError(t, err)
	return v
}

func TestAlways(t *testing.T) {
	v := run(t, "always()", nil)
	assert.True(t, value.ToBoolean(v, nil, 0))
}

func TestSucceededFailedCanceled(t *testing.T) {
	s := State{Status: StatusSucceeded}
	assert.True(t, value.ToBoolean(run(t, "succeeded()", s), nil, 0))
	assert.False(t, value.ToBoolean(run(t, "failed()", s), nil, 0))
	assert.False(t, value.ToBoolean(run(t, "canceled()", s), nil, 0))

	s = State{Status: StatusFailed}
	assert.True(t, value.ToBoolean(run(t, "failed()", s), nil, 0))
}

func TestVariablesLookup(t *testing.T) {
	s := State{Variables: map[string]interface{}{"env": "prod"}}
	v := run(t, "eq(variables('env'), 'prod')", s)
	assert.True(t, value.ToBoolean(v, nil, 0))
}

func TestVariablesMissingIsNull(t *testing.T) {
	s := State{Variables: map[string]interface{}{}}
	v := run(t, "variables('missing')", s)
	assert.Equal(t, value.Null, v.Kind())
}

func TestTestData(t *testing.T) {
	s := State{Data: map[string]interface{}{"prop1": "property value 1"}}
	v := run(t, "eq('property value 1', testData()['prop1'])", s)
	assert.True(t, value.ToBoolean(v, nil, 0))
}

func TestTestData_NoState(t *testing.T) {
	v := run(t, "eq('', testData())", nil)
	assert.True(t, value.ToBoolean(v, nil, 0))
}

func TestRegister_DuplicateNameRejected(t *testing.T) {
	reg := extension.NewRegistry()
	assert.NoError(t, Register(reg))
	assert.Error(t, Register(reg))
}
