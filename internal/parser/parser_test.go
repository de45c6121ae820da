package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowci/condexpr/internal/ast"
	"github.com/flowci/condexpr/internal/extension"
)

func TestParse_EmptyExpressionYieldsNilRoot(t *testing.T) {
	root, err := Parse("", nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, root)
}

func TestParse_SimpleFunction(t *testing.T) {
	root, err := Parse("eq(1, 2)", nil, nil)
	assert.NoError(t, err)
	fn, ok := root.(*ast.Function)
	if assert.True(t, ok) {
		assert.Equal(t, ast.EqTag, fn.Tag)
		assert.Len(t, fn.Args, 2)
	}
}

func registryWith(names ...string) *extension.Registry {
	reg := extension.NewRegistry()
	for _, name := range names {
		_ = reg.Register(extension.Registration{Name: name, Min: 0, Max: 0, Factory: func() extension.Func { return nil }})
	}
	return reg
}

func TestParse_NestedFunction(t *testing.T) {
	root, err := Parse("and(succeeded(), eq(1, 1))", nil, registryWith("succeeded"))
	assert.NoError(t, err)
	fn, ok := root.(*ast.Function)
	if assert.True(t, ok) {
		assert.Equal(t, ast.AndTag, fn.Tag)
		assert.Len(t, fn.Args, 2)
	}
}

func TestParse_IndexerDesugaring(t *testing.T) {
	reg := registryWith("testData")
	a, err := Parse("testData()['prop1']", nil, reg)
	assert.NoError(t, err)
	b, err := Parse("testData().prop1", nil, reg)
	assert.NoError(t, err)

	for _, root := range []ast.Node{a, b} {
		idx, ok := root.(*ast.Indexer)
		if assert.True(t, ok) {
			assert.NotNil(t, idx.Target)
			leaf, ok := idx.Index.(*ast.Leaf)
			if assert.True(t, ok) {
				assert.Equal(t, "prop1", leaf.Value.AsString())
			}
		}
	}
}

func TestParse_UnrecognizedValue(t *testing.T) {
	_, err := Parse("eq(1.2, 3.4a)", nil, nil)
	var perr *Error
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, UnrecognizedValue, perr.Kind)
		assert.Equal(t, "3.4a", perr.TokenText)
	}
}

func TestParse_ExpectedStartParameter(t *testing.T) {
	_, err := Parse("and 1, 2)", nil, nil)
	var perr *Error
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, ExpectedStartParameter, perr.Kind)
	}
}

func TestParse_UnclosedFunction(t *testing.T) {
	_, err := Parse("and(1, 2", nil, nil)
	var perr *Error
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, UnclosedFunction, perr.Kind)
	}
}

func TestParse_UnclosedIndexer(t *testing.T) {
	_, err := Parse("eq(1,2)['x'", nil, nil)
	var perr *Error
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, UnclosedIndexer, perr.Kind)
	}
}

func TestParse_TrailingSeparatorIsUnexpected(t *testing.T) {
	_, err := Parse("and(1, 2,)", nil, nil)
	var perr *Error
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, UnexpectedSymbol, perr.Kind)
	}
}

func TestParse_ArityTooFew(t *testing.T) {
	_, err := Parse("not()", nil, nil)
	var perr *Error
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, UnexpectedSymbol, perr.Kind)
	}
}

func TestParse_UnknownExtensionIsUnrecognized(t *testing.T) {
	_, err := Parse("mystery()", nil, extension.NewRegistry())
	var perr *Error
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, UnrecognizedValue, perr.Kind)
	}
}

func TestParse_ExtensionArity(t *testing.T) {
	reg := extension.NewRegistry()
	err := reg.Register(extension.Registration{
		Name: "score", Min: 1, Max: extension.Unbounded,
		Factory: func() extension.Func { return nil },
	})
	assert.NoError(t, err)

	root, err := Parse("score(1, 2, 3)", nil, reg)
	assert.NoError(t, err)
	fn, ok := root.(*ast.Function)
	if assert.True(t, ok) {
		assert.Equal(t, ast.ExtensionTag, fn.Tag)
		assert.Len(t, fn.Args, 3)
	}
}

func TestError_RenderedMessage(t *testing.T) {
	_, err := Parse("eq(1.2, 3.4a)", nil, nil)
	assert.Contains(t, err.Error(), "Unrecognized value: '3.4a'. Located at position")
}
