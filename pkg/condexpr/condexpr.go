// Package condexpr is the public surface of the condition-expression
// language: parse a raw expression once, then evaluate the resulting AST
// against any number of independent EvaluationContexts. See internal/lexer,
// internal/parser and internal/eval for the implementation.
package condexpr

import (
	"github.com/shopspring/decimal"

	"github.com/flowci/condexpr/internal/ast"
	"github.com/flowci/condexpr/internal/eval"
	"github.com/flowci/condexpr/internal/parser"
	"github.com/flowci/condexpr/internal/value"
)

// Value kinds and the Value type itself are re-exported so callers never
// need to import the internal value package directly.
type (
	Kind         = value.Kind
	Value        = value.Value
	Version      = value.Version
	ConvertError = value.ConvertError
)

const (
	KindBoolean = value.Boolean
	KindNumber  = value.Number
	KindString  = value.String
	KindVersion = value.VersionKind
	KindArray   = value.Array
	KindObject  = value.Object
	KindNull    = value.Null
)

// Value constructors, re-exported for callers building state documents or
// extension return values.
var (
	NewBoolean = value.NewBoolean
	NewNumber  = value.NewNumber
	NewString  = value.NewString
	NewVersion = value.NewVersion
	NewArray   = value.NewArray
	NewObject  = value.NewObject
	NewNull    = value.NewNull
	FromRaw    = value.FromRaw
)

// ParseError and its closed set of kinds, re-exported from internal/parser.
type (
	ParseError = parser.Error
	ErrorKind  = parser.ErrorKind
)

const (
	ExpectedPropertyName   = parser.ExpectedPropertyName
	ExpectedStartParameter = parser.ExpectedStartParameter
	UnclosedFunction       = parser.UnclosedFunction
	UnclosedIndexer        = parser.UnclosedIndexer
	UnexpectedSymbol       = parser.UnexpectedSymbol
	UnrecognizedValue      = parser.UnrecognizedValue
)

// TraceWriter receives the coercion trace: Verbose is written by every core
// coercion; Info is reserved for embedders and extensions. A TraceWriter's method set is a superset of the internal
// value.TraceSink it is handed as, so no adapter is needed.
type TraceWriter interface {
	Info(msg string)
	Verbose(msg string)
}

// EvaluationContext carries the trace sink and the opaque state forwarded
// unchanged to extension functions. Depth is the tree depth at which an
// extension was invoked, for callers that want their own coercions
// (ToBoolean/ToNumber/...) to indent consistently with the core's trace.
type EvaluationContext struct {
	Trace TraceWriter
	State interface{}
	Depth int
}

// ToBoolean, ToNumber, ToString and ToVersion expose the core's coercion
// rules to extension authors, so a custom extension can demand-convert its
// own arguments the same way built-ins do.
func ToBoolean(v Value, ctx EvaluationContext) bool {
	return value.ToBoolean(v, ctx.Trace, ctx.Depth)
}

func ToNumber(v Value, ctx EvaluationContext) (decimal.Decimal, bool) {
	return value.ToNumber(v, ctx.Trace, ctx.Depth)
}

func ToString(v Value, ctx EvaluationContext) (string, bool) {
	return value.ToString(v, ctx.Trace, ctx.Depth)
}

func ToVersion(v Value, ctx EvaluationContext) (Version, bool) {
	return value.ToVersion(v, ctx.Trace, ctx.Depth)
}

// AstRoot is the immutable result of a successful Parse.
type AstRoot struct {
	node ast.Node
}

// Parse tokenizes and builds the AST for raw. trace may be nil; it only
// receives verbose parse diagnostics, never the coercion trace (that is
// produced at evaluation time through the EvaluationContext's writer).
// extensions may be nil, in which case only built-in functions are
// recognized. The empty expression is legal and yields a root whose Evaluate
// returns Null.
func Parse(raw string, trace TraceWriter, extensions *Registry) (*AstRoot, error) {
	node, err := parser.Parse(raw, trace, extensions.registry())
	if err != nil {
		return nil, err
	}
	return &AstRoot{node: node}, nil
}

// Evaluate interprets the tree against ctx.
func (r *AstRoot) Evaluate(ctx EvaluationContext) (Value, error) {
	if r == nil || r.node == nil {
		return value.NewNull(), nil
	}
	return eval.Evaluate(r.node, &eval.Context{State: ctx.State, Trace: ctx.Trace}, 0)
}

// EvaluateBoolean evaluates and coerces the result to Boolean, a total
// conversion.
func (r *AstRoot) EvaluateBoolean(ctx EvaluationContext) (bool, error) {
	v, err := r.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return value.ToBoolean(v, ctx.Trace, 0), nil
}

// EvaluateNumber evaluates and demands a Number, raising ConvertError if the
// result cannot be coerced.
func (r *AstRoot) EvaluateNumber(ctx EvaluationContext) (decimal.Decimal, error) {
	v, err := r.Evaluate(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	n, ok := value.ToNumber(v, ctx.Trace, 0)
	if !ok {
		return decimal.Decimal{}, &ConvertError{Value: v, From: v.Kind(), To: value.Number}
	}
	return n, nil
}

// EvaluateString evaluates and demands a String.
func (r *AstRoot) EvaluateString(ctx EvaluationContext) (string, error) {
	v, err := r.Evaluate(ctx)
	if err != nil {
		return "", err
	}
	s, ok := value.ToString(v, ctx.Trace, 0)
	if !ok {
		return "", &ConvertError{Value: v, From: v.Kind(), To: value.String}
	}
	return s, nil
}

// EvaluateVersion evaluates and demands a Version.
func (r *AstRoot) EvaluateVersion(ctx EvaluationContext) (Version, error) {
	v, err := r.Evaluate(ctx)
	if err != nil {
		return Version{}, err
	}
	ver, ok := value.ToVersion(v, ctx.Trace, 0)
	if !ok {
		return Version{}, &ConvertError{Value: v, From: v.Kind(), To: value.VersionKind}
	}
	return ver, nil
}
