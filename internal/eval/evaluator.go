// Package eval walks a parsed AST against a caller-supplied state, producing
// a typed Value or propagating a ConvertError. It owns the depth counter
// used for trace indentation and the short-circuit semantics of and/or/in.
package eval

import (
	"fmt"

	"github.com/flowci/condexpr/internal/ast"
	"github.com/flowci/condexpr/internal/extension"
	"github.com/flowci/condexpr/internal/value"
)

// Context is the per-evaluation state threaded through the tree: the
// caller's opaque State (forwarded to extensions unchanged) and the trace
// sink coercions report to.
type Context struct {
	State interface{}
	Trace value.TraceSink
}

// Evaluate interprets n at the given tree depth. depth is 0 for the root.
func Evaluate(n ast.Node, ctx *Context, depth int) (value.Value, error) {
	switch node := n.(type) {
	case nil:
		return value.NewNull(), nil
	case *ast.Leaf:
		return node.Value, nil
	case *ast.Indexer:
		return evalIndexer(node, ctx, depth)
	case *ast.Function:
		return evalFunction(node, ctx, depth)
	default:
		return value.Value{}, fmt.Errorf("eval: unhandled node type %T", n)
	}
}

func evalIndexer(n *ast.Indexer, ctx *Context, depth int) (value.Value, error) {
	target, err := Evaluate(n.Target, ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	index, err := Evaluate(n.Index, ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}

	switch target.Kind() {
	case value.Array:
		return indexArray(target.AsArray(), index, ctx, depth), nil
	case value.Object:
		return indexObject(target.AsObject(), index, ctx, depth), nil
	default:
		return value.NewNull(), nil
	}
}

// indexArray implements the Array indexer: a Number index is used as-is;
// a non-empty String index is best-effort coerced to Number; anything else
// (Boolean, Version, empty String, Null, Array, Object, or a String that
// fails to parse) yields Null, as does an out-of-range or non-integer index.
func indexArray(arr []interface{}, index value.Value, ctx *Context, depth int) value.Value {
	var n value.Value
	switch index.Kind() {
	case value.Number:
		n = index
	case value.String:
		if index.AsString() == "" {
			return value.NewNull()
		}
		d, ok := value.ToNumber(index, ctx.Trace, depth+1)
		if !ok {
			return value.NewNull()
		}
		n = value.NewNumber(d)
	default:
		return value.NewNull()
	}

	d := n.AsNumber()
	if !d.IsInteger() || d.IsNegative() {
		return value.NewNull()
	}
	i := d.IntPart()
	if i < 0 || i >= int64(len(arr)) {
		return value.NewNull()
	}
	return value.FromRaw(arr[i])
}

// indexObject implements the Object indexer: the index is coerced to
// String via the fallible conversion; failure or a missing property yields
// Null.
func indexObject(obj map[string]interface{}, index value.Value, ctx *Context, depth int) value.Value {
	key, ok := value.ToString(index, ctx.Trace, depth+1)
	if !ok {
		return value.NewNull()
	}
	raw, ok := obj[key]
	if !ok {
		return value.NewNull()
	}
	return value.FromRaw(raw)
}

func evalFunction(fn *ast.Function, ctx *Context, depth int) (value.Value, error) {
	if fn.Tag == ast.ExtensionTag {
		return evalExtension(fn, ctx, depth)
	}
	switch fn.Tag {
	case ast.NotTag:
		return evalNot(fn, ctx, depth)
	case ast.AndTag:
		return evalAndOr(fn, ctx, depth, true)
	case ast.OrTag:
		return evalAndOr(fn, ctx, depth, false)
	case ast.XorTag:
		return evalXor(fn, ctx, depth)
	case ast.EqTag:
		return evalEq(fn, ctx, depth, false)
	case ast.NeTag:
		return evalEq(fn, ctx, depth, true)
	case ast.LtTag, ast.LeTag, ast.GtTag, ast.GeTag:
		return evalOrdering(fn, ctx, depth)
	case ast.InTag:
		return evalIn(fn, ctx, depth, false)
	case ast.NotInTag:
		return evalIn(fn, ctx, depth, true)
	case ast.ContainsTag:
		return evalContains(fn, ctx, depth)
	case ast.StartsWithTag:
		return evalAffix(fn, ctx, depth, true)
	case ast.EndsWithTag:
		return evalAffix(fn, ctx, depth, false)
	default:
		return value.Value{}, fmt.Errorf("eval: unhandled function tag %d", fn.Tag)
	}
}

func evalNot(fn *ast.Function, ctx *Context, depth int) (value.Value, error) {
	v, err := Evaluate(fn.Args[0], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	b := value.ToBoolean(v, ctx.Trace, depth+1)
	return value.NewBoolean(!b), nil
}

// evalAndOr implements and/or. wantAll is true for and (stop on the first
// falsy argument), false for or (stop on the first truthy argument).
// Arguments after the deciding one are never evaluated.
func evalAndOr(fn *ast.Function, ctx *Context, depth int, wantAll bool) (value.Value, error) {
	for _, arg := range fn.Args {
		v, err := Evaluate(arg, ctx, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		b := value.ToBoolean(v, ctx.Trace, depth+1)
		if wantAll && !b {
			return value.NewBoolean(false), nil
		}
		if !wantAll && b {
			return value.NewBoolean(true), nil
		}
	}
	return value.NewBoolean(wantAll), nil
}

// evalXor evaluates both operands unconditionally; there is no short-circuit
// form of exclusive-or.
func evalXor(fn *ast.Function, ctx *Context, depth int) (value.Value, error) {
	a, err := Evaluate(fn.Args[0], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	b, err := Evaluate(fn.Args[1], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	ab := value.ToBoolean(a, ctx.Trace, depth+1)
	bb := value.ToBoolean(b, ctx.Trace, depth+1)
	return value.NewBoolean(ab != bb), nil
}

func evalEq(fn *ast.Function, ctx *Context, depth int, negate bool) (value.Value, error) {
	left, err := Evaluate(fn.Args[0], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	right, err := Evaluate(fn.Args[1], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	eq := value.Equal(left, right, ctx.Trace, depth+1)
	if negate {
		eq = !eq
	}
	return value.NewBoolean(eq), nil
}

func evalOrdering(fn *ast.Function, ctx *Context, depth int) (value.Value, error) {
	left, err := Evaluate(fn.Args[0], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	right, err := Evaluate(fn.Args[1], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	cmp, err := value.Compare(left, right, ctx.Trace, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	var result bool
	switch fn.Tag {
	case ast.LtTag:
		result = cmp < 0
	case ast.LeTag:
		result = cmp <= 0
	case ast.GtTag:
		result = cmp > 0
	case ast.GeTag:
		result = cmp >= 0
	}
	return value.NewBoolean(result), nil
}

// evalIn implements in/notIn over Args[1:] tested against Args[0]. Both
// directions share this one loop over every candidate, so notIn is a
// faithful negation of a full in scan.
func evalIn(fn *ast.Function, ctx *Context, depth int, negate bool) (value.Value, error) {
	needle, err := Evaluate(fn.Args[0], ctx, depth+1)
	if err != nil {
		return value.Value{}, err
	}
	found := false
	for _, arg := range fn.Args[1:] {
		candidate, err := Evaluate(arg, ctx, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		if value.Equal(needle, candidate, ctx.Trace, depth+1) {
			found = true
			break
		}
	}
	if negate {
		found = !found
	}
	return value.NewBoolean(found), nil
}

func evalContains(fn *ast.Function, ctx *Context, depth int) (value.Value, error) {
	a, b, err := evalStringPair(fn, ctx, depth)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewBoolean(value.FoldContains(a, b)), nil
}

func evalAffix(fn *ast.Function, ctx *Context, depth int, prefix bool) (value.Value, error) {
	a, b, err := evalStringPair(fn, ctx, depth)
	if err != nil {
		return value.Value{}, err
	}
	if prefix {
		return value.NewBoolean(value.FoldHasPrefix(a, b)), nil
	}
	return value.NewBoolean(value.FoldHasSuffix(a, b)), nil
}

func evalStringPair(fn *ast.Function, ctx *Context, depth int) (string, string, error) {
	left, err := Evaluate(fn.Args[0], ctx, depth+1)
	if err != nil {
		return "", "", err
	}
	right, err := Evaluate(fn.Args[1], ctx, depth+1)
	if err != nil {
		return "", "", err
	}
	a, ok := value.ToString(left, ctx.Trace, depth+1)
	if !ok {
		return "", "", &value.ConvertError{Value: left, From: left.Kind(), To: value.String}
	}
	b, ok := value.ToString(right, ctx.Trace, depth+1)
	if !ok {
		return "", "", &value.ConvertError{Value: right, From: right.Kind(), To: value.String}
	}
	return a, b, nil
}

// evalExtension evaluates every argument eagerly (extensions are opaque to
// the core, so no short-circuit contract applies) then invokes the body
// resolved once at parse time.
func evalExtension(fn *ast.Function, ctx *Context, depth int) (value.Value, error) {
	args := make([]value.Value, len(fn.Args))
	for i, a := range fn.Args {
		v, err := Evaluate(a, ctx, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	if fn.Body == nil {
		return value.NewNull(), nil
	}
	return fn.Body(extension.Context{State: ctx.State, Trace: ctx.Trace, Depth: depth + 1}, args)
}
