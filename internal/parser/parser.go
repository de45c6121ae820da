// Package parser builds an immutable AST from a condition-expression token
// stream, enforcing the grammar and the per-function arities.
package parser

import (
	"fmt"

	"github.com/flowci/condexpr/internal/ast"
	"github.com/flowci/condexpr/internal/extension"
	"github.com/flowci/condexpr/internal/lexer"
	"github.com/flowci/condexpr/internal/value"
)

// ErrorKind is the closed set of reasons a Parse can fail.
type ErrorKind int

const (
	ExpectedPropertyName ErrorKind = iota
	ExpectedStartParameter
	UnclosedFunction
	UnclosedIndexer
	UnexpectedSymbol
	UnrecognizedValue
)

func (k ErrorKind) String() string {
	switch k {
	case ExpectedPropertyName:
		return "Expected property name"
	case ExpectedStartParameter:
		return "Expected '('"
	case UnclosedFunction:
		return "Unclosed function"
	case UnclosedIndexer:
		return "Unclosed indexer"
	case UnexpectedSymbol:
		return "Unexpected symbol"
	default:
		return "Unrecognized value"
	}
}

// Error is returned by Parse on grammar violations. TokenIndex is zero-based;
// human-rendered positions (see Error.Error) are one-based.
type Error struct {
	Kind        ErrorKind
	TokenText   string
	TokenIndex  int
	TokenLength int
	Raw         string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: '%s'. Located at position %d within condition expression: %s",
		e.Kind, e.TokenText, e.TokenIndex+1, e.Raw)
}

type containerKind int

const (
	containerFunction containerKind = iota
	containerIndexer
)

type container struct {
	kind containerKind
	fn   *ast.Function
	idx  *ast.Indexer
}

type parser struct {
	raw        string
	toks       []lexer.Token
	pos        int
	stack      []container
	root       ast.Node
	extensions *extension.Registry
}

// Parse tokenizes raw and builds the AST. sink receives a verbose line naming
// the expression being parsed; it may be nil. extensions may be nil, meaning
// no extensions are registered.
func Parse(raw string, sink value.TraceSink, extensions *extension.Registry) (ast.Node, error) {
	if sink != nil {
		sink.Verbose("Parsing expression: " + raw)
	}
	lx := lexer.New(raw, extensions.Names())
	p := &parser{raw: raw, extensions: extensions}
	for {
		tok, ok := lx.TryNext()
		if !ok {
			break
		}
		p.toks = append(p.toks, tok)
	}

	if err := p.run(); err != nil {
		return nil, err
	}
	return p.root, nil
}

func (p *parser) errAt(kind ErrorKind, tok lexer.Token) error {
	return &Error{Kind: kind, TokenText: tok.Raw, TokenIndex: tok.StartIndex, TokenLength: tok.Length, Raw: p.raw}
}

func (p *parser) prevToken() (lexer.Token, bool) {
	if p.pos == 0 {
		return lexer.Token{}, false
	}
	return p.toks[p.pos-1], true
}

func (p *parser) run() error {
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		p.pos++

		switch tok.Kind {
		case lexer.Boolean, lexer.Number, lexer.Version, lexer.String:
			if !p.literalPositionOK() {
				return p.errAt(UnexpectedSymbol, tok)
			}
			p.attach(&ast.Leaf{Value: literalValue(tok)})

		case lexer.Function, lexer.Extension:
			if !p.literalPositionOK() {
				return p.errAt(UnexpectedSymbol, tok)
			}
			fnNode, err := p.buildFunctionNode(tok)
			if err != nil {
				return err
			}
			p.attach(fnNode)
			p.push(container{kind: containerFunction, fn: fnNode})

			next, ok := p.peekAdvance()
			if !ok || next.Kind != lexer.StartParameter {
				return p.errAt(ExpectedStartParameter, tok)
			}

		case lexer.StartIndex:
			if !p.indexerPositionOK() {
				return p.errAt(UnexpectedSymbol, tok)
			}
			last, err := p.takeLastExpr()
			if err != nil {
				return p.errAt(UnexpectedSymbol, tok)
			}
			idx := &ast.Indexer{Target: last}
			p.attach(idx)
			p.push(container{kind: containerIndexer, idx: idx})

		case lexer.Dereference:
			if !p.indexerPositionOK() {
				return p.errAt(UnexpectedSymbol, tok)
			}
			last, err := p.takeLastExpr()
			if err != nil {
				return p.errAt(UnexpectedSymbol, tok)
			}
			idx := &ast.Indexer{Target: last}
			p.attach(idx)
			p.push(container{kind: containerIndexer, idx: idx})

			next, ok := p.peekAdvance()
			if !ok || next.Kind != lexer.PropertyName {
				return p.errAt(ExpectedPropertyName, tok)
			}
			idx.Index = &ast.Leaf{Value: value.NewString(next.Parsed.(string))}
			p.pop()

		case lexer.EndParameter:
			if len(p.stack) == 0 || p.stack[len(p.stack)-1].kind != containerFunction {
				return p.errAt(UnexpectedSymbol, tok)
			}
			top := p.stack[len(p.stack)-1]
			prev, hasPrev := p.prevConsumed()
			if len(top.fn.Args) < top.fn.Min || (hasPrev && prev.Kind == lexer.Separator) {
				return p.errAt(UnexpectedSymbol, tok)
			}
			p.pop()

		case lexer.EndIndex:
			if len(p.stack) == 0 || p.stack[len(p.stack)-1].kind != containerIndexer {
				return p.errAt(UnexpectedSymbol, tok)
			}
			top := p.stack[len(p.stack)-1]
			if top.idx.Target == nil || top.idx.Index == nil {
				return p.errAt(UnexpectedSymbol, tok)
			}
			p.pop()

		case lexer.Separator:
			if len(p.stack) == 0 || p.stack[len(p.stack)-1].kind != containerFunction {
				return p.errAt(UnexpectedSymbol, tok)
			}
			top := p.stack[len(p.stack)-1]
			prev, hasPrev := p.prevConsumed()
			atMax := top.fn.Max != ast.Unbounded && len(top.fn.Args) >= top.fn.Max
			if len(top.fn.Args) < 1 || atMax || (hasPrev && prev.Kind == lexer.Separator) {
				return p.errAt(UnexpectedSymbol, tok)
			}

		case lexer.StartParameter, lexer.PropertyName:
			return p.errAt(UnexpectedSymbol, tok)

		default: // Unrecognized
			return p.errAt(UnrecognizedValue, tok)
		}
	}

	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		last := p.toks[len(p.toks)-1]
		if top.kind == containerFunction {
			return p.errAt(UnclosedFunction, last)
		}
		return p.errAt(UnclosedIndexer, last)
	}
	return nil
}

// literalPositionOK implements: permitted only as the first token of the
// whole expression, or immediately after StartIndex, StartParameter or
// Separator.
func (p *parser) literalPositionOK() bool {
	prev, ok := p.prevConsumed()
	if !ok {
		return true
	}
	switch prev.Kind {
	case lexer.StartIndex, lexer.StartParameter, lexer.Separator:
		return true
	default:
		return false
	}
}

// indexerPositionOK implements: StartIndex/Dereference valid only when the
// previous token is EndParameter, EndIndex or PropertyName.
func (p *parser) indexerPositionOK() bool {
	prev, ok := p.prevConsumed()
	if !ok {
		return false
	}
	switch prev.Kind {
	case lexer.EndParameter, lexer.EndIndex, lexer.PropertyName:
		return true
	default:
		return false
	}
}

// prevConsumed returns the token consumed immediately before the one
// currently being processed (p.pos has already moved past it).
func (p *parser) prevConsumed() (lexer.Token, bool) {
	if p.pos < 2 {
		return lexer.Token{}, false
	}
	return p.toks[p.pos-2], true
}

// peekAdvance consumes and returns the next token in the stream, used for
// the function-call and dereference lookaheads.
func (p *parser) peekAdvance() (lexer.Token, bool) {
	if p.pos >= len(p.toks) {
		return lexer.Token{}, false
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, true
}

func (p *parser) push(c container) { p.stack = append(p.stack, c) }

func (p *parser) pop() {
	if len(p.stack) > 0 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

// attach places n as the child of the innermost open container, or makes it
// the tree root if no container is open.
func (p *parser) attach(n ast.Node) {
	if len(p.stack) == 0 {
		p.root = n
		return
	}
	top := &p.stack[len(p.stack)-1]
	switch top.kind {
	case containerFunction:
		top.fn.Args = append(top.fn.Args, n)
	case containerIndexer:
		if top.idx.Target == nil {
			top.idx.Target = n
		} else {
			top.idx.Index = n
		}
	}
}

var errNoExpr = fmt.Errorf("no preceding expression")

// takeLastExpr removes and returns the most recently produced expression
// (the root, or the last child of the innermost container), so that
// StartIndex/Dereference can replace it with an Indexer wrapping it.
func (p *parser) takeLastExpr() (ast.Node, error) {
	if len(p.stack) == 0 {
		if p.root == nil {
			return nil, errNoExpr
		}
		last := p.root
		p.root = nil
		return last, nil
	}
	top := &p.stack[len(p.stack)-1]
	switch top.kind {
	case containerFunction:
		if len(top.fn.Args) == 0 {
			return nil, errNoExpr
		}
		last := top.fn.Args[len(top.fn.Args)-1]
		top.fn.Args = top.fn.Args[:len(top.fn.Args)-1]
		return last, nil
	default: // containerIndexer
		if top.idx.Index != nil {
			last := top.idx.Index
			top.idx.Index = nil
			return last, nil
		}
		if top.idx.Target != nil {
			last := top.idx.Target
			top.idx.Target = nil
			return last, nil
		}
		return nil, errNoExpr
	}
}

func (p *parser) buildFunctionNode(tok lexer.Token) (*ast.Function, error) {
	if tok.Kind == lexer.Extension {
		reg, ok := p.extensions.Lookup(tok.FuncName)
		if !ok {
			return nil, p.errAt(UnrecognizedValue, tok)
		}
		return &ast.Function{
			Tag:  ast.ExtensionTag,
			Name: tok.Raw,
			Min:  reg.Min,
			Max:  reg.Max,
			Body: reg.Factory(),
		}, nil
	}
	tag, ok := ast.LookupBuiltin(tok.FuncName)
	if !ok {
		return nil, p.errAt(UnrecognizedValue, tok)
	}
	arity := ast.BuiltinArities[tag]
	return &ast.Function{Tag: tag, Name: tok.Raw, Min: arity.Min, Max: arity.Max}, nil
}

// literalValue converts an already-lexed literal token into a Value. The
// lexer only classifies a token as Number/Version after validating its
// shape, so the second parse here is not expected to fail; a failure
// degrades to Null rather than panicking.
func literalValue(tok lexer.Token) value.Value {
	switch tok.Kind {
	case lexer.Boolean:
		return value.NewBoolean(tok.Parsed.(bool))
	case lexer.String:
		return value.NewString(tok.Parsed.(string))
	case lexer.Number:
		if d, ok := value.ParseNumberLiteral(tok.Parsed.(string)); ok {
			return value.NewNumber(d)
		}
		return value.NewNull()
	case lexer.Version:
		if v, ok := value.ParseVersionLiteral(tok.Parsed.(string)); ok {
			return value.NewVersion(v)
		}
		return value.NewNull()
	default:
		return value.NewNull()
	}
}
