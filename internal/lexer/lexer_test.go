package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(raw string, extensions map[string]struct{}) []Token {
	lx := New(raw, extensions)
	var toks []Token
	for {
		tok, ok := lx.TryNext()
		if !ok {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestLexer_Punctuation(t *testing.T) {
	toks := collect("[](),", nil)
	want := []Kind{StartIndex, EndIndex, StartParameter, EndParameter, Separator}
	if assert.Len(t, toks, len(want)) {
		for i, k := range want {
			assert.Equal(t, k, toks[i].Kind)
		}
	}
}

func TestLexer_DereferenceVsDecimal(t *testing.T) {
	// '.' at the very start of the stream begins a number.
	toks := collect(".5", nil)
	if assert.Len(t, toks, 1) {
		assert.Equal(t, Number, toks[0].Kind)
	}

	// '.' after an EndParameter is a Dereference.
	toks = collect("eq().prop", nil)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, Dereference)
	assert.Contains(t, kinds, PropertyName)
}

func TestLexer_Strings(t *testing.T) {
	toks := collect("'it''s fine'", nil)
	if assert.Len(t, toks, 1) {
		assert.Equal(t, String, toks[0].Kind)
		assert.Equal(t, "it's fine", toks[0].Parsed)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	toks := collect("'oops", nil)
	if assert.Len(t, toks, 1) {
		assert.Equal(t, Unrecognized, toks[0].Kind)
	}
}

func TestLexer_Version(t *testing.T) {
	toks := collect("1.2.3", nil)
	if assert.Len(t, toks, 1) {
		assert.Equal(t, Version, toks[0].Kind)
	}
}

func TestLexer_VersionComponentOutOfRange(t *testing.T) {
	toks := collect("1.2.99999999999", nil)
	if assert.Len(t, toks, 1) {
		assert.Equal(t, Unrecognized, toks[0].Kind)
	}
}

func TestLexer_UnrecognizedDecimal(t *testing.T) {
	// Tokens: eq ( 1.2 , 3.4a ) -- the malformed literal is the fifth token.
	toks := collect("eq(1.2, 3.4a)", nil)
	if assert.Len(t, toks, 6) {
		bad := toks[4]
		assert.Equal(t, Unrecognized, bad.Kind)
		assert.Equal(t, "3.4a", bad.Raw)
	}
}

func TestLexer_BuiltinAndExtension(t *testing.T) {
	toks := collect("and(variables('env'))", map[string]struct{}{"variables": {}})
	if assert.GreaterOrEqual(t, len(toks), 2) {
		assert.Equal(t, Function, toks[0].Kind)
		assert.Equal(t, "and", toks[0].FuncName)
		assert.Equal(t, Extension, toks[2].Kind)
		assert.Equal(t, "variables", toks[2].FuncName)
	}
}

func TestLexer_Boolean(t *testing.T) {
	toks := collect("TRue", nil)
	if assert.Len(t, toks, 1) {
		assert.Equal(t, Boolean, toks[0].Kind)
		assert.Equal(t, true, toks[0].Parsed)
	}
}

func TestLexer_WhitespaceInvariant(t *testing.T) {
	a := collect("eq(1,2)", nil)
	b := collect("  eq( 1 , 2 )  ", nil)
	if assert.Equal(t, len(a), len(b)) {
		for i := range a {
			assert.Equal(t, a[i].Kind, b[i].Kind)
		}
	}
}
