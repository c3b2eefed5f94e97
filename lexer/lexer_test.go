package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/later-lang/later/sourcemap"
)

// tokensOf scans src to EOF and returns every non-EOF token, used to keep
// the cases below terse.
func tokensOf(t *testing.T, src string) []Token {
	t.Helper()
	l := New(sourcemap.New("test.later", src))
	var toks []Token
	for {
		tok := l.NextToken()
		if tok.Kind == EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexer_RunningPrecedenceOperators(t *testing.T) {
	toks := tokensOf(t, "1 + 2 * 3 - 4 / 5")
	assert.Equal(t, []Kind{INT, PLUS, INT, STAR, INT, MINUS, INT, SLASH, INT}, kinds(toks))
}

func TestLexer_KebabIdentifierGluesAfterOpener(t *testing.T) {
	toks := tokensOf(t, "(my-var)")
	assert.Equal(t, []Kind{LPAREN, IDENT, RPAREN}, kinds(toks))
	assert.Equal(t, "my-var", toks[1].Literal)
}

func TestLexer_KebabIdentifierAfterAssign(t *testing.T) {
	toks := tokensOf(t, "x = my-var")
	assert.Equal(t, "my-var", toks[2].Literal)
}

func TestLexer_LeadingKebabIdentifierGlues(t *testing.T) {
	// At the very start of input there is no preceding value-producing
	// token, so `-` glues just as it would right after an opener.
	toks := tokensOf(t, "a-b")
	assert.Equal(t, []Kind{IDENT}, kinds(toks))
	assert.Equal(t, "a-b", toks[0].Literal)
}

func TestLexer_MinusAfterValueIsSubtraction(t *testing.T) {
	toks := tokensOf(t, "x a-b")
	assert.Equal(t, []Kind{IDENT, IDENT, MINUS, IDENT}, kinds(toks))
	assert.Equal(t, "x", toks[0].Literal)
	assert.Equal(t, "a", toks[1].Literal)
	assert.Equal(t, "b", toks[3].Literal)
}

func TestLexer_MinusWithSpacesIsAlwaysSubtraction(t *testing.T) {
	toks := tokensOf(t, "(x = a - b)")
	assert.Equal(t, []Kind{LPAREN, IDENT, ASSIGN, IDENT, MINUS, IDENT, RPAREN}, kinds(toks))
}

func TestLexer_UnaryMinusIsSeparateFromNumber(t *testing.T) {
	toks := tokensOf(t, "(-5)")
	assert.Equal(t, []Kind{LPAREN, MINUS, INT, RPAREN}, kinds(toks))
}

func TestLexer_FloatLiteral(t *testing.T) {
	toks := tokensOf(t, "3.14")
	assert.Equal(t, []Kind{FLOAT}, kinds(toks))
	assert.Equal(t, "3.14", toks[0].Literal)
}

func TestLexer_PlainStringNoInterpolation(t *testing.T) {
	toks := tokensOf(t, `"hello world"`)
	assert.Equal(t, []Kind{STRING}, kinds(toks))
	assert.Equal(t, "hello world", toks[0].Literal)
}

func TestLexer_StringEscapes(t *testing.T) {
	toks := tokensOf(t, `"a\nb\t\"c\"\{d\}"`)
	assert.Equal(t, "a\nb\t\"c\"{d}", toks[0].Literal)
}

func TestLexer_StringInterpolation(t *testing.T) {
	toks := tokensOf(t, `"foo {x} bar"`)
	assert.Equal(t, []Kind{STR_FRAGMENT, INTERP_OPEN, IDENT, INTERP_CLOSE, STR_FRAGMENT}, kinds(toks))
	assert.Equal(t, "foo ", toks[0].Literal)
	assert.Equal(t, "x", toks[2].Literal)
	assert.Equal(t, " bar", toks[4].Literal)
}

func TestLexer_StringInterpolationWithFieldAccess(t *testing.T) {
	toks := tokensOf(t, `"val {obj.field} done"`)
	assert.Equal(t, []Kind{STR_FRAGMENT, INTERP_OPEN, IDENT, DOT, IDENT, INTERP_CLOSE, STR_FRAGMENT}, kinds(toks))
}

func TestLexer_StringInterpolationNestedBraceLiteralInsideExpr(t *testing.T) {
	// the inner `{a: 1}` object literal's braces must not be confused
	// with the interpolation's own closing brace.
	toks := tokensOf(t, `"x {foo({a: 1})} y"`)
	assert.Equal(t, INTERP_OPEN, toks[1].Kind)
	assert.Equal(t, INTERP_CLOSE, toks[len(toks)-2].Kind)
	var opens, closes int
	for _, k := range kinds(toks) {
		if k == LBRACE {
			opens++
		}
		if k == RBRACE {
			closes++
		}
	}
	assert.Equal(t, opens, closes)
}

func TestLexer_Comments(t *testing.T) {
	toks := tokensOf(t, "1 // trailing comment\n+ /* block /* nested */ still-comment */ 2")
	assert.Equal(t, []Kind{INT, PLUS, INT}, kinds(toks))
}

func TestLexer_Keywords(t *testing.T) {
	toks := tokensOf(t, "let mut fn if else loop break continue as defer spawn handle with resume comptime startup nil true false and or not")
	want := []Kind{LET, MUT, FN, IF, ELSE, LOOP, BREAK, CONTINUE, AS, DEFER, SPAWN, HANDLE, WITH, RESUME, COMPTIME, STARTUP, NIL, TRUE, FALSE, AND, OR, NOT}
	assert.Equal(t, want, kinds(toks))
}

func TestLexer_UnclosedDelimiterDiagnostic(t *testing.T) {
	l := New(sourcemap.New("test.later", "(1 + 2"))
	for {
		if tok := l.NextToken(); tok.Kind == EOF {
			break
		}
	}
	diags := l.Diagnostics()
	assert.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unclosed `(`")
}

func TestLexer_RoundTrip(t *testing.T) {
	// Lexer round-trip property (spec §8.1): concatenating lexemes
	// reconstructs the input modulo whitespace/comments, for inputs with
	// no string literals (whose Literal field holds the decoded value,
	// not the raw lexeme).
	src := "let x = 1+2*3-4"
	toks := tokensOf(t, src)
	var rebuilt string
	for _, tok := range toks {
		rebuilt += tok.Literal
	}
	assert.Equal(t, "letx=1+2*3-4", rebuilt)
}
