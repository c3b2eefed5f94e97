// Package lexer turns Later source bytes into a token stream (spec
// component B). It handles kebab-case identifier disambiguation, nested
// string interpolation, and nestable block comments, the three places a
// naive scanner gets the surface syntax wrong.
package lexer

import "github.com/later-lang/later/sourcemap"

// Kind is the closed set of token kinds Later's lexer emits (spec §3).
type Kind int

const (
	EOF Kind = iota
	INVALID

	IDENT
	INT
	FLOAT
	STRING      // a complete, non-interpolated string literal
	STR_FRAGMENT
	INTERP_OPEN
	INTERP_CLOSE

	// Keywords. and/or/not are lexed as keywords but participate in the
	// parser's operator table (spec §4.2 lists them among binary/unary
	// operator tokens).
	LET
	MUT
	FN
	IF
	ELSE
	LOOP
	WHILE
	BREAK
	CONTINUE
	AS
	DEFER
	SPAWN
	HANDLE
	WITH
	RESUME
	PERFORM
	COMPTIME
	STARTUP
	NIL
	TRUE
	FALSE
	AND
	OR
	NOT
	MATCH
	ALL
	RACE
	AWAIT
	TIMEOUT
	IMPORT

	// Punctuation / operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ
	NE
	LT
	LE
	GT
	GE
	ASSIGN
	PIPE
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	SEMI
	COLON
	DOT
	ELLIPSIS // "..."
	ARROW    // "=>"
	AT       // "@" (reserved for future decorator syntax; unused by the grammar in spec.md)
	UNDERSCORE
)

var keywords = map[string]Kind{
	"let": LET, "mut": MUT, "fn": FN, "if": IF, "else": ELSE,
	"loop": LOOP, "while": WHILE, "break": BREAK, "continue": CONTINUE,
	"as": AS, "defer": DEFER, "spawn": SPAWN, "handle": HANDLE,
	"with": WITH, "resume": RESUME, "perform": PERFORM,
	"comptime": COMPTIME, "startup": STARTUP, "nil": NIL,
	"true": TRUE, "false": FALSE, "and": AND, "or": OR, "not": NOT,
	"match": MATCH, "all": ALL, "race": RACE, "await": AWAIT,
	"timeout": TIMEOUT, "import": IMPORT,
}

// Token is one lexical unit: its kind, its literal text, and the byte span
// it was scanned from. Literal is the exact source text, except for STRING
// and STR_FRAGMENT tokens, where it holds the text with escapes decoded
// and without the quotes.
type Token struct {
	Kind    Kind
	Literal string
	Span    sourcemap.Span
}

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case INVALID:
		return "INVALID"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case STR_FRAGMENT:
		return "STR_FRAGMENT"
	case INTERP_OPEN:
		return "INTERP_OPEN"
	case INTERP_CLOSE:
		return "INTERP_CLOSE"
	default:
		for lit, kw := range keywords {
			if kw == k {
				return lit
			}
		}
		return "TOKEN"
	}
}
