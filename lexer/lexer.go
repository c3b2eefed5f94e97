package lexer

import (
	"strconv"
	"strings"

	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/sourcemap"
)

// opener tracks one still-unclosed `(`/`[`/`{` so the lexer can report it
// at EOF per spec §4.1 ("the lexer records opener spans and surfaces
// unclosed { / [ / ( diagnostics at EOF").
type opener struct {
	kind Kind
	pos  int
}

// Lexer scans Later source byte-by-byte into a Token stream. Unlike the
// teacher's Lexer (which exposes only NextToken and tracks line/column
// itself), span resolution is delegated to a shared sourcemap.File and
// Lexer instead owns the bits specific to tokenizing: kebab-glue state,
// the nestable-comment depth counter, and the opener stack for brace
// balance diagnostics.
type Lexer struct {
	src  string
	pos  int
	file *sourcemap.File

	pending []Token // queue fed by scanString's multi-token yields
	prevKind Kind
	hasPrev  bool

	openers []opener
	diags   []diag.Diagnostic
}

// New creates a Lexer over file's source text.
func New(file *sourcemap.File) *Lexer {
	return &Lexer{src: file.Src, file: file}
}

// Diagnostics returns lexical diagnostics recorded so far (unclosed
// delimiters are only known for certain once EOF is reached).
func (l *Lexer) Diagnostics() []diag.Diagnostic { return l.diags }

func (l *Lexer) span(start, end int) sourcemap.Span { return sourcemap.Span{Start: start, End: end} }

func (l *Lexer) errorf(start, end int, format string, args ...any) {
	l.diags = append(l.diags, diag.New(diag.KindSyntax, l.span(start, end), format, args...))
}

// NextToken returns the next token in the stream, EOF once input and any
// pending multi-token yields (from string interpolation) are exhausted.
func (l *Lexer) NextToken() Token {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		l.prevKind, l.hasPrev = t.Kind, true
		return t
	}
	toks := l.next()
	if len(toks) == 0 {
		return Token{Kind: EOF, Span: l.span(l.pos, l.pos)}
	}
	t := toks[0]
	l.pending = toks[1:]
	l.prevKind, l.hasPrev = t.Kind, true
	return t
}

// next scans the next syntactic unit, usually one token but several when a
// string literal contains interpolation (spec §4.1's fragment/open/close
// sequence).
func (l *Lexer) next() []Token {
	l.skipWhitespaceAndComments()
	if l.pos >= len(l.src) {
		l.checkUnclosedDelimiters()
		return nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case c == '"':
		l.pos++
		return l.scanString()
	case isDigit(c):
		return []Token{l.scanNumber()}
	case isIdentStart(c):
		return []Token{l.scanIdent()}
	}

	// Operators and punctuation.
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	three := ""
	if l.pos+2 < len(l.src) {
		three = l.src[l.pos : l.pos+3]
	}
	switch three {
	case "...":
		l.pos += 3
		return []Token{{Kind: ELLIPSIS, Literal: "...", Span: l.span(start, l.pos)}}
	}
	switch two {
	case "==":
		l.pos += 2
		return []Token{{Kind: EQ, Literal: "==", Span: l.span(start, l.pos)}}
	case "!=":
		l.pos += 2
		return []Token{{Kind: NE, Literal: "!=", Span: l.span(start, l.pos)}}
	case "<=":
		l.pos += 2
		return []Token{{Kind: LE, Literal: "<=", Span: l.span(start, l.pos)}}
	case ">=":
		l.pos += 2
		return []Token{{Kind: GE, Literal: ">=", Span: l.span(start, l.pos)}}
	case "=>":
		l.pos += 2
		return []Token{{Kind: ARROW, Literal: "=>", Span: l.span(start, l.pos)}}
	}

	l.pos++
	switch c {
	case '+':
		return []Token{{Kind: PLUS, Literal: "+", Span: l.span(start, l.pos)}}
	case '-':
		return []Token{{Kind: MINUS, Literal: "-", Span: l.span(start, l.pos)}}
	case '*':
		return []Token{{Kind: STAR, Literal: "*", Span: l.span(start, l.pos)}}
	case '/':
		return []Token{{Kind: SLASH, Literal: "/", Span: l.span(start, l.pos)}}
	case '%':
		return []Token{{Kind: PERCENT, Literal: "%", Span: l.span(start, l.pos)}}
	case '=':
		return []Token{{Kind: ASSIGN, Literal: "=", Span: l.span(start, l.pos)}}
	case '<':
		return []Token{{Kind: LT, Literal: "<", Span: l.span(start, l.pos)}}
	case '>':
		return []Token{{Kind: GT, Literal: ">", Span: l.span(start, l.pos)}}
	case '|':
		return []Token{{Kind: PIPE, Literal: "|", Span: l.span(start, l.pos)}}
	case '(':
		l.openers = append(l.openers, opener{LPAREN, start})
		return []Token{{Kind: LPAREN, Literal: "(", Span: l.span(start, l.pos)}}
	case ')':
		l.closeOpener(LPAREN)
		return []Token{{Kind: RPAREN, Literal: ")", Span: l.span(start, l.pos)}}
	case '{':
		l.openers = append(l.openers, opener{LBRACE, start})
		return []Token{{Kind: LBRACE, Literal: "{", Span: l.span(start, l.pos)}}
	case '}':
		l.closeOpener(LBRACE)
		return []Token{{Kind: RBRACE, Literal: "}", Span: l.span(start, l.pos)}}
	case '[':
		l.openers = append(l.openers, opener{LBRACKET, start})
		return []Token{{Kind: LBRACKET, Literal: "[", Span: l.span(start, l.pos)}}
	case ']':
		l.closeOpener(LBRACKET)
		return []Token{{Kind: RBRACKET, Literal: "]", Span: l.span(start, l.pos)}}
	case ',':
		return []Token{{Kind: COMMA, Literal: ",", Span: l.span(start, l.pos)}}
	case ';':
		return []Token{{Kind: SEMI, Literal: ";", Span: l.span(start, l.pos)}}
	case ':':
		return []Token{{Kind: COLON, Literal: ":", Span: l.span(start, l.pos)}}
	case '.':
		return []Token{{Kind: DOT, Literal: ".", Span: l.span(start, l.pos)}}
	case '@':
		return []Token{{Kind: AT, Literal: "@", Span: l.span(start, l.pos)}}
	default:
		l.errorf(start, l.pos, "unexpected character %q", c)
		return []Token{{Kind: INVALID, Literal: string(c), Span: l.span(start, l.pos)}}
	}
}

func (l *Lexer) closeOpener(want Kind) {
	if n := len(l.openers); n > 0 && l.openers[n-1].kind == want {
		l.openers = l.openers[:n-1]
	}
	// A mismatched closer is a parser-level syntax error (unexpected
	// token), not a lexical one; the lexer only tracks balance for the
	// EOF unclosed-delimiter report.
}

func (l *Lexer) checkUnclosedDelimiters() {
	for i := len(l.openers) - 1; i >= 0; i-- {
		o := l.openers[i]
		var lit string
		switch o.kind {
		case LPAREN:
			lit = "("
		case LBRACE:
			lit = "{"
		case LBRACKET:
			lit = "["
		}
		l.errorf(o.pos, o.pos+1, "unclosed `%s`", lit)
	}
	l.openers = nil
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			start := l.pos
			l.pos += 2
			depth := 1
			for l.pos < len(l.src) && depth > 0 {
				if l.pos+1 < len(l.src) && l.src[l.pos] == '/' && l.src[l.pos+1] == '*' {
					depth++
					l.pos += 2
				} else if l.pos+1 < len(l.src) && l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
					depth--
					l.pos += 2
				} else {
					l.pos++
				}
			}
			if depth > 0 {
				l.errorf(start, start+2, "unclosed block comment")
			}
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// isValueProducing reports whether kind can end a complete value-yielding
// expression, per spec §4.1's kebab-identifier rule: a `-` immediately
// following such a token is subtraction, never identifier glue.
func isValueProducing(k Kind) bool {
	switch k {
	case IDENT, INT, FLOAT, STRING, STR_FRAGMENT, INTERP_CLOSE,
		TRUE, FALSE, NIL, RPAREN, RBRACKET, RBRACE:
		return true
	}
	return false
}

// scanIdent reads an identifier, gluing a `-` into it (kebab-case) only
// when spec §4.1's rule allows: no whitespace around `-`, `-` immediately
// followed by another identifier-continuation byte, and the token
// preceding this whole identifier is not itself value-producing.
func (l *Lexer) scanIdent() Token {
	start := l.pos
	glueAllowed := !l.hasPrev || !isValueProducing(l.prevKind)

	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	for glueAllowed && l.pos < len(l.src) && l.src[l.pos] == '-' &&
		l.pos+1 < len(l.src) && isIdentCont(l.src[l.pos+1]) {
		l.pos++ // consume '-'
		for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
			l.pos++
		}
	}

	lit := l.src[start:l.pos]
	if kw, ok := keywords[lit]; ok {
		return Token{Kind: kw, Literal: lit, Span: l.span(start, l.pos)}
	}
	return Token{Kind: IDENT, Literal: lit, Span: l.span(start, l.pos)}
}

// scanNumber reads an integer or float literal. Unary minus is never part
// of a numeric literal (spec §4.1): the parser attaches it separately.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	isFloat := false
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		isFloat = true
		l.pos++ // consume '.'
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	lit := l.src[start:l.pos]
	if isFloat {
		return Token{Kind: FLOAT, Literal: lit, Span: l.span(start, l.pos)}
	}
	return Token{Kind: INT, Literal: lit, Span: l.span(start, l.pos)}
}

// scanString handles both plain strings (returns a single STRING token)
// and interpolated strings (returns the fragment/open/close sequence from
// spec §4.1). l.pos is positioned just after the opening quote.
func (l *Lexer) scanString() []Token {
	start := l.pos
	var frag strings.Builder
	fragStart := l.pos
	var toks []Token
	hadInterp := false

	for {
		if l.pos >= len(l.src) {
			l.errorf(start-1, l.pos, "unterminated string literal")
			break
		}
		c := l.src[l.pos]
		switch c {
		case '"':
			span := l.span(fragStart, l.pos)
			l.pos++
			if !hadInterp {
				return []Token{{Kind: STRING, Literal: frag.String(), Span: l.span(start-1, l.pos)}}
			}
			toks = append(toks, Token{Kind: STR_FRAGMENT, Literal: frag.String(), Span: span})
			return toks
		case '\\':
			l.scanEscape(&frag)
		case '{':
			hadInterp = true
			toks = append(toks, Token{Kind: STR_FRAGMENT, Literal: frag.String(), Span: l.span(fragStart, l.pos)})
			openStart := l.pos
			l.pos++ // consume '{'
			toks = append(toks, Token{Kind: INTERP_OPEN, Literal: "{", Span: l.span(openStart, l.pos)})
			inner, closeSpan := l.scanExprUntilInterpClose()
			toks = append(toks, inner...)
			toks = append(toks, Token{Kind: INTERP_CLOSE, Literal: "}", Span: closeSpan})
			frag.Reset()
			fragStart = l.pos
		default:
			frag.WriteByte(c)
			l.pos++
		}
	}
	if hadInterp {
		toks = append(toks, Token{Kind: STR_FRAGMENT, Literal: frag.String(), Span: l.span(fragStart, l.pos)})
		return toks
	}
	return []Token{{Kind: STRING, Literal: frag.String(), Span: l.span(start-1, l.pos)}}
}

// scanEscape decodes one `\X` escape (spec §4.1: \n \t \r \\ \" \{ \}) into
// frag, advancing past both bytes (or reporting an unknown escape as a
// literal backslash-letter pair).
func (l *Lexer) scanEscape(frag *strings.Builder) {
	start := l.pos
	l.pos++ // consume backslash
	if l.pos >= len(l.src) {
		l.errorf(start, l.pos, "unterminated escape sequence")
		return
	}
	c := l.src[l.pos]
	l.pos++
	switch c {
	case 'n':
		frag.WriteByte('\n')
	case 't':
		frag.WriteByte('\t')
	case 'r':
		frag.WriteByte('\r')
	case '\\':
		frag.WriteByte('\\')
	case '"':
		frag.WriteByte('"')
	case '{':
		frag.WriteByte('{')
	case '}':
		frag.WriteByte('}')
	default:
		l.errorf(start, l.pos, "unknown escape sequence \\%c", c)
		frag.WriteByte('\\')
		frag.WriteByte(c)
	}
}

// scanExprUntilInterpClose scans ordinary tokens for an interpolated
// expression, tracking `{`/`}` nesting so an inner object/block literal's
// braces are not mistaken for the interpolation's closing brace.
func (l *Lexer) scanExprUntilInterpClose() ([]Token, sourcemap.Span) {
	depth := 0
	var toks []Token
	for {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.src) {
			l.errorf(l.pos, l.pos, "unterminated string interpolation")
			return toks, l.span(l.pos, l.pos)
		}
		if l.src[l.pos] == '}' && depth == 0 {
			start := l.pos
			l.pos++
			return toks, l.span(start, l.pos)
		}
		next := l.next()
		for _, t := range next {
			switch t.Kind {
			case LBRACE:
				depth++
			case RBRACE:
				depth--
			}
			toks = append(toks, t)
			if len(toks) > 0 {
				l.prevKind, l.hasPrev = t.Kind, true
			}
		}
	}
}

// ParseIntLiteral converts a scanned INT token's literal to int64,
// surfacing overflow as a boolean rather than panicking - the parser turns
// a false ok into a Type diagnostic.
func ParseIntLiteral(lit string) (int64, bool) {
	v, err := strconv.ParseInt(lit, 10, 64)
	return v, err == nil
}

// ParseFloatLiteral converts a scanned FLOAT token's literal to float64.
func ParseFloatLiteral(lit string) (float64, bool) {
	v, err := strconv.ParseFloat(lit, 64)
	return v, err == nil
}
