// Package parser builds Later's expression tree from a token stream (spec
// component C). It is a Pratt parser in shape, but since every binary
// operator shares the same "running precedence" (spec §4.2: strictly
// left-to-right regardless of symbol), there is no precedence table to
// climb — parseArithExpr is a flat left-fold instead of the usual
// led/nud-by-binding-power dispatch the teacher's original parser wrote
// for GoMix's conventional-precedence grammar.
package parser

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/lexer"
	"github.com/later-lang/later/sourcemap"
)

// Parser holds the token stream and the diagnostic bag a parse
// accumulates; it never halts at the first error (spec §4.2 error
// recovery).
type Parser struct {
	file *sourcemap.File
	lx   *lexer.Lexer
	ids  ast.IDGen

	cur, peek lexer.Token
	prevSpan  sourcemap.Span

	bag *diag.Bag
}

// New creates a parser over file's contents.
func New(file *sourcemap.File) *Parser {
	p := &Parser{file: file, lx: lexer.New(file), bag: diag.NewBag(file)}
	p.cur = p.lx.NextToken()
	p.peek = p.lx.NextToken()
	return p
}

// Parse parses an entire program (a sequence of top-level statements, the
// same grammar as a block body but terminated by EOF instead of `}`) and
// returns it alongside every diagnostic collected from the lexer and
// parser passes.
func Parse(file *sourcemap.File) (*ast.Block, *diag.Bag) {
	p := New(file)
	start := p.cur.Span
	stmts := p.parseStmtsUntil(lexer.EOF)
	for _, d := range p.lx.Diagnostics() {
		p.bag.Add(d)
	}
	block := &ast.Block{Meta: p.meta(start), Stmts: stmts}
	return block, p.bag
}

func (p *Parser) meta(start sourcemap.Span) ast.Meta {
	return ast.Meta{NID: p.ids.Next(), NSpan: sourcemap.Join(start, p.prevSpan)}
}

func (p *Parser) advance() {
	p.prevSpan = p.cur.Span
	p.cur = p.peek
	p.peek = p.lx.NextToken()
}

// expect consumes the current token if it has kind k, else records a
// Syntax diagnostic and leaves the cursor in place for the caller's
// recovery loop to deal with.
func (p *Parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.cur.Kind == k {
		tok := p.cur
		p.advance()
		return tok, true
	}
	p.errorf(p.cur.Span, "unexpected token %s, expected %s", p.cur.Kind, k)
	return p.cur, false
}

func (p *Parser) errorf(span sourcemap.Span, format string, args ...any) {
	p.bag.Add(diag.New(diag.KindSyntax, span, format, args...))
}

// identLike accepts an identifier or a keyword token used as a name (spec
// §4.2 "Keywords are legal keys"; the same leniency applies to effect
// names in `perform`/`handle` and object keys).
func (p *Parser) identLike() (string, bool) {
	if p.cur.Kind == lexer.IDENT || isKeywordKind(p.cur.Kind) {
		lit := p.cur.Literal
		p.advance()
		return lit, true
	}
	p.errorf(p.cur.Span, "unexpected token %s, expected identifier", p.cur.Kind)
	return "", false
}

func isKeywordKind(k lexer.Kind) bool {
	switch k {
	case lexer.LET, lexer.MUT, lexer.FN, lexer.IF, lexer.ELSE, lexer.LOOP, lexer.WHILE,
		lexer.BREAK, lexer.CONTINUE, lexer.AS, lexer.DEFER, lexer.SPAWN, lexer.HANDLE,
		lexer.WITH, lexer.RESUME, lexer.PERFORM, lexer.COMPTIME, lexer.STARTUP, lexer.NIL,
		lexer.TRUE, lexer.FALSE, lexer.AND, lexer.OR, lexer.NOT, lexer.MATCH, lexer.ALL,
		lexer.RACE, lexer.AWAIT, lexer.TIMEOUT, lexer.IMPORT:
		return true
	default:
		return false
	}
}

// isStmtStart reports whether k begins a new statement, used both by
// recover() (a synchronizing token) and by the "is there an expression
// here" lookahead for optional trailing expressions like `break value`.
func isStmtStart(k lexer.Kind) bool {
	switch k {
	case lexer.LET, lexer.DEFER, lexer.IMPORT, lexer.IF, lexer.LOOP, lexer.WHILE,
		lexer.BREAK, lexer.CONTINUE, lexer.FN, lexer.MATCH, lexer.HANDLE, lexer.PERFORM,
		lexer.SPAWN, lexer.ALL, lexer.RACE, lexer.AWAIT, lexer.TIMEOUT, lexer.COMPTIME,
		lexer.STARTUP:
		return true
	default:
		return false
	}
}

// recover skips tokens until a synchronizing token (spec §4.2: `;`, `,`,
// `)`, `]`, `}`, or a statement-starting keyword) so one bad statement
// does not cascade into spurious errors for the rest of the file.
func (p *Parser) recover() {
	for {
		switch p.cur.Kind {
		case lexer.SEMI, lexer.COMMA, lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.EOF:
			return
		}
		if isStmtStart(p.cur.Kind) {
			return
		}
		p.advance()
	}
}

// parseStmtsUntil parses statements, each optionally followed by one or
// more `;`, stopping once stop is reached (RBRACE for a block body, EOF
// for a whole program).
func (p *Parser) parseStmtsUntil(stop lexer.Kind) []ast.Node {
	var stmts []ast.Node
	for p.cur.Kind != stop && p.cur.Kind != lexer.EOF {
		beforeKind, beforeSpan := p.cur.Kind, p.cur.Span
		stmt := p.parseStatement()
		stmts = append(stmts, stmt)
		for p.cur.Kind == lexer.SEMI {
			p.advance()
		}
		if p.cur.Kind == beforeKind && p.cur.Span == beforeSpan {
			// parseStatement made no progress (e.g. it hit an error at the
			// very first token); force progress so the loop terminates.
			p.advance()
		}
	}
	return stmts
}
