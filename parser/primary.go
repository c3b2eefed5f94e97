package parser

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/diag"
	"github.com/later-lang/later/lexer"
	"github.com/later-lang/later/sourcemap"
)

// parsePrimary dispatches on the current token to the innermost expression
// forms: literals, identifiers, grouping, literals for list/object, and
// every keyword-led construct (if/loop/while/match/fn/handle/perform/
// resume/spawn/all/race/await/timeout/stage-marks). A bare `{` in this
// position is always an object literal (spec §4.2's object grammar); a
// block used as a value only ever appears where the grammar explicitly
// expects one (if/loop/fn/handle/spawn/timeout bodies), each parsed via
// parseBlock directly rather than through parsePrimary. This resolves the
// `{` object-vs-block ambiguity the same way Rust's expression grammar
// does, and is recorded as an Open Question resolution in DESIGN.md.
func (p *Parser) parsePrimary() ast.Node {
	start := p.cur.Span
	switch p.cur.Kind {
	case lexer.INT:
		lit := p.cur.Literal
		p.advance()
		v, ok := lexer.ParseIntLiteral(lit)
		if !ok {
			p.bag.Add(diag.New(diag.KindType, start, "integer literal `%s` out of range", lit))
		}
		return &ast.Lit{Meta: p.meta(start), LitKind: ast.LitInt, IntVal: v}
	case lexer.FLOAT:
		lit := p.cur.Literal
		p.advance()
		v, _ := lexer.ParseFloatLiteral(lit)
		return &ast.Lit{Meta: p.meta(start), LitKind: ast.LitFloat, FloatVal: v}
	case lexer.STRING:
		lit := p.cur.Literal
		p.advance()
		return &ast.Lit{Meta: p.meta(start), LitKind: ast.LitString, StrVal: lit}
	case lexer.STR_FRAGMENT:
		return p.parseInterpString()
	case lexer.TRUE:
		p.advance()
		return &ast.Lit{Meta: p.meta(start), LitKind: ast.LitBool, BoolVal: true}
	case lexer.FALSE:
		p.advance()
		return &ast.Lit{Meta: p.meta(start), LitKind: ast.LitBool, BoolVal: false}
	case lexer.NIL:
		p.advance()
		return &ast.Lit{Meta: p.meta(start), LitKind: ast.LitNil}
	case lexer.IDENT:
		name := p.cur.Literal
		p.advance()
		return &ast.Ident{Meta: p.meta(start), Name: name}
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExprStatement()
		p.expect(lexer.RPAREN)
		return inner
	case lexer.LBRACKET:
		return p.parseListLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	case lexer.FN:
		return p.parseFn()
	case lexer.IF:
		return p.parseIf()
	case lexer.LOOP:
		return p.parseLoop()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.BREAK:
		return p.parseBreak()
	case lexer.CONTINUE:
		p.advance()
		return &ast.Continue{Meta: p.meta(start)}
	case lexer.MATCH:
		return p.parseMatch()
	case lexer.HANDLE:
		return p.parseHandle()
	case lexer.PERFORM:
		return p.parsePerform()
	case lexer.RESUME:
		return p.parseResume()
	case lexer.SPAWN:
		return p.parseSpawn()
	case lexer.ALL:
		return p.parseTaskList(lexer.ALL)
	case lexer.RACE:
		return p.parseTaskList(lexer.RACE)
	case lexer.AWAIT:
		p.advance()
		return &ast.Await{Meta: p.meta(start), Task: p.parseUnary()}
	case lexer.TIMEOUT:
		return p.parseTimeout()
	case lexer.COMPTIME:
		p.advance()
		return &ast.StageMark{Meta: p.meta(start), Forced: ast.StageComptime, Body: p.parseBodyBlockOrExpr()}
	case lexer.STARTUP:
		p.advance()
		return &ast.StageMark{Meta: p.meta(start), Forced: ast.StageStartup, Body: p.parseBodyBlockOrExpr()}
	default:
		p.errorf(p.cur.Span, "unexpected token %s", p.cur.Kind)
		p.recover()
		return &ast.Lit{Meta: p.meta(start), LitKind: ast.LitNil}
	}
}

func (p *Parser) parseInterpString() ast.Node {
	start := p.cur.Span
	var parts []ast.Node
	frag := p.cur.Literal
	p.advance()
	parts = append(parts, &ast.Lit{Meta: p.meta(start), LitKind: ast.LitString, StrVal: frag})
	for p.cur.Kind == lexer.INTERP_OPEN {
		p.advance()
		sub := p.parseExprStatement()
		p.expect(lexer.INTERP_CLOSE)
		parts = append(parts, sub)
		fragStart := p.cur.Span
		if p.cur.Kind == lexer.STR_FRAGMENT {
			fragLit := p.cur.Literal
			p.advance()
			parts = append(parts, &ast.Lit{Meta: p.meta(fragStart), LitKind: ast.LitString, StrVal: fragLit})
		}
	}
	return &ast.InterpString{Meta: p.meta(start), Parts: parts}
}

func (p *Parser) parseListLiteral() ast.Node {
	start := p.cur.Span
	p.expect(lexer.LBRACKET)
	var elems []ast.Node
	for p.cur.Kind != lexer.RBRACKET && p.cur.Kind != lexer.EOF {
		if p.cur.Kind == lexer.ELLIPSIS {
			spreadStart := p.cur.Span
			p.advance()
			elems = append(elems, &ast.Spread{Meta: p.meta(spreadStart), Value: p.parseExprStatement()})
		} else {
			elems = append(elems, p.parseExprStatement())
		}
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET)
	return &ast.List{Meta: p.meta(start), Elems: elems}
}

func (p *Parser) parseObjectLiteral() ast.Node {
	start := p.cur.Span
	p.expect(lexer.LBRACE)
	var fields []ast.ObjectField
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		if p.cur.Kind == lexer.ELLIPSIS {
			p.advance()
			fields = append(fields, ast.ObjectField{Spread: true, Value: p.parseExprStatement()})
		} else {
			key, keySpan, ok := p.objectKey()
			if !ok {
				p.recover()
				break
			}
			if p.cur.Kind == lexer.COLON {
				p.advance()
				fields = append(fields, ast.ObjectField{Key: key, Value: p.parseExprStatement()})
			} else {
				// shorthand `k` ≡ `k: k`
				fields = append(fields, ast.ObjectField{Key: key, Value: &ast.Ident{Meta: p.meta(keySpan), Name: key}})
			}
		}
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE)
	return &ast.Object{Meta: p.meta(start), Fields: fields}
}

// objectKey accepts an identifier, a keyword-as-key, or a string literal
// key (spec §4.2 "Keywords are legal keys").
func (p *Parser) objectKey() (string, sourcemap.Span, bool) {
	span := p.cur.Span
	if p.cur.Kind == lexer.STRING {
		lit := p.cur.Literal
		p.advance()
		return lit, span, true
	}
	name, ok := p.identLike()
	return name, span, ok
}

func (p *Parser) parseBodyBlockOrExpr() ast.Node {
	if p.cur.Kind == lexer.LBRACE {
		return p.parseBlock()
	}
	return p.parseExprStatement()
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur.Span
	p.expect(lexer.LBRACE)
	stmts := p.parseStmtsUntil(lexer.RBRACE)
	p.expect(lexer.RBRACE)
	return &ast.Block{Meta: p.meta(start), Stmts: stmts}
}
