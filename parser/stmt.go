package parser

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/lexer"
)

func (p *Parser) parseLet() ast.Node {
	start := p.cur.Span
	p.expect(lexer.LET)
	mutable := false
	if p.cur.Kind == lexer.MUT {
		p.advance()
		mutable = true
	}
	pat := p.parsePattern()
	p.expect(lexer.ASSIGN)
	value := p.parseExprStatement()
	return &ast.Let{Meta: p.meta(start), Pat: pat, Mutable: mutable, Value: value}
}

func (p *Parser) parseDefer() ast.Node {
	start := p.cur.Span
	p.expect(lexer.DEFER)
	return &ast.Defer{Meta: p.meta(start), Expr: p.parseExprStatement()}
}

func (p *Parser) parseImport() ast.Node {
	start := p.cur.Span
	p.expect(lexer.IMPORT)
	pathTok, _ := p.expect(lexer.STRING)
	alias := ""
	if p.cur.Kind == lexer.AS {
		p.advance()
		alias, _ = p.identLike()
	}
	return &ast.Import{Meta: p.meta(start), Path: pathTok.Literal, Alias: alias}
}

// stopsExpr reports whether k cannot begin an expression, used to decide
// whether `break`/`resume` carry an optional trailing value.
func stopsExpr(k lexer.Kind) bool {
	switch k {
	case lexer.SEMI, lexer.COMMA, lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseBreak() ast.Node {
	start := p.cur.Span
	p.expect(lexer.BREAK)
	var val ast.Node
	if !stopsExpr(p.cur.Kind) {
		val = p.parseExprStatement()
	}
	return &ast.Break{Meta: p.meta(start), Value: val}
}

func (p *Parser) parseIf() ast.Node {
	start := p.cur.Span
	p.expect(lexer.IF)
	cond := p.parseExprStatement()
	then := p.parseBlock()
	var elseNode ast.Node
	if p.cur.Kind == lexer.ELSE {
		p.advance()
		if p.cur.Kind == lexer.IF {
			elseNode = p.parseIf()
		} else {
			elseNode = p.parseBlock()
		}
	}
	return &ast.If{Meta: p.meta(start), Cond: cond, Then: then, Else: elseNode}
}

func (p *Parser) parseLoop() ast.Node {
	start := p.cur.Span
	p.expect(lexer.LOOP)
	return &ast.Loop{Meta: p.meta(start), Body: p.parseBlock()}
}

// parseWhile desugars `while cond { body }` into `loop { if !cond { break
// nil } body }` at parse time (spec §4.2), so every later pass only ever
// sees Loop/If/Break.
func (p *Parser) parseWhile() ast.Node {
	start := p.cur.Span
	p.expect(lexer.WHILE)
	cond := p.parseExprStatement()
	body := p.parseBlock()

	guardSpan := cond.Span()
	guard := &ast.If{
		Meta: p.meta(guardSpan),
		Cond: &ast.Un{Meta: p.meta(guardSpan), Op: ast.OpNot, Operand: cond},
		Then: &ast.Block{
			Meta:  p.meta(guardSpan),
			Stmts: []ast.Node{&ast.Break{Meta: p.meta(guardSpan), Value: &ast.Lit{Meta: p.meta(guardSpan), LitKind: ast.LitNil}}},
		},
	}
	stmts := append([]ast.Node{guard}, body.Stmts...)
	return &ast.Loop{Meta: p.meta(start), Body: &ast.Block{Meta: p.meta(start), Stmts: stmts}}
}

func (p *Parser) parseFn() ast.Node {
	start := p.cur.Span
	p.expect(lexer.FN)
	name := ""
	if p.cur.Kind == lexer.IDENT {
		name = p.cur.Literal
		p.advance()
	}
	params, rest := p.parseParams()
	body := p.parseBodyBlockOrExpr()
	return &ast.Fn{Meta: p.meta(start), Name: name, Params: params, Rest: rest, Body: body}
}

func (p *Parser) parseParams() ([]ast.Param, string) {
	p.expect(lexer.LPAREN)
	var params []ast.Param
	rest := ""
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		if p.cur.Kind == lexer.ELLIPSIS {
			p.advance()
			rest, _ = p.identLike()
			break
		}
		pat := p.parsePattern()
		typ := ""
		if p.cur.Kind == lexer.COLON {
			p.advance()
			typ, _ = p.identLike()
		}
		var def ast.Node
		if p.cur.Kind == lexer.ASSIGN {
			p.advance()
			def = p.parseExprStatement()
		}
		params = append(params, ast.Param{Pat: pat, Type: typ, Default: def})
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return params, rest
}

// parsePattern parses the destructuring sub-language used by `let`,
// function parameters, and `match` arms (spec §3).
func (p *Parser) parsePattern() *ast.Pattern {
	start := p.cur.Span
	switch p.cur.Kind {
	case lexer.UNDERSCORE:
		p.advance()
		return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatWildcard}
	case lexer.MUT:
		p.advance()
		name, _ := p.identLike()
		return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatBinding, Name: name, Mutable: true}
	case lexer.IDENT:
		name := p.cur.Literal
		p.advance()
		if name == "_" {
			// the lexer scans a bare `_` as an identifier
			return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatWildcard}
		}
		return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatBinding, Name: name}
	case lexer.LBRACKET:
		p.advance()
		var elems []*ast.Pattern
		rest := ""
		for p.cur.Kind != lexer.RBRACKET && p.cur.Kind != lexer.EOF {
			if p.cur.Kind == lexer.ELLIPSIS {
				p.advance()
				rest, _ = p.identLike()
				break
			}
			elems = append(elems, p.parsePattern())
			if p.cur.Kind == lexer.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RBRACKET)
		return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatList, Elems: elems, Rest: rest}
	case lexer.LBRACE:
		p.advance()
		var fields []ast.PatternField
		rest := ""
		for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
			if p.cur.Kind == lexer.ELLIPSIS {
				p.advance()
				rest, _ = p.identLike()
				break
			}
			keySpan := p.cur.Span
			key, _ := p.identLike()
			var sub *ast.Pattern
			if p.cur.Kind == lexer.COLON {
				p.advance()
				sub = p.parsePattern()
			} else {
				sub = &ast.Pattern{Meta: p.meta(keySpan), PatKind: ast.PatBinding, Name: key}
			}
			fields = append(fields, ast.PatternField{Key: key, Pat: sub})
			if p.cur.Kind == lexer.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RBRACE)
		return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatObject, Fields: fields, ObjectRest: rest}
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.NIL:
		lit := p.parsePrimary().(*ast.Lit)
		return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatLiteral, Literal: lit}
	default:
		p.errorf(p.cur.Span, "unexpected token %s, expected pattern", p.cur.Kind)
		p.recover()
		return &ast.Pattern{Meta: p.meta(start), PatKind: ast.PatWildcard}
	}
}

func (p *Parser) parseMatch() ast.Node {
	start := p.cur.Span
	p.expect(lexer.MATCH)
	subject := p.parseExprStatement()
	p.expect(lexer.LBRACE)
	var arms []ast.MatchArm
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		pat := p.parsePattern()
		var guard ast.Node
		if p.cur.Kind == lexer.IF {
			p.advance()
			guard = p.parseExprStatement()
		}
		p.expect(lexer.ARROW)
		body := p.parseExprStatement()
		arms = append(arms, ast.MatchArm{Pat: pat, Guard: guard, Body: body})
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.Match{Meta: p.meta(start), Subject: subject, Arms: arms}
}

// parseHandle parses `handle { body } with { effect(params) => body, ... }`.
// Every case installs a deep handler: Later's grammar lexes no
// shallow/deep keyword, so the ast.HandleCase type carries no such flag
// (decision recorded in DESIGN.md) and the evaluator always re-installs
// the handler frame after `resume`.
func (p *Parser) parseHandle() ast.Node {
	start := p.cur.Span
	p.expect(lexer.HANDLE)
	body := p.parseBlock()
	p.expect(lexer.WITH)
	p.expect(lexer.LBRACE)
	var cases []ast.HandleCase
	for p.cur.Kind != lexer.RBRACE && p.cur.Kind != lexer.EOF {
		effect, _ := p.identLike()
		var params []*ast.Pattern
		if p.cur.Kind == lexer.LPAREN {
			p.advance()
			for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
				params = append(params, p.parsePattern())
				if p.cur.Kind == lexer.COMMA {
					p.advance()
					continue
				}
				break
			}
			p.expect(lexer.RPAREN)
		}
		p.expect(lexer.ARROW)
		caseBody := p.parseExprStatement()
		cases = append(cases, ast.HandleCase{Effect: effect, Params: params, Body: caseBody})
		if p.cur.Kind == lexer.COMMA {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.Handle{Meta: p.meta(start), Body: body, Cases: cases}
}

func (p *Parser) parsePerform() ast.Node {
	start := p.cur.Span
	p.expect(lexer.PERFORM)
	name, _ := p.identLike()
	var args []ast.Node
	if p.cur.Kind == lexer.LPAREN {
		args = p.parseArgList()
	}
	return &ast.Perform{Meta: p.meta(start), Name: name, Args: args}
}

func (p *Parser) parseResume() ast.Node {
	start := p.cur.Span
	p.expect(lexer.RESUME)
	p.expect(lexer.LPAREN)
	var val ast.Node
	if p.cur.Kind != lexer.RPAREN {
		val = p.parseExprStatement()
	}
	p.expect(lexer.RPAREN)
	return &ast.Resume{Meta: p.meta(start), Value: val}
}

func (p *Parser) parseSpawn() ast.Node {
	start := p.cur.Span
	p.expect(lexer.SPAWN)
	return &ast.Spawn{Meta: p.meta(start), Body: p.parseBlock()}
}

// parseTaskList parses `all [t1, t2, ...]` / `race [t1, t2, ...]`.
func (p *Parser) parseTaskList(kw lexer.Kind) ast.Node {
	start := p.cur.Span
	p.expect(kw)
	p.expect(lexer.LBRACKET)
	var tasks []ast.Node
	for p.cur.Kind != lexer.RBRACKET && p.cur.Kind != lexer.EOF {
		tasks = append(tasks, p.parseExprStatement())
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET)
	if kw == lexer.ALL {
		return &ast.All{Meta: p.meta(start), Tasks: tasks}
	}
	return &ast.Race{Meta: p.meta(start), Tasks: tasks}
}

func (p *Parser) parseTimeout() ast.Node {
	start := p.cur.Span
	p.expect(lexer.TIMEOUT)
	p.expect(lexer.LPAREN)
	ms := p.parseExprStatement()
	p.expect(lexer.COMMA)
	body := p.parseBodyBlockOrExpr()
	p.expect(lexer.RPAREN)
	return &ast.Timeout{Meta: p.meta(start), Ms: ms, Body: body}
}
