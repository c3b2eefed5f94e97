package parser

import (
	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/lexer"
	"github.com/later-lang/later/sourcemap"
)

// parseStatement is the entry point used at every statement position (a
// block's body, a program's top level): the handful of forms that are
// only legal there (let/defer/import) are dispatched here, everything
// else falls through to the general expression grammar.
func (p *Parser) parseStatement() ast.Node {
	switch p.cur.Kind {
	case lexer.LET:
		return p.parseLet()
	case lexer.DEFER:
		return p.parseDefer()
	case lexer.IMPORT:
		return p.parseImport()
	default:
		return p.parseExprStatement()
	}
}

// parseExprStatement parses an expression, with a trailing `=` read as an
// assignment (spec §4.2's `target = value`). It is also what nested
// contexts (call arguments, list/object elements, if-conditions, match
// arm bodies, ...) call — Later's grammar does not special-case those
// positions away from the full expression grammar.
func (p *Parser) parseExprStatement() ast.Node {
	start := p.cur.Span
	left := p.parsePipeExpr()
	if p.cur.Kind == lexer.ASSIGN {
		p.advance()
		value := p.parseExprStatement()
		return &ast.Assign{Meta: p.meta(start), Target: left, Value: value}
	}
	return left
}

// parsePipeExpr implements spec §4.2's pipe, the lowest-precedence binary:
// its left operand is a full running-precedence arithmetic expression, and
// `x | rhs` rewrites immediately per the three rules (call, `.method`,
// bare callee) rather than staying a Pipe node in the tree that reaches
// stage partitioning.
func (p *Parser) parsePipeExpr() ast.Node {
	left := p.parseArithExpr()
	for p.cur.Kind == lexer.PIPE {
		start := p.cur.Span
		p.advance()
		left = p.parsePipeRHS(left, start)
	}
	return left
}

func (p *Parser) parsePipeRHS(piped ast.Node, start sourcemap.Span) ast.Node {
	if p.cur.Kind == lexer.DOT {
		p.advance()
		name, _ := p.identLike()
		var args []ast.Node
		if p.cur.Kind == lexer.LPAREN {
			args = p.parseArgList()
		}
		return &ast.Call{
			Meta:   p.meta(start),
			Callee: &ast.Ident{Meta: p.meta(start), Name: name},
			Args:   append([]ast.Node{piped}, args...),
		}
	}
	rhs := p.parsePostfix()
	if call, ok := rhs.(*ast.Call); ok {
		call.Args = append([]ast.Node{piped}, call.Args...)
		return call
	}
	return &ast.Call{Meta: p.meta(start), Callee: rhs, Args: []ast.Node{piped}}
}

var binOps = map[lexer.Kind]ast.BinOp{
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub, lexer.STAR: ast.OpMul,
	lexer.SLASH: ast.OpDiv, lexer.PERCENT: ast.OpMod, lexer.EQ: ast.OpEq,
	lexer.NE: ast.OpNe, lexer.LT: ast.OpLt, lexer.LE: ast.OpLe,
	lexer.GT: ast.OpGt, lexer.GE: ast.OpGe, lexer.AND: ast.OpAnd, lexer.OR: ast.OpOr,
}

// parseArithExpr is the flat running-precedence fold: every operator binds
// with equal, strictly left-to-right strength (spec §4.2, §8 property 2).
func (p *Parser) parseArithExpr() ast.Node {
	start := p.cur.Span
	left := p.parseUnary()
	for {
		op, ok := binOps[p.cur.Kind]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseUnary()
		left = &ast.Bin{Meta: p.meta(start), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Node {
	start := p.cur.Span
	switch p.cur.Kind {
	case lexer.MINUS:
		p.advance()
		return &ast.Un{Meta: p.meta(start), Op: ast.OpNeg, Operand: p.parseUnary()}
	case lexer.NOT:
		p.advance()
		return &ast.Un{Meta: p.meta(start), Op: ast.OpNot, Operand: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Node {
	start := p.cur.Span
	expr := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case lexer.DOT:
			p.advance()
			name, _ := p.identLike()
			expr = &ast.Field{Meta: p.meta(start), Object: expr, Name: name}
		case lexer.LPAREN:
			args := p.parseArgList()
			expr = &ast.Call{Meta: p.meta(start), Callee: expr, Args: args}
		case lexer.LBRACKET:
			p.advance()
			idx := p.parseExprStatement()
			p.expect(lexer.RBRACKET)
			expr = &ast.Index{Meta: p.meta(start), Object: expr, Index: idx}
		case lexer.AS:
			p.advance()
			name, _ := p.identLike()
			expr = &ast.As{Meta: p.meta(start), Expr: expr, Name: name}
		default:
			return expr
		}
	}
}

// parseArgList parses a parenthesized, comma-separated argument list
// (spread-aware, trailing comma permitted), assuming the current token is
// the opening `(`.
func (p *Parser) parseArgList() []ast.Node {
	p.expect(lexer.LPAREN)
	var args []ast.Node
	for p.cur.Kind != lexer.RPAREN && p.cur.Kind != lexer.EOF {
		if p.cur.Kind == lexer.ELLIPSIS {
			start := p.cur.Span
			p.advance()
			args = append(args, &ast.Spread{Meta: p.meta(start), Value: p.parseExprStatement()})
		} else {
			args = append(args, p.parseExprStatement())
		}
		if p.cur.Kind == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return args
}
