// Package parser implements a Pratt-precedence recursive-descent parser
// producing an *ast.Program from Ember source, per the contract spec.md §6
// assigns the (external, out-of-CORE) parser: Parse(source, offset) ->
// Program | [ErrorSpan].
package parser

import (
	"github.com/emberlox/ember/internal/ast"
	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/lexer"
	"github.com/emberlox/ember/internal/span"
	"github.com/emberlox/ember/internal/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
)

var precedences = map[token.Type]int{
	token.OR:            precOr,
	token.AND:           precAnd,
	token.EQUAL_EQUAL:   precEquality,
	token.BANG_EQUAL:    precEquality,
	token.LESS:          precComparison,
	token.LESS_EQUAL:    precComparison,
	token.GREATER:       precComparison,
	token.GREATER_EQUAL: precComparison,
	token.PLUS:          precTerm,
	token.MINUS:         precTerm,
	token.STAR:          precFactor,
	token.SLASH:         precFactor,
	token.PERCENT:       precFactor,
	token.LPAREN:        precCall,
	token.DOT:           precCall,
	token.LBRACKET:      precCall,
}

type prefixParseFn func() ast.Expr
type infixParseFn func(left ast.Expr) ast.Expr

// Parser holds the state for one call to Parse.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []*diagnostics.Error

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// Parse tokenizes and parses source, whose first byte sits at absolute
// offset base in the VM's cumulative source buffer (so Spans in the
// returned Program, or in the returned errors, are globally correct).
func Parse(source string, base int) (*ast.Program, []*diagnostics.Error) {
	p := &Parser{l: lexer.New(source, base)}
	p.prefixFns = map[token.Type]prefixParseFn{
		token.NUMBER:   p.parseNumber,
		token.STRING:   p.parseString,
		token.TRUE:     p.parseBool,
		token.FALSE:    p.parseBool,
		token.NIL:      p.parseNil,
		token.IDENT:    p.parseIdentifier,
		token.LPAREN:   p.parseGrouping,
		token.MINUS:    p.parseUnary,
		token.BANG:     p.parseUnary,
		token.THIS:     p.parseThis,
		token.SUPER:    p.parseSuper,
		token.LBRACKET: p.parseListLiteral,
	}
	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS:          p.parseBinary,
		token.MINUS:         p.parseBinary,
		token.STAR:          p.parseBinary,
		token.SLASH:         p.parseBinary,
		token.PERCENT:       p.parseBinary,
		token.EQUAL_EQUAL:   p.parseBinary,
		token.BANG_EQUAL:    p.parseBinary,
		token.LESS:          p.parseBinary,
		token.LESS_EQUAL:    p.parseBinary,
		token.GREATER:       p.parseBinary,
		token.GREATER_EQUAL: p.parseBinary,
		token.AND:           p.parseLogical,
		token.OR:            p.parseLogical,
		token.LPAREN:        p.parseCall,
		token.DOT:           p.parseGetOrSet,
		token.LBRACKET:      p.parseIndex,
	}
	p.advance()
	p.advance()

	program := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program, p.errors
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) match(t token.Type) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t token.Type, context string) token.Token {
	if p.curIs(t) {
		tok := p.cur
		p.advance()
		return tok
	}
	p.errorf(p.cur.Span, diagnostics.CodeUnexpectedToken,
		"expected %s %s, got %q", t, context, p.cur.Lexeme).
		WithNote("expected one of: " + string(t))
	return p.cur
}

func (p *Parser) errorf(sp span.Span, code diagnostics.Code, format string, args ...interface{}) *diagnostics.Error {
	err := diagnostics.New(diagnostics.CategorySyntax, code, sp, format, args...)
	p.errors = append(p.errors, err)
	return err
}

// synchronize discards tokens until a likely statement boundary, so one
// syntax error doesn't cascade into spurious ones (spec.md §7: "the
// compiler aborts at the first offending statement ... and optionally
// continues collecting across statements").
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.cur.Type == token.SEMICOLON {
			p.advance()
			return
		}
		switch p.cur.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.RETURN, token.PACKAGE:
			return
		}
		p.advance()
	}
}

func (p *Parser) precedenceOf(t token.Type) int {
	if prec, ok := precedences[t]; ok {
		return prec
	}
	return 0
}

func (p *Parser) parseExpression(prec int) ast.Expr {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.errorf(p.cur.Span, diagnostics.CodeUnexpectedToken,
			"cannot parse expression starting with %q", p.cur.Lexeme)
		p.advance()
		return nil
	}
	left := prefix()

	for !p.curIs(token.SEMICOLON) && prec < p.precedenceOf(p.cur.Type) {
		infix := p.infixFns[p.cur.Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseNumber() ast.Expr {
	tok := p.cur
	p.advance()
	v, _ := tok.Literal.(float64)
	return &ast.LiteralExpr{Kind: ast.LitNumber, Number: v, Span: tok.Span}
}

func (p *Parser) parseString() ast.Expr {
	tok := p.cur
	p.advance()
	s, _ := tok.Literal.(string)
	return &ast.LiteralExpr{Kind: ast.LitString, Str: s, Span: tok.Span}
}

func (p *Parser) parseBool() ast.Expr {
	tok := p.cur
	p.advance()
	return &ast.LiteralExpr{Kind: ast.LitBool, Bool: tok.Type == token.TRUE, Span: tok.Span}
}

func (p *Parser) parseNil() ast.Expr {
	tok := p.cur
	p.advance()
	return &ast.LiteralExpr{Kind: ast.LitNil, Span: tok.Span}
}

func (p *Parser) parseIdentifier() ast.Expr {
	tok := p.cur
	p.advance()
	if p.curIs(token.EQUAL) {
		p.advance()
		value := p.parseExpression(precAssign)
		return &ast.AssignExpr{Name: tok.Lexeme, Value: value, Span: span.Merge(tok.Span, exprSpan(value))}
	}
	return &ast.VariableExpr{Name: tok.Lexeme, Span: tok.Span}
}

func (p *Parser) parseThis() ast.Expr {
	tok := p.cur
	p.advance()
	return &ast.ThisExpr{Span: tok.Span}
}

func (p *Parser) parseSuper() ast.Expr {
	start := p.cur.Span
	p.advance()
	p.expect(token.DOT, "after 'super'")
	name := p.expect(token.IDENT, "method name after 'super.'")
	return &ast.SuperExpr{Method: name.Lexeme, Span: span.Merge(start, name.Span)}
}

func (p *Parser) parseGrouping() ast.Expr {
	p.advance()
	expr := p.parseExpression(precAssign)
	p.expect(token.RPAREN, "to close grouping")
	return expr
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.cur
	p.advance()
	right := p.parseExpression(precUnary)
	return &ast.UnaryExpr{Op: tok.Lexeme, Right: right, Span: span.Merge(tok.Span, exprSpan(right))}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	tok := p.cur
	prec := p.precedenceOf(tok.Type)
	p.advance()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Op: tok.Lexeme, Left: left, Right: right, Span: span.Merge(exprSpan(left), exprSpan(right))}
}

func (p *Parser) parseLogical(left ast.Expr) ast.Expr {
	tok := p.cur
	prec := p.precedenceOf(tok.Type)
	op := "and"
	if tok.Type == token.OR {
		op = "or"
	}
	p.advance()
	right := p.parseExpression(prec)
	return &ast.LogicalExpr{Op: op, Left: left, Right: right, Span: span.Merge(exprSpan(left), exprSpan(right))}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	start := p.cur.Span
	p.advance() // consume '('
	var args []ast.Expr
	if !p.curIs(token.RPAREN) {
		args = append(args, p.parseExpression(precAssign))
		for p.match(token.COMMA) {
			args = append(args, p.parseExpression(precAssign))
		}
	}
	end := p.expect(token.RPAREN, "to close call arguments")
	return &ast.CallExpr{Callee: callee, Args: args, Span: span.Merge(start, end.Span)}
}

func (p *Parser) parseGetOrSet(object ast.Expr) ast.Expr {
	p.advance() // consume '.'
	name := p.expect(token.IDENT, "property name after '.'")
	if p.curIs(token.EQUAL) {
		p.advance()
		value := p.parseExpression(precAssign)
		return &ast.SetExpr{Object: object, Name: name.Lexeme, Value: value, Span: span.Merge(exprSpan(object), exprSpan(value))}
	}
	return &ast.GetExpr{Object: object, Name: name.Lexeme, Span: span.Merge(exprSpan(object), name.Span)}
}

func (p *Parser) parseIndex(target ast.Expr) ast.Expr {
	p.advance() // consume '['
	idx := p.parseExpression(precAssign)
	end := p.expect(token.RBRACKET, "to close index")
	if p.curIs(token.EQUAL) {
		p.advance()
		value := p.parseExpression(precAssign)
		return &ast.IndexSetExpr{Target: target, Index: idx, Value: value, Span: span.Merge(exprSpan(target), exprSpan(value))}
	}
	return &ast.IndexExpr{Target: target, Index: idx, Span: span.Merge(exprSpan(target), end.Span)}
}

func (p *Parser) parseListLiteral() ast.Expr {
	start := p.cur.Span
	p.advance() // consume '['
	var elems []ast.Expr
	if !p.curIs(token.RBRACKET) {
		elems = append(elems, p.parseExpression(precAssign))
		for p.match(token.COMMA) {
			elems = append(elems, p.parseExpression(precAssign))
		}
	}
	end := p.expect(token.RBRACKET, "to close list literal")
	return &ast.ListExpr{Elements: elems, Span: span.Merge(start, end.Span)}
}

func exprSpan(e ast.Expr) span.Span {
	if e == nil {
		return span.Span{}
	}
	return e.ExprSpan()
}
