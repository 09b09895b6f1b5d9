package parser

import (
	"github.com/emberlox/ember/internal/ast"
	"github.com/emberlox/ember/internal/span"
	"github.com/emberlox/ember/internal/token"
)

func (p *Parser) parseDeclaration() ast.Stmt {
	var stmt ast.Stmt
	switch p.cur.Type {
	case token.VAR:
		stmt = p.parseVarDecl()
	case token.FUN:
		stmt = p.parseFunDecl(false)
	case token.CLASS:
		stmt = p.parseClassDecl()
	case token.PACKAGE:
		stmt = p.parsePackageDecl()
	default:
		stmt = p.parseStatement()
	}
	if len(p.errors) > 0 && stmt == nil {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseVarDecl() *ast.VarStmt {
	start := p.cur.Span
	p.advance() // consume 'var'
	name := p.expect(token.IDENT, "variable name")
	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.parseExpression(precAssign)
	}
	end := p.expect(token.SEMICOLON, "after variable declaration")
	return &ast.VarStmt{Name: name.Lexeme, Init: init, Span: span.Merge(start, end.Span)}
}

func (p *Parser) parseFunDecl(isMethod bool) *ast.FunStmt {
	start := p.cur.Span
	p.advance() // consume 'fun'
	name := p.expect(token.IDENT, "function name")
	p.expect(token.LPAREN, "after function name")
	var params []ast.Param
	if !p.curIs(token.RPAREN) {
		params = append(params, p.parseParam())
		for p.match(token.COMMA) {
			params = append(params, p.parseParam())
		}
	}
	p.expect(token.RPAREN, "to close parameter list")
	p.expect(token.LBRACE, "before function body")
	body, end := p.parseBlockBody()
	return &ast.FunStmt{Name: name.Lexeme, Params: params, Body: body, Span: span.Merge(start, end)}
}

func (p *Parser) parseParam() ast.Param {
	name := p.expect(token.IDENT, "parameter name")
	return ast.Param{Name: name.Lexeme}
}

func (p *Parser) parseClassDecl() *ast.ClassStmt {
	start := p.cur.Span
	p.advance() // consume 'class'
	name := p.expect(token.IDENT, "class name")

	var super *ast.VariableExpr
	if p.match(token.LESS) {
		superName := p.expect(token.IDENT, "superclass name")
		super = &ast.VariableExpr{Name: superName.Lexeme, Span: superName.Span}
	}

	p.expect(token.LBRACE, "before class body")

	cls := &ast.ClassStmt{Name: name.Lexeme, Super: super}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.match(token.STATIC) {
			if p.curIs(token.VAR) {
				cls.StaticFields = append(cls.StaticFields, p.parseVarDecl())
			} else {
				cls.StaticMethods = append(cls.StaticMethods, p.parseMethod())
			}
			continue
		}
		if p.curIs(token.VAR) {
			cls.Fields = append(cls.Fields, p.parseVarDecl())
			continue
		}
		cls.Methods = append(cls.Methods, p.parseMethod())
	}
	end := p.expect(token.RBRACE, "to close class body")
	cls.Span = span.Merge(start, end.Span)
	return cls
}

// parseMethod parses a method defined without the leading 'fun' keyword,
// e.g. `greet() { ... }` or `init(x) { ... }`.
func (p *Parser) parseMethod() *ast.FunStmt {
	start := p.cur.Span
	name := p.expect(token.IDENT, "method name")
	p.expect(token.LPAREN, "after method name")
	var params []ast.Param
	if !p.curIs(token.RPAREN) {
		params = append(params, p.parseParam())
		for p.match(token.COMMA) {
			params = append(params, p.parseParam())
		}
	}
	p.expect(token.RPAREN, "to close parameter list")
	p.expect(token.LBRACE, "before method body")
	body, end := p.parseBlockBody()
	return &ast.FunStmt{Name: name.Lexeme, Params: params, Body: body, Span: span.Merge(start, end)}
}

func (p *Parser) parsePackageDecl() *ast.PackageStmt {
	start := p.cur.Span
	p.advance() // consume 'package'
	name := p.expect(token.IDENT, "package name")
	end := p.expect(token.SEMICOLON, "after package declaration")
	return &ast.PackageStmt{Name: name.Lexeme, Span: span.Merge(start, end.Span)}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlockBody() ([]ast.Stmt, span.Span) {
	var stmts []ast.Stmt
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	end := p.expect(token.RBRACE, "to close block")
	return stmts, end.Span
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.cur.Span
	p.advance() // consume '{'
	stmts, end := p.parseBlockBody()
	return &ast.BlockStmt{Statements: stmts, Span: span.Merge(start, end)}
}

func (p *Parser) parseIf() *ast.IfStmt {
	start := p.cur.Span
	p.advance() // consume 'if'
	p.expect(token.LPAREN, "after 'if'")
	cond := p.parseExpression(precAssign)
	p.expect(token.RPAREN, "after if condition")
	p.expect(token.LBRACE, "before 'if' body")
	then, end := p.parseBlockBody()

	stmt := &ast.IfStmt{Cond: cond, Then: then, Span: span.Merge(start, end)}
	if p.match(token.ELSE) {
		if p.curIs(token.IF) {
			elseIf := p.parseIf()
			stmt.Else = []ast.Stmt{elseIf}
			stmt.Span = span.Merge(start, elseIf.Span)
			return stmt
		}
		p.expect(token.LBRACE, "before 'else' body")
		elseStmts, elseEnd := p.parseBlockBody()
		stmt.Else = elseStmts
		stmt.Span = span.Merge(start, elseEnd)
	}
	return stmt
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	start := p.cur.Span
	p.advance() // consume 'while'
	p.expect(token.LPAREN, "after 'while'")
	cond := p.parseExpression(precAssign)
	p.expect(token.RPAREN, "after while condition")
	p.expect(token.LBRACE, "before 'while' body")
	body, end := p.parseBlockBody()
	return &ast.WhileStmt{Cond: cond, Body: body, Span: span.Merge(start, end)}
}

func (p *Parser) parseFor() *ast.ForStmt {
	start := p.cur.Span
	p.advance() // consume 'for'
	p.expect(token.LPAREN, "after 'for'")

	var init ast.Stmt
	if p.curIs(token.SEMICOLON) {
		p.advance()
	} else if p.curIs(token.VAR) {
		init = p.parseVarDecl()
	} else {
		init = p.parseExpressionStatement()
	}

	var cond ast.Expr
	if !p.curIs(token.SEMICOLON) {
		cond = p.parseExpression(precAssign)
	}
	p.expect(token.SEMICOLON, "after loop condition")

	var post ast.Expr
	if !p.curIs(token.RPAREN) {
		post = p.parseExpression(precAssign)
	}
	p.expect(token.RPAREN, "after for clauses")

	p.expect(token.LBRACE, "before 'for' body")
	body, end := p.parseBlockBody()
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, Span: span.Merge(start, end)}
}

func (p *Parser) parseReturn() *ast.ReturnStmt {
	start := p.cur.Span
	p.advance() // consume 'return'
	var value ast.Expr
	if !p.curIs(token.SEMICOLON) {
		value = p.parseExpression(precAssign)
	}
	end := p.expect(token.SEMICOLON, "after return value")
	return &ast.ReturnStmt{Value: value, Span: span.Merge(start, end.Span)}
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStmt {
	expr := p.parseExpression(precAssign)
	end := p.expect(token.SEMICOLON, "after expression")
	sp := end.Span
	if expr != nil {
		sp = span.Merge(exprSpan(expr), end.Span)
	}
	return &ast.ExpressionStmt{Expr: expr, Span: sp}
}
