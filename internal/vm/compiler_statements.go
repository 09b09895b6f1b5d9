package vm

import (
	"github.com/emberlox/ember/internal/ast"
	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/span"
)

// compileStmt dispatches a single statement (spec.md §4.4 "Statements").
func (c *Compiler) compileStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		c.compileExpr(s.Expr)
		c.emitOp(OP_POP, s.Span)
	case *ast.VarStmt:
		c.compileVarStmt(s)
	case *ast.FunStmt:
		c.compileFunStmt(s)
	case *ast.ClassStmt:
		c.compileClassStmt(s)
	case *ast.IfStmt:
		c.compileIfStmt(s)
	case *ast.WhileStmt:
		c.compileWhileStmt(s)
	case *ast.ForStmt:
		c.compileForStmt(s)
	case *ast.ReturnStmt:
		c.compileReturnStmt(s)
	case *ast.BlockStmt:
		c.beginScope()
		c.compileBlock(s.Statements)
		c.endScope(s.Span)
	case *ast.PackageStmt:
		c.compilePackageStmt(s)
	default:
		c.errorf(span.Span{}, diagnostics.CategorySyntax, diagnostics.CodeUnexpectedToken, "unsupported statement node %T", s)
	}
}

func (c *Compiler) compileBlock(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.compileStmt(s)
	}
}

// identifierConstant interns name and records it in the constant pool,
// returning its index for use as a GET/SET/DEFINE_GLOBAL or property
// operand (spec.md §4.4/§4.5).
func (c *Compiler) identifierConstant(name string, sp span.Span) byte {
	idx, err := c.function.Chunk.AddConstant(ObjVal(c.gc.internString(name)), sp)
	if err != nil {
		c.errors = append(c.errors, err)
		return 0
	}
	return byte(idx)
}

// declareVariable declares name as a local in the current scope, or
// reserves a global-name constant if at top level (spec.md §4.4).
func (c *Compiler) declareVariable(name string, sp span.Span) byte {
	if c.scopeDepth > 0 {
		c.declareLocal(name, sp)
		return 0
	}
	return c.identifierConstant(name, sp)
}

// defineVariableEmit completes a declareVariable: marks the local
// initialized, or emits DEFINE_GLOBAL for a global.
func (c *Compiler) defineVariableEmit(nameConst byte, sp span.Span) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(OP_DEFINE_GLOBAL, nameConst, sp)
}

func (c *Compiler) compileVarStmt(s *ast.VarStmt) {
	nameConst := c.declareVariable(s.Name, s.Span)
	if s.Init != nil {
		c.compileExpr(s.Init)
	} else {
		c.emitOp(OP_NIL, s.Span)
	}
	c.defineVariableEmit(nameConst, s.Span)
}

func (c *Compiler) compileFunStmt(s *ast.FunStmt) {
	nameConst := c.declareVariable(s.Name, s.Span)
	c.markInitialized()
	c.compileFunction(s, TypeFunction)
	c.defineVariableEmit(nameConst, s.Span)
}

// compileFunction compiles s's body in a fresh CompilerCtx and emits the
// CLOSURE instruction that builds it in the enclosing chunk (spec.md §4.4:
// "emit CLOSURE <fn-constant> followed by (is_local, idx) pairs").
func (c *Compiler) compileFunction(s *ast.FunStmt, ft FunctionType) {
	sub := newCompiler(c.gc, c, ft, s.Name)
	sub.beginScope()

	if len(s.Params) > 255 {
		sub.errorf(s.Span, diagnostics.CategoryOverflow, diagnostics.CodeTooManyParams, "function %q has too many parameters (max 255)", s.Name)
	}
	for _, p := range s.Params {
		sub.declareLocal(p.Name, s.Span)
		sub.markInitialized()
	}
	sub.function.Arity = len(s.Params)

	sub.compileBlock(s.Body)
	fn := sub.finish(s.Span)
	c.errors = append(c.errors, sub.errors...)
	c.gc.compiler = c // back to the enclosing CompilerCtx as GC root anchor

	idx, err := c.function.Chunk.AddConstant(ObjVal(fn), s.Span)
	if err != nil {
		c.errors = append(c.errors, err)
		return
	}
	c.emitOpByte(OP_CLOSURE, byte(idx), s.Span)
	for _, uv := range sub.upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal, s.Span)
		c.emitByte(uv.index, s.Span)
	}
}

// compileClassStmt follows spec.md §4.4's class-declaration recipe exactly,
// including opening an extra lexical scope for `super` only when the class
// has a superclass.
func (c *Compiler) compileClassStmt(s *ast.ClassStmt) {
	nameConst := c.declareVariable(s.Name, s.Span)
	c.emitOpByte(OP_CLASS, nameConst, s.Span)
	c.defineVariableEmit(nameConst, s.Span)

	cctx := &classCtx{enclosing: c.class}
	c.class = cctx

	openedSuperScope := false
	if s.Super != nil {
		if s.Super.Name == s.Name {
			c.errorf(s.Span, diagnostics.CategoryName, diagnostics.CodeClassInheritFromSelf, "class %q cannot inherit from itself", s.Name)
		} else {
			cctx.hasSuperclass = true
			c.beginScope()
			openedSuperScope = true
			c.declareLocal("super", s.Span)
			c.markInitialized()

			c.compileExpr(s.Super)
			c.compileVariableGet(s.Name, s.Span)
			c.emitOp(OP_INHERIT, s.Span)
		}
	}

	c.compileVariableGet(s.Name, s.Span)
	for _, m := range s.Fields {
		c.compileVariableGet(s.Name, s.Span)
		c.compileClassField(m)
	}
	for _, m := range s.StaticFields {
		c.compileVariableGet(s.Name, s.Span)
		c.compileClassField(m)
	}
	for _, m := range s.Methods {
		c.compileMethod(m)
	}
	for _, m := range s.StaticMethods {
		c.compileVariableGet(s.Name, s.Span)
		c.compileStaticMethod(m)
	}
	c.emitOp(OP_POP, s.Span)

	if openedSuperScope {
		c.endScope(s.Span)
	}
	c.class = cctx.enclosing
}

// compileClassField evaluates a static/instance field default and stashes
// it as a class-level property (spec.md §9: "StaticField... stores them on
// the class object's own field map"). compileClassStmt pushes a fresh copy
// of the class value just before each call; SET_PROPERTY and the POP after
// it consume that copy, so the class fetched for METHOD stays on the stack.
func (c *Compiler) compileClassField(f *ast.VarStmt) {
	nameConst := c.identifierConstant(f.Name, f.Span)
	if f.Init != nil {
		c.compileExpr(f.Init)
	} else {
		c.emitOp(OP_NIL, f.Span)
	}
	c.emitOpByte(OP_SET_PROPERTY, nameConst, f.Span)
	c.emitOp(OP_POP, f.Span)
}

// compileStaticMethod stores a class-level method as a plain closure value
// in the class's own field map (spec.md §9 Open Questions: "a clean design
// stores [static methods/fields] on the class object's own field map
// rather than instance maps"). Unlike instance methods, static methods get
// no implicit `this` binding — calling one is a plain closure call.
func (c *Compiler) compileStaticMethod(m *ast.FunStmt) {
	c.compileFunction(m, TypeFunction)
	nameConst := c.identifierConstant(m.Name, m.Span)
	c.emitOpByte(OP_SET_PROPERTY, nameConst, m.Span)
	c.emitOp(OP_POP, m.Span)
}

func (c *Compiler) compileMethod(m *ast.FunStmt) {
	ft := TypeMethod
	if m.Name == "init" {
		ft = TypeInitializer
	}
	c.compileFunction(m, ft)
	nameConst := c.identifierConstant(m.Name, m.Span)
	c.emitOpByte(OP_METHOD, nameConst, m.Span)
}

func (c *Compiler) compileReturnStmt(s *ast.ReturnStmt) {
	if c.funcType == TypeScript {
		c.errorf(s.Span, diagnostics.CategorySyntax, diagnostics.CodeReturnOutsideFunction, "cannot return from top-level code")
		return
	}
	if s.Value == nil {
		if c.funcType == TypeInitializer {
			c.emitOpByte(OP_GET_LOCAL, 0, s.Span)
		} else {
			c.emitOp(OP_NIL, s.Span)
		}
	} else {
		if c.funcType == TypeInitializer {
			c.errorf(s.Span, diagnostics.CategorySyntax, diagnostics.CodeReturnInInitializer, "cannot return a value from an initializer")
			return
		}
		c.compileExpr(s.Value)
	}
	c.emitOp(OP_RETURN, s.Span)
}

func (c *Compiler) compilePackageStmt(s *ast.PackageStmt) {
	nameConst := c.declareVariable(s.Name, s.Span)
	c.emitOpByte(OP_PACKAGE, nameConst, s.Span)
	c.defineVariableEmit(nameConst, s.Span)
}
