package vm

import (
	"github.com/emberlox/ember/internal/ast"
	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/span"
)

const maxArgsLimit = 255

// compileExpr dispatches a single expression (spec.md §4.4 "Expressions").
// Every branch leaves exactly one value pushed on the stack.
func (c *Compiler) compileExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		c.compileLiteral(e)
	case *ast.UnaryExpr:
		c.compileUnary(e)
	case *ast.BinaryExpr:
		c.compileBinary(e)
	case *ast.LogicalExpr:
		c.compileLogical(e)
	case *ast.CallExpr:
		c.compileCall(e)
	case *ast.GetExpr:
		c.compileExpr(e.Object)
		nameConst := c.identifierConstant(e.Name, e.Span)
		c.emitOpByte(OP_GET_PROPERTY, nameConst, e.Span)
	case *ast.SetExpr:
		c.compileExpr(e.Object)
		c.compileExpr(e.Value)
		nameConst := c.identifierConstant(e.Name, e.Span)
		c.emitOpByte(OP_SET_PROPERTY, nameConst, e.Span)
	case *ast.IndexExpr:
		c.compileExpr(e.Target)
		c.compileExpr(e.Index)
		c.emitOp(OP_GET_INDEX, e.Span)
	case *ast.IndexSetExpr:
		c.compileExpr(e.Target)
		c.compileExpr(e.Index)
		c.compileExpr(e.Value)
		c.emitOp(OP_SET_INDEX, e.Span)
	case *ast.ListExpr:
		c.compileListExpr(e)
	case *ast.VariableExpr:
		c.compileVariableGet(e.Name, e.Span)
	case *ast.AssignExpr:
		c.compileVariableSet(e.Name, e.Span, e.Value)
	case *ast.ThisExpr:
		c.compileThis(e)
	case *ast.SuperExpr:
		c.compileSuperGet(e)
	default:
		c.errorf(span.Span{}, diagnostics.CategorySyntax, diagnostics.CodeUnexpectedToken, "unsupported expression node %T", e)
	}
}

func (c *Compiler) compileLiteral(e *ast.LiteralExpr) {
	switch e.Kind {
	case ast.LitNil:
		c.emitOp(OP_NIL, e.Span)
	case ast.LitBool:
		if e.Bool {
			c.emitOp(OP_TRUE, e.Span)
		} else {
			c.emitOp(OP_FALSE, e.Span)
		}
	case ast.LitNumber:
		c.emitConstant(NumberVal(e.Number), e.Span)
	case ast.LitString:
		c.emitConstant(ObjVal(c.gc.internString(e.Str)), e.Span)
	}
}

func (c *Compiler) compileUnary(e *ast.UnaryExpr) {
	c.compileExpr(e.Right)
	switch e.Op {
	case "-":
		c.emitOp(OP_NEGATE, e.Span)
	case "!":
		c.emitOp(OP_NOT, e.Span)
	default:
		c.errorf(e.Span, diagnostics.CategorySyntax, diagnostics.CodeUnexpectedToken, "unknown unary operator %q", e.Op)
	}
}

func (c *Compiler) compileBinary(e *ast.BinaryExpr) {
	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	switch e.Op {
	case "+":
		c.emitOp(OP_ADD, e.Span)
	case "-":
		c.emitOp(OP_SUBTRACT, e.Span)
	case "*":
		c.emitOp(OP_MULTIPLY, e.Span)
	case "/":
		c.emitOp(OP_DIVIDE, e.Span)
	case "%":
		c.emitOp(OP_MODULO, e.Span)
	case "==":
		c.emitOp(OP_EQUAL, e.Span)
	case "!=":
		c.emitOp(OP_EQUAL, e.Span)
		c.emitOp(OP_NOT, e.Span)
	case "<":
		c.emitOp(OP_LESS, e.Span)
	case "<=":
		c.emitOp(OP_GREATER, e.Span)
		c.emitOp(OP_NOT, e.Span)
	case ">":
		c.emitOp(OP_GREATER, e.Span)
	case ">=":
		c.emitOp(OP_LESS, e.Span)
		c.emitOp(OP_NOT, e.Span)
	default:
		c.errorf(e.Span, diagnostics.CategorySyntax, diagnostics.CodeUnexpectedToken, "unknown binary operator %q", e.Op)
	}
}

// compileLogical implements short-circuit `and`/`or` (spec.md §4.4).
func (c *Compiler) compileLogical(e *ast.LogicalExpr) {
	c.compileExpr(e.Left)
	switch e.Op {
	case "and":
		end := c.emitJump(OP_JUMP_IF_FALSE, e.Span)
		c.emitOp(OP_POP, e.Span)
		c.compileExpr(e.Right)
		c.patchJump(end, e.Span)
	case "or":
		elseJump := c.emitJump(OP_JUMP_IF_FALSE, e.Span)
		end := c.emitJump(OP_JUMP, e.Span)
		c.patchJump(elseJump, e.Span)
		c.emitOp(OP_POP, e.Span)
		c.compileExpr(e.Right)
		c.patchJump(end, e.Span)
	default:
		c.errorf(e.Span, diagnostics.CategorySyntax, diagnostics.CodeUnexpectedToken, "unknown logical operator %q", e.Op)
	}
}

// compileArgs compiles argument expressions in order, failing TooManyArgs
// over 255 (the CALL/INVOKE argc immediate is one byte).
func (c *Compiler) compileArgs(args []ast.Expr, sp span.Span) int {
	if len(args) > maxArgsLimit {
		c.errorf(sp, diagnostics.CategoryOverflow, diagnostics.CodeTooManyArgs, "too many arguments in call (max %d)", maxArgsLimit)
	}
	for _, a := range args {
		c.compileExpr(a)
	}
	return len(args)
}

// compileCall implements the INVOKE/SUPER_INVOKE folding spec.md §4.4
// allows as an optimization over a plain GET_PROPERTY/GET_SUPER + CALL.
func (c *Compiler) compileCall(e *ast.CallExpr) {
	switch callee := e.Callee.(type) {
	case *ast.GetExpr:
		c.compileExpr(callee.Object)
		argc := c.compileArgs(e.Args, e.Span)
		nameConst := c.identifierConstant(callee.Name, callee.Span)
		c.emitOpByte(OP_INVOKE, nameConst, e.Span)
		c.emitByte(byte(argc), e.Span)
	case *ast.SuperExpr:
		c.compileSuperInvoke(callee, e)
	default:
		c.compileExpr(e.Callee)
		argc := c.compileArgs(e.Args, e.Span)
		c.emitOpByte(OP_CALL, byte(argc), e.Span)
	}
}

func (c *Compiler) checkSuperContext(sp span.Span) bool {
	if c.class == nil {
		c.errorf(sp, diagnostics.CategorySyntax, diagnostics.CodeSuperOutsideClass, "'super' used outside of a class")
		return false
	}
	if !c.class.hasSuperclass {
		c.errorf(sp, diagnostics.CategorySyntax, diagnostics.CodeSuperWithoutSuperclass, "'super' used in a class with no superclass")
		return false
	}
	return true
}

// compileSuperGet emits a bare `super.m` reference (no immediate call):
// GET_LOCAL this; GET_LOCAL super; GET_SUPER m (spec.md §4.4).
func (c *Compiler) compileSuperGet(e *ast.SuperExpr) {
	if !c.checkSuperContext(e.Span) {
		return
	}
	c.compileVariableGet("this", e.Span)
	c.compileVariableGet("super", e.Span)
	nameConst := c.identifierConstant(e.Method, e.Span)
	c.emitOpByte(OP_GET_SUPER, nameConst, e.Span)
}

// compileSuperInvoke folds `super.m(args)` into SUPER_INVOKE: push this,
// push args, push the superclass, then the specialized opcode pops the
// superclass and dispatches the method directly against `this`.
func (c *Compiler) compileSuperInvoke(e *ast.SuperExpr, call *ast.CallExpr) {
	if !c.checkSuperContext(e.Span) {
		return
	}
	c.compileVariableGet("this", e.Span)
	argc := c.compileArgs(call.Args, call.Span)
	c.compileVariableGet("super", e.Span)
	nameConst := c.identifierConstant(e.Method, e.Span)
	c.emitOpByte(OP_SUPER_INVOKE, nameConst, call.Span)
	c.emitByte(byte(argc), call.Span)
}

func (c *Compiler) compileThis(e *ast.ThisExpr) {
	if c.class == nil {
		c.errorf(e.Span, diagnostics.CategorySyntax, diagnostics.CodeSuperOutsideClass, "'this' used outside of a class")
		return
	}
	c.compileVariableGet("this", e.Span)
}

func (c *Compiler) compileListExpr(e *ast.ListExpr) {
	if len(e.Elements) > 255 {
		c.errorf(e.Span, diagnostics.CategoryOverflow, diagnostics.CodeTooManyArgs, "list literal has too many elements (max 255)")
	}
	for _, elem := range e.Elements {
		c.compileExpr(elem)
	}
	c.emitOpByte(OP_CREATE_LIST, byte(len(e.Elements)), e.Span)
}

// compileVariableGet resolves name per spec.md §4.4's three-step order and
// emits the matching GET opcode.
func (c *Compiler) compileVariableGet(name string, sp span.Span) {
	if idx, ok := c.resolveLocal(name, sp); ok {
		c.emitOpByte(OP_GET_LOCAL, byte(idx), sp)
		return
	}
	if idx, ok := c.resolveUpvalue(name, sp); ok {
		c.emitOpByte(OP_GET_UPVALUE, byte(idx), sp)
		return
	}
	nameConst := c.identifierConstant(name, sp)
	c.emitOpByte(OP_GET_GLOBAL, nameConst, sp)
}

// compileVariableSet resolves name the same way, compiles value first
// (assignment is an expression whose value is the assigned value), then
// emits the matching SET opcode.
func (c *Compiler) compileVariableSet(name string, sp span.Span, value ast.Expr) {
	c.compileExpr(value)
	if idx, ok := c.resolveLocal(name, sp); ok {
		c.emitOpByte(OP_SET_LOCAL, byte(idx), sp)
		return
	}
	if idx, ok := c.resolveUpvalue(name, sp); ok {
		c.emitOpByte(OP_SET_UPVALUE, byte(idx), sp)
		return
	}
	nameConst := c.identifierConstant(name, sp)
	c.emitOpByte(OP_SET_GLOBAL, nameConst, sp)
}
