package vm

import "github.com/emberlox/ember/internal/ast"

// compileIfStmt follows spec.md §4.4's if-statement recipe exactly.
func (c *Compiler) compileIfStmt(s *ast.IfStmt) {
	c.compileExpr(s.Cond)
	thenJump := c.emitJump(OP_JUMP_IF_FALSE, s.Span)
	c.emitOp(OP_POP, s.Span)
	c.beginScope()
	c.compileBlock(s.Then)
	c.endScope(s.Span)

	elseJump := c.emitJump(OP_JUMP, s.Span)
	c.patchJump(thenJump, s.Span)
	c.emitOp(OP_POP, s.Span)

	if s.Else != nil {
		c.beginScope()
		c.compileBlock(s.Else)
		c.endScope(s.Span)
	}
	c.patchJump(elseJump, s.Span)
}

// compileWhileStmt follows spec.md §4.4's while-statement recipe.
func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) {
	loopStart := c.function.Chunk.Len()

	c.compileExpr(s.Cond)
	exitJump := c.emitJump(OP_JUMP_IF_FALSE, s.Span)
	c.emitOp(OP_POP, s.Span)
	c.beginScope()
	c.compileBlock(s.Body)
	c.endScope(s.Span)
	c.emitLoop(loopStart, s.Span)

	c.patchJump(exitJump, s.Span)
	c.emitOp(OP_POP, s.Span)
}

// compileForStmt desugars the C-style for loop, following spec.md §4.4's
// recipe: open scope; optional init; loop-start; optional condition +
// JUMP_IF_FALSE + POP; body; optional increment + POP; LOOP; patch end;
// POP; close scope.
func (c *Compiler) compileForStmt(s *ast.ForStmt) {
	c.beginScope()
	if s.Init != nil {
		c.compileStmt(s.Init)
	}

	loopStart := c.function.Chunk.Len()

	exitJump := -1
	if s.Cond != nil {
		c.compileExpr(s.Cond)
		exitJump = c.emitJump(OP_JUMP_IF_FALSE, s.Span)
		c.emitOp(OP_POP, s.Span)
	}

	c.beginScope()
	c.compileBlock(s.Body)
	c.endScope(s.Span)

	if s.Post != nil {
		c.compileExpr(s.Post)
		c.emitOp(OP_POP, s.Span)
	}
	c.emitLoop(loopStart, s.Span)

	if exitJump != -1 {
		c.patchJump(exitJump, s.Span)
		c.emitOp(OP_POP, s.Span)
	}
	c.endScope(s.Span)
}
