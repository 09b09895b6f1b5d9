// Package vm implements Ember's bytecode compiler, virtual machine, and
// tracing garbage collector (spec.md §4.4/§4.5/§4.3). They are kept in one
// package, mirroring the teacher repo's own internal/vm, because the
// Compiler emits Chunks the VM executes directly and the GC traces objects
// both of them allocate — splitting them would just move the coupling into
// import cycles.
package vm

import (
	"github.com/emberlox/ember/internal/ast"
	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/span"
)

const maxLocals = 256
const maxUpvalues = 256
const maxArgs = 255

// FunctionType distinguishes the four contexts a CompilerCtx can represent
// (spec.md §4.4): top-level script code, an ordinary function, a class
// method, and a class's `init` method (which has special return rules).
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

// local tracks one declared local variable's stack slot and initialization
// state during compilation (spec.md §4.4).
type local struct {
	name       string
	depth      int // -1 means declared but not yet initialized
	isCaptured bool
}

// upvalueRef records how a function captures a variable from an enclosing
// scope: either directly from the parent's locals, or by forwarding one of
// the parent's own upvalues.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// classCtx tracks whether `super` is legal in the class body currently
// being compiled (spec.md §4.4).
type classCtx struct {
	enclosing     *classCtx
	hasSuperclass bool
}

// Compiler is one CompilerCtx frame: it owns the Function being built and
// links to its enclosing frame, forming the stack spec.md §4.4 describes.
type Compiler struct {
	enclosing *Compiler
	gc        *GC

	function *Function
	funcType FunctionType

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef

	class *classCtx // nil outside any class body

	errors []*diagnostics.Error
}

// Compile lowers program to a root script Function (spec.md §4.4). It
// never panics on user-triggerable conditions — every failure is collected
// into the returned error slice (spec.md §7).
func Compile(program *ast.Program, gc *GC) (*Function, []*diagnostics.Error) {
	c := newCompiler(gc, nil, TypeScript, "")
	for _, stmt := range program.Statements {
		c.compileStmt(stmt)
	}
	fn := c.finish(span.Span{})
	gc.compiler = nil // compilation is done; the VM's own roots take over
	return fn, c.errors
}

func newCompiler(gc *GC, enclosing *Compiler, funcType FunctionType, name string) *Compiler {
	c := &Compiler{
		enclosing:  enclosing,
		gc:         gc,
		funcType:   funcType,
		scopeDepth: 0,
	}
	if enclosing != nil {
		c.class = enclosing.class
	}
	var fnName *String
	if name != "" {
		fnName = gc.internString(name)
	}
	c.function = gc.newFunction(fnName)
	gc.compiler = c // innermost CompilerCtx is now the GC's root anchor

	// Slot 0 is reserved: `this` for methods/initializers, the callee
	// itself (unused) for plain functions and the script.
	slotName := ""
	if funcType == TypeMethod || funcType == TypeInitializer {
		slotName = "this"
	}
	c.locals = append(c.locals, local{name: slotName, depth: 0})
	return c
}

// finish emits the implicit trailing return every function falls into if
// control reaches its end without an explicit return (`this` for an
// initializer, nil otherwise), and
// finalizes the Function's upvalue count. Arity is set by the caller
// before finish runs (compileFunction), since Compile's script-level
// caller has none to set.
func (c *Compiler) finish(sp span.Span) *Function {
	if c.funcType == TypeInitializer {
		c.emitOpByte(OP_GET_LOCAL, 0, sp)
	} else {
		c.emitOp(OP_NIL, sp)
	}
	c.emitOp(OP_RETURN, sp)
	c.function.UpvalueCount = len(c.upvalues)
	return c.function
}

func (c *Compiler) errorf(sp span.Span, cat diagnostics.Category, code diagnostics.Code, format string, args ...interface{}) {
	c.errors = append(c.errors, diagnostics.New(cat, code, sp, format, args...))
}

func (c *Compiler) emitByte(b byte, sp span.Span) {
	c.function.Chunk.WriteByte(b, sp)
}

func (c *Compiler) emitOp(op Opcode, sp span.Span) {
	c.function.Chunk.WriteOp(op, sp)
}

func (c *Compiler) emitOpByte(op Opcode, b byte, sp span.Span) {
	c.emitOp(op, sp)
	c.emitByte(b, sp)
}

func (c *Compiler) emitConstant(v Value, sp span.Span) {
	if err := c.function.Chunk.WriteConstant(v, sp); err != nil {
		c.errors = append(c.errors, err)
	}
}

// emitJump writes a jump opcode with a placeholder 16-bit offset and
// returns the offset of the placeholder's first byte, for patchJump
// (spec.md §4.4).
func (c *Compiler) emitJump(op Opcode, sp span.Span) int {
	c.emitOp(op, sp)
	c.emitByte(0xFF, sp)
	c.emitByte(0xFF, sp)
	return len(c.function.Chunk.Code) - 2
}

// patchJump rewrites the placeholder at offset to the displacement from
// the byte immediately after the offset to the current instruction index,
// failing JumpTooLarge on overflow (spec.md §4.4).
func (c *Compiler) patchJump(offset int, sp span.Span) {
	jump := len(c.function.Chunk.Code) - offset - 2
	if jump > 65535 {
		c.errorf(sp, diagnostics.CategoryOverflow, diagnostics.CodeJumpTooLarge, "jump of %d bytes exceeds the 65535-byte limit", jump)
		return
	}
	c.function.Chunk.Code[offset] = byte(jump & 0xFF)
	c.function.Chunk.Code[offset+1] = byte((jump >> 8) & 0xFF)
}

// emitLoop emits OP_LOOP with the backward displacement to start.
func (c *Compiler) emitLoop(start int, sp span.Span) {
	c.emitOp(OP_LOOP, sp)
	offset := len(c.function.Chunk.Code) - start + 2
	if offset > 65535 {
		c.errorf(sp, diagnostics.CategoryOverflow, diagnostics.CodeJumpTooLarge, "loop body of %d bytes exceeds the 65535-byte limit", offset)
		c.emitByte(0, sp)
		c.emitByte(0, sp)
		return
	}
	c.emitByte(byte(offset&0xFF), sp)
	c.emitByte(byte((offset>>8)&0xFF), sp)
}

// ---- scopes ----

func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope emits POP (or CLOSE_UPVALUE if the local was captured) for
// every local whose depth exceeds the new depth, then drops them
// (spec.md §4.4).
func (c *Compiler) endScope(sp span.Span) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		if c.locals[len(c.locals)-1].isCaptured {
			c.emitOp(OP_CLOSE_UPVALUE, sp)
		} else {
			c.emitOp(OP_POP, sp)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// ---- variable resolution (spec.md §4.4) ----

func (c *Compiler) declareLocal(name string, sp span.Span) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.errorf(sp, diagnostics.CategoryName, diagnostics.CodeAlreadyDefined, "variable %q already defined in this scope", name)
			return
		}
	}
	if len(c.locals) >= maxLocals {
		c.errorf(sp, diagnostics.CategoryOverflow, diagnostics.CodeTooManyLocals, "too many local variables in function (max %d)", maxLocals)
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal implements step 1 of spec.md §4.4's resolution order.
func (c *Compiler) resolveLocal(name string, sp span.Span) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.errorf(sp, diagnostics.CategoryName, diagnostics.CodeAccessInsideInitializer,
					"cannot read local variable %q in its own initializer", name)
				return 0, true
			}
			return i, true
		}
	}
	return 0, false
}

// resolveUpvalue implements step 2: recursively resolving against the
// enclosing ctx and inserting a deduplicated upvalue entry.
func (c *Compiler) resolveUpvalue(name string, sp span.Span) (int, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if idx, ok := c.enclosing.resolveLocal(name, sp); ok {
		c.enclosing.locals[idx].isCaptured = true
		return c.addUpvalue(uint8(idx), true, sp), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name, sp); ok {
		return c.addUpvalue(uint8(idx), false, sp), true
	}
	return 0, false
}

func (c *Compiler) addUpvalue(index uint8, isLocal bool, sp span.Span) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		c.errorf(sp, diagnostics.CategoryOverflow, diagnostics.CodeTooManyUpvalues, "too many closure variables in function (max %d)", maxUpvalues)
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}
