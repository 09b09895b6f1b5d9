package disasm

import (
	"strings"
	"testing"

	"github.com/emberlox/ember/internal/parser"
	"github.com/emberlox/ember/internal/vm"
)

func compile(t *testing.T, source string) *vm.Function {
	t.Helper()
	program, errs := parser.Parse(source, 0)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	g := vm.New(nil).GC()
	fn, compileErrs := vm.Compile(program, g)
	if len(compileErrs) > 0 {
		t.Fatalf("unexpected compile errors: %v", compileErrs)
	}
	return fn
}

func TestFunctionHeaderNamesTheChunk(t *testing.T) {
	fn := compile(t, `println(1);`)
	out := Function(fn, "main.ember")
	if !strings.HasPrefix(out, "== main.ember ==\n") {
		t.Fatalf("got header %q", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestDisassemblyShowsConstantOperand(t *testing.T) {
	fn := compile(t, `var x = 42;`)
	out := Function(fn, "<script>")
	if !strings.Contains(out, "CONSTANT") || !strings.Contains(out, "'42'") {
		t.Errorf("expected a CONSTANT line referencing 42, got:\n%s", out)
	}
}

func TestDisassemblyShowsJumpTarget(t *testing.T) {
	fn := compile(t, `if (true) { 1; } else { 2; }`)
	out := Function(fn, "<script>")
	if !strings.Contains(out, "JUMP_IF_FALSE") {
		t.Errorf("expected a JUMP_IF_FALSE instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "->") {
		t.Errorf("expected jump target arrow, got:\n%s", out)
	}
}

func TestDisassemblyShowsLoopBackEdge(t *testing.T) {
	fn := compile(t, `var i = 0; while (i < 3) { i = i + 1; }`)
	out := Function(fn, "<script>")
	if !strings.Contains(out, "LOOP") {
		t.Errorf("expected a LOOP instruction, got:\n%s", out)
	}
}

func TestDisassemblyShowsClosureUpvalues(t *testing.T) {
	fn := compile(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	// inner's CLOSURE instruction lives in outer's chunk, not the script's.
	var outer *vm.Function
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.Obj.(*vm.Function); ok {
			outer = f
		}
	}
	if outer == nil {
		t.Fatalf("expected outer's function among the script's constants")
	}
	out := Function(outer, "outer")
	if !strings.Contains(out, "CLOSURE") {
		t.Errorf("expected a CLOSURE instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "local") && !strings.Contains(out, "upvalue") {
		t.Errorf("expected an upvalue capture line, got:\n%s", out)
	}
}
