package vm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/parser"
)

func compileSource(t *testing.T, source string) []*diagnostics.Error {
	t.Helper()
	program, errs := parser.Parse(source, 0)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	g := newGC()
	_, compileErrs := Compile(program, g)
	return compileErrs
}

func funcWithNLocals(n int) string {
	var b strings.Builder
	b.WriteString("fun f() {\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "var v%d = 0;\n", i)
	}
	b.WriteString("}\n")
	return b.String()
}

// Slot 0 of every function is reserved and counts toward the 256-local
// limit, so 255 declared variables fill the function's 256 local slots.
func TestExactly256LocalsCompiles(t *testing.T) {
	errs := compileSource(t, funcWithNLocals(255))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors with 256 locals: %v", errs)
	}
}

func Test257LocalsFailsWithTooManyLocals(t *testing.T) {
	errs := compileSource(t, funcWithNLocals(256)) // 256 declared + reserved slot 0
	if len(errs) == 0 {
		t.Fatalf("expected a TooManyLocals error with 257 locals")
	}
	if errs[0].Code != diagnostics.CodeTooManyLocals {
		t.Errorf("got code %s, want TooManyLocals", errs[0].Code)
	}
}

func callWithNArgs(n int) string {
	var b strings.Builder
	b.WriteString("fun f() {}\nf(")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("0")
	}
	b.WriteString(");\n")
	return b.String()
}

func Test255ArgsCompiles(t *testing.T) {
	errs := compileSource(t, callWithNArgs(255))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors with 255 args: %v", errs)
	}
}

func Test256ArgsFailsWithTooManyArgs(t *testing.T) {
	errs := compileSource(t, callWithNArgs(256))
	if len(errs) == 0 {
		t.Fatalf("expected a TooManyArgs error with 256 args")
	}
	if errs[0].Code != diagnostics.CodeTooManyArgs {
		t.Errorf("got code %s, want TooManyArgs", errs[0].Code)
	}
}

// The call stack holds at most framesMax (64) frames, one of which is the
// top-level script itself, leaving 63 for nested calls (depth(0)..depth(62)).
func TestDeepRecursionFillingTheCallStackSucceeds(t *testing.T) {
	got := runOK(t, `
		fun depth(n) {
			if (n >= 62) { return n; }
			return depth(n + 1);
		}
		println(depth(0));
	`)
	if got != "62\n" {
		t.Errorf("got %q, want %q", got, "62\n")
	}
}

func Test65FrameRecursionOverflows(t *testing.T) {
	_, errs := run(t, `
		fun depth(n) {
			if (n >= 65) { return n; }
			return depth(n + 1);
		}
		depth(0);
	`)
	if len(errs) != 1 || errs[0].Code != diagnostics.CodeStackOverflow {
		t.Fatalf("expected StackOverflow, got %v", errs)
	}
}
