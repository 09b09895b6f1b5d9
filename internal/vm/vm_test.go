package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/emberlox/ember/internal/diagnostics"
)

func run(t *testing.T, source string) (string, []*diagnostics.Error) {
	t.Helper()
	var out bytes.Buffer
	machine := New(&out)
	errs := machine.Run(source, 0)
	return out.String(), errs
}

func runOK(t *testing.T, source string) string {
	t.Helper()
	out, errs := run(t, source)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors for %q: %v", source, errs)
	}
	return out
}

// End-to-end scenarios from spec.md §8.
func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"arithmetic", `println(1 + 2);`, "3\n"},
		{"function call", `fun f(a,b){return a+b;} println(f(40,2));`, "42\n"},
		{"inheritance", `class A{greet(){return "hi";}} class B<A{} println(B().greet());`, "hi\n"},
		{"block scoping", `var a; { var a = 1; println(a); } println(a);`, "1\nnil\n"},
		{"closures", `fun mk(){var x=1; fun get(){return x;} return get;} println(mk()());`, "1\n"},
		{"init method", `class C{init(x){this.x=x;}} println(C(7).x);`, "7\n"},
		{"list index get/set", `var L=[10,20,30]; L[1]=99; println(L[1]);`, "99\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runOK(t, tt.source)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReturnOutsideFunctionIsSyntaxError(t *testing.T) {
	_, errs := run(t, `return 1;`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	if errs[0].Category != diagnostics.CategorySyntax || errs[0].Code != diagnostics.CodeReturnOutsideFunction {
		t.Errorf("got %s::%s, want SyntaxError::ReturnOutsideFunction", errs[0].Category, errs[0].Code)
	}
}

func TestUndefinedNameIsNameError(t *testing.T) {
	_, errs := run(t, `println(undefined_name);`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	if errs[0].Category != diagnostics.CategoryName || errs[0].Code != diagnostics.CodeNotDefined {
		t.Errorf("got %s::%s, want NameError::NotDefined", errs[0].Category, errs[0].Code)
	}
}

func TestListIndexOutOfBounds(t *testing.T) {
	_, errs := run(t, `var L=[1]; println(L[5]);`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	if errs[0].Category != diagnostics.CategoryIndex || errs[0].Code != diagnostics.CodeOutOfBounds {
		t.Errorf("got %s::%s, want IndexError::OutOfBounds", errs[0].Category, errs[0].Code)
	}
}

func TestArithmeticIEEE754(t *testing.T) {
	got := runOK(t, `println(1/0); println(0/0); println(-1/0);`)
	want := "Infinity\nNaN\n-Infinity\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestModuloOperator(t *testing.T) {
	got := runOK(t, `println(7 % 3);`)
	if got != "1\n" {
		t.Errorf("got %q, want %q", got, "1\n")
	}
}

func TestStringConcatenationIsAssociative(t *testing.T) {
	got := runOK(t, `println(("a" + "b") + "c"); println("a" + ("b" + "c"));`)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 2 || lines[0] != lines[1] {
		t.Errorf("string concat is not associative: %q", got)
	}
}

func TestTypeOfReportsCategories(t *testing.T) {
	got := runOK(t, `
		println(typeof(nil));
		println(typeof(true));
		println(typeof(1));
		println(typeof("s"));
		println(typeof([1]));
		fun f(){} println(typeof(f));
		class C{} println(typeof(C));
		println(typeof(C()));
	`)
	want := "nil\nboolean\nnumber\nstring\nlist\nfunction\nclass\ninstance\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSuperCallsParentMethod(t *testing.T) {
	got := runOK(t, `
		class A { greet() { return "A"; } }
		class B < A { greet() { return super.greet() + "B"; } }
		println(B().greet());
	`)
	if got != "AB\n" {
		t.Errorf("got %q, want %q", got, "AB\n")
	}
}

func TestStackOverflowOnDeepRecursion(t *testing.T) {
	_, errs := run(t, `fun f(n){ return f(n+1); } f(0);`)
	if len(errs) != 1 {
		t.Fatalf("expected a stack overflow error, got %v", errs)
	}
	if errs[0].Code != diagnostics.CodeStackOverflow {
		t.Errorf("got %s, want StackOverflow", errs[0].Code)
	}
}

func TestClosureCapturesUpvalue(t *testing.T) {
	got := runOK(t, `
		fun counter() {
			var n = 0;
			fun inc() { n = n + 1; return n; }
			return inc;
		}
		var c = counter();
		println(c());
		println(c());
		println(c());
	`)
	if got != "1\n2\n3\n" {
		t.Errorf("got %q", got)
	}
}

func TestInstanceFieldDefaultsCopiedFromClass(t *testing.T) {
	got := runOK(t, `
		class Point { var x = 0; var y = 0; }
		var p = Point();
		println(p.x);
		println(p.y);
		p.x = 5;
		println(p.x);
	`)
	if got != "0\n0\n5\n" {
		t.Errorf("got %q", got)
	}
}

func TestArityMismatchIsTypeError(t *testing.T) {
	_, errs := run(t, `fun f(a,b){return a+b;} f(1);`)
	if len(errs) != 1 || errs[0].Code != diagnostics.CodeArityMismatch {
		t.Fatalf("expected ArityMismatch, got %v", errs)
	}
}

func TestLenNative(t *testing.T) {
	got := runOK(t, `println(len("hello")); println(len([1,2,3]));`)
	if got != "5\n3\n" {
		t.Errorf("got %q", got)
	}
}
