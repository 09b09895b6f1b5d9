package vm

import (
	"io"
	"math"
	"strconv"
	"time"

	"github.com/emberlox/ember/internal/diagnostics"
)

// defineNatives registers the fixed builtin family spec.md §4.5 lists as
// globals, so ordinary name resolution (GET_GLOBAL) finds them like any
// other value.
func (vm *VM) defineNatives() {
	vm.defineNative(NativeClock, "clock", 0)
	vm.defineNative(NativeLength, "len", 1)
	vm.defineNative(NativePrint, "print", 1)
	vm.defineNative(NativePrintLn, "println", 1)
	vm.defineNative(NativeTypeOf, "typeof", 1)
}

func (vm *VM) defineNative(kind NativeKind, name string, arity int) {
	n := vm.gc.newNative(kind, name, arity)
	vm.globals.Define(vm.gc.internString(name), ObjVal(n))
}

// callNative executes a native inline — no CallFrame is pushed (spec.md
// §4.5: "Native: execute inline (no frame), consuming args and pushing
// result").
func (vm *VM) callNative(n *Native, argc int) *diagnostics.Error {
	if argc != n.Arity {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeArityMismatch,
			"expected %d arguments but got %d", n.Arity, argc)
	}
	args := vm.stack[vm.sp-argc : vm.sp]
	result, err := vm.execNative(n.Kind, args)
	if err != nil {
		return err
	}
	vm.sp -= argc + 1
	vm.push(result)
	return nil
}

func (vm *VM) execNative(kind NativeKind, args []Value) (Value, *diagnostics.Error) {
	switch kind {
	case NativeClock:
		return NumberVal(float64(time.Now().UnixNano()) / 1e9), nil
	case NativeLength:
		return vm.nativeLen(args[0])
	case NativePrint:
		if err := vm.write(vm.stringify(args[0])); err != nil {
			return Nil(), err
		}
		return Nil(), nil
	case NativePrintLn:
		if err := vm.write(vm.stringify(args[0]) + "\n"); err != nil {
			return Nil(), err
		}
		return Nil(), nil
	case NativeTypeOf:
		return ObjVal(vm.gc.internString(args[0].TypeName())), nil
	default:
		return Nil(), vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeNotCallable, "unknown native")
	}
}

func (vm *VM) nativeLen(v Value) (Value, *diagnostics.Error) {
	if v.IsObj() {
		switch o := v.Obj.(type) {
		case *String:
			return NumberVal(float64(len(o.Chars))), nil
		case *List:
			return NumberVal(float64(len(o.Values))), nil
		}
	}
	return Nil(), vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeNoLength, "value has no length")
}

func (vm *VM) write(s string) *diagnostics.Error {
	if _, err := io.WriteString(vm.out, s); err != nil {
		return vm.runtimeErr(diagnostics.CategoryIO, diagnostics.CodeWriteError, "write failed: %v", err)
	}
	return nil
}

// stringify renders v the way `print`/`println` display it (spec.md §4.5).
func (vm *VM) stringify(v Value) string { return DebugString(v) }

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
}
