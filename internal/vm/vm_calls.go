package vm

import "github.com/emberlox/ember/internal/diagnostics"

// callValue dispatches CALL's callee per spec.md §4.5: Closure, Class,
// BoundMethod, and Native each have distinct call conventions.
func (vm *VM) callValue(callee Value, argc int) *diagnostics.Error {
	if !callee.IsObj() {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeNotCallable, "value is not callable")
	}
	switch obj := callee.Obj.(type) {
	case *Closure:
		return vm.callClosure(obj, argc)
	case *Class:
		return vm.callClass(obj, argc)
	case *BoundMethod:
		vm.stack[vm.sp-argc-1] = ObjVal(obj.This)
		return vm.callClosure(obj.Method, argc)
	case *Native:
		return vm.callNative(obj, argc)
	default:
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeNotCallable, "value is not callable")
	}
}

// callClosure checks arity then pushes a new CallFrame whose stack_base is
// the callee's own stack slot, so local 0 is the callee (spec.md §4.5).
func (vm *VM) callClosure(closure *Closure, argc int) *diagnostics.Error {
	if argc != closure.Function.Arity {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeArityMismatch,
			"expected %d arguments but got %d", closure.Function.Arity, argc)
	}
	if vm.frameCount >= framesMax {
		return vm.runtimeErr(diagnostics.CategoryOverflow, diagnostics.CodeStackOverflow, "call stack depth exceeds %d", framesMax)
	}
	vm.frames[vm.frameCount] = CallFrame{
		closure:   closure,
		ip:        0,
		stackBase: vm.sp - argc - 1,
	}
	vm.frameCount++
	return nil
}

// callClass allocates an instance in the callee's slot and, if an `init`
// method exists, calls it; otherwise argc must be 0 (spec.md §4.5).
func (vm *VM) callClass(class *Class, argc int) *diagnostics.Error {
	inst := vm.gc.newInstance(class)
	vm.stack[vm.sp-argc-1] = ObjVal(inst)
	if initClosure, ok := class.Methods[vm.gc.initString]; ok {
		return vm.callClosure(initClosure, argc)
	}
	if argc != 0 {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeArityMismatch, "expected 0 arguments but got %d", argc)
	}
	return nil
}

// invoke implements INVOKE: a specialized get-then-call that resolves the
// method without allocating an intermediate BoundMethod (spec.md §4.4/§4.5).
func (vm *VM) invoke(name *String, argc int) *diagnostics.Error {
	receiver := vm.peek(argc)
	if !receiver.IsObj() {
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "no property %q", name.Chars)
	}
	switch recv := receiver.Obj.(type) {
	case *Instance:
		if field, ok := recv.Fields[name]; ok {
			vm.stack[vm.sp-argc-1] = field
			return vm.callValue(field, argc)
		}
		return vm.invokeFromClass(recv.Class, name, argc)
	case *Class:
		if field, ok := recv.Fields[name]; ok {
			vm.stack[vm.sp-argc-1] = field
			return vm.callValue(field, argc)
		}
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "class has no property %q", name.Chars)
	default:
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "no property %q", name.Chars)
	}
}

func (vm *VM) invokeFromClass(class *Class, name *String, argc int) *diagnostics.Error {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "no method %q", name.Chars)
	}
	return vm.callClosure(method, argc)
}

// captureUpvalue scans openUpvalues (kept in descending Slot order) for an
// existing upvalue tracking slot, or inserts a new one (spec.md §4.5's
// "Capturing upvalues").
func (vm *VM) captureUpvalue(slot int) *Upvalue {
	var prev *Upvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.openNext
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}
	created := vm.gc.newUpvalue(&vm.stack[slot], slot)
	created.openNext = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.openNext = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose tracked slot is at or
// above boundary, lifting its value onto the heap (spec.md §4.5).
func (vm *VM) closeUpvalues(boundary int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Slot >= boundary {
		uv := vm.openUpvalues
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		vm.openUpvalues = uv.openNext
		uv.openNext = nil
	}
}
