package vm

import (
	"math"

	"github.com/emberlox/ember/internal/diagnostics"
)

// execGetProperty implements GET_PROPERTY: fields take priority over
// methods, and a method hit allocates a fresh BoundMethod (spec.md §4.5).
// Class receivers additionally support static members stored directly as
// field values (spec.md §9's class-level property storage).
func (vm *VM) execGetProperty() *diagnostics.Error {
	name := vm.readString()
	receiver := vm.peek(0)
	if !receiver.IsObj() {
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "no property %q", name.Chars)
	}
	switch recv := receiver.Obj.(type) {
	case *Instance:
		if v, ok := recv.Fields[name]; ok {
			vm.pop()
			vm.push(v)
			return nil
		}
		if m, ok := recv.Class.Methods[name]; ok {
			vm.pop()
			vm.push(ObjVal(vm.gc.newBoundMethod(recv, m)))
			return nil
		}
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "undefined property %q", name.Chars)
	case *Class:
		if v, ok := recv.Fields[name]; ok {
			vm.pop()
			vm.push(v)
			return nil
		}
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "undefined property %q", name.Chars)
	default:
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "no property %q", name.Chars)
	}
}

// execSetProperty implements SET_PROPERTY: it inserts into the receiver's
// field map and leaves the assigned value on the stack (spec.md §4.5).
func (vm *VM) execSetProperty() *diagnostics.Error {
	name := vm.readString()
	value := vm.peek(0)
	receiver := vm.peek(1)
	if !receiver.IsObj() {
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "cannot set property %q", name.Chars)
	}
	switch recv := receiver.Obj.(type) {
	case *Instance:
		recv.Fields[name] = value
	case *Class:
		recv.Fields[name] = value
	default:
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "cannot set property %q", name.Chars)
	}
	vm.pop()
	vm.pop()
	vm.push(value)
	return nil
}

// execGetSuper implements GET_SUPER: pop the superclass and the instance
// bound as `this`, and push a BoundMethod allocated against the
// superclass's method table (spec.md §4.5).
func (vm *VM) execGetSuper() *diagnostics.Error {
	name := vm.readString()
	superVal := vm.pop()
	instVal := vm.pop()
	super := superVal.Obj.(*Class)
	inst := instVal.Obj.(*Instance)
	method, ok := super.Methods[name]
	if !ok {
		return vm.runtimeErr(diagnostics.CategoryAttribute, diagnostics.CodeNoSuchAttribute, "undefined property %q", name.Chars)
	}
	vm.push(ObjVal(vm.gc.newBoundMethod(inst, method)))
	return nil
}

func (vm *VM) execCompare(op Opcode) *diagnostics.Error {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeUnsupportedOperandInfix, "comparison requires two numbers")
	}
	if op == OP_GREATER {
		vm.push(BoolVal(a.AsNumber() > b.AsNumber()))
	} else {
		vm.push(BoolVal(a.AsNumber() < b.AsNumber()))
	}
	return nil
}

// execAdd implements `+`, polymorphic over numbers and strings (spec.md
// §4.5: "+ is polymorphic over numbers and strings").
func (vm *VM) execAdd() *diagnostics.Error {
	b := vm.pop()
	a := vm.pop()
	if a.IsNumber() && b.IsNumber() {
		vm.push(NumberVal(a.AsNumber() + b.AsNumber()))
		return nil
	}
	as, aok := a.Obj.(*String)
	bs, bok := b.Obj.(*String)
	if a.IsObj() && b.IsObj() && aok && bok {
		vm.push(ObjVal(vm.gc.internString(as.Chars + bs.Chars)))
		return nil
	}
	return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeUnsupportedOperandInfix, "operands must both be numbers or both be strings")
}

func (vm *VM) execArith(op Opcode) *diagnostics.Error {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeUnsupportedOperandInfix, "operands must be numbers")
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case OP_SUBTRACT:
		vm.push(NumberVal(x - y))
	case OP_MULTIPLY:
		vm.push(NumberVal(x * y))
	case OP_DIVIDE:
		vm.push(NumberVal(x / y)) // division by zero yields IEEE754 Inf/NaN, not an error (spec.md §4.5)
	case OP_MODULO:
		vm.push(NumberVal(math.Mod(x, y)))
	}
	return nil
}

func (vm *VM) execNegate() *diagnostics.Error {
	v := vm.pop()
	if !v.IsNumber() {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeUnsupportedOperandPrefix, "operand must be a number")
	}
	vm.push(NumberVal(-v.AsNumber()))
	return nil
}

// execClosure implements CLOSURE: build a Closure from the constant
// Function and the trailing (is_local, idx) upvalue-capture pairs
// (spec.md §4.5).
func (vm *VM) execClosure() *diagnostics.Error {
	frame := vm.currentFrame()
	fn := vm.readConstant().Obj.(*Function)
	upvalues := make([]*Upvalue, fn.UpvalueCount)
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := vm.readByte()
		idx := int(vm.readByte())
		if isLocal == 1 {
			upvalues[i] = vm.captureUpvalue(frame.stackBase + idx)
		} else {
			upvalues[i] = frame.closure.Upvalues[idx]
		}
	}
	vm.push(ObjVal(vm.gc.newClosure(fn, upvalues)))
	return nil
}

// execInherit implements INHERIT: copy the superclass's methods and fields
// into the child (spec.md §4.4/§4.5, §8's D.methods ⊇ S.methods property).
func (vm *VM) execInherit() *diagnostics.Error {
	childVal := vm.pop()
	superVal := vm.peek(0)
	child := childVal.Obj.(*Class)
	super, ok := superVal.Obj.(*Class)
	if !ok {
		return vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeSuperclassInvalidType, "superclass must be a class")
	}
	child.Super = super
	for k, v := range super.Methods {
		child.Methods[k] = v
	}
	for k, v := range super.Fields {
		child.Fields[k] = v
	}
	return nil
}

func (vm *VM) listIndex(target, indexVal Value) (*List, int, *diagnostics.Error) {
	list, ok := target.Obj.(*List)
	if !target.IsObj() || !ok {
		return nil, 0, vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeNotIndexable, "value is not indexable")
	}
	if !indexVal.IsNumber() {
		return nil, 0, vm.runtimeErr(diagnostics.CategoryType, diagnostics.CodeNotIndexable, "index must be a number")
	}
	idx := int(indexVal.AsNumber())
	if idx < 0 || idx >= len(list.Values) {
		return nil, 0, vm.runtimeErr(diagnostics.CategoryIndex, diagnostics.CodeOutOfBounds,
			"index %d out of bounds for list of length %d", idx, len(list.Values))
	}
	return list, idx, nil
}

func (vm *VM) execGetIndex() *diagnostics.Error {
	indexVal := vm.pop()
	target := vm.pop()
	list, idx, err := vm.listIndex(target, indexVal)
	if err != nil {
		return err
	}
	vm.push(list.Values[idx])
	return nil
}

func (vm *VM) execSetIndex() *diagnostics.Error {
	value := vm.pop()
	indexVal := vm.pop()
	target := vm.pop()
	list, idx, err := vm.listIndex(target, indexVal)
	if err != nil {
		return err
	}
	list.Values[idx] = value
	vm.push(value)
	return nil
}
