package vm

import "github.com/emberlox/ember/internal/diagnostics"

// Interpret runs fn as the script's root function, returning any runtime
// error encountered (spec.md §7: "the VM aborts the current run at the
// first runtime error").
func (vm *VM) Interpret(fn *Function) *diagnostics.Error {
	vm.push(ObjVal(fn)) // keeps fn reachable while its closure is allocated
	closure := vm.gc.newClosure(fn, nil)
	vm.pop()
	vm.push(ObjVal(closure))
	if err := vm.callClosure(closure, 0); err != nil {
		return err
	}
	return vm.run()
}

// run is the fetch-decode-execute loop (spec.md §4.5). It never panics on
// user-triggerable conditions; an unrecognized opcode is an invariant
// violation (compiler/VM bug) and does panic, per spec.md §7.
func (vm *VM) run() *diagnostics.Error {
	for {
		frame := vm.currentFrame()
		vm.lastSpan = frame.closure.Function.Chunk.SpanAt(frame.ip)
		op := Opcode(vm.readByte())

		switch op {
		case OP_CONSTANT:
			vm.push(vm.readConstant())
		case OP_NIL:
			vm.push(Nil())
		case OP_TRUE:
			vm.push(BoolVal(true))
		case OP_FALSE:
			vm.push(BoolVal(false))
		case OP_POP:
			vm.pop()

		case OP_GET_LOCAL:
			slot := int(vm.readByte())
			vm.push(vm.stack[frame.stackBase+slot])
		case OP_SET_LOCAL:
			slot := int(vm.readByte())
			vm.stack[frame.stackBase+slot] = vm.peek(0)

		case OP_GET_GLOBAL:
			name := vm.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeErr(diagnostics.CategoryName, diagnostics.CodeNotDefined, "undefined name %q", name.Chars)
			}
			vm.push(v)
		case OP_DEFINE_GLOBAL:
			name := vm.readString()
			if !vm.globals.Define(name, vm.peek(0)) {
				return vm.runtimeErr(diagnostics.CategoryName, diagnostics.CodeAlreadyDefined, "global %q already defined", name.Chars)
			}
			vm.pop()
		case OP_SET_GLOBAL:
			name := vm.readString()
			if !vm.globals.Set(name, vm.peek(0)) {
				return vm.runtimeErr(diagnostics.CategoryName, diagnostics.CodeNotDefined, "undefined name %q", name.Chars)
			}

		case OP_GET_UPVALUE:
			slot := int(vm.readByte())
			vm.push(*frame.closure.Upvalues[slot].Location)
		case OP_SET_UPVALUE:
			slot := int(vm.readByte())
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case OP_GET_PROPERTY:
			if err := vm.execGetProperty(); err != nil {
				return err
			}
		case OP_SET_PROPERTY:
			if err := vm.execSetProperty(); err != nil {
				return err
			}
		case OP_GET_SUPER:
			if err := vm.execGetSuper(); err != nil {
				return err
			}

		case OP_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolVal(a.Equals(b)))
		case OP_GREATER, OP_LESS:
			if err := vm.execCompare(op); err != nil {
				return err
			}

		case OP_ADD:
			if err := vm.execAdd(); err != nil {
				return err
			}
		case OP_SUBTRACT, OP_MULTIPLY, OP_DIVIDE, OP_MODULO:
			if err := vm.execArith(op); err != nil {
				return err
			}
		case OP_NOT:
			vm.push(BoolVal(vm.pop().IsFalsey()))
		case OP_NEGATE:
			if err := vm.execNegate(); err != nil {
				return err
			}

		case OP_JUMP:
			offset := vm.readShort()
			frame.ip += offset
		case OP_JUMP_IF_FALSE:
			offset := vm.readShort()
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}
		case OP_LOOP:
			offset := vm.readShort()
			frame.ip -= offset

		case OP_CALL:
			argc := int(vm.readByte())
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
		case OP_INVOKE:
			name := vm.readString()
			argc := int(vm.readByte())
			if err := vm.invoke(name, argc); err != nil {
				return err
			}
		case OP_SUPER_INVOKE:
			name := vm.readString()
			argc := int(vm.readByte())
			superclass := vm.pop().Obj.(*Class)
			if err := vm.invokeFromClass(superclass, name, argc); err != nil {
				return err
			}
		case OP_RETURN:
			result := vm.pop()
			finishedFrame := vm.currentFrame()
			vm.closeUpvalues(finishedFrame.stackBase)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.sp = finishedFrame.stackBase
			vm.push(result)

		case OP_CLOSURE:
			if err := vm.execClosure(); err != nil {
				return err
			}
		case OP_CLOSE_UPVALUE:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case OP_CLASS:
			name := vm.readString()
			vm.push(ObjVal(vm.gc.newClass(name)))
		case OP_INHERIT:
			if err := vm.execInherit(); err != nil {
				return err
			}
		case OP_METHOD:
			name := vm.readString()
			method := vm.pop().Obj.(*Closure)
			class := vm.peek(0).Obj.(*Class)
			class.Methods[name] = method

		case OP_CREATE_LIST:
			count := int(vm.readByte())
			values := make([]Value, count)
			copy(values, vm.stack[vm.sp-count:vm.sp])
			vm.sp -= count
			vm.push(ObjVal(vm.gc.newList(values)))
		case OP_GET_INDEX:
			if err := vm.execGetIndex(); err != nil {
				return err
			}
		case OP_SET_INDEX:
			if err := vm.execSetIndex(); err != nil {
				return err
			}

		case OP_PACKAGE:
			name := vm.readString()
			vm.push(ObjVal(vm.gc.newPackage(name)))

		default:
			panic("vm: unknown opcode")
		}
	}
}
