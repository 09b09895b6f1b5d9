// Package disasm renders a compiled chunk as human-readable text. It is a
// pure function over a *vm.Chunk (spec.md §1: "the disassembler... a pure
// function over a chunk, useful only for debugging"), so it lives outside
// the vm package and only reads vm's exported surface.
package disasm

import (
	"fmt"
	"strings"

	"github.com/emberlox/ember/internal/vm"
)

// Function disassembles fn's chunk, labeling it with name. Functions
// nested in fn's constant pool are not disassembled.
func Function(fn *vm.Function, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	chunk := fn.Chunk
	offset := 0
	for offset < chunk.Len() {
		offset = instruction(&b, chunk, offset)
	}
	return b.String()
}

func instruction(b *strings.Builder, chunk *vm.Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	op := vm.Opcode(chunk.Code[offset])
	name := vm.OpcodeNames[op]

	switch op {
	case vm.OP_CONSTANT, vm.OP_DEFINE_GLOBAL, vm.OP_GET_GLOBAL, vm.OP_SET_GLOBAL,
		vm.OP_GET_PROPERTY, vm.OP_SET_PROPERTY, vm.OP_GET_SUPER, vm.OP_CLASS, vm.OP_METHOD, vm.OP_PACKAGE:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(b, "%-16s %4d '%s'\n", name, idx, constantRepr(chunk, idx))
		return offset + 2

	case vm.OP_GET_LOCAL, vm.OP_SET_LOCAL, vm.OP_GET_UPVALUE, vm.OP_SET_UPVALUE,
		vm.OP_CALL, vm.OP_CREATE_LIST:
		slot := chunk.Code[offset+1]
		fmt.Fprintf(b, "%-16s %4d\n", name, slot)
		return offset + 2

	case vm.OP_INVOKE, vm.OP_SUPER_INVOKE:
		idx := chunk.Code[offset+1]
		argc := chunk.Code[offset+2]
		fmt.Fprintf(b, "%-16s %4d '%s' (%d args)\n", name, idx, constantRepr(chunk, idx), argc)
		return offset + 3

	case vm.OP_JUMP, vm.OP_JUMP_IF_FALSE:
		jump := int(chunk.Code[offset+1]) | int(chunk.Code[offset+2])<<8
		fmt.Fprintf(b, "%-16s %4d -> %d\n", name, offset, offset+3+jump)
		return offset + 3

	case vm.OP_LOOP:
		jump := int(chunk.Code[offset+1]) | int(chunk.Code[offset+2])<<8
		fmt.Fprintf(b, "%-16s %4d -> %d\n", name, offset, offset+3-jump)
		return offset + 3

	case vm.OP_CLOSURE:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(b, "%-16s %4d '%s'\n", name, idx, constantRepr(chunk, idx))
		next := offset + 2
		if fn, ok := constantFunction(chunk, idx); ok {
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := chunk.Code[next]
				slot := chunk.Code[next+1]
				kind := "upvalue"
				if isLocal == 1 {
					kind = "local"
				}
				fmt.Fprintf(b, "%04d      |                     %s %d\n", next, kind, slot)
				next += 2
			}
		}
		return next

	default:
		fmt.Fprintf(b, "%s\n", name)
		return offset + 1
	}
}

func constantRepr(chunk *vm.Chunk, idx byte) string {
	if int(idx) >= len(chunk.Constants) {
		return "?"
	}
	return vm.DebugString(chunk.Constants[idx])
}

func constantFunction(chunk *vm.Chunk, idx byte) (*vm.Function, bool) {
	if int(idx) >= len(chunk.Constants) {
		return nil, false
	}
	fn, ok := chunk.Constants[idx].Obj.(*vm.Function)
	return fn, ok
}
