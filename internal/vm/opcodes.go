package vm

// Opcode is a single VM instruction (spec.md §4.5/§6: "a stable integer
// encoding... the precise numbering is an implementation detail").
type Opcode byte

const (
	OP_CONSTANT Opcode = iota
	OP_NIL
	OP_TRUE
	OP_FALSE
	OP_POP

	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_GLOBAL
	OP_DEFINE_GLOBAL
	OP_SET_GLOBAL
	OP_GET_UPVALUE
	OP_SET_UPVALUE

	OP_GET_PROPERTY
	OP_SET_PROPERTY
	OP_GET_SUPER

	OP_EQUAL
	OP_GREATER
	OP_LESS

	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_MODULO
	OP_NOT
	OP_NEGATE

	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_LOOP

	OP_CALL
	OP_INVOKE
	OP_SUPER_INVOKE
	OP_RETURN

	OP_CLOSURE
	OP_CLOSE_UPVALUE

	OP_CLASS
	OP_INHERIT
	OP_METHOD

	OP_CREATE_LIST
	OP_GET_INDEX
	OP_SET_INDEX

	OP_PACKAGE
)

// OpcodeNames supports the disassembler (spec.md §1: "a pure function over
// a chunk, useful only for debugging").
var OpcodeNames = map[Opcode]string{
	OP_CONSTANT: "CONSTANT",
	OP_NIL:      "NIL",
	OP_TRUE:     "TRUE",
	OP_FALSE:    "FALSE",
	OP_POP:      "POP",

	OP_GET_LOCAL:     "GET_LOCAL",
	OP_SET_LOCAL:     "SET_LOCAL",
	OP_GET_GLOBAL:    "GET_GLOBAL",
	OP_DEFINE_GLOBAL: "DEFINE_GLOBAL",
	OP_SET_GLOBAL:    "SET_GLOBAL",
	OP_GET_UPVALUE:   "GET_UPVALUE",
	OP_SET_UPVALUE:   "SET_UPVALUE",

	OP_GET_PROPERTY: "GET_PROPERTY",
	OP_SET_PROPERTY: "SET_PROPERTY",
	OP_GET_SUPER:    "GET_SUPER",

	OP_EQUAL:  "EQUAL",
	OP_GREATER: "GREATER",
	OP_LESS:   "LESS",

	OP_ADD:      "ADD",
	OP_SUBTRACT: "SUBTRACT",
	OP_MULTIPLY: "MULTIPLY",
	OP_DIVIDE:   "DIVIDE",
	OP_MODULO:   "MODULO",
	OP_NOT:      "NOT",
	OP_NEGATE:   "NEGATE",

	OP_JUMP:          "JUMP",
	OP_JUMP_IF_FALSE: "JUMP_IF_FALSE",
	OP_LOOP:          "LOOP",

	OP_CALL:        "CALL",
	OP_INVOKE:      "INVOKE",
	OP_SUPER_INVOKE: "SUPER_INVOKE",
	OP_RETURN:      "RETURN",

	OP_CLOSURE:       "CLOSURE",
	OP_CLOSE_UPVALUE: "CLOSE_UPVALUE",

	OP_CLASS:   "CLASS",
	OP_INHERIT: "INHERIT",
	OP_METHOD:  "METHOD",

	OP_CREATE_LIST: "CREATE_LIST",
	OP_GET_INDEX:   "GET_INDEX",
	OP_SET_INDEX:   "SET_INDEX",

	OP_PACKAGE: "PACKAGE",
}
