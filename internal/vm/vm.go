package vm

import (
	"io"

	"github.com/google/uuid"

	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/span"
)

const framesMax = 64
const stackMax = framesMax * 256

// CallFrame is one activation record: the running closure, its
// instruction cursor, and the base stack slot where its locals begin
// (spec.md §4.5: "A frame is {closure, ip, stack_base}").
type CallFrame struct {
	closure   *Closure
	ip        int
	stackBase int
}

// VM executes a compiled Function against a preallocated value stack and a
// bounded call-frame stack (spec.md §4.5/§5).
type VM struct {
	gc      *GC
	globals *Globals

	stack [stackMax]Value
	sp    int

	frames     [framesMax]CallFrame
	frameCount int

	openUpvalues *Upvalue // descending order of tracked stack slot (spec.md §4.5)

	out io.Writer

	lastSpan span.Span // span of the most recently executed opcode, for runtime error reporting

	// RunID is an identifier minted once per VM instance in New. Nothing in
	// the VM reads it; cmd/ember's REPL tags each line's history entry with
	// its own per-line uuid. Grounded on the teacher pack's own uuid.New() call sites
	// (internal/ext/virtual_package.go, internal/analyzer/builtins.go).
	RunID string
}

// New builds a VM writing native print/println output to out.
func New(out io.Writer) *VM {
	vm := &VM{out: out, RunID: uuid.New().String()}
	vm.gc = newGC()
	vm.gc.vm = vm
	vm.globals = newGlobals()
	vm.defineNatives()
	return vm
}

// Configure applies ember.yaml-sourced GC tuning (spec.md §4.3's
// HEAP_GROW_FACTOR and initial threshold, both overridable per project).
func (vm *VM) Configure(heapGrowFactor, initialThresholdBytes int) {
	if heapGrowFactor > 0 {
		vm.gc.growFactor = heapGrowFactor
	}
	if initialThresholdBytes > 0 {
		vm.gc.nextGC = initialThresholdBytes
		vm.gc.initialThreshold = initialThresholdBytes
	}
}

// SetStressGC toggles the debug mode that forces a collection on every
// allocation (spec.md §4.3: "Collection MAY be forced... under a debug
// mode (stress GC)").
func (vm *VM) SetStressGC(on bool) { vm.gc.StressGC = on }

// GCStats exposes the collector's running totals and the heap size after
// its most recent cycle.
func (vm *VM) GCStats() GCStats { return vm.gc.Stats }

// GC exposes the VM's allocator, for callers (e.g. cmd/ember's disasm
// subcommand) that need to Compile a program against this VM's heap
// without running it.
func (vm *VM) GC() *GC { return vm.gc }

// SetOutput redirects where native print/println write, so a REPL can
// capture one line's output separately from stdout.
func (vm *VM) SetOutput(out io.Writer) { vm.out = out }

func (vm *VM) push(v Value) { vm.stack[vm.sp] = v; vm.sp++ }

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value { return vm.stack[vm.sp-1-distance] }

func (vm *VM) runtimeErr(cat diagnostics.Category, code diagnostics.Code, format string, args ...interface{}) *diagnostics.Error {
	return diagnostics.New(cat, code, vm.lastSpan, format, args...)
}

func (vm *VM) currentFrame() *CallFrame { return &vm.frames[vm.frameCount-1] }

// readByte consumes one byte from the current frame's chunk at ip.
func (vm *VM) readByte() byte {
	f := vm.currentFrame()
	b := f.closure.Function.Chunk.Code[f.ip]
	f.ip++
	return b
}

// readShort consumes a 16-bit little-endian immediate (spec.md §6).
func (vm *VM) readShort() int {
	f := vm.currentFrame()
	lo := int(f.closure.Function.Chunk.Code[f.ip])
	hi := int(f.closure.Function.Chunk.Code[f.ip+1])
	f.ip += 2
	return lo | (hi << 8)
}

func (vm *VM) readConstant() Value {
	f := vm.currentFrame()
	idx := vm.readByte()
	return f.closure.Function.Chunk.Constants[idx]
}

func (vm *VM) readString() *String {
	return vm.readConstant().Obj.(*String)
}
