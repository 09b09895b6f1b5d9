package vm

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// heapGrowFactor is the multiplier applied to the live-byte count after each
// collection to compute the next collection threshold (spec.md §4.3).
const heapGrowFactor = 2

// roughly estimates the bytes an object occupies, to drive the allocation
// counter. It need not be exact — only proportionate, since it only feeds
// the GC's own threshold heuristic.
func objectSize(o Object) int {
	const headerSize = 16
	switch v := o.(type) {
	case *String:
		return headerSize + len(v.Chars)
	case *Function:
		return headerSize + 64
	case *Closure:
		return headerSize + 8*len(v.Upvalues)
	case *Upvalue:
		return headerSize + 24
	case *Class:
		return headerSize + 32*(len(v.Methods)+len(v.Fields))
	case *Instance:
		return headerSize + 32*len(v.Fields)
	case *BoundMethod:
		return headerSize + 16
	case *Native:
		return headerSize + 8
	case *List:
		return headerSize + 24*len(v.Values)
	case *Package:
		return headerSize + 8
	default:
		return headerSize
	}
}

// GC is a non-copying mark-sweep collector owning every heap allocation the
// VM makes (spec.md §4.3). It never runs reentrantly: Collect is only
// invoked from alloc call sites, never from within mark/sweep themselves.
type GC struct {
	vm    *VM
	head  Object // singly-linked allocation list
	count int    // number of live allocations, for Stats

	strings map[string]*String // content-keyed interning pool (spec.md §3)
	initString *String

	compiler *Compiler // innermost CompilerCtx currently compiling, or nil outside Compile

	bytesAllocated   int
	nextGC           int
	growFactor       int // overridable via Configure (ember.yaml gc.heap_grow_factor)
	initialThreshold int // overridable via Configure (ember.yaml gc.initial_threshold_bytes)

	StressGC bool // forces a collection on every allocation (spec.md §5.5 supplement)

	gray []Object // explicit mark worklist, avoiding recursion through cyclic graphs

	// Stats accumulated over the completed cycles, for `:gc`/CLI reporting.
	Stats GCStats
}

// GCStats summarizes the collector's work so far: Cycles and Freed are
// totals over every completed cycle, while LiveAfter and BytesLive describe
// the heap after the most recent one.
type GCStats struct {
	Cycles    int
	Freed     int
	LiveAfter int
	BytesLive int
}

// String renders a human-readable one-line summary for the CLI's
// `disasm -gc-stats` flag and the REPL's `:gc` debugger command, using the
// same humanize.Bytes/humanize.Comma pairing the teacher's go.mod carries
// alongside modernc.org/sqlite as an indirect dependency.
func (s GCStats) String() string {
	return fmt.Sprintf("%s cycles, %s objects freed, %s live (%s)",
		humanize.Comma(int64(s.Cycles)),
		humanize.Comma(int64(s.Freed)),
		humanize.Comma(int64(s.LiveAfter)),
		humanize.Bytes(uint64(s.BytesLive)))
}

const initialGCThreshold = 1 << 20 // 1 MiB

func newGC() *GC {
	g := &GC{
		strings:          make(map[string]*String),
		nextGC:           initialGCThreshold,
		growFactor:       heapGrowFactor,
		initialThreshold: initialGCThreshold,
	}
	g.initString = g.internString("init")
	return g
}

// track registers o as a live allocation. The threshold check runs before
// o is linked into the allocation list, so a collection it triggers never
// has to consider o itself — it has no roots pointing to it yet and would
// otherwise be swept in the very call that was about to return it.
func (g *GC) track(o Object) {
	if g.bytesAllocated+objectSize(o) > g.nextGC || g.StressGC {
		g.Collect()
	}
	o.SetNext(g.head)
	g.head = o
	g.count++
	g.bytesAllocated += objectSize(o)
}

// internString returns the pool's String for s, allocating it if absent.
// Pointer equality of the result therefore implies content equality
// (spec.md §3, §8).
func (g *GC) internString(s string) *String {
	if existing, ok := g.strings[s]; ok {
		return existing
	}
	str := &String{Chars: s}
	str.typ = ObjString
	g.strings[s] = str
	g.track(str)
	return str
}

func (g *GC) newFunction(name *String) *Function {
	f := &Function{Name: name, Chunk: NewChunk()}
	f.typ = ObjFunction
	g.track(f)
	return f
}

func (g *GC) newClosure(fn *Function, upvalues []*Upvalue) *Closure {
	c := &Closure{Function: fn, Upvalues: upvalues}
	c.typ = ObjClosure
	g.track(c)
	return c
}

func (g *GC) newUpvalue(location *Value, slot int) *Upvalue {
	u := &Upvalue{Location: location, Closed: Nil(), Slot: slot}
	u.typ = ObjUpvalue
	g.track(u)
	return u
}

func (g *GC) newClass(name *String) *Class {
	c := &Class{Name: name, Methods: make(map[*String]*Closure), Fields: make(map[*String]Value)}
	c.typ = ObjClass
	g.track(c)
	return c
}

func (g *GC) newInstance(class *Class) *Instance {
	inst := &Instance{Class: class, Fields: make(map[*String]Value, len(class.Fields))}
	for k, v := range class.Fields {
		inst.Fields[k] = v
	}
	inst.typ = ObjInstance
	g.track(inst)
	return inst
}

func (g *GC) newBoundMethod(this *Instance, method *Closure) *BoundMethod {
	b := &BoundMethod{This: this, Method: method}
	b.typ = ObjBoundMethod
	g.track(b)
	return b
}

func (g *GC) newNative(kind NativeKind, name string, arity int) *Native {
	n := &Native{Kind: kind, Name: name, Arity: arity}
	n.typ = ObjNative
	g.track(n)
	return n
}

func (g *GC) newList(values []Value) *List {
	l := &List{Values: values}
	l.typ = ObjList
	g.track(l)
	return l
}

func (g *GC) newPackage(name *String) *Package {
	p := &Package{Name: name}
	p.typ = ObjPackage
	g.track(p)
	return p
}

// mark marks o and pushes it onto the gray worklist if it wasn't already
// marked, per spec.md §4.3's mark phase.
func (g *GC) mark(o Object) {
	if o == nil || o.IsMarked() {
		return
	}
	o.SetMarked(true)
	g.gray = append(g.gray, o)
}

func (g *GC) markValue(v Value) {
	if v.Type == ValObj {
		g.mark(v.Obj)
	}
}

// Collect runs one full mark-sweep cycle over the VM's current state
// (spec.md §4.3). It is never called reentrantly from within itself.
func (g *GC) Collect() {
	g.markRoots()
	g.traceReferences()
	freed := g.sweep()

	g.Stats.Cycles++
	g.Stats.Freed += freed
	g.Stats.LiveAfter = g.count
	g.Stats.BytesLive = g.bytesAllocated
	g.nextGC = g.bytesAllocated * g.growFactor
	if g.nextGC < g.initialThreshold {
		g.nextGC = g.initialThreshold
	}
}

func (g *GC) markRoots() {
	g.markCompilerRoots()
	vm := g.vm
	if vm == nil {
		return
	}
	for i := 0; i < vm.sp; i++ {
		g.markValue(vm.stack[i])
	}
	for i := 0; i <= vm.frameCount-1; i++ {
		g.mark(vm.frames[i].closure)
	}
	vm.globals.Range(func(name *String, v Value) {
		g.mark(name)
		g.markValue(v)
	})
	for uv := vm.openUpvalues; uv != nil; uv = uv.openNext {
		g.mark(uv)
	}
	g.mark(g.initString)
}

// markCompilerRoots marks the in-progress root Function of every active
// CompilerCtx, innermost to outermost (spec.md §3 Lifecycles: compilation-
// time objects are kept alive by being reachable from the root function
// being built). Compile() has no VM stack or call frames to anchor these
// objects yet, so a collection triggered mid-compile (stress GC, or a
// pathologically large chunk of constants) would otherwise sweep and
// un-intern them out from under the compiler, à la clox's
// markCompilerRoots.
func (g *GC) markCompilerRoots() {
	for c := g.compiler; c != nil; c = c.enclosing {
		g.mark(c.function)
	}
}

// traceReferences drains the gray worklist, tracing each popped object's
// outgoing references per spec.md §4.3's per-type field list.
func (g *GC) traceReferences() {
	for len(g.gray) > 0 {
		o := g.gray[len(g.gray)-1]
		g.gray = g.gray[:len(g.gray)-1]
		g.blacken(o)
	}
}

func (g *GC) blacken(o Object) {
	switch v := o.(type) {
	case *String:
		// leaf
	case *Function:
		if v.Name != nil {
			g.mark(v.Name)
		}
		for _, c := range v.Chunk.Constants {
			g.markValue(c)
		}
	case *Closure:
		g.mark(v.Function)
		for _, uv := range v.Upvalues {
			g.mark(uv)
		}
	case *Upvalue:
		g.markValue(v.Closed)
	case *Class:
		g.mark(v.Name)
		if v.Super != nil {
			g.mark(v.Super)
		}
		for k, m := range v.Methods {
			g.mark(k)
			g.mark(m)
		}
		for k, fv := range v.Fields {
			g.mark(k)
			g.markValue(fv)
		}
	case *Instance:
		g.mark(v.Class)
		for k, fv := range v.Fields {
			g.mark(k)
			g.markValue(fv)
		}
	case *BoundMethod:
		g.mark(v.This)
		g.mark(v.Method)
	case *List:
		for _, elem := range v.Values {
			g.markValue(elem)
		}
	case *Package:
		g.mark(v.Name)
	case *Native:
		// leaf
	}
}

// sweep unlinks and drops every unmarked record from the allocation list,
// clearing marks on survivors, and returns the number of records freed
// (spec.md §4.3's sweep phase). Go's own collector reclaims the memory
// once the last reference (this list's own pointer) is dropped — the
// mark-sweep algorithm above is what determines *when* that happens, which
// is the behavior under test, not the raw memory reclamation mechanism.
func (g *GC) sweep() int {
	freed := 0
	var prev Object
	cur := g.head
	for cur != nil {
		next := cur.Next()
		if cur.IsMarked() {
			cur.SetMarked(false)
			prev = cur
		} else {
			if str, ok := cur.(*String); ok {
				delete(g.strings, str.Chars)
			}
			if prev == nil {
				g.head = next
			} else {
				prev.SetNext(next)
			}
			g.count--
			g.bytesAllocated -= objectSize(cur)
			freed++
		}
		cur = next
	}
	return freed
}
