package vm

import "fmt"

// ObjType discriminates the heap record kinds spec.md §3 lists.
type ObjType uint8

const (
	ObjString ObjType = iota
	ObjFunction
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjNative
	ObjList
	ObjPackage
)

// Header is the common object prefix spec.md §3 requires: {type, marked}.
// It also carries the GC's intrusive singly-linked allocation list pointer,
// so every Object is, by embedding Header, automatically a node of that
// list (spec.md §4.3: "a singly-linked list of every live heap record").
// Concrete object types embed Header by value and inherit these methods
// through Go's method promotion, so the GC can operate on the Object
// interface without knowing the concrete type (spec.md §9's "tagged
// variant with dispatch via a type_ field", done with an interface instead
// of a raw union since Go has no unsafe unions).
type Header struct {
	typ    ObjType
	marked bool
	next   Object
}

func (h *Header) ObjType() ObjType    { return h.typ }
func (h *Header) IsMarked() bool      { return h.marked }
func (h *Header) SetMarked(m bool)    { h.marked = m }
func (h *Header) Next() Object        { return h.next }
func (h *Header) SetNext(o Object)    { h.next = o }

// Object is any GC-owned heap record.
type Object interface {
	ObjType() ObjType
	IsMarked() bool
	SetMarked(bool)
	Next() Object
	SetNext(Object)
	Inspect() string
}

// String is an immutable, content-interned character sequence (spec.md §3:
// "allocating an equal string returns the existing pointer").
type String struct {
	Header
	Chars string
}

func (s *String) Inspect() string { return s.Chars }

// Function is produced by the compiler and never mutated afterward.
type Function struct {
	Header
	Name         *String // nil for the top-level script function
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
}

func (f *Function) Inspect() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// Closure binds a Function to the upvalues it captured at creation time.
type Closure struct {
	Header
	Function *Function
	Upvalues []*Upvalue
}

func (c *Closure) Inspect() string { return c.Function.Inspect() }

// Upvalue is open while Location points into a call frame's stack window,
// and closed once Location has been redirected to &Closed (spec.md §3).
type Upvalue struct {
	Header
	Location *Value
	Closed   Value

	// Slot is the stack index Location tracks while open; it orders the
	// VM's open-upvalue list without comparing raw Go pointers (spec.md
	// §9's tagged-handle guidance applied to upvalues: ordering by index
	// instead of pointer arithmetic keeps this entirely in safe Go).
	Slot int

	// openNext chains this upvalue into the VM's open-upvalue list, kept in
	// descending order of Slot (spec.md §4.5/§9).
	openNext *Upvalue
}

func (u *Upvalue) Inspect() string { return "<upvalue>" }

// Class holds methods and default field values; INHERIT copies both tables
// from a superclass into a subclass at class-creation time (spec.md §4.5).
type Class struct {
	Header
	Name    *String
	Super   *Class
	Methods map[*String]*Closure
	Fields  map[*String]Value
}

func (c *Class) Inspect() string { return fmt.Sprintf("<class %s>", c.Name.Chars) }

// Instance holds per-object field storage, seeded from the class's field
// defaults when the instance is created.
type Instance struct {
	Header
	Class  *Class
	Fields map[*String]Value
}

func (i *Instance) Inspect() string { return fmt.Sprintf("<instance %s>", i.Class.Name.Chars) }

// BoundMethod pairs a receiver with the method Closure to call on it,
// produced by GET_PROPERTY/GET_SUPER when the looked-up name resolves to a
// method rather than a field.
type BoundMethod struct {
	Header
	This   *Instance
	Method *Closure
}

func (b *BoundMethod) Inspect() string { return b.Method.Inspect() }

// NativeKind enumerates the fixed builtin family spec.md §4.5 lists.
type NativeKind uint8

const (
	NativeClock NativeKind = iota
	NativeLength
	NativePrint
	NativePrintLn
	NativeTypeOf
)

// Native identifies a built-in callable; it carries no Go closure because
// the VM dispatches on Kind directly (vm_builtins.go), keeping the object
// itself trivially GC-traceable (it has no outgoing references).
type Native struct {
	Header
	Kind NativeKind
	Name string
	Arity int
}

func (n *Native) Inspect() string { return fmt.Sprintf("<native %s>", n.Name) }

// List is a mutable, integer-indexed sequence grown/shrunk by explicit ops.
type List struct {
	Header
	Values []Value
}

func (l *List) Inspect() string { return fmt.Sprintf("<list len=%d>", len(l.Values)) }

// Package is a named namespace marker with no cross-file import semantics
// (spec.md §9 Open Questions: "treat it as a named value with no
// cross-file resolution unless a separate module-loading spec is added").
type Package struct {
	Header
	Name *String
}

func (p *Package) Inspect() string { return fmt.Sprintf("<package %s>", p.Name.Chars) }
