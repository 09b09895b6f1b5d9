package vm

// ValueType discriminates the four shapes a Value can take (spec.md §3).
type ValueType uint8

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is Ember's runtime value: nil, bool, a 64-bit float, or
// a pointer to a GC-owned heap object. spec.md §4.2 allows either NaN-boxing
// within an f64 or a tagged union with an explicit discriminant; this is the
// tagged-union form. NaN-boxing was rejected: packing a live Go pointer's
// bits into a float64 would hide it from Go's own collector between our
// mark-sweep cycles, so the object field would need an external side table
// just to stay safe — at that point the tagged struct already shown in both
// reference VMs (funxy's internal/vm.Value and paserati's value.Value) is
// simpler and exactly as fast on a stack-allocated struct of this size.
type Value struct {
	Type ValueType
	Num  float64
	Obj  Object
}

func Nil() Value                 { return Value{Type: ValNil} }
func BoolVal(b bool) Value       { return Value{Type: ValBool, Num: boolToFloat(b)} }
func NumberVal(n float64) Value  { return Value{Type: ValNumber, Num: n} }
func ObjVal(o Object) Value      { return Value{Type: ValObj, Obj: o} }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) IsNil() bool    { return v.Type == ValNil }
func (v Value) IsBool() bool   { return v.Type == ValBool }
func (v Value) IsNumber() bool { return v.Type == ValNumber }
func (v Value) IsObj() bool    { return v.Type == ValObj }

func (v Value) AsBool() bool     { return v.Num != 0 }
func (v Value) AsNumber() float64 { return v.Num }

// IsFalsey implements spec.md §3 truthiness: nil and false are falsey,
// everything else is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equals implements spec.md §3 equality: structural for primitives, by
// identity for objects — except strings, whose interning makes identity
// and structural equality coincide (spec.md §3 invariants, §8).
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValNil:
		return true
	case ValBool:
		return v.AsBool() == other.AsBool()
	case ValNumber:
		return v.Num == other.Num
	case ValObj:
		if vs, ok := v.Obj.(*String); ok {
			if os, ok := other.Obj.(*String); ok {
				return vs == os // interned: pointer equality implies content equality
			}
			return false
		}
		return v.Obj == other.Obj
	}
	return false
}

// TypeName returns the name the `typeof` native reports (spec.md §4.5's
// "nil"|"boolean"|"number"|"string"|"function"|"class"|"instance"|"list").
// "package" is an Ember extension beyond that list: packages are their own
// object type (spec.md §1's "package/static members"), not instances or
// functions, and are reachable as ordinary global values via OP_PACKAGE.
func (v Value) TypeName() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		return "boolean"
	case ValNumber:
		return "number"
	case ValObj:
		switch v.Obj.(type) {
		case *String:
			return "string"
		case *Function, *Closure, *Native, *BoundMethod:
			return "function"
		case *Class:
			return "class"
		case *Instance:
			return "instance"
		case *List:
			return "list"
		case *Package:
			return "package"
		}
	}
	return "nil"
}
