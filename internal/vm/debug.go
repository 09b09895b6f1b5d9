package vm

// DebugString renders v for disassembly and trace output. It differs from
// the VM-instance-bound stringify only in not requiring a *VM: constant
// pool entries are inspected standalone, outside any running call frame.
func DebugString(v Value) string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.AsNumber())
	case ValObj:
		if s, ok := v.Obj.(*String); ok {
			return s.Chars
		}
		return v.Obj.Inspect()
	default:
		return ""
	}
}
