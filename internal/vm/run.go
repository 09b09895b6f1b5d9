package vm

import (
	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/parser"
)

// Run implements spec.md §6's VM surface: compile then execute source,
// aggregating parse/compile errors before ever touching the VM. The VM
// keeps no source buffer; tracking the cumulative source and base offset
// across inputs is the caller's responsibility (see cmd/ember's REPL).
func (vm *VM) Run(source string, base int) []*diagnostics.Error {
	program, errs := parser.Parse(source, base)
	if len(errs) > 0 {
		return errs
	}

	fn, errs := Compile(program, vm.gc)
	if len(errs) > 0 {
		return errs
	}

	if err := vm.Interpret(fn); err != nil {
		return []*diagnostics.Error{err}
	}
	return nil
}
