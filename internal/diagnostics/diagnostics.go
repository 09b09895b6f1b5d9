// Package diagnostics implements Ember's value-returning error model:
// every compiler or VM failure is an *Error carrying a Category,
// a Code, and the source Span of the offending construct (spec.md §4.6/§7).
package diagnostics

import (
	"fmt"

	"github.com/emberlox/ember/internal/span"
)

// Category groups error codes the way spec.md §4.6 does.
type Category string

const (
	CategorySyntax    Category = "SyntaxError"
	CategoryName      Category = "NameError"
	CategoryType      Category = "TypeError"
	CategoryAttribute Category = "AttributeError"
	CategoryIndex     Category = "IndexError"
	CategoryIO        Category = "IoError"
	CategoryOverflow  Category = "OverflowError"
)

// Code identifies a specific diagnostic within its Category.
type Code string

const (
	// SyntaxError
	CodeReturnOutsideFunction Code = "ReturnOutsideFunction"
	CodeReturnInInitializer  Code = "ReturnInInitializer"
	CodeSuperOutsideClass    Code = "SuperOutsideClass"
	CodeSuperWithoutSuperclass Code = "SuperWithoutSuperclass"
	CodeUnexpectedToken      Code = "UnexpectedToken"

	// NameError
	CodeNotDefined              Code = "NotDefined"
	CodeAlreadyDefined          Code = "AlreadyDefined"
	CodeAccessInsideInitializer Code = "AccessInsideInitializer"
	CodeClassInheritFromSelf    Code = "ClassInheritFromSelf"
	CodeReservedName            Code = "ReservedName"

	// TypeError
	CodeNotCallable             Code = "NotCallable"
	CodeArityMismatch           Code = "ArityMismatch"
	CodeUnsupportedOperandInfix Code = "UnsupportedOperandInfix"
	CodeUnsupportedOperandPrefix Code = "UnsupportedOperandPrefix"
	CodeSuperclassInvalidType   Code = "SuperclassInvalidType"
	CodeInitInvalidReturnType   Code = "InitInvalidReturnType"
	CodeNotIndexable            Code = "NotIndexable"
	CodeNoLength                Code = "NoLength"
	CodeInvalidMethodAssignment Code = "InvalidMethodAssignment"

	// AttributeError
	CodeNoSuchAttribute Code = "NoSuchAttribute"

	// IndexError
	CodeOutOfBounds Code = "OutOfBounds"

	// IoError
	CodeWriteError Code = "WriteError"

	// OverflowError
	CodeStackOverflow  Code = "StackOverflow"
	CodeJumpTooLarge   Code = "JumpTooLarge"
	CodeTooManyConstants Code = "TooManyConstants"
	CodeTooManyParams  Code = "TooManyParams"
	CodeTooManyLocals  Code = "TooManyLocals"
	CodeTooManyUpvalues Code = "TooManyUpvalues"
	CodeTooManyArgs    Code = "TooManyArgs"
)

// Error is a diagnostic carrying a source Span, returned by value rather
// than thrown: the compiler and VM never panic for user-triggerable
// conditions (spec.md §7).
type Error struct {
	Category Category
	Code     Code
	Message  string
	Span     span.Span
	Note     string // optional, e.g. "expected one of: ..."
}

func New(cat Category, code Code, sp span.Span, format string, args ...interface{}) *Error {
	return &Error{
		Category: cat,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     sp,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s::%s: %s", e.Category, e.Code, e.Message)
}

func (e *Error) WithNote(note string) *Error {
	e.Note = note
	return e
}
