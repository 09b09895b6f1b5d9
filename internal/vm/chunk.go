package vm

import (
	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/span"
)

const maxConstants = 256

// spanRun is one run of a run-length-encoded Span sequence: `count`
// consecutive bytecode bytes all tagged with the same Span. Runs cap at 255
// so a single run's count always fits a byte (spec.md §4.1), matching the
// original Rust `VecRun<Span>` this was distilled from
// (original_source/src/vm/chunk.rs).
type spanRun struct {
	value span.Span
	count uint8
}

// Chunk is a bytecode buffer with its constant pool and per-opcode source
// spans (spec.md §4.1).
type Chunk struct {
	Code      []byte
	Constants []Value
	spans     []spanRun
}

func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]Value, 0, 16),
	}
}

// WriteByte appends a raw byte (an opcode or an immediate) and records sp
// as the Span for that byte, compressing into the previous run when equal.
func (c *Chunk) WriteByte(b byte, sp span.Span) {
	c.Code = append(c.Code, b)
	if n := len(c.spans); n > 0 && c.spans[n-1].value == sp && c.spans[n-1].count < 255 {
		c.spans[n-1].count++
		return
	}
	c.spans = append(c.spans, spanRun{value: sp, count: 1})
}

func (c *Chunk) WriteOp(op Opcode, sp span.Span) {
	c.WriteByte(byte(op), sp)
}

// SpanAt returns the Span associated with the byte at offset (spec.md §4.1).
func (c *Chunk) SpanAt(offset int) span.Span {
	remaining := offset
	for _, run := range c.spans {
		if remaining < int(run.count) {
			return run.value
		}
		remaining -= int(run.count)
	}
	return span.Span{}
}

// AddConstant appends value to the pool, deduplicating by equality, and
// returns its index. It fails with TooManyConstants if appending a new,
// non-duplicate value would exceed 256 entries (spec.md §4.1).
func (c *Chunk) AddConstant(value Value, sp span.Span) (int, *diagnostics.Error) {
	for i, existing := range c.Constants {
		if existing.Equals(value) {
			return i, nil
		}
	}
	if len(c.Constants) >= maxConstants {
		return 0, diagnostics.New(diagnostics.CategoryOverflow, diagnostics.CodeTooManyConstants, sp,
			"too many constants in one chunk (max %d)", maxConstants)
	}
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1, nil
}

// WriteConstant emits OP_CONSTANT followed by a one-byte constant index.
func (c *Chunk) WriteConstant(value Value, sp span.Span) *diagnostics.Error {
	idx, err := c.AddConstant(value, sp)
	if err != nil {
		return err
	}
	c.WriteOp(OP_CONSTANT, sp)
	c.WriteByte(byte(idx), sp)
	return nil
}

func (c *Chunk) Len() int { return len(c.Code) }
