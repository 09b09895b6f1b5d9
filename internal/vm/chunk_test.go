package vm

import (
	"testing"

	"github.com/emberlox/ember/internal/diagnostics"
	"github.com/emberlox/ember/internal/span"
)

func TestAddConstantDeduplicatesEqualValues(t *testing.T) {
	c := NewChunk()
	i1, err := c.AddConstant(NumberVal(1), span.Span{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i2, err := c.AddConstant(NumberVal(1), span.Span{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i1 != i2 {
		t.Errorf("expected duplicate constant to reuse index %d, got %d", i1, i2)
	}
	if len(c.Constants) != 1 {
		t.Errorf("got %d constants, want 1", len(c.Constants))
	}
}

func TestAddConstantUpTo256Succeeds(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 256; i++ {
		if _, err := c.AddConstant(NumberVal(float64(i)), span.Span{}); err != nil {
			t.Fatalf("constant %d: unexpected error: %v", i, err)
		}
	}
	if len(c.Constants) != 256 {
		t.Fatalf("got %d constants, want 256", len(c.Constants))
	}
}

func TestAddConstant257thFails(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 256; i++ {
		if _, err := c.AddConstant(NumberVal(float64(i)), span.Span{}); err != nil {
			t.Fatalf("constant %d: unexpected error: %v", i, err)
		}
	}
	_, err := c.AddConstant(NumberVal(256), span.Span{})
	if err == nil {
		t.Fatalf("expected TooManyConstants error on the 257th distinct constant")
	}
	if err.Code != diagnostics.CodeTooManyConstants {
		t.Errorf("got code %s, want TooManyConstants", err.Code)
	}
}

func TestSpanAtCompressesRunsButRecoversPerByteSpan(t *testing.T) {
	c := NewChunk()
	spanA := span.New(0, 1)
	spanB := span.New(5, 6)
	c.WriteByte(0x01, spanA)
	c.WriteByte(0x02, spanA)
	c.WriteByte(0x03, spanB)

	if got := c.SpanAt(0); got != spanA {
		t.Errorf("SpanAt(0) = %v, want %v", got, spanA)
	}
	if got := c.SpanAt(1); got != spanA {
		t.Errorf("SpanAt(1) = %v, want %v", got, spanA)
	}
	if got := c.SpanAt(2); got != spanB {
		t.Errorf("SpanAt(2) = %v, want %v", got, spanB)
	}
}

func TestSpanRunSplitsAfter255RepeatsOfSameSpan(t *testing.T) {
	c := NewChunk()
	sp := span.New(0, 1)
	for i := 0; i < 256; i++ {
		c.WriteByte(0x00, sp)
	}
	if len(c.spans) != 2 {
		t.Fatalf("expected the 256th repeat to start a new run (255 cap), got %d runs", len(c.spans))
	}
	if c.spans[0].count != 255 || c.spans[1].count != 1 {
		t.Errorf("got run counts %d,%d, want 255,1", c.spans[0].count, c.spans[1].count)
	}
}

func TestWriteConstantEmitsOpcodeAndIndex(t *testing.T) {
	c := NewChunk()
	if err := c.WriteConstant(NumberVal(42), span.Span{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Code) != 2 || Opcode(c.Code[0]) != OP_CONSTANT || c.Code[1] != 0 {
		t.Errorf("got code %v, want [OP_CONSTANT, 0]", c.Code)
	}
}
