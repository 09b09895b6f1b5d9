package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/emberlox/ember/internal/span"
)

func TestErrorMessageFormat(t *testing.T) {
	err := New(CategoryName, CodeNotDefined, span.New(3, 7), "undefined name %q", "foo")
	want := `NameError::NotDefined: undefined name "foo"`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestWithNoteIsChainableAndMutatesReceiver(t *testing.T) {
	err := New(CategorySyntax, CodeUnexpectedToken, span.New(0, 1), "bad token")
	returned := err.WithNote("expected one of: ;")
	if returned != err {
		t.Errorf("WithNote should return the same *Error")
	}
	if err.Note != "expected one of: ;" {
		t.Errorf("got note %q", err.Note)
	}
}

func TestReportIncludesLineColumnAndCaret(t *testing.T) {
	source := "var x = ;\nprint x;"
	err := New(CategorySyntax, CodeUnexpectedToken, span.New(8, 9), "expected expression")
	var buf bytes.Buffer
	r := &Reporter{Color: false}
	r.Report(&buf, source, err)

	out := buf.String()
	if !strings.Contains(out, "SyntaxError: expected expression") {
		t.Errorf("missing header in report: %q", out)
	}
	if !strings.Contains(out, "1:9") {
		t.Errorf("missing line:col in report: %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret underline in report: %q", out)
	}
}

func TestReportIncludesNoteWhenPresent(t *testing.T) {
	source := "1 + ;"
	err := New(CategorySyntax, CodeUnexpectedToken, span.New(4, 5), "unexpected token").WithNote("expected one of: NUMBER")
	var buf bytes.Buffer
	r := &Reporter{Color: false}
	r.Report(&buf, source, err)
	if !strings.Contains(buf.String(), "note: expected one of: NUMBER") {
		t.Errorf("missing note in report: %q", buf.String())
	}
}

func TestReportColorWrapsWithAnsiCodes(t *testing.T) {
	source := "x"
	err := New(CategoryName, CodeNotDefined, span.New(0, 1), "undefined name")
	var buf bytes.Buffer
	r := &Reporter{Color: true}
	r.Report(&buf, source, err)
	if !strings.Contains(buf.String(), "\x1b[1;31m") {
		t.Errorf("expected ANSI color codes in colored report: %q", buf.String())
	}
}

func TestLineColOnMultilineSource(t *testing.T) {
	line, col := lineCol("a\nbb\nccc", 5)
	if line != 3 || col != 1 {
		t.Errorf("got line=%d col=%d, want line=3 col=1", line, col)
	}
}
