package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/emberlox/ember/internal/span"
)

// Reporter renders diagnostics as a labeled text report (spec.md §6).
// Color defaults to auto-detecting whether stdout is a real terminal,
// the same check the host language's terminal builtins use.
type Reporter struct {
	Color bool
}

// NewReporter builds a Reporter that auto-detects color support on stdout.
func NewReporter() *Reporter {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return &Reporter{Color: isTTY}
}

func (r *Reporter) paint(code, s string) string {
	if !r.Color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Report writes a diagnostic with a primary label at its span and, if
// present, a trailing note — e.g. the "expected one of: ..." note a
// parser error carries.
func (r *Reporter) Report(w io.Writer, source string, err *Error) {
	line, col := lineCol(source, err.Span.Start)
	header := fmt.Sprintf("%s: %s", r.paint("1;31", string(err.Category)), err.Message)
	fmt.Fprintf(w, "%s\n", header)
	fmt.Fprintf(w, "  --> %d:%d\n", line, col)

	lineText := sourceLine(source, err.Span.Start)
	gutter := strconv.Itoa(line)
	fmt.Fprintf(w, "%s | %s\n", gutter, lineText)
	underlineLen := err.Span.End - err.Span.Start
	if underlineLen < 1 {
		underlineLen = 1
	}
	pad := strings.Repeat(" ", len(gutter)+3+col-1)
	fmt.Fprintf(w, "%s%s\n", pad, r.paint("1;31", strings.Repeat("^", underlineLen)))

	if err.Note != "" {
		fmt.Fprintf(w, "%s: %s\n", r.paint("1;36", "note"), err.Note)
	}
}

func lineCol(source string, offset int) (line, col int) {
	line = 1
	col = 1
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func sourceLine(source string, offset int) string {
	start := offset
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(source) && source[end] != '\n' {
		end++
	}
	return source[start:end]
}

// Span is re-exported for convenience of callers that only import diagnostics.
type Span = span.Span
