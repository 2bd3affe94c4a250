package errors

import (
	"strings"
	"testing"

	"github.com/dwsi-lang/dwsi/internal/lexer"
)

func TestSourceErrorError(t *testing.T) {
	err := NewTypeError("x;", lexer.Position{Line: 1, Column: 1}, "undefined variable %q", "x")
	want := "type error: undefined variable \"x\" at 1:1"
	if err.Error() != want {
		t.Errorf("want %q, got %q", want, err.Error())
	}
}

func TestSourceErrorFormatNoColor(t *testing.T) {
	source := "let x = y;"
	err := NewTypeError(source, lexer.Position{Line: 1, Column: 9}, "undefined variable %q", "y")
	got := err.Format(false)

	if strings.Contains(got, "\x1b[") {
		t.Errorf("want no ANSI codes without color, got %q", got)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines (message, source, caret), got %d: %q", len(lines), got)
	}
	if !strings.Contains(lines[1], source) {
		t.Errorf("want offending source line echoed, got %q", lines[1])
	}
	caretCol := strings.Index(lines[2], "^")
	if caretCol != len(lines[1])-len(source)+8 {
		t.Errorf("want caret under column 9, got caret at index %d in %q", caretCol, lines[2])
	}
}

func TestSourceErrorFormatColor(t *testing.T) {
	err := NewInvalidOperation("1/0;", lexer.Position{Line: 1, Column: 1}, "division by zero")
	got := err.Format(true)
	if !strings.Contains(got, "\x1b[31m") {
		t.Errorf("want ANSI red escape with color, got %q", got)
	}
}

func TestSourceErrorFormatOutOfRangeLine(t *testing.T) {
	err := NewParseError("a;", lexer.Position{Line: 5, Column: 1}, "unexpected token")
	got := err.Format(false)
	if strings.Contains(got, "\n") {
		t.Errorf("want a single-line message when the line is out of range, got %q", got)
	}
}

func TestFormatErrorsJoinsMultipleErrors(t *testing.T) {
	errs := []error{
		NewParseError("a", lexer.Position{Line: 1, Column: 1}, "bad token"),
		NewTypeError("b", lexer.Position{Line: 1, Column: 1}, "bad type"),
	}
	got := FormatErrors(errs, false)
	if !strings.Contains(got, "bad token") || !strings.Contains(got, "bad type") {
		t.Errorf("want both errors rendered, got %q", got)
	}
}

func TestStageString(t *testing.T) {
	cases := map[Stage]string{
		StageParse: "parse error",
		StageType:  "type error",
		StageEval:  "runtime error",
	}
	for stage, want := range cases {
		if got := stage.String(); got != want {
			t.Errorf("Stage(%d): want %q, got %q", stage, want, got)
		}
	}
}
