package evaluator

import (
	"strings"
	"testing"

	"github.com/dwsi-lang/dwsi/internal/interp/runtime"
	"github.com/dwsi-lang/dwsi/internal/lexer"
	"github.com/dwsi-lang/dwsi/internal/parser"
	"github.com/dwsi-lang/dwsi/internal/semantic"
)

func run(t *testing.T, input string) runtime.Value {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l, input)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs[0])
	}
	nodes, err := semantic.NewAnalyzer().Typecheck(program, input)
	if err != nil {
		t.Fatalf("typecheck error for %q: %v", input, err)
	}
	value, err := New(DefaultConfig()).Run(nodes, input)
	if err != nil {
		t.Fatalf("eval error for %q: %v", input, err)
	}
	return value
}

func TestEvalArithmetic(t *testing.T) {
	got := run(t, `1 + 2 + 3 - 1 / 1;`)
	want := &runtime.Int{Value: 5}
	if got.String() != want.String() {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestEvalNonShortCircuitOr(t *testing.T) {
	// Both sides must evaluate; since this language has no side-effecting
	// boolean expressions besides calls, this test pins down that "||"
	// is plain boolean-or over two already-evaluated operands.
	got := run(t, `true || false;`)
	if got.(*runtime.Bool).Value != true {
		t.Errorf("want true, got %v", got)
	}
}

func TestEvalLetAndReAssign(t *testing.T) {
	got := run(t, `let x = 1; x = x + 1; x;`)
	if got.(*runtime.Int).Value != 2 {
		t.Errorf("want 2, got %v", got)
	}
}

func TestEvalIfElse(t *testing.T) {
	got := run(t, `let x = 5; if x > 3 { 1; } else { 0; }`)
	if got.(*runtime.Int).Value != 1 {
		t.Errorf("want 1, got %v", got)
	}
}

func TestEvalWhileLoop(t *testing.T) {
	got := run(t, `
let x = 0;
while x <= 3 {
  x = x + 1;
}
x;
`)
	if got.(*runtime.Int).Value != 4 {
		t.Errorf("want 4, got %v", got)
	}
}

func TestEvalRecursiveFunction(t *testing.T) {
	got := run(t, `
fn fib::n: int {
  if n <= 1 { return n; }
  return fib(n - 1) + fib(n - 2);
}
fib(10);
`)
	if got.(*runtime.Int).Value != 55 {
		t.Errorf("want 55, got %v", got)
	}
}

func TestEvalClosureCapturesDefiningScope(t *testing.T) {
	got := run(t, `
let y = 10;
fn makeAdder::x: int {
  return x + y;
}
makeAdder(5);
`)
	if got.(*runtime.Int).Value != 15 {
		t.Errorf("want 15, got %v", got)
	}
}

func TestEvalReduceSumsList(t *testing.T) {
	got := run(t, `reduce([1, 2, 3, 4], fn(a, b) => { return a + b; });`)
	if got.(*runtime.Int).Value != 10 {
		t.Errorf("want 10, got %v", got)
	}
}

func TestEvalReduceEmptyListIsZero(t *testing.T) {
	got := run(t, `
fn sum::a,b: int { return a + b; }
let xs: [int] = [];
reduce(xs, sum);
`)
	if got.(*runtime.Int).Value != 0 {
		t.Errorf("want 0, got %v", got)
	}
}

func TestEvalReduceSingleArgSumsWithPlus(t *testing.T) {
	got := run(t, `reduce([1, 2, 3, 4]);`)
	if got.(*runtime.Int).Value != 10 {
		t.Errorf("want 10, got %v", got)
	}
}

func TestEvalReduceSingleArgEmptyListIsZero(t *testing.T) {
	got := run(t, `let xs: [int] = []; reduce(xs);`)
	if got.(*runtime.Int).Value != 0 {
		t.Errorf("want 0, got %v", got)
	}
}

func TestEvalIfBodyLetVisibleAfterBlock(t *testing.T) {
	// A "let" inside an if body must land in the same scope the
	// typechecker bound it in: the analyzer never opens a nested Context
	// for an if/while body, so the evaluator must not open a nested
	// Environment for one either.
	got := run(t, `let ok = true; if ok { let y = 2; } y;`)
	if got.(*runtime.Int).Value != 2 {
		t.Errorf("want 2, got %v", got)
	}
}

func TestEvalWhileBodyLetVisibleAfterLoop(t *testing.T) {
	got := run(t, `
let i = 0;
while i <= 0 {
  let found = 9;
  i = i + 1;
}
found;
`)
	if got.(*runtime.Int).Value != 9 {
		t.Errorf("want 9, got %v", got)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	l := lexer.New(`1 / 0;`)
	p := parser.New(l, `1 / 0;`)
	program := p.ParseProgram()
	nodes, err := semantic.NewAnalyzer().Typecheck(program, `1 / 0;`)
	if err != nil {
		t.Fatalf("unexpected typecheck error: %v", err)
	}
	_, err = New(DefaultConfig()).Run(nodes, `1 / 0;`)
	if err == nil {
		t.Fatalf("want a runtime error for division by zero")
	}
}

func TestEvalRuntimeErrorCarriesRealPosition(t *testing.T) {
	// A runtime error raised on a later line must report that line, not
	// the zero position — HIR nodes carry their originating source
	// Position precisely so this holds.
	source := "let x = 1;\nlet y = 0;\nx / y;"
	l := lexer.New(source)
	p := parser.New(l, source)
	program := p.ParseProgram()
	nodes, err := semantic.NewAnalyzer().Typecheck(program, source)
	if err != nil {
		t.Fatalf("unexpected typecheck error: %v", err)
	}
	_, err = New(DefaultConfig()).Run(nodes, source)
	if err == nil {
		t.Fatalf("want a runtime error for division by zero")
	}
	f, ok := err.(interface{ Format(bool) string })
	if !ok {
		t.Fatalf("error %v does not implement Format", err)
	}
	formatted := f.Format(false)
	if strings.Contains(formatted, "(0:0)") {
		t.Errorf("want a real source position, got zero position: %s", formatted)
	}
	if !strings.Contains(formatted, "x / y;") {
		t.Errorf("want the offending source line in the formatted error, got: %s", formatted)
	}
}

func TestEvalArgumentCountMismatch(t *testing.T) {
	source := `fn id::a: int { return a; } id(1, 2);`
	l := lexer.New(source)
	p := parser.New(l, source)
	program := p.ParseProgram()
	nodes, err := semantic.NewAnalyzer().Typecheck(program, source)
	if err != nil {
		t.Fatalf("unexpected typecheck error: %v", err)
	}
	_, err = New(DefaultConfig()).Run(nodes, source)
	if err == nil {
		t.Fatalf("want an InvalidOperation for an argument-count mismatch")
	}
}

func TestEvalRecursionDepthGuard(t *testing.T) {
	source := `
fn loop::n: int {
  return loop(n + 1);
}
loop(0);
`
	l := lexer.New(source)
	p := parser.New(l, source)
	program := p.ParseProgram()
	nodes, err := semantic.NewAnalyzer().Typecheck(program, source)
	if err != nil {
		t.Fatalf("unexpected typecheck error: %v", err)
	}
	cfg := DefaultConfig()
	cfg.MaxRecursionDepth = 50
	_, err = New(cfg).Run(nodes, source)
	if err == nil {
		t.Fatalf("want a recursion-depth InvalidOperation")
	}
}
