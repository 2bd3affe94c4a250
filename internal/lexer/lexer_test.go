package lexer

import "testing"

func TestNextTokenBasics(t *testing.T) {
	input := `let x: int = 1 + 2;
fn add::a,b { return a + b; }
if x <= 3 { println("hi"); } else { println("lo"); }
[1, 2, 3]
fn(a) => { return a; };
"esc\napes" true false x::y => <= == || &&`

	l := New(input)

	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}

	if len(l.Errors()) != 0 {
		t.Fatalf("unexpected lexer errors: %v", l.Errors())
	}

	wantFirst := []TokenType{LET, IDENT, COLON, IDENT, ASSIGN, INT, PLUS, INT, SEMICOLON}
	for i, want := range wantFirst {
		if types[i] != want {
			t.Errorf("token %d: want %s, got %s", i, want, types[i])
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("1 + 2")
	first := l.Peek(0)
	again := l.Peek(0)
	if first.Type != again.Type || first.Literal != again.Literal {
		t.Fatalf("Peek(0) changed between calls: %+v vs %+v", first, again)
	}
	consumed := l.NextToken()
	if consumed.Literal != first.Literal {
		t.Fatalf("NextToken() after Peek(0) returned %q, want %q", consumed.Literal, first.Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("want STRING, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("want 1 lexer error, got %d", len(l.Errors()))
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("@")
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("want ILLEGAL, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("want 1 lexer error, got %d", len(l.Errors()))
	}
}

func TestLineColumnTracking(t *testing.T) {
	l := New("a\nb")
	first := l.NextToken()
	if first.Pos.Line != 1 {
		t.Fatalf("want line 1, got %d", first.Pos.Line)
	}
	second := l.NextToken()
	if second.Pos.Line != 2 {
		t.Fatalf("want line 2, got %d", second.Pos.Line)
	}
}
