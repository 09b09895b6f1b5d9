package lexer

import (
	"testing"

	"github.com/emberlox/ember/internal/token"
)

func collect(input string) []token.Token {
	l := New(input, 0)
	var toks []token.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Type == token.EOF {
			return toks
		}
	}
}

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	input := `(){}[],.;:+-*/%!= = == > >= < <=`
	toks := collect(input)
	want := []token.Type{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.DOT,
		token.SEMICOLON, token.COLON, token.PLUS, token.MINUS,
		token.STAR, token.SLASH, token.PERCENT, token.BANG_EQUAL,
		token.EQUAL, token.EQUAL_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.LESS, token.LESS_EQUAL, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `var x fun class package static this super and or`
	toks := collect(input)
	want := []token.Type{
		token.VAR, token.IDENT, token.FUN, token.CLASS, token.PACKAGE,
		token.STATIC, token.THIS, token.SUPER, token.AND, token.OR, token.EOF,
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestNumberLiteral(t *testing.T) {
	toks := collect(`3.14 42`)
	if toks[0].Type != token.NUMBER || toks[0].Literal.(float64) != 3.14 {
		t.Errorf("got %v", toks[0])
	}
	if toks[1].Type != token.NUMBER || toks[1].Literal.(float64) != 42 {
		t.Errorf("got %v", toks[1])
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	toks := collect(`"hello\nworld" "a\"b"`)
	if toks[0].Literal.(string) != "hello\nworld" {
		t.Errorf("got %q", toks[0].Literal)
	}
	if toks[1].Literal.(string) != `a"b` {
		t.Errorf("got %q", toks[1].Literal)
	}
}

func TestLineComment(t *testing.T) {
	toks := collect("1 // a comment\n2")
	if toks[0].Type != token.NUMBER || toks[1].Type != token.NUMBER || toks[2].Type != token.EOF {
		t.Fatalf("got %v", toks)
	}
}

func TestIllegalCharacter(t *testing.T) {
	toks := collect(`@`)
	if toks[0].Type != token.ILLEGAL {
		t.Errorf("got %v, want ILLEGAL", toks[0])
	}
}

func TestSpanBaseOffsetAppliesToTokens(t *testing.T) {
	l := New("x", 100)
	tok := l.NextToken()
	if tok.Span.Start != 100 || tok.Span.End != 101 {
		t.Errorf("got span %v, want [100,101)", tok.Span)
	}
}

func TestEOFRepeatsAtEndOfInput(t *testing.T) {
	l := New("", 0)
	first := l.NextToken()
	second := l.NextToken()
	if first.Type != token.EOF || second.Type != token.EOF {
		t.Errorf("expected EOF forever, got %v then %v", first, second)
	}
}
