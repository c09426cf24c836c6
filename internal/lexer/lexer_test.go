package lexer

import (
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/webidl/internal/diagnostics"
	"github.com/funvibe/webidl/internal/token"
)

func tokenize(t *testing.T, input string) []token.Token {
	t.Helper()
	toks, err := New(diagnostics.NewSource("test.webidl", input)).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", input, err)
	}
	return toks
}

func TestNextToken(t *testing.T) {
	input := `[Constructor] interface Foo : Bar {
  readonly attribute unsigned long long size; // trailing
  /* block
     comment */ void f(optional DOMString? s = "x", long... rest);
};`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.LBRACKET, "["},
		{token.IDENTIFIER, "Constructor"},
		{token.RBRACKET, "]"},
		{token.INTERFACE, "interface"},
		{token.IDENTIFIER, "Foo"},
		{token.COLON, ":"},
		{token.IDENTIFIER, "Bar"},
		{token.LBRACE, "{"},
		{token.READONLY, "readonly"},
		{token.ATTRIBUTE, "attribute"},
		{token.UNSIGNED, "unsigned"},
		{token.LONG, "long"},
		{token.LONG, "long"},
		{token.IDENTIFIER, "size"},
		{token.SEMICOLON, ";"},
		{token.VOID, "void"},
		{token.IDENTIFIER, "f"},
		{token.LPAREN, "("},
		{token.OPTIONAL, "optional"},
		{token.DOMSTRING, "DOMString"},
		{token.QUESTION, "?"},
		{token.IDENTIFIER, "s"},
		{token.EQUALS, "="},
		{token.STRING, `"x"`},
		{token.COMMA, ","},
		{token.LONG, "long"},
		{token.ELLIPSIS, "..."},
		{token.IDENTIFIER, "rest"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}

	toks := tokenize(t, input)
	if len(toks) != len(tests) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(tests))
	}
	for i, tt := range tests {
		tok := toks[i]
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestIntegerLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"42", "42"},
		{"-7", "-7"},
		{"0x1F", "31"},
		{"0X10", "16"},
		{"017", "15"},
		{"-0x10", "-16"},
		{"18446744073709551615", "18446744073709551615"},
	}
	for _, tt := range tests {
		toks := tokenize(t, tt.input)
		if toks[0].Type != token.INTEGER {
			t.Errorf("%q lexed as %s, want INTEGER", tt.input, toks[0].Type)
			continue
		}
		if got := toks[0].Literal.(*big.Int).String(); got != tt.want {
			t.Errorf("%q = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFloatLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.5", 1.5},
		{".25", 0.25},
		{"3.", 3},
		{"1e3", 1000},
		{"-2.5E-1", -0.25},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		toks := tokenize(t, tt.input)
		if toks[0].Type != token.FLOAT {
			t.Errorf("%q lexed as %s, want FLOAT", tt.input, toks[0].Type)
			continue
		}
		if got := toks[0].Literal.(float64); got != tt.want {
			t.Errorf("%q = %v, want %v", tt.input, got, tt.want)
		}
	}

	toks := tokenize(t, "NaN")
	if toks[0].Type != token.FLOAT || !math.IsNaN(toks[0].Literal.(float64)) {
		t.Errorf("NaN lexed as %s %v", toks[0].Type, toks[0].Literal)
	}
}

func TestInfinityPrefixIsIdentifier(t *testing.T) {
	toks := tokenize(t, "Infinityish NaNa")
	got := []token.TokenType{toks[0].Type, toks[1].Type}
	want := []token.TokenType{token.IDENTIFIER, token.IDENTIFIER}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token types (-want +got):\n%s", diff)
	}
}

func TestIdentifiers(t *testing.T) {
	toks := tokenize(t, "_interface __content foo-bar x1 Promise MozMap")
	var got []string
	for _, tok := range toks[:len(toks)-1] {
		got = append(got, tok.Type.String()+":"+tok.Lexeme)
	}
	want := []string{
		"IDENTIFIER:_interface",
		"IDENTIFIER:__content",
		"IDENTIFIER:foo-bar",
		"IDENTIFIER:x1",
		"Promise:Promise",
		"MozMap:MozMap",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
}

func TestUnknownCharactersBecomeOther(t *testing.T) {
	toks := tokenize(t, "a # é")
	if toks[1].Type != token.OTHER || toks[1].Lexeme != "#" {
		t.Errorf("got %s %q, want OTHER \"#\"", toks[1].Type, toks[1].Lexeme)
	}
	if toks[2].Type != token.OTHER || toks[2].Lexeme != "é" {
		t.Errorf("got %s %q, want OTHER \"é\"", toks[2].Type, toks[2].Lexeme)
	}
}

func TestPositions(t *testing.T) {
	toks := tokenize(t, "enum E {\n  \"a\"\n};")
	str := toks[3]
	if str.Type != token.STRING {
		t.Fatalf("token 3 is %s, want STRING", str.Type)
	}
	if str.Line != 2 || str.Column != 2 || str.Offset != 11 {
		t.Errorf("string at line %d col %d offset %d, want 2/2/11", str.Line, str.Column, str.Offset)
	}
	if str.Literal != "a" {
		t.Errorf("literal %v, want a", str.Literal)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"open`, "Unterminated string literal"},
		{"/* open", "Unterminated comment"},
	}
	for _, tt := range tests {
		_, err := New(diagnostics.NewSource("test.webidl", tt.input)).Tokenize()
		derr, ok := err.(*diagnostics.Error)
		if !ok {
			t.Errorf("%q: got %v, want a diagnostics error", tt.input, err)
			continue
		}
		if derr.Message != tt.want {
			t.Errorf("%q: message %q, want %q", tt.input, derr.Message, tt.want)
		}
	}
}
