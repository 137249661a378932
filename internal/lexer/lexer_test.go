package lexer

import (
	"testing"

	"github.com/tpl-lang/tplc/internal/diagnostic"
)

func TestNextToken_Operators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "arithmetic operators",
			input:    "+ - * / %",
			expected: []TokenType{PLUS, MINUS, STAR, SLASH, PERCENT, EOF},
		},
		{
			name:     "comparison operators",
			input:    "== != < > <= >=",
			expected: []TokenType{EQ, NEQ, LT, GT, LEQ, GEQ, EOF},
		},
		{
			name:     "assignment operators",
			input:    "= += -= ++ --",
			expected: []TokenType{ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, INC, DEC, EOF},
		},
		{
			name:     "address and not",
			input:    "& !",
			expected: []TokenType{AMP, BANG, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			for i, expectedType := range tt.expected {
				tok := l.NextToken()
				if tok.Type != expectedType {
					t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
						i, expectedType, tok.Type)
				}
			}
		})
	}
}

func TestNextToken_Delimiters(t *testing.T) {
	input := "( ) { } [ ] , ; ."
	expected := []TokenType{
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
		COMMA, SEMICOLON, DOT, EOF,
	}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := "define return if else while for in break true false auto fn"
	expected := []TokenType{
		DEFINE, RETURN, IF, ELSE, WHILE, FOR, IN, BREAK,
		TRUE, FALSE, AUTO, FN, EOF,
	}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_TypeKeywords(t *testing.T) {
	input := "int8 int16 int32 int64 int128 bool str void"
	expected := []TokenType{
		INT8_TYPE, INT16_TYPE, INT32_TYPE, INT64_TYPE, INT128_TYPE,
		BOOL_TYPE, STR_TYPE, VOID_TYPE, EOF,
	}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
		if !IsTypeKeyword(tok.Type) && tok.Type != EOF {
			t.Errorf("token[%d] - %q should be a type keyword", i, tok.Type)
		}
	}
}

func TestNextToken_NumbersAndIdentifiers(t *testing.T) {
	input := "count 42 10_000 _tmp x9"
	l := New(input)

	expected := []struct {
		tokType TokenType
		literal string
	}{
		{IDENT, "count"},
		{INT_LIT, "42"},
		{INT_LIT, "10000"}, // underscores are stripped
		{IDENT, "_tmp"},
		{IDENT, "x9"},
		{EOF, ""},
	}

	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.tokType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q", i, want.tokType, tok.Type)
		}
		if tok.Literal != want.literal {
			t.Errorf("token[%d] - wrong literal. expected=%q, got=%q", i, want.literal, tok.Literal)
		}
	}
}

func TestNextToken_MalformedNumber(t *testing.T) {
	l := New("12abc")
	tok := l.NextToken()

	if tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL token, got %q", tok.Type)
	}
	if !l.Diagnostics().HasCode(diagnostic.MalformedNumber) {
		t.Errorf("expected MalformedNumber diagnostic, got: %s", l.Diagnostics().Format("test"))
	}

	// lexing continues after the malformed literal
	tok = l.NextToken()
	if tok.Type != EOF {
		t.Errorf("expected EOF after malformed number, got %q", tok.Type)
	}
}

func TestNextToken_StringLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `"hello"`, "hello"},
		{"empty", `""`, ""},
		{"newline escape", `"a\nb"`, "a\nb"},
		{"tab escape", `"a\tb"`, "a\tb"},
		{"quote escape", `"say \"hi\""`, `say "hi"`},
		{"backslash escape", `"c:\\tmp"`, `c:\tmp`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			tok := l.NextToken()
			if tok.Type != STRING_LIT {
				t.Fatalf("expected STRING_LIT, got %q", tok.Type)
			}
			if tok.Literal != tt.expected {
				t.Errorf("wrong literal. expected=%q, got=%q", tt.expected, tok.Literal)
			}
		})
	}
}

func TestNextToken_UnterminatedStringAtEOF(t *testing.T) {
	l := New(`"oops`)
	tok := l.NextToken()

	// at EOF there is nothing left to resynchronize against
	if tok.Type != EOF {
		t.Errorf("expected EOF for unterminated string, got %q", tok.Type)
	}
	if !l.Diagnostics().HasCode(diagnostic.UnterminatedString) {
		t.Errorf("expected UnterminatedString diagnostic")
	}
}

func TestNextToken_StringBrokenByNewline(t *testing.T) {
	l := New("str s = \"oops\nint32 x = 1;")
	tokens := l.Tokenize()

	if !l.Diagnostics().HasCode(diagnostic.UnterminatedString) {
		t.Errorf("expected UnterminatedString diagnostic")
	}

	// the broken literal becomes a single ILLEGAL token and lexing resumes
	// on the next line
	want := []TokenType{
		STR_TYPE, IDENT, ASSIGN, ILLEGAL,
		INT32_TYPE, IDENT, ASSIGN, INT_LIT, SEMICOLON, EOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, wantType := range want {
		if tokens[i].Type != wantType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, wantType, tokens[i].Type)
		}
	}
	if x := tokens[5]; x.Literal != "x" || x.Line != 2 {
		t.Errorf("expected IDENT x on line 2, got %q on line %d", x.Literal, x.Line)
	}
}

func TestNextToken_Comments(t *testing.T) {
	input := "x // trailing comment\n// full line\ny"
	l := New(input)

	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "x" {
		t.Errorf("expected IDENT x, got %q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Literal != "y" {
		t.Errorf("expected IDENT y, got %q %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_InvalidCharacter(t *testing.T) {
	l := New("@")
	tok := l.NextToken()

	if tok.Type != ILLEGAL {
		t.Errorf("expected ILLEGAL, got %q", tok.Type)
	}
	if !l.Diagnostics().HasCode(diagnostic.InvalidCharacter) {
		t.Errorf("expected InvalidCharacter diagnostic")
	}
}

func TestNextToken_Positions(t *testing.T) {
	input := "x = 1;\ny = 2;"
	l := New(input)

	tok := l.NextToken() // x
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("x: expected 1:1, got %d:%d", tok.Line, tok.Column)
	}

	for tok.Literal != "y" && tok.Type != EOF {
		tok = l.NextToken()
	}
	if tok.Line != 2 || tok.Column != 1 {
		t.Errorf("y: expected 2:1, got %d:%d", tok.Line, tok.Column)
	}
}

func TestTokenize(t *testing.T) {
	tokens := New("int32 x = 5;").Tokenize()

	if len(tokens) != 6 {
		t.Fatalf("expected 6 tokens, got %d", len(tokens))
	}
	if tokens[len(tokens)-1].Type != EOF {
		t.Errorf("token stream must end with EOF, got %q", tokens[len(tokens)-1].Type)
	}
}
